// package main implements the one-shot classifier: it classifies the URL given
// as its only argument and writes a single framed result to stdout.
package main

import (
	"context"
	"os"
)

import "github.com/p00ya/voce-host/internal/app"

func main() {
	os.Exit(run(app.Options{Stdin: os.Stdin, Stdout: os.Stdout}, os.Args[1:]))
}

func run(opts app.Options, args []string) int {
	h, err := app.Open(opts)
	defer h.Close()

	d := h.Dispatcher()
	if err != nil {
		h.Log.Error().Err(err).Msg("setup failed")
		err = d.ReportFailure(err)
	} else {
		err = d.ClassifyArgs(context.Background(), args)
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("could not write result")
		return 1
	}
	return 0
}
