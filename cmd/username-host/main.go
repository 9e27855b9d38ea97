// package main implements a native messaging host that reports the name of the
// logged-in user to the extension and exits.
package main

import (
	"context"
	"os"
)

import "github.com/p00ya/voce-host/internal/app"

func main() {
	os.Exit(run(app.Options{Stdin: os.Stdin, Stdout: os.Stdout}))
}

// run answers once and returns the exit status: 0 whenever the browser got
// a response, even one reporting an error.
func run(opts app.Options) int {
	h, err := app.Open(opts)
	defer h.Close()

	d := h.Dispatcher()
	if err != nil {
		h.Log.Error().Err(err).Msg("setup failed")
		err = d.ReportFailure(err)
	} else {
		err = d.ReportIdentity(context.Background())
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("could not answer the browser")
		return 1
	}
	return 0
}
