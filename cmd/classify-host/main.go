// package main implements a native messaging host that answers classification
// and identity requests until the browser closes the port.
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
	if err != nil {
		// Tell the extension why instead of serving.
		h.Log.Error().Err(err).Msg("setup failed")
		err = h.Dispatcher().ReportFailure(err)
		h.Close()
		if err != nil {
			h.Log.Error().Err(err).Msg("could not answer the browser")
			return 1
		}
		return 0
	}

	caller, err := h.CheckCaller(args)
	if err != nil {
		h.Log.Error().Err(err).Msg("refusing caller")
		h.Close()
		return 1
	}
	log := h.Log.With().Str("browser", caller.Browser).Str("caller", caller.ID).Logger()
	log.Info().Msg("serving")

	ctx, cancel := context.WithCancel(context.Background())
	h.WatchDomains(ctx)

	err = h.Dispatcher().Serve(ctx)
	cancel()
	if cerr := h.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("closing")
	}
	if err != nil {
		log.Error().Err(err).Msg("request loop failed")
		return 1
	}
	// Clean exit - the browser destroyed the native messaging port.
	log.Info().Msg("browser closed the port")
	return 0
}
