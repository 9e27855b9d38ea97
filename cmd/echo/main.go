// package main implements a native messaging host that echoes requests back
// to the browser.  It is useful for checking a manifest installation.
package main

import (
	"encoding/json"
	"os"
)

import (
	"github.com/p00ya/voce-host/internal/logging"
	"github.com/p00ya/voce-host/internal/nativemsg"
)

func main() {
	log := logging.Fallback()
	ch := nativemsg.NewChannel(os.Stdin, os.Stdout)

	for {
		var req json.RawMessage
		err := ch.ReadMessage(&req)
		if nativemsg.IsClosed(err) {
			// Clean exit - Chrome destroyed native messaging port.
			break
		}
		if err != nil {
			log.Fatal().Err(err).Msg("reading request")
		}
		if err := ch.WriteMessage(req); err != nil {
			log.Fatal().Err(err).Msg("writing response")
		}
	}
}
