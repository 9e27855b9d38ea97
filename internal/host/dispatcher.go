// Package host runs the native messaging host side of the protocol: it
// performs an action (user lookup or URL classification) and reports the
// outcome as exactly one response message.
//
// Failures never escape as a silent exit.  Every error reachable from an
// action is turned into {"status":"error","message":...} so that the
// extension only ever has to look at the status field.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/p00ya/voce-host/internal/classify"
	"github.com/p00ya/voce-host/internal/nativemsg"
)

// MessageChannel is the framing layer the Dispatcher talks through;
// *nativemsg.Channel implements it.
type MessageChannel interface {
	ReadMessage(v interface{}) error
	WriteMessage(v interface{}) error
}

// Dispatcher performs host actions and writes their results.
//
// A Dispatcher is single threaded: each request is handled to completion,
// response included, before the next one is read.
type Dispatcher struct {
	channel    MessageChannel
	classifier classify.Classifier
	identity   IdentityFunc
	log        zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClassifier sets the classification capability.
func WithClassifier(c classify.Classifier) Option {
	return func(d *Dispatcher) { d.classifier = c }
}

// WithIdentity replaces the user lookup, CurrentUsername by default.
func WithIdentity(f IdentityFunc) Option {
	return func(d *Dispatcher) { d.identity = f }
}

// WithLogger sets the logger.  The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// New returns a Dispatcher writing to ch.
func New(ch MessageChannel, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		channel:  ch,
		identity: CurrentUsername,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ReportIdentity writes the current user name, or the reason it could not
// be determined.  The returned error is only ever a write failure.
func (d *Dispatcher) ReportIdentity(ctx context.Context) error {
	return d.respond(d.identify(ctx))
}

// ClassifyArgs classifies args[0] and writes the result.  With no arguments
// it writes a missing argument failure.  The returned error is only ever a
// write failure.
func (d *Dispatcher) ClassifyArgs(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return d.respond(Failure(fmt.Errorf("%w: url to classify", ErrMissingArgument)))
	}
	return d.respond(d.classify(ctx, args[0]))
}

// ReportFailure writes err as the one response of a run that could not get
// as far as its action, e.g. because the configuration is broken.
func (d *Dispatcher) ReportFailure(err error) error {
	return d.respond(Failure(err))
}

// Serve answers requests until the browser closes the stream, which is a
// clean stop and returns nil.  A malformed frame or a failed write stops the
// loop with an error.  ctx is checked between requests only; a pending read
// cannot be interrupted.
func (d *Dispatcher) Serve(ctx context.Context) error {
	for served := 0; ; served++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var payload json.RawMessage
		switch err := d.channel.ReadMessage(&payload); {
		case nativemsg.IsClosed(err):
			d.log.Debug().Int("served", served).Msg("browser closed the channel")
			return nil
		case err != nil:
			return fmt.Errorf("reading request: %w", err)
		}

		log := d.log.With().Str("request_id", uuid.NewString()).Logger()
		result := d.handle(ctx, log, payload)
		if err := d.respond(result); err != nil {
			return err
		}
		log.Debug().Bool("ok", result.OK()).Msg("answered request")
	}
}

// handle turns one request payload into its result.
func (d *Dispatcher) handle(ctx context.Context, log zerolog.Logger, payload []byte) Result {
	req, err := ParseRequest(payload)
	if err != nil {
		log.Warn().Err(err).Msg("rejected request")
		return Failure(err)
	}

	switch req.Action {
	case ActionIdentity:
		return d.identify(ctx)
	default:
		if req.URL == nil {
			return Failure(fmt.Errorf("%w: url", ErrMissingArgument))
		}
		log.Debug().Str("url", *req.URL).Msg("classifying")
		return d.classify(ctx, *req.URL)
	}
}

func (d *Dispatcher) identify(_ context.Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Msg("user lookup panicked")
			res = Failure(&SystemCallError{Op: "user lookup", Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	name, err := d.identity()
	if err != nil {
		d.log.Warn().Err(err).Msg("user lookup failed")
		return Failure(err)
	}
	return SuccessUsername(name)
}

func (d *Dispatcher) classify(ctx context.Context, rawURL string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("url", rawURL).Msg("classifier panicked")
			res = Failure(&ClassificationError{URL: rawURL, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if d.classifier == nil {
		return Failure(&ClassificationError{URL: rawURL, Err: errors.New("no classifier configured")})
	}

	category, err := d.classifier.Classify(ctx, rawURL)
	if err != nil {
		d.log.Warn().Err(err).Str("url", rawURL).Msg("classification failed")
		return Failure(&ClassificationError{URL: rawURL, Err: err})
	}

	category = strings.TrimSpace(category)
	if category == "" || !utf8.ValidString(category) {
		return Failure(&ClassificationError{URL: rawURL, Err: fmt.Errorf("unusable category %q", category)})
	}
	return SuccessCategory(category)
}

// respond writes result.  Results too large for the browser are replaced by
// a short failure so that a response is still delivered.
func (d *Dispatcher) respond(result Result) error {
	err := d.channel.WriteMessage(result)
	if errors.Is(err, nativemsg.ErrMessageTooLarge) {
		d.log.Warn().Err(err).Msg("response too large, sending failure instead")
		err = d.channel.WriteMessage(Failure(errors.New("response too large")))
	}
	if err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}
