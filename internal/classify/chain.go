package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Named attaches a name to a Classifier for logs and errors.
type Named struct {
	Name       string
	Classifier Classifier
}

// Chain tries each classifier in turn and returns the first category.  It
// fails only when every classifier failed, with all of their errors joined.
type Chain struct {
	links []Named
	log   zerolog.Logger
}

// NewChain returns a Chain over links, in order.
func NewChain(log zerolog.Logger, links ...Named) *Chain {
	return &Chain{links: links, log: log}
}

// Classify returns the first category any link produces.
func (c *Chain) Classify(ctx context.Context, rawURL string) (string, error) {
	if len(c.links) == 0 {
		return "", errors.New("classify: no classifiers configured")
	}

	var errs []error
	for _, link := range c.links {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		category, err := link.Classifier.Classify(ctx, rawURL)
		if err == nil {
			if len(errs) > 0 {
				c.log.Debug().Str("classifier", link.Name).Str("url", rawURL).Str("category", category).Msg("fallback classifier succeeded")
			}
			return category, nil
		}

		if !errors.Is(err, ErrNoMatch) {
			c.log.Warn().Err(err).Str("classifier", link.Name).Str("url", rawURL).Msg("classifier failed, falling back")
		}
		errs = append(errs, fmt.Errorf("%s: %w", link.Name, err))
	}
	return "", errors.Join(errs...)
}
