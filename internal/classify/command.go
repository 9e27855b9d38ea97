package classify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	retry "github.com/sethvargo/go-retry"
)

// DefaultCommandTimeout bounds one run of an external predictor.
const DefaultCommandTimeout = 10 * time.Second

// retryBase is the first delay between predictor attempts.
const retryBase = 100 * time.Millisecond

// ErrTimeout is wrapped by errors from predictor runs that were killed for
// taking longer than the Command's Timeout.
var ErrTimeout = errors.New("timed out")

// maxStderr is how much of a failed predictor's stderr ends up in the error.
const maxStderr = 512

// Command runs an external predictor once per URL.  The URL is appended to
// Args as the last argument; the predictor prints the category on stdout and
// exits 0.  Anything else (non-zero exit, empty output, timeout) is an error.
type Command struct {
	Args    []string
	Dir     string
	Timeout time.Duration

	// Retries is how many more times a failing predictor is run, with
	// Fibonacci backoff.  Timeouts are not retried.
	Retries uint64
}

// NewCommand returns a Command running args, which must name a program.
func NewCommand(args []string, timeout time.Duration) (*Command, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, errors.New("predictor command is empty")
	}
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Command{Args: args, Timeout: timeout}, nil
}

// Classify runs the predictor for rawURL.
func (c *Command) Classify(ctx context.Context, rawURL string) (string, error) {
	var category string
	b := retry.WithMaxRetries(c.Retries, retry.NewFibonacci(retryBase))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		category, err = c.run(ctx, rawURL)
		if err != nil && !errors.Is(err, ErrTimeout) && ctx.Err() == nil {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return category, nil
}

// run runs the predictor once.
func (c *Command) run(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	args := append(append([]string(nil), c.Args[1:]...), rawURL)
	cmd := exec.CommandContext(ctx, c.Args[0], args...)
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("predictor %s: %w after %v", c.Args[0], ErrTimeout, c.Timeout)
		}
		return "", fmt.Errorf("predictor %s: %w%s", c.Args[0], err, stderrSuffix(stderr.String()))
	}

	category := lastLine(stdout.String())
	if category == "" {
		return "", fmt.Errorf("predictor %s printed no category%s", c.Args[0], stderrSuffix(stderr.String()))
	}
	return category, nil
}

// lastLine returns the last non-blank line of s.  Predictors built on ML
// frameworks tend to print progress noise before the answer.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func stderrSuffix(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) > maxStderr {
		s = s[len(s)-maxStderr:]
	}
	return ": " + s
}
