package nativemsg

import (
	"errors"
	"fmt"
)

// ErrChannelClosed is returned by reads when the browser closed the stream
// cleanly, i.e. before any byte of the next header.  It is the normal way for
// a request loop to end.
var ErrChannelClosed = errors.New("nativemsg: channel closed")

// ErrMalformedFrame matches every *MalformedFrameError via errors.Is.
var ErrMalformedFrame = errors.New("nativemsg: malformed frame")

// ErrMessageTooLarge is returned by writes when the payload exceeds the
// outbound limit.  Nothing is written in that case.
var ErrMessageTooLarge = errors.New("nativemsg: message too large")

// MalformedFrameError describes a violation of the framing contract seen while
// reading.
type MalformedFrameError struct {
	Reason string
	Err    error
}

func (e *MalformedFrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nativemsg: malformed frame: %s: %v", e.Reason, e.Err)
	}
	return "nativemsg: malformed frame: " + e.Reason
}

func (e *MalformedFrameError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrMalformedFrame) true for any MalformedFrameError.
func (e *MalformedFrameError) Is(target error) bool {
	return target == ErrMalformedFrame
}

func malformed(err error, format string, args ...interface{}) error {
	return &MalformedFrameError{Reason: fmt.Sprintf(format, args...), Err: err}
}
