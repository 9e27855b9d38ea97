// Package nativemsg implements the browser native messaging wire format.
//
// Each message is a 4-byte unsigned length header, in the byte order of the
// platform, followed by that many bytes of UTF-8 encoded JSON.  Chrome and
// Firefox both use this framing on the host's stdin and stdout.
package nativemsg

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// headerLen is the number of bytes in the native messaging header.
const headerLen = 4

const (
	// DefaultMaxInbound is the largest message a browser will send to a host.
	DefaultMaxInbound = 64 << 20

	// DefaultMaxOutbound is the largest message a browser accepts from a host.
	DefaultMaxOutbound = 1 << 20
)

// Channel reads and writes framed messages.
//
// A Channel is not safe for concurrent use; the protocol is strictly one
// request, then one response.
type Channel struct {
	// reader is the stream from the browser (typically stdin).
	reader io.Reader

	// writer is the stream to the browser (typically stdout).  It must not
	// buffer unless it also implements Flush.
	writer io.Writer

	order       binary.ByteOrder
	maxInbound  uint32
	maxOutbound uint32
}

// Option configures a Channel.
type Option func(*Channel)

// WithByteOrder overrides the header byte order.  Anything other than the
// native order will not interoperate with a browser on the same machine, so
// this exists for tests and for unusual deployments.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(c *Channel) {
		if order != nil {
			c.order = order
		}
	}
}

// WithMaxInbound sets the largest payload ReadRaw accepts.
func WithMaxInbound(n uint32) Option {
	return func(c *Channel) {
		if n > 0 {
			c.maxInbound = n
		}
	}
}

// WithMaxOutbound sets the largest payload WriteRaw emits.
func WithMaxOutbound(n uint32) Option {
	return func(c *Channel) {
		if n > 0 {
			c.maxOutbound = n
		}
	}
}

// NewChannel returns a Channel that reads requests from r and writes responses
// to w.
func NewChannel(r io.Reader, w io.Writer, opts ...Option) *Channel {
	c := &Channel{
		reader:      r,
		writer:      w,
		order:       NativeEndian,
		maxInbound:  DefaultMaxInbound,
		maxOutbound: DefaultMaxOutbound,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ByteOrder returns the byte order used for headers.
func (c *Channel) ByteOrder() binary.ByteOrder {
	return c.order
}

// ReadRaw returns the next payload.
//
// It returns ErrChannelClosed if the stream ended before the first header
// byte, and a *MalformedFrameError if the stream ended part way through a
// frame or the header announces more than the inbound limit.
func (c *Channel) ReadRaw() ([]byte, error) {
	header := make([]byte, headerLen)
	switch n, err := io.ReadFull(c.reader, header); {
	case n == 0 && err == io.EOF:
		// Clean shutdown from the browser's end.
		return nil, ErrChannelClosed
	case err == io.ErrUnexpectedEOF:
		return nil, malformed(err, "wanted %d-byte header, read %d bytes", headerLen, n)
	case err != nil:
		return nil, err
	}

	payloadLen := c.order.Uint32(header)
	if payloadLen > c.maxInbound {
		return nil, malformed(nil, "want at most %d-byte payload, got %d", c.maxInbound, payloadLen)
	}

	payload := make([]byte, payloadLen)
	switch n, err := io.ReadFull(c.reader, payload); {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return nil, malformed(err, "wanted %d-byte payload, read %d bytes", payloadLen, n)
	case err != nil:
		return nil, err
	}
	return payload, nil
}

// ReadMessage reads the next payload and decodes its JSON into v.
func (c *Channel) ReadMessage(v interface{}) error {
	payload, err := c.ReadRaw()
	if err != nil {
		return err
	}
	if !utf8.Valid(payload) {
		return malformed(nil, "payload is not valid UTF-8")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return malformed(err, "payload is not valid JSON")
	}
	return nil
}

// WriteRaw sends one frame containing payload.
//
// The header and payload go out in a single buffer so that a frame is never
// interleaved with anything else.  A short write is fatal and is not retried:
// the browser has most likely closed the pipe.
func (c *Channel) WriteRaw(payload []byte) error {
	if uint64(len(payload)) > uint64(c.maxOutbound) {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, len(payload), c.maxOutbound)
	}

	buf := make([]byte, headerLen+len(payload))
	c.order.PutUint32(buf[:headerLen], uint32(len(payload)))
	copy(buf[headerLen:], payload)

	for len(buf) > 0 {
		switch n, err := c.writer.Write(buf); {
		case err != nil:
			return err
		case n == 0:
			return io.ErrShortWrite
		default:
			buf = buf[n:]
		}
	}

	if f, ok := c.writer.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// WriteMessage encodes v as JSON and sends it as one frame.
func (c *Channel) WriteMessage(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	return c.WriteRaw(payload)
}

// IsClosed reports whether err marks a clean end of the stream.
func IsClosed(err error) bool {
	return errors.Is(err, ErrChannelClosed)
}
