package bridge

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxMessageSize is the largest inbound native message accepted (1 MiB,
// the limit Chrome applies to messages sent to a host).
const MaxMessageSize = 1 << 20

// ErrMessageTooLarge is returned for frames above MaxMessageSize.
var ErrMessageTooLarge = errors.New("native message too large")

// ReadFrame reads one length-prefixed frame: a 4-byte little-endian
// length followed by that many bytes of UTF-8 JSON. It returns io.EOF at
// a clean end of stream.
func ReadFrame(r io.Reader) ([]byte, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("reading frame length: %w", err)
		}
		return nil, err
	}
	if size > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading frame body: %w", err)
	}
	return buf, nil
}

// WriteFrame writes v as one length-prefixed JSON frame.
func WriteFrame(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("writing frame length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing frame body: %w", err)
	}
	return nil
}

// Host runs the native messaging protocol over a reader/writer pair,
// normally the process's stdin and stdout.
type Host struct {
	handler *Handler
	logger  *zap.Logger
}

// NewHost creates a host dispatching to handler.
func NewHost(handler *Handler, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{handler: handler, logger: logger.With(zap.String("component", "native"))}
}

// Serve reads messages until r is exhausted. Each message is handled on
// its own goroutine; replies are written whole, one at a time, in
// completion order. Serve returns after every started message has been
// answered. In-flight translations are not cancelled when ctx is.
func (h *Host) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	var mu sync.Mutex
	write := func(reply Reply) error {
		mu.Lock()
		defer mu.Unlock()
		return WriteFrame(w, reply)
	}

	g := new(errgroup.Group)
	msgCtx := context.WithoutCancel(ctx)

	var readErr error
	for {
		if ctx.Err() != nil {
			readErr = ctx.Err()
			break
		}
		frame, err := ReadFrame(r)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			h.logger.Warn("invalid message", zap.Error(err))
			if err := write(Reply{Error: fmt.Sprintf("invalid message: %v", err)}); err != nil {
				readErr = err
				break
			}
			continue
		}

		g.Go(func() error {
			return write(h.handler.Handle(msgCtx, msg))
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if readErr != nil && !errors.Is(readErr, context.Canceled) {
		h.logger.Error("native messaging stopped", zap.Error(readErr))
	}
	return readErr
}
