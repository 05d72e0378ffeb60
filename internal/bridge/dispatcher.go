package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Rhishavhere/codeblink/internal/errors"
	"github.com/Rhishavhere/codeblink/internal/logging"
)

// maxRequestBytes bounds one request line. File content travels inline.
const maxRequestBytes = 32 << 20

// Request is one incoming envelope.
type Request struct {
	ID     string          `json:"id"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers the Request with the same ID. Result holds the
// operation's typed response, including its own error field. Error is set
// only when the envelope itself was unusable.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  *Fault `json:"error,omitempty"`
}

// EventMessage is an out-of-band notification.
type EventMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Ops returns the operation allowlist.
func Ops() []string {
	return []string{OpGetCredential, OpOpenTextFile, OpChooseSavePath, OpWriteFile, OpLaunchScript}
}

// Dispatcher routes JSON envelopes to a Surface.
type Dispatcher struct {
	surface *Surface
	logger  *logging.Logger
}

// NewDispatcher creates a Dispatcher for s.
func NewDispatcher(s *Surface) *Dispatcher {
	if s == nil {
		panic("bridge: Surface must not be nil")
	}
	return &Dispatcher{surface: s, logger: s.logger.WithComponent("dispatcher")}
}

// Handle decodes one request line and runs it.
func (d *Dispatcher) Handle(ctx context.Context, line []byte) Response {
	resp, after := d.handle(ctx, line)
	if after != nil {
		after()
	}
	return resp
}

// Dispatch runs req. Operations outside Ops() are rejected.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	resp, after := d.dispatch(ctx, req)
	if after != nil {
		after()
	}
	return resp
}

// handle is Handle without the follow-up step. after, when non-nil, must run
// once the response has been delivered.
func (d *Dispatcher) handle(ctx context.Context, line []byte) (resp Response, after func()) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{Error: &Fault{Kind: errors.KindInvalidInput, Message: fmt.Sprintf("malformed request: %v", err)}}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch panicked", "op", req.Op, "panic", fmt.Sprint(r))
			resp, after = Response{ID: req.ID, Error: &Fault{Kind: errors.KindInternal, Message: "internal error"}}, nil
		}
	}()
	return d.dispatch(ctx, req)
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) (Response, func()) {
	if !slices.Contains(Ops(), req.Op) {
		err := fmt.Errorf("%w: %q", errors.ErrUnknownOperation, req.Op)
		d.logger.Warn("rejected request", "op", req.Op)
		return Response{ID: req.ID, Error: &Fault{Kind: errors.KindInvalidInput, Message: err.Error()}}, nil
	}

	s := d.surface
	switch req.Op {
	case OpGetCredential:
		return Response{ID: req.ID, Result: s.GetCredential()}, nil
	case OpOpenTextFile:
		return Response{ID: req.ID, Result: s.OpenTextFile(ctx)}, nil
	case OpChooseSavePath:
		var p ChooseSavePathRequest
		if f := decodeParams(req.Params, &p); f != nil {
			return Response{ID: req.ID, Error: f}, nil
		}
		return Response{ID: req.ID, Result: s.ChooseSavePath(ctx, p)}, nil
	case OpWriteFile:
		var p WriteFileRequest
		if f := decodeParams(req.Params, &p); f != nil {
			return Response{ID: req.ID, Error: f}, nil
		}
		return Response{ID: req.ID, Result: s.WriteFile(p)}, nil
	default: // OpLaunchScript
		var p LaunchScriptRequest
		if f := decodeParams(req.Params, &p); f != nil {
			return Response{ID: req.ID, Error: f}, nil
		}
		// The relay starts after the response so the launch ID is on the
		// wire before its terminal_closed event.
		result, relay := s.launchScript(p)
		return Response{ID: req.ID, Result: result}, relay
	}
}

func decodeParams(raw json.RawMessage, v any) *Fault {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &Fault{Kind: errors.KindInvalidInput, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

// Serve reads newline-delimited requests from r and writes responses and
// events to w until r is exhausted or ctx is done. Requests run
// concurrently; output lines never interleave. Blank lines are ignored.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	write := func(v any) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(v)
	}

	unsubscribe := d.surface.OnTerminalClosed(func(tc TerminalClosed) {
		if err := write(EventMessage{Event: EventTerminalClosed, Payload: tc}); err != nil {
			d.logger.Warn("failed to write event", "launch_id", tc.LaunchID, "error", err)
		}
	})
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)

	for scanner.Scan() {
		if gctx.Err() != nil {
			break
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		line = bytes.Clone(line)
		g.Go(func() error {
			resp, after := d.handle(gctx, line)
			err := write(resp)
			if after != nil {
				after()
			}
			return err
		})
	}

	err := g.Wait()
	if err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return fmt.Errorf("read request: %w", scanErr)
	}
	return ctx.Err()
}
