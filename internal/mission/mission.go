// Package mission drives the fixed MiniTel-Lite command sequence over one
// connection: HELLO, two PROBEs, then a best-effort STOP. The first probe is
// expected to be refused by the protocol's challenge design; only the second
// yields the override code.
package mission

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dlightman/minitelctl/internal/protocol"
	"github.com/dlightman/minitelctl/internal/protocol/frame"
	"github.com/dlightman/minitelctl/internal/protocol/sequence"
	"github.com/dlightman/minitelctl/internal/transport"
)

// State is one step of the mission lifecycle.
type State int

const (
	StateInit State = iota
	StateConnected
	StateAuthenticated
	StateProbe1Pending
	StateProbe2Pending
	StateComplete
	StateStopping
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateProbe1Pending:
		return "probe1_pending"
	case StateProbe2Pending:
		return "probe2_pending"
	case StateComplete:
		return "complete"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Conn is the byte transport the mission drives. Implementations must expose
// timeouts and disconnection as distinguished errors so failures can be
// classified.
type Conn interface {
	Send(b []byte) error
	ReceiveExact(n int) ([]byte, error)
	Close() error
}

// Dialer opens the mission connection.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context) (Conn, error) {
	return f(ctx)
}

// Result is a successful mission outcome.
type Result struct {
	OverrideCode string
	FramesSent   int
}

// Runner executes one mission at a time. State and nonce counters are owned
// exclusively by the running mission; Run resets both, so a Runner may be
// reused for a full re-run but never shared.
type Runner struct {
	dialer Dialer
	rec    Recorder

	seq        *sequence.Tracker
	state      State
	conn       Conn
	framesSent int
}

// New builds a Runner. rec may be nil; recording is then disabled.
func New(dialer Dialer, rec Recorder) *Runner {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Runner{
		dialer: dialer,
		rec:    rec,
		seq:    sequence.NewTracker(),
		state:  StateInit,
	}
}

// State reports the current lifecycle state.
func (m *Runner) State() State {
	return m.state
}

// Run executes the full command sequence and returns the retrieved override
// code. The connection is closed on every exit path. Errors are always
// *Error values carrying the failed stage and kind.
func (m *Runner) Run(ctx context.Context) (Result, error) {
	m.seq.Reset()
	m.state = StateInit
	m.framesSent = 0

	conn, err := m.dialer.Dial(ctx)
	if err != nil {
		return Result{}, m.fail(StageConnect, KindConnection, err)
	}
	m.conn = conn
	defer func() {
		_ = conn.Close()
	}()
	m.state = StateConnected
	log.Info().Msg("connection established")
	m.rec.RecordEvent("connection", "connection established", nil)

	if err := m.hello(); err != nil {
		return Result{}, err
	}
	code, err := m.probeSequence()
	if err != nil {
		return Result{}, err
	}
	m.stop()

	return Result{OverrideCode: code, FramesSent: m.framesSent}, nil
}

// hello performs the authentication exchange. The command is checked before
// the nonce so a wrong-command reply is reported as an authentication
// failure, not a nonce violation.
func (m *Runner) hello() error {
	req := frame.New(protocol.CmdHello, m.seq.NextOutbound(), nil)
	if err := m.send(StageHello, req); err != nil {
		return err
	}
	resp, err := m.receive(StageHello)
	if err != nil {
		return err
	}
	if resp.Cmd != protocol.CmdHelloAck {
		return m.fail(StageHello, KindAuthentication,
			fmt.Errorf("unexpected response %s", resp.Cmd.Name()))
	}
	if !m.seq.AcceptInbound(resp.Nonce) {
		return m.fail(StageHello, KindNonce,
			fmt.Errorf("nonce %d, expected %d", resp.Nonce, m.seq.Expected()))
	}
	m.state = StateAuthenticated
	log.Info().Msg("authentication complete")
	return nil
}

func (m *Runner) probeSequence() (string, error) {
	m.state = StateProbe1Pending
	first, err := m.exchange(StageProbe1, protocol.CmdProbe)
	if err != nil {
		return "", err
	}
	switch first.Cmd {
	case protocol.CmdProbeFailed:
		log.Info().Msg("first probe refused as expected")
	case protocol.CmdProbeOK:
		// Unusual but tolerated: the challenge design may allow an early
		// success. Flagged, not fatal.
		log.Warn().Msg("first probe succeeded unexpectedly")
		m.rec.RecordEvent("anomaly", "first probe succeeded unexpectedly", nil)
	default:
		return "", m.fail(StageProbe1, KindProtocol,
			fmt.Errorf("unexpected response to first probe: %s", first.Cmd.Name()))
	}

	m.state = StateProbe2Pending
	second, err := m.exchange(StageProbe2, protocol.CmdProbe)
	if err != nil {
		return "", err
	}
	switch second.Cmd {
	case protocol.CmdProbeOK:
		code := strings.TrimSpace(renderText(second.Payload))
		m.state = StateComplete
		log.Info().Str("override_code", code).Msg("override code retrieved")
		return code, nil
	case protocol.CmdProbeFailed:
		return "", m.fail(StageProbe2, KindMission, errors.New("second probe failed"))
	default:
		return "", m.fail(StageProbe2, KindProtocol,
			fmt.Errorf("unexpected response to second probe: %s", second.Cmd.Name()))
	}
}

// stop terminates the session. The mission outcome is already decided here,
// so every failure is downgraded to a logged warning.
func (m *Runner) stop() {
	m.state = StateStopping
	req := frame.New(protocol.CmdStop, m.seq.NextOutbound(), nil)
	wire, err := frame.Encode(req)
	if err != nil {
		m.warn("stop frame encode failed", err)
		return
	}
	if err := m.conn.Send(wire); err != nil {
		m.warn("stop send failed", err)
		return
	}
	m.framesSent++
	log.Info().Stringer("frame", req).Msg("sent frame")
	m.rec.RecordRequest(req, "sent "+req.Cmd.Name())

	resp, _, err := m.readFrame()
	if err != nil {
		m.warn("stop response not received", err)
		return
	}
	if !m.seq.AcceptInbound(resp.Nonce) {
		m.warn("stop response nonce mismatch",
			fmt.Errorf("nonce %d, expected %d", resp.Nonce, m.seq.Expected()))
	}
	if resp.Cmd == protocol.CmdStopOK {
		log.Info().Msg("stop acknowledged")
	} else {
		m.warn("unexpected response to stop", errors.New(resp.Cmd.Name()))
	}
}

// exchange sends one client frame with the next outbound nonce and returns
// the decoded reply after nonce validation. Nonce failure is always fatal,
// independent of the reply command.
func (m *Runner) exchange(stage Stage, cmd protocol.Command) (frame.Frame, error) {
	req := frame.New(cmd, m.seq.NextOutbound(), nil)
	if err := m.send(stage, req); err != nil {
		return frame.Frame{}, err
	}
	resp, err := m.receive(stage)
	if err != nil {
		return frame.Frame{}, err
	}
	if !m.seq.AcceptInbound(resp.Nonce) {
		return frame.Frame{}, m.fail(stage, KindNonce,
			fmt.Errorf("nonce %d, expected %d", resp.Nonce, m.seq.Expected()))
	}
	return resp, nil
}

func (m *Runner) send(stage Stage, f frame.Frame) error {
	wire, err := frame.Encode(f)
	if err != nil {
		return m.fail(stage, KindProtocol, err)
	}
	if err := m.conn.Send(wire); err != nil {
		return m.fail(stage, classifySend(err), err)
	}
	m.framesSent++
	log.Info().Stringer("frame", f).Msg("sent frame")
	m.rec.RecordRequest(f, "sent "+f.Cmd.Name())
	return nil
}

func (m *Runner) receive(stage Stage) (frame.Frame, error) {
	f, kind, err := m.readFrame()
	if err != nil {
		return frame.Frame{}, m.fail(stage, kind, err)
	}
	return f, nil
}

// readFrame reads the 2-byte length prefix, then exactly that many more
// bytes, and decodes the concatenation.
func (m *Runner) readFrame() (frame.Frame, Kind, error) {
	prefix, err := m.conn.ReceiveExact(frame.PrefixLen)
	if err != nil {
		return frame.Frame{}, classifyReceive(err), err
	}
	length := int(binary.BigEndian.Uint16(prefix))
	if length == 0 {
		// A zero declared length means the server sent nothing; the protocol
		// treats it as the end of the stream, never as an empty frame.
		err := fmt.Errorf("%w: zero-length frame", transport.ErrDisconnected)
		return frame.Frame{}, KindDisconnected, err
	}
	text, err := m.conn.ReceiveExact(length)
	if err != nil {
		return frame.Frame{}, classifyReceive(err), err
	}

	wire := make([]byte, 0, frame.PrefixLen+length)
	wire = append(wire, prefix...)
	wire = append(wire, text...)
	f, err := frame.Decode(wire)
	if err != nil {
		if errors.Is(err, frame.ErrIntegrityMismatch) {
			return frame.Frame{}, KindIntegrity, err
		}
		return frame.Frame{}, KindDecode, err
	}

	log.Info().Stringer("frame", f).Msg("received frame")
	m.rec.RecordResponse(f, "received "+f.Cmd.Name())
	return f, "", nil
}

func (m *Runner) fail(stage Stage, kind Kind, err error) *Error {
	m.state = StateFailed
	e := &Error{Stage: stage, Kind: kind, Err: err}
	log.Error().Str("stage", string(stage)).Str("kind", string(kind)).Err(err).
		Msg("mission step failed")
	m.rec.RecordEvent("error", e.Error(), map[string]string{
		"stage": string(stage),
		"kind":  string(kind),
	})
	return e
}

func (m *Runner) warn(note string, err error) {
	log.Warn().Err(err).Msg(note)
	m.rec.RecordEvent("warning", note+": "+err.Error(), nil)
}

func classifySend(err error) Kind {
	if errors.Is(err, transport.ErrTimeout) {
		return KindTimeout
	}
	return KindSend
}

func classifyReceive(err error) Kind {
	switch {
	case errors.Is(err, transport.ErrTimeout):
		return KindTimeout
	case errors.Is(err, transport.ErrDisconnected):
		return KindDisconnected
	default:
		return KindReceive
	}
}

// renderText decodes payload bytes as UTF-8 text, replacing invalid bytes
// instead of rejecting them.
func renderText(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
