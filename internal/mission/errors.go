package mission

import "fmt"

// Kind classifies a mission failure so callers can differentiate "server
// unreachable" from "server dropped mid-exchange" from "no response within
// the deadline" without string matching.
type Kind string

const (
	KindConnection     Kind = "connection"
	KindSend           Kind = "send"
	KindReceive        Kind = "receive"
	KindTimeout        Kind = "timeout"
	KindDisconnected   Kind = "disconnected"
	KindDecode         Kind = "decode"
	KindIntegrity      Kind = "integrity"
	KindNonce          Kind = "nonce"
	KindAuthentication Kind = "authentication"
	KindProtocol       Kind = "protocol"
	KindMission        Kind = "mission"
)

// Stage names the protocol step a failure occurred in.
type Stage string

const (
	StageConnect Stage = "connect"
	StageHello   Stage = "hello"
	StageProbe1  Stage = "probe-1"
	StageProbe2  Stage = "probe-2"
	StageStop    Stage = "stop"
)

// Error is one classified, fatal mission failure. Decoding, integrity, and
// nonce errors are never recovered locally; the sole exception is the STOP
// exchange, which never produces an Error at all.
type Error struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mission: %s failed (%s): %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("mission: %s failed (%s)", e.Stage, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}
