package protocol

import "fmt"

// Command is the 1-byte frame command code.
type Command uint8

// Client-originated commands.
const (
	CmdHello Command = 0x01
	CmdProbe Command = 0x02
	CmdStop  Command = 0x04
)

// Server-originated commands.
const (
	CmdHelloAck    Command = 0x81
	CmdProbeFailed Command = 0x82
	CmdProbeOK     Command = 0x83
	CmdStopOK      Command = 0x84
)

var commandNames = map[Command]string{
	CmdHello:       "HELLO",
	CmdProbe:       "PROBE",
	CmdStop:        "STOP",
	CmdHelloAck:    "HELLO_ACK",
	CmdProbeFailed: "PROBE_FAILED",
	CmdProbeOK:     "PROBE_OK",
	CmdStopOK:      "STOP_OK",
}

// Name returns the wire name for a command code. Unknown codes are
// reported, never rejected; legality is decided by the mission layer.
func (c Command) Name() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_0x%02X", uint8(c))
}
