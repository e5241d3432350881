// Package session records client/server interactions during a mission and
// persists them as flat JSON documents for the replay viewer.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dlightman/minitelctl/internal/protocol/frame"
)

const (
	ProtocolVersion = "MiniTel-Lite v3.0"
	ClientVersion   = "1.0.0"
)

// Interaction is one recorded exchange step or notable event.
type Interaction struct {
	Timestamp     time.Time         `json:"timestamp"`
	RelativeTime  float64           `json:"relative_time"`
	Type          string            `json:"type"`
	Direction     string            `json:"direction,omitempty"`
	Command       string            `json:"command,omitempty"`
	CommandCode   string            `json:"command_code,omitempty"`
	Nonce         uint32            `json:"nonce"`
	PayloadLength int               `json:"payload_length"`
	Payload       string            `json:"payload,omitempty"`
	Description   string            `json:"description,omitempty"`
	FrameLength   int               `json:"raw_frame_length,omitempty"`
	EventType     string            `json:"event_type,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// Metadata describes the recording client.
type Metadata struct {
	ProtocolVersion string `json:"protocol_version"`
	ClientVersion   string `json:"client_version"`
	RecordedAt      string `json:"recorded_at"`
}

// Session is the persisted session document.
type Session struct {
	SessionID         string        `json:"session_id"`
	StartTime         time.Time     `json:"start_time"`
	EndTime           time.Time     `json:"end_time"`
	Duration          float64       `json:"duration"`
	TotalInteractions int           `json:"total_interactions"`
	Metadata          Metadata      `json:"metadata"`
	Interactions      []Interaction `json:"interactions"`
}

// Recorder accumulates interactions for one mission run. It satisfies the
// mission recorder port and is not safe for concurrent use; the mission is
// single-threaded by design.
type Recorder struct {
	id           string
	start        time.Time
	now          func() time.Time
	interactions []Interaction
}

func NewRecorder() *Recorder {
	now := time.Now()
	short := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return &Recorder{
		id:    fmt.Sprintf("session_%s_%s", now.Format("20060102_150405"), short),
		start: now,
		now:   time.Now,
	}
}

func (r *Recorder) ID() string {
	return r.id
}

func (r *Recorder) RecordRequest(f frame.Frame, note string) {
	r.interactions = append(r.interactions, r.frameInteraction(f, "request", "client -> server", note))
}

func (r *Recorder) RecordResponse(f frame.Frame, note string) {
	r.interactions = append(r.interactions, r.frameInteraction(f, "response", "server -> client", note))
}

func (r *Recorder) RecordEvent(kind, note string, details map[string]string) {
	ts := r.now()
	r.interactions = append(r.interactions, Interaction{
		Timestamp:    ts,
		RelativeTime: ts.Sub(r.start).Seconds(),
		Type:         "event",
		EventType:    kind,
		Description:  note,
		Details:      details,
	})
}

func (r *Recorder) frameInteraction(f frame.Frame, typ, direction, note string) Interaction {
	ts := r.now()
	return Interaction{
		Timestamp:     ts,
		RelativeTime:  ts.Sub(r.start).Seconds(),
		Type:          typ,
		Direction:     direction,
		Command:       f.Cmd.Name(),
		CommandCode:   fmt.Sprintf("0x%02x", uint8(f.Cmd)),
		Nonce:         f.Nonce,
		PayloadLength: len(f.Payload),
		Payload:       renderText(f.Payload),
		Description:   note,
		FrameLength:   frame.EncodedLen(f),
	}
}

// Save writes the recorded session as pretty-printed JSON under dir and
// returns the file path.
func (r *Recorder) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("session: create dir %s: %w", dir, err)
	}

	end := r.now()
	doc := Session{
		SessionID:         r.id,
		StartTime:         r.start,
		EndTime:           end,
		Duration:          end.Sub(r.start).Seconds(),
		TotalInteractions: len(r.interactions),
		Metadata: Metadata{
			ProtocolVersion: ProtocolVersion,
			ClientVersion:   ClientVersion,
			RecordedAt:      end.Format(time.RFC3339),
		},
		Interactions: r.interactions,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("session: marshal: %w", err)
	}
	path := filepath.Join(dir, r.id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("session: write %s: %w", path, err)
	}
	return path, nil
}

// Summary aggregates the current session for end-of-run reporting.
type Summary struct {
	SessionID         string
	Duration          float64
	TotalInteractions int
	Requests          int
	Responses         int
	Events            int
	CommandsSent      []string
	ResponsesReceived []string
}

func (r *Recorder) Summary() Summary {
	s := Summary{
		SessionID:         r.id,
		Duration:          r.now().Sub(r.start).Seconds(),
		TotalInteractions: len(r.interactions),
	}
	for _, i := range r.interactions {
		switch i.Type {
		case "request":
			s.Requests++
			s.CommandsSent = append(s.CommandsSent, i.Command)
		case "response":
			s.Responses++
			s.ResponsesReceived = append(s.ResponsesReceived, i.Command)
		case "event":
			s.Events++
		}
	}
	return s
}

func renderText(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return strings.ToValidUTF8(string(b), "�")
}
