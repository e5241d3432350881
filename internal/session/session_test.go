package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlightman/minitelctl/internal/protocol"
	"github.com/dlightman/minitelctl/internal/protocol/frame"
)

// fixedClock makes recorded offsets deterministic.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	calls := 0
	return func() time.Time {
		calls++
		return start.Add(time.Duration(calls) * step)
	}
}

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r := NewRecorder()
	r.now = fixedClock(r.start, 100*time.Millisecond)
	return r
}

func TestRecorderSessionID(t *testing.T) {
	r := NewRecorder()
	assert.True(t, strings.HasPrefix(r.ID(), "session_"), "id %q", r.ID())
}

func TestRecordAndSaveRoundTrip(t *testing.T) {
	r := newTestRecorder(t)

	hello := frame.New(protocol.CmdHello, 0, nil)
	ack := frame.New(protocol.CmdHelloAck, 1, nil)
	ok := frame.New(protocol.CmdProbeOK, 5, []byte("RESULT-1983"))

	r.RecordRequest(hello, "sent HELLO")
	r.RecordResponse(ack, "received HELLO_ACK")
	r.RecordResponse(ok, "received PROBE_OK")
	r.RecordEvent("error", "mission aborted", map[string]string{"stage": "probe-2"})

	dir := t.TempDir()
	path, err := r.Save(dir)
	require.NoError(t, err)

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, r.ID(), doc.SessionID)
	assert.Equal(t, ProtocolVersion, doc.Metadata.ProtocolVersion)
	assert.Equal(t, 4, doc.TotalInteractions)
	require.Len(t, doc.Interactions, 4)

	req := doc.Interactions[0]
	assert.Equal(t, "request", req.Type)
	assert.Equal(t, "client -> server", req.Direction)
	assert.Equal(t, "HELLO", req.Command)
	assert.Equal(t, "0x01", req.CommandCode)
	assert.Equal(t, uint32(0), req.Nonce)
	assert.Equal(t, frame.EncodedLen(hello), req.FrameLength)

	resp := doc.Interactions[2]
	assert.Equal(t, "response", resp.Type)
	assert.Equal(t, "RESULT-1983", resp.Payload)
	assert.Equal(t, 11, resp.PayloadLength)

	ev := doc.Interactions[3]
	assert.Equal(t, "event", ev.Type)
	assert.Equal(t, "error", ev.EventType)
	assert.Equal(t, map[string]string{"stage": "probe-2"}, ev.Details)

	// Offsets grow monotonically from session start.
	for i := 1; i < len(doc.Interactions); i++ {
		assert.Greater(t, doc.Interactions[i].RelativeTime, doc.Interactions[i-1].RelativeTime)
	}
}

func TestRecorderSummary(t *testing.T) {
	r := newTestRecorder(t)
	r.RecordRequest(frame.New(protocol.CmdHello, 0, nil), "")
	r.RecordRequest(frame.New(protocol.CmdProbe, 2, nil), "")
	r.RecordResponse(frame.New(protocol.CmdHelloAck, 1, nil), "")
	r.RecordEvent("connection", "connected", nil)

	s := r.Summary()
	assert.Equal(t, 4, s.TotalInteractions)
	assert.Equal(t, 2, s.Requests)
	assert.Equal(t, 1, s.Responses)
	assert.Equal(t, 1, s.Events)
	assert.Equal(t, []string{"HELLO", "PROBE"}, s.CommandsSent)
	assert.Equal(t, []string{"HELLO_ACK"}, s.ResponsesReceived)
}

func writeSessionDoc(t *testing.T, dir, id string, start time.Time) {
	t.Helper()
	doc := Session{
		SessionID:         id,
		StartTime:         start,
		EndTime:           start.Add(time.Second),
		Duration:          1.0,
		TotalInteractions: 1,
		Metadata:          Metadata{ProtocolVersion: ProtocolVersion, ClientVersion: ClientVersion},
		Interactions:      []Interaction{{Type: "event", EventType: "connection"}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644))
}

func TestListNewestFirstAndSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	writeSessionDoc(t, dir, "session_old", base)
	writeSessionDoc(t, dir, "session_new", base.Add(time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	infos, err := List(dir)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "session_new", infos[0].SessionID)
	assert.Equal(t, "session_old", infos[1].SessionID)
}

func TestListMissingDirIsEmpty(t *testing.T) {
	infos, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}
