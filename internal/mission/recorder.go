package mission

import "github.com/dlightman/minitelctl/internal/protocol/frame"

// Recorder observes the mission's exchanges for later inspection. The
// mission never depends on recorder results and a recorder can never affect
// the mission outcome.
type Recorder interface {
	RecordRequest(f frame.Frame, note string)
	RecordResponse(f frame.Frame, note string)
	RecordEvent(kind, note string, details map[string]string)
}

type nopRecorder struct{}

func (nopRecorder) RecordRequest(frame.Frame, string)             {}
func (nopRecorder) RecordResponse(frame.Frame, string)            {}
func (nopRecorder) RecordEvent(string, string, map[string]string) {}
