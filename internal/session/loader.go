package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Info is one entry of a session directory listing.
type Info struct {
	Filename          string
	Path              string
	SessionID         string
	StartTime         time.Time
	Duration          float64
	TotalInteractions int
	RecordedAt        string
}

// Load reads one recorded session document.
func Load(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, fmt.Errorf("session: read %s: %w", path, err)
	}
	var doc Session
	if err := json.Unmarshal(data, &doc); err != nil {
		return Session{}, fmt.Errorf("session: parse %s: %w", path, err)
	}
	return doc, nil
}

// List returns the sessions recorded under dir, newest first. Files that are
// not valid session documents are skipped. A missing directory is an empty
// listing, not an error.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: list %s: %w", dir, err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		doc, err := Load(path)
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Filename:          e.Name(),
			Path:              path,
			SessionID:         doc.SessionID,
			StartTime:         doc.StartTime,
			Duration:          doc.Duration,
			TotalInteractions: doc.TotalInteractions,
			RecordedAt:        doc.Metadata.RecordedAt,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartTime.After(infos[j].StartTime)
	})
	return infos, nil
}
