package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Trajectory is the durable record of one run: the ordered conversation, the
// outcome, and a telemetry snapshot. Created fresh per run and never updated
// after being written; one file per run.
type Trajectory struct {
	RunID      string                 `json:"run_id"`
	Task       string                 `json:"task"`
	Messages   []Message              `json:"messages"`
	ExitStatus ExitStatus             `json:"exit_status"`
	Result     string                 `json:"result"`
	ExtraInfo  map[string]interface{} `json:"extra_info,omitempty"`
	Telemetry  Telemetry              `json:"telemetry"`
	StartedAt  time.Time              `json:"started_at"`
	EndedAt    time.Time              `json:"ended_at"`
}

// TrajectoryRecorder writes one trajectory file per run and, best-effort,
// indexes the run in SQLite. It owns no run state; it is a pure sink invoked
// once on every exit path.
type TrajectoryRecorder struct {
	Dir    string
	Logger *Logger
	Index  *RunIndex
}

func NewTrajectoryRecorder(dir string, logger *Logger, index *RunIndex) *TrajectoryRecorder {
	return &TrajectoryRecorder{Dir: dir, Logger: logger, Index: index}
}

// Persist writes the trajectory to path, or to <Dir>/<run id>.json when path
// is empty, and records it in the run index. An index failure is logged and
// swallowed; the file write is the one that matters.
func (r *TrajectoryRecorder) Persist(t Trajectory, path string) (string, error) {
	if path == "" {
		path = filepath.Join(r.Dir, t.RunID+".json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	if r.Index != nil {
		if err := r.Index.Record(t, path); err != nil {
			r.Logger.Warn("run index update failed", map[string]interface{}{"error": err.Error()})
		}
	}
	r.Logger.Info("trajectory written", map[string]interface{}{
		"path":        path,
		"exit_status": string(t.ExitStatus),
	})
	return path, nil
}
