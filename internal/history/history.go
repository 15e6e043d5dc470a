// Package history records closed prediction rounds to an append-only
// JSONL log and exports logs to Parquet for offline analysis. The
// engine never reads the log back; it has no effect on session state.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/curatorlab/gallerize/internal/profile"
	"github.com/curatorlab/gallerize/internal/ratings"
)

// Round is one closed predict→feedback round.
type Round struct {
	SessionID string    `json:"session_id"`
	ClosedAt  time.Time `json:"closed_at"`
	// ImageIDs and Feedback are parallel, in ascending id order,
	// matching the wire convention of the predict request.
	ImageIDs []int           `json:"image_ids"`
	Feedback []int           `json:"feedback"`
	Weights  profile.Weights `json:"weights"`
}

// NewRound flattens a feedback snapshot into a Round.
func NewRound(sessionID string, feedback map[int]ratings.Rating, weights profile.Weights) Round {
	ids := make([]int, 0, len(feedback))
	for id := range feedback {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	values := make([]int, len(ids))
	for i, id := range ids {
		values[i] = int(feedback[id])
	}

	return Round{
		SessionID: sessionID,
		ClosedAt:  time.Now().UTC(),
		ImageIDs:  ids,
		Feedback:  values,
		Weights:   weights,
	}
}

// Recorder appends rounds to a JSONL log file.
type Recorder struct {
	path string
}

// NewRecorder creates a recorder writing to the given path. The file is
// created on first Record.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// Path returns the log file path.
func (r *Recorder) Path() string {
	return r.path
}

// Record appends one round to the log.
func (r *Recorder) Record(round Round) error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}
	line = append(line, '\n')

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append round: %w", err)
	}
	return nil
}

// Load reads every round from a JSONL log.
func Load(path string) ([]Round, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	var rounds []Round
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var round Round
		if err := json.Unmarshal(line, &round); err != nil {
			return nil, fmt.Errorf("failed to parse round at line %d: %w", lineNum, err)
		}
		rounds = append(rounds, round)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history log: %w", err)
	}

	return rounds, nil
}
