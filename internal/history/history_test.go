package history

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/curatorlab/gallerize/internal/profile"
	"github.com/curatorlab/gallerize/internal/ratings"
)

func TestNewRoundFlattensFeedbackInIDOrder(t *testing.T) {
	feedback := map[int]ratings.Rating{
		3: ratings.Dislike,
		1: ratings.Like,
		2: ratings.Unrated,
	}

	round := NewRound("s1", feedback, profile.Default())

	if round.SessionID != "s1" {
		t.Errorf("Expected session s1, got %q", round.SessionID)
	}
	if !reflect.DeepEqual(round.ImageIDs, []int{1, 2, 3}) {
		t.Errorf("Expected ids [1 2 3], got %v", round.ImageIDs)
	}
	if !reflect.DeepEqual(round.Feedback, []int{1, -1, 0}) {
		t.Errorf("Expected feedback [1 -1 0], got %v", round.Feedback)
	}
	if round.ClosedAt.IsZero() {
		t.Error("Expected a close timestamp")
	}
}

func TestRecorderAppendsAndLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rounds.jsonl")
	r := NewRecorder(path)

	first := Round{
		SessionID: "s1",
		ClosedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		ImageIDs:  []int{1, 2},
		Feedback:  []int{1, 0},
		Weights:   profile.Weights{Embedding: 0.9},
	}
	second := Round{
		SessionID: "s2",
		ClosedAt:  time.Date(2025, 3, 1, 12, 5, 0, 0, time.UTC),
		ImageIDs:  []int{3},
		Feedback:  []int{-1},
	}

	if err := r.Record(first); err != nil {
		t.Fatalf("Failed to record: %v", err)
	}
	if err := r.Record(second); err != nil {
		t.Fatalf("Failed to record: %v", err)
	}

	rounds, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("Expected 2 rounds, got %d", len(rounds))
	}
	if !reflect.DeepEqual(rounds[0], first) {
		t.Errorf("Expected first round %+v, got %+v", first, rounds[0])
	}
	if rounds[1].SessionID != "s2" {
		t.Errorf("Expected second round s2, got %q", rounds[1].SessionID)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err == nil {
		t.Fatal("Expected an error for a missing log")
	}
}

func TestExportParquet(t *testing.T) {
	rounds := []Round{
		{
			SessionID: "s1",
			ClosedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			ImageIDs:  []int{1, 2, 3},
			Feedback:  []int{1, 0, -1},
			Weights:   profile.Weights{Embedding: 0.9, Color: 0.1, Abstract: 0.2, Noisy: 0.3, Paint: 0.4},
		},
		{
			SessionID: "s2",
			ClosedAt:  time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC),
			ImageIDs:  []int{4},
			Feedback:  []int{1},
		},
	}

	path := filepath.Join(t.TempDir(), "rounds.parquet")
	if err := ExportParquet(rounds, path); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	got, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}
	if got[0].SessionID != "s1" {
		t.Errorf("Expected session s1, got %q", got[0].SessionID)
	}
	if !reflect.DeepEqual(got[0].ImageIDs, []int{1, 2, 3}) {
		t.Errorf("Expected ids [1 2 3], got %v", got[0].ImageIDs)
	}
	if !reflect.DeepEqual(got[0].Feedback, []int{1, 0, -1}) {
		t.Errorf("Expected feedback [1 0 -1], got %v", got[0].Feedback)
	}
	if got[0].Weights.Embedding != 0.9 {
		t.Errorf("Expected embedding weight 0.9, got %f", got[0].Weights.Embedding)
	}
	if !got[0].ClosedAt.Equal(rounds[0].ClosedAt) {
		t.Errorf("Expected close time %v, got %v", rounds[0].ClosedAt, got[0].ClosedAt)
	}
}
