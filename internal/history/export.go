package history

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// parquetRound is the flattened row schema for exported rounds.
type parquetRound struct {
	SessionID string  `parquet:"session_id"`
	ClosedAt  int64   `parquet:"closed_at_ms"`
	ImageIDs  []int32 `parquet:"image_ids"`
	Feedback  []int32 `parquet:"feedback"`
	Embedding float64 `parquet:"embedding"`
	Color     float64 `parquet:"color"`
	Abstract  float64 `parquet:"abstract"`
	Noisy     float64 `parquet:"noisy"`
	Paint     float64 `parquet:"paint"`
}

// ExportParquet writes rounds to a Parquet file at the given path.
func ExportParquet(rounds []Round, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer f.Close()

	rows := make([]parquetRound, 0, len(rounds))
	for _, r := range rounds {
		rows = append(rows, parquetRound{
			SessionID: r.SessionID,
			ClosedAt:  r.ClosedAt.UnixMilli(),
			ImageIDs:  toInt32(r.ImageIDs),
			Feedback:  toInt32(r.Feedback),
			Embedding: r.Weights.Embedding,
			Color:     r.Weights.Color,
			Abstract:  r.Weights.Abstract,
			Noisy:     r.Weights.Noisy,
			Paint:     r.Weights.Paint,
		})
	}

	w := parquet.NewGenericWriter[parquetRound](f)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return nil
}

// ReadParquet loads exported rounds back, mainly for verification.
func ReadParquet(path string) ([]Round, error) {
	rows, err := parquet.ReadFile[parquetRound](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}

	rounds := make([]Round, 0, len(rows))
	for _, row := range rows {
		round := Round{
			SessionID: row.SessionID,
			ImageIDs:  toInt(row.ImageIDs),
			Feedback:  toInt(row.Feedback),
		}
		round.ClosedAt = time.UnixMilli(row.ClosedAt).UTC()
		round.Weights.Embedding = row.Embedding
		round.Weights.Color = row.Color
		round.Weights.Abstract = row.Abstract
		round.Weights.Noisy = row.Noisy
		round.Weights.Paint = row.Paint
		rounds = append(rounds, round)
	}

	return rounds, nil
}

func toInt32(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func toInt(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
