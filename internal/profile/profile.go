// Package profile holds the operator-supplied weight vector forwarded
// opaquely to the predictor.
package profile

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights is the predictor weight vector. Values are conventionally in
// [0,1] but are forwarded as given.
type Weights struct {
	Embedding float64 `yaml:"embedding"`
	Color     float64 `yaml:"color"`
	Abstract  float64 `yaml:"abstract"`
	Noisy     float64 `yaml:"noisy"`
	Paint     float64 `yaml:"paint"`
}

// Default returns a neutral weight vector.
func Default() Weights {
	return Weights{
		Embedding: 0.5,
		Color:     0.5,
		Abstract:  0.5,
		Noisy:     0.5,
		Paint:     0.5,
	}
}

// Load reads a weights profile from a YAML file. Fields absent from the
// file keep their Default() value.
func Load(path string) (Weights, error) {
	w := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("failed to read weights profile: %w", err)
	}

	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("failed to parse weights profile: %w", err)
	}

	for name, v := range map[string]float64{
		"embedding": w.Embedding,
		"color":     w.Color,
		"abstract":  w.Abstract,
		"noisy":     w.Noisy,
		"paint":     w.Paint,
	} {
		if v < 0 || v > 1 {
			slog.Warn("Weight outside conventional [0,1] range", "weight", name, "value", v)
		}
	}

	return w, nil
}
