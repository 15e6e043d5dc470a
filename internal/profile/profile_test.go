package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want Weights
	}{
		{
			name: "all fields",
			yaml: "embedding: 0.9\ncolor: 0.1\nabstract: 0.2\nnoisy: 0.3\npaint: 0.4\n",
			want: Weights{Embedding: 0.9, Color: 0.1, Abstract: 0.2, Noisy: 0.3, Paint: 0.4},
		},
		{
			name: "missing fields keep defaults",
			yaml: "embedding: 1.0\n",
			want: Weights{Embedding: 1.0, Color: 0.5, Abstract: 0.5, Noisy: 0.5, Paint: 0.5},
		},
		{
			name: "empty file keeps all defaults",
			yaml: "",
			want: Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeProfile(t, tt.yaml))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Expected an error for a missing profile")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeProfile(t, "embedding: [not a number"))
	if err == nil {
		t.Fatal("Expected an error for malformed YAML")
	}
}
