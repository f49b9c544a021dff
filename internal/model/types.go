package model

import (
	"encoding/json"
	"fmt"
	"os"
)

type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

type PredictionResponse struct {
	Class       string             `json:"class"`
	Confidence  float32            `json:"confidence"`
	Predictions map[string]float32 `json:"predictions"`
}

// LoadMetadata reads the JSON file that describes a model's tensors and
// class labels.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if len(metadata.Classes) == 0 {
		return Metadata{}, fmt.Errorf("metadata %s lists no classes", path)
	}
	if metadata.ImageSize <= 0 {
		return Metadata{}, fmt.Errorf("metadata %s has invalid image_size %d", path, metadata.ImageSize)
	}
	if got, want := metadata.InputSize(), 3*metadata.ImageSize*metadata.ImageSize; got != want {
		return Metadata{}, fmt.Errorf("metadata %s: input_shape holds %d values, expected %d for a %dx%d RGB image",
			path, got, want, metadata.ImageSize, metadata.ImageSize)
	}
	return metadata, nil
}

// InputSize is the number of float32 values the model takes.
func (m Metadata) InputSize() int {
	if len(m.InputShape) == 0 {
		return 0
	}
	n := 1
	for _, dim := range m.InputShape {
		n *= int(dim)
	}
	return n
}
