package embedding

import (
	"context"
	"math"
)

// Provider generates a vector representation of a text
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// normalizeVector scales a vector to unit length so cosine similarity reduces to a dot product
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
