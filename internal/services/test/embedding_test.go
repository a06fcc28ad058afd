package services_test

import (
	"math"
	"testing"

	"github.com/bionicotaku/lingo-services-feed/internal/services"
)

func TestWeightedCentroid(t *testing.T) {
	got := services.WeightedCentroid([]services.WeightedVector{
		{Vector: []float32{1, 0}, Weight: 1},
		{Vector: []float32{0, 1}, Weight: 3},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 dims, got %d", len(got))
	}
	if math.Abs(float64(got[0])-0.25) > 1e-6 || math.Abs(float64(got[1])-0.75) > 1e-6 {
		t.Fatalf("unexpected centroid: %v", got)
	}
}

func TestWeightedCentroidSkipsInvalidEntries(t *testing.T) {
	got := services.WeightedCentroid([]services.WeightedVector{
		{Vector: nil, Weight: 5},
		{Vector: []float32{1, 1}, Weight: 0},
		{Vector: []float32{1, 1, 1}, Weight: 2}, // 维度不一致
		{Vector: []float32{2, 4, 6}, Weight: 1},
	})
	// 首条有效向量决定维度：三维的 {1,1,1} 先出现则它参与，二维条目被跳过。
	if len(got) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(got))
	}
}

func TestWeightedCentroidNoSignal(t *testing.T) {
	if got := services.WeightedCentroid(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := services.WeightedCentroid([]services.WeightedVector{{Vector: nil, Weight: 3}}); got != nil {
		t.Fatalf("expected nil when all entries invalid, got %v", got)
	}
}
