package quad

import (
	"fmt"
	"math/rand"
	"testing"
)

// scatterPoints creates n random points within a geographic bounding box
func scatterPoints(n int, minX, maxX, minY, maxY float64) []Point {
	// Use deterministic seed for reproducibility
	r := rand.New(rand.NewSource(42))

	points := make([]Point, n)
	for i := range points {
		points[i] = Point{
			Row:   i,
			X:     minX + r.Float64()*(maxX-minX),
			Y:     minY + r.Float64()*(maxY-minY),
			Value: r.Float64() * 100,
		}
	}
	return points
}

func benchmarkPartition(b *testing.B, numPoints, nmin, nmax int) {
	points := scatterPoints(numPoints, -125.0, -67.0, 25.0, 49.0)
	ix, err := NewIndex(points)
	if err != nil {
		b.Fatalf("NewIndex failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ix.Partition(nmin, nmax); err != nil {
			b.Fatalf("Partition failed: %v", err)
		}
	}
}

func BenchmarkPartition(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("points=%d", size), func(b *testing.B) {
			benchmarkPartition(b, size, 20, size/10)
		})
	}
}

func BenchmarkIndexBuild(b *testing.B) {
	points := scatterPoints(100000, -125.0, -67.0, 25.0, 49.0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewIndex(points); err != nil {
			b.Fatalf("NewIndex failed: %v", err)
		}
	}
}
