package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/hehuanshu96/geoplot/quad"
)

func snapshotPoints() []Point {
	return []Point{
		{
			ID: 1, X: -73.98, Y: 40.74,
			Metrics:  map[string]float64{"injuries": 2},
			Metadata: map[string]interface{}{"borough": "Manhattan"},
		},
		{
			ID: 2, X: -73.95, Y: 40.65,
			Metrics: map[string]float64{"injuries": 0, "fatalities": 1},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.zst")

	ds := New("collisions", snapshotPoints())
	if err := ds.SaveCompressed(path); err != nil {
		t.Fatalf("SaveCompressed failed: %v", err)
	}

	back, err := LoadCompressed(path)
	if err != nil {
		t.Fatalf("LoadCompressed failed: %v", err)
	}

	if back.ID != "collisions" {
		t.Errorf("Expected id collisions, got %s", back.ID)
	}
	if len(back.Points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(back.Points))
	}
	if back.Points[0].X != -73.98 || back.Points[0].Y != 40.74 {
		t.Errorf("Unexpected first coordinate: (%f,%f)", back.Points[0].X, back.Points[0].Y)
	}
	if back.Points[0].Metrics["injuries"] != 2 {
		t.Errorf("Expected injuries 2, got %f", back.Points[0].Metrics["injuries"])
	}
	if back.Points[0].Metadata["borough"] != "Manhattan" {
		t.Errorf("Expected borough metadata, got %v", back.Points[0].Metadata["borough"])
	}
	if back.Points[1].Metrics["fatalities"] != 1 {
		t.Errorf("Expected fatalities 1, got %f", back.Points[1].Metrics["fatalities"])
	}
}

func TestMMapRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.bin")

	ds := New("collisions", snapshotPoints())
	if err := ds.SaveMMap(path); err != nil {
		t.Fatalf("SaveMMap failed: %v", err)
	}

	back, err := LoadMMap(path)
	if err != nil {
		t.Fatalf("LoadMMap failed: %v", err)
	}

	if back.ID != "collisions" {
		t.Errorf("Expected id collisions, got %s", back.ID)
	}
	if len(back.Points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(back.Points))
	}
	if back.Points[1].Metrics["injuries"] != 0 {
		t.Errorf("Expected injuries 0, got %f", back.Points[1].Metrics["injuries"])
	}
	if back.Points[0].Metadata["borough"] != "Manhattan" {
		t.Errorf("Expected borough metadata, got %v", back.Points[0].Metadata["borough"])
	}
}

func TestSnapshotListingAndLookup(t *testing.T) {
	dir := t.TempDir()

	bounds := quad.Bounds{MinX: -125, MinY: 25, MaxX: -67, MaxY: 49}
	ds := New("gen", GenerateTestPoints(50, bounds))

	path := SnapshotFilename(dir, len(ds.Points))
	if err := ds.SaveCompressed(path); err != nil {
		t.Fatalf("SaveCompressed failed: %v", err)
	}

	snapshots, err := ListSnapshots(dir)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(snapshots))
	}
	if snapshots[0].NumPoints != 50 {
		t.Errorf("Expected 50 points in snapshot info, got %d", snapshots[0].NumPoints)
	}
	if !strings.Contains(filepath.Base(path), snapshots[0].ID) {
		t.Errorf("Snapshot id %s not derived from filename %s", snapshots[0].ID, path)
	}

	found, err := FindSnapshot(dir, snapshots[0].ID)
	if err != nil {
		t.Fatalf("FindSnapshot failed: %v", err)
	}
	if found != path {
		t.Errorf("Expected to find %s, got %s", path, found)
	}

	if _, err := FindSnapshot(dir, "nope1234"); err == nil {
		t.Error("Expected error for unknown snapshot id, got nil")
	}
}
