package dataset

import (
	"encoding/json"
	"testing"
)

const sampleGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-73.98, 40.74]},
			"properties": {"injuries": 2, "borough": "Manhattan"}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-73.95, 40.65]},
			"properties": {"injuries": 0, "borough": "Brooklyn"}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]},
			"properties": {"injuries": 1}
		}
	]
}`

func TestFromGeoJSON(t *testing.T) {
	ds, err := FromGeoJSON("collisions", []byte(sampleGeoJSON))
	if err != nil {
		t.Fatalf("FromGeoJSON failed: %v", err)
	}

	if len(ds.Points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(ds.Points))
	}

	if ds.Points[0].X != -73.98 || ds.Points[0].Y != 40.74 {
		t.Errorf("Unexpected first coordinate: (%f,%f)", ds.Points[0].X, ds.Points[0].Y)
	}

	// Numeric properties become metric columns, strings stay metadata.
	if ds.Points[0].Metrics["injuries"] != 2 {
		t.Errorf("Expected injuries metric 2, got %f", ds.Points[0].Metrics["injuries"])
	}
	if ds.Points[0].Metadata["borough"] != "Manhattan" {
		t.Errorf("Expected borough metadata, got %v", ds.Points[0].Metadata["borough"])
	}

	// The polygon feature is reduced to its centroid.
	if ds.Points[2].X != 2 || ds.Points[2].Y != 2 {
		t.Errorf("Expected polygon centroid (2,2), got (%f,%f)", ds.Points[2].X, ds.Points[2].Y)
	}
}

func TestFromGeoJSONEmpty(t *testing.T) {
	if _, err := FromGeoJSON("empty", []byte(`{"type":"FeatureCollection","features":[]}`)); err == nil {
		t.Error("Expected error for empty feature collection, got nil")
	}
}

func TestToGeoJSONRoundTrip(t *testing.T) {
	ds := New("test", testPoints())

	fc := ds.ToGeoJSON()
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	back, err := FromGeoJSON("test", data)
	if err != nil {
		t.Fatalf("FromGeoJSON failed: %v", err)
	}
	if len(back.Points) != len(ds.Points) {
		t.Fatalf("Expected %d points after round trip, got %d", len(ds.Points), len(back.Points))
	}
	if back.Points[0].Metrics["sales"] != 100 {
		t.Errorf("Expected sales metric to survive round trip, got %v", back.Points[0].Metrics)
	}
}
