package export

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/chazu/umbra/pkg/shadow"
)

func sampleResult() *shadow.Result {
	return &shadow.Result{
		Shadow: shadow.ShadowPolygonSet{
			Loops: []shadow.Loop{
				shadow.RectLoop(0, 0, 2, 1),
				shadow.RectLoop(5, 5, 1, 1),
			},
			Area: 3,
		},
		GroundArea:    1,
		SunArea:       32,
		ReceivingArea: 36,
	}
}

func TestWriteDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shadow.dxf")
	if err := WriteDXF(path, sampleResult()); err != nil {
		t.Fatalf("WriteDXF: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(b)
	if !strings.Contains(content, "LWPOLYLINE") {
		t.Error("drawing contains no LWPOLYLINE entity")
	}
	if !strings.Contains(content, ShadowLayer) {
		t.Errorf("drawing missing layer %q", ShadowLayer)
	}
}

func TestWriteDXFEmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dxf")
	if err := WriteDXF(path, &shadow.Result{}); err == nil {
		t.Error("empty result written")
	}
}

func TestGeoJSONRoundTrip(t *testing.T) {
	b, err := GeoJSON(sampleResult())
	if err != nil {
		t.Fatalf("GeoJSON: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(fc.Features))
	}
	f := fc.Features[0]
	poly, ok := f.Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("geometry = %T, want orb.Polygon", f.Geometry)
	}
	ring := poly[0]
	if len(ring) != 5 {
		t.Errorf("ring points = %d, want 5 (closed)", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("ring not explicitly closed")
	}
	area, ok := f.Properties["area"].(float64)
	if !ok || math.Abs(area-2) > 1e-9 {
		t.Errorf("area property = %v, want 2", f.Properties["area"])
	}
}

func TestGeoJSONEmptyResult(t *testing.T) {
	b, err := GeoJSON(&shadow.Result{})
	if err != nil {
		t.Fatalf("GeoJSON: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(fc.Features) != 0 {
		t.Errorf("features = %d, want 0", len(fc.Features))
	}
}

func TestWriteGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shadow.json")
	if err := WriteGeoJSON(path, sampleResult()); err != nil {
		t.Fatalf("WriteGeoJSON: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "FeatureCollection") {
		t.Error("file is not a FeatureCollection")
	}
}
