package export

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/chazu/umbra/pkg/shadow"
)

// GeoJSON renders the shadow footprint as a FeatureCollection with one
// Polygon feature per loop. Each feature carries its signed area; the
// collection carries the aggregate area statistics.
func GeoJSON(res *shadow.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("export: nil result")
	}
	fc := geojson.NewFeatureCollection()
	for i, loop := range res.Shadow.Loops {
		ring := make(orb.Ring, 0, len(loop)+1)
		for _, p := range loop {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		if len(ring) > 0 {
			ring = append(ring, ring[0]) // GeoJSON rings close explicitly
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["kind"] = "shadow"
		f.Properties["index"] = i
		f.Properties["area"] = loop.Area()
		fc.Append(f)
	}
	fc.ExtraMembers = map[string]interface{}{
		"shadowArea":    res.Shadow.Area,
		"groundArea":    res.GroundArea,
		"sunArea":       res.SunArea,
		"receivingArea": res.ReceivingArea,
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("export: marshal geojson: %w", err)
	}
	return b, nil
}

// WriteGeoJSON saves the footprint as a GeoJSON file.
func WriteGeoJSON(path string, res *shadow.Result) error {
	b, err := GeoJSON(res)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("export: write geojson: %w", err)
	}
	return nil
}
