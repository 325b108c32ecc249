// Package export writes computed shadow footprints to interchange
// formats: DXF for CAD round-trips and GeoJSON for anything that speaks
// web geometry.
package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/entity"

	"github.com/chazu/umbra/pkg/shadow"
)

// ShadowLayer is the DXF layer holding the footprint polylines.
const ShadowLayer = "SHADOW"

// WriteDXF saves the shadow footprint as a DXF drawing with one closed
// LWPOLYLINE per loop on the shadow layer. Coordinates are the
// plane-local UV values of the result.
func WriteDXF(path string, res *shadow.Result) error {
	if res == nil || len(res.Shadow.Loops) == 0 {
		return fmt.Errorf("export: no shadow polygons to write")
	}
	d := dxf.NewDrawing()
	d.AddLayer(ShadowLayer, color.Red, dxf.DefaultLineType, true)
	d.ChangeLayer(ShadowLayer)
	for _, loop := range res.Shadow.Loops {
		lwp := entity.NewLwPolyline(len(loop))
		for j, p := range loop {
			lwp.Vertices[j] = []float64{p.X, p.Y}
		}
		lwp.Close()
		d.AddEntity(lwp)
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: save dxf: %w", err)
	}
	return nil
}
