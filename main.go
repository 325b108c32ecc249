// Command umbra evaluates a scene script, computes the 2D shadow
// footprint the scene's geometry casts onto its receiving surface,
// prints the area report, and optionally exports the footprint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/umbra/pkg/export"
	"github.com/chazu/umbra/pkg/scene"
	"github.com/chazu/umbra/pkg/scenescript"
	"github.com/chazu/umbra/pkg/shadow"
)

func main() {
	scenePath := flag.String("scene", "", "scene script to evaluate (required)")
	dxfPath := flag.String("dxf", "", "write the footprint to this DXF file")
	geojsonPath := flag.String("geojson", "", "write the footprint to this GeoJSON file")
	tolerance := flag.Float64("tolerance", 0, "2D point-merge tolerance (0 = default)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *scenePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*scenePath, *dxfPath, *geojsonPath, *tolerance, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "umbra:", err)
		os.Exit(1)
	}
}

func run(scenePath, dxfPath, geojsonPath string, tolerance float64, verbose bool) error {
	if verbose {
		shadow.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := os.ReadFile(scenePath)
	if err != nil {
		return err
	}

	sc, evalErrs, err := scenescript.NewEngine().Evaluate(string(source))
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", scenePath, e)
		}
		return fmt.Errorf("scene script failed to evaluate")
	}

	res, err := scene.ComputeShadow(ctx, sc, &shadow.Options{Tolerance: tolerance})
	if err != nil {
		return err
	}

	fmt.Print(scene.FormatReport(res))

	if len(res.Shadow.Loops) > 0 {
		label, err := sc.ApplyShadow(res)
		if err != nil {
			return err
		}
		fmt.Printf("applied as layer %s\n", label)
	}

	if dxfPath != "" {
		if err := export.WriteDXF(dxfPath, res); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", dxfPath)
	}
	if geojsonPath != "" {
		if err := export.WriteGeoJSON(geojsonPath, res); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", geojsonPath)
	}
	return nil
}
