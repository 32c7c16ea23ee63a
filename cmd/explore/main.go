// Command explore prints random destinations around an origin without
// running the API.
//
//	explore -lat 55.774167 -lon -3.918333 -radius 100 -unit mi -seed 7 -n 3
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/pkg/geospatial"
	"github.com/samirrijal/neverbeen/internal/pkg/logging"
)

func main() {
	logging.Setup("neverbeen-explore", "warn", "text")

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("explore failed", "error", err)
		os.Exit(1)
	}
}

func run(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("explore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	lat := fs.String("lat", "55.774167", "origin latitude in decimal degrees")
	lon := fs.String("lon", "-3.918333", "origin longitude in decimal degrees")
	radius := fs.Float64("radius", 100, "search radius in -unit")
	unitFlag := fs.String("unit", "mi", "distance unit: mi or km")
	seed := fs.Int64("seed", -1, "random seed, negative for a random draw")
	count := fs.Int("n", 1, "number of destinations")
	if err := fs.Parse(args); err != nil {
		return err
	}

	origin, err := domain.ParseGeoPoint(*lat, *lon)
	if err != nil {
		return err
	}
	unit, err := domain.ParseUnit(*unitFlag)
	if err != nil {
		return err
	}
	b := domain.RadiusBounds(unit)
	if *radius < float64(b.Min) || *radius > float64(b.Max) {
		return fmt.Errorf("%w: radius must be between %d and %d %s", domain.ErrInvalidRadius, b.Min, b.Max, unit.Label())
	}
	if *count < 1 {
		return fmt.Errorf("-n must be at least 1")
	}

	var rng *rand.Rand
	if *seed >= 0 {
		rng = rand.New(rand.NewPCG(uint64(*seed), uint64(*seed)))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	radiusKm := geospatial.MilesToKm(geospatial.ToCanonical(*radius, unit))
	la, lo := geospatial.FormatPoint(origin)
	fmt.Fprintf(w, "origin      %s %s (%.6f, %.6f)\n", la, lo, origin.Lat, origin.Lon)
	fmt.Fprintf(w, "radius      %g %s\n", *radius, unit.Label())

	for i := 0; i < *count; i++ {
		dest, err := geospatial.Sample(origin, radiusKm, rng.Float64)
		if err != nil {
			return err
		}
		la, lo := geospatial.FormatPoint(dest)
		fmt.Fprintf(w, "destination %s %s (%.6f, %.6f) %s\n",
			la, lo, dest.Lat, dest.Lon,
			geospatial.FormatDistance(geospatial.Distance(origin, dest), unit))
	}
	return nil
}
