package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/hehuanshu96/geoplot/plot"
	"github.com/hehuanshu96/geoplot/quad"
)

var (
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile  = flag.String("memprofile", "", "write memory profile to file")
	heapprofile = flag.String("heapprofile", "", "write heap profile to file")
	numPoints   = flag.Int("points", 100000, "number of points to generate")
	nmin        = flag.Int("nmin", 0, "minimum observations per patch (0 = default)")
	nmax        = flag.Int("nmax", 0, "maximum observations per patch (0 = default)")
	testall     = flag.Bool("testall", false, "test all configurations")
)

// generateRandomPoints creates n random points within a geographic bounding box
func generateRandomPoints(n int, minLng, maxLng, minLat, maxLat float64) []quad.Point {
	points := make([]quad.Point, n)
	// Use deterministic seed for reproducibility
	source := rand.NewSource(42)
	r := rand.New(source)

	for i := 0; i < n; i++ {
		points[i] = quad.Point{
			Row:   i,
			X:     minLng + r.Float64()*(maxLng-minLng),
			Y:     minLat + r.Float64()*(maxLat-minLat),
			Value: r.Float64() * 100,
		}
	}
	return points
}

func runSingleProfile(numPoints, nmin, nmax int) {
	fmt.Printf("Profiling with %d points (nmin=%d, nmax=%d)\n", numPoints, nmin, nmax)

	// Generate random points in the US region
	points := generateRandomPoints(numPoints, -125.0, -65.0, 25.0, 49.0)

	var memStatsBefore, memStatsAfter runtime.MemStats
	runtime.ReadMemStats(&memStatsBefore)

	start := time.Now()
	patches, err := plot.Aggregate(points, plot.Options{NMin: nmin, NMax: nmax})
	duration := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Aggregation failed: %v\n", err)
		return
	}

	runtime.ReadMemStats(&memStatsAfter)
	allocMB := float64(memStatsAfter.TotalAlloc-memStatsBefore.TotalAlloc) / 1024 / 1024

	fmt.Printf("Aggregation completed in %v (%d patches)\n", duration, len(patches))
	fmt.Printf("Memory allocated: %.2f MB\n", allocMB)
	fmt.Printf("Memory usage: %.2f MB\n", float64(memStatsAfter.Alloc)/1024/1024)
}

func runProfileBattery() {
	pointCounts := []int{1000, 10000, 50000, 100000}
	nminValues := []int{5, 20, 100}

	fmt.Println("Running comprehensive profile battery...")
	fmt.Println("=======================================")

	fmt.Printf("%-10s | %-10s | %-10s | %-15s | %-12s | %-10s\n",
		"Points", "NMin", "Patches", "Duration", "Memory (MB)", "GC Runs")
	fmt.Printf("%s\n", "------------------------------------------------------------------------")

	for _, points := range pointCounts {
		for _, nmin := range nminValues {
			testPoints := generateRandomPoints(points, -125.0, -65.0, 25.0, 49.0)

			var memStatsBefore, memStatsAfter runtime.MemStats
			runtime.ReadMemStats(&memStatsBefore)

			start := time.Now()
			patches, err := plot.Aggregate(testPoints, plot.Options{NMin: nmin})
			duration := time.Since(start)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Aggregation failed: %v\n", err)
				continue
			}

			runtime.ReadMemStats(&memStatsAfter)
			memMB := float64(memStatsAfter.TotalAlloc-memStatsBefore.TotalAlloc) / 1024 / 1024
			gcRuns := memStatsAfter.NumGC - memStatsBefore.NumGC

			fmt.Printf("%-10d | %-10d | %-10d | %-15s | %-12.2f | %-10d\n",
				points, nmin, len(patches), duration, memMB, gcRuns)
		}

		fmt.Printf("%s\n", "------------------------------------------------------------------------")
	}
}

func main() {
	flag.Parse()

	// Set up CPU profiling if requested
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			return
		}
		defer f.Close()

		fmt.Println("Starting CPU profiling...")
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			return
		}
		defer pprof.StopCPUProfile()
	}

	if *testall {
		runProfileBattery()
	} else {
		runSingleProfile(*numPoints, *nmin, *nmax)
	}

	// Write memory profile if requested
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create memory profile: %v\n", err)
			return
		}
		defer f.Close()
		runtime.GC() // Get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write memory profile: %v\n", err)
		}
	}

	// Write heap profile if requested
	if *heapprofile != "" {
		f, err := os.Create(*heapprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create heap profile: %v\n", err)
			return
		}
		defer f.Close()

		memProfile := pprof.Lookup("heap")
		if memProfile == nil {
			fmt.Fprintf(os.Stderr, "Could not find heap profile\n")
			return
		}

		if err := memProfile.WriteTo(f, 0); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write heap profile: %v\n", err)
		}
	}
}
