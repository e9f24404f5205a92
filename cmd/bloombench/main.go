// Bloombench measures empirical false-positive rates and query throughput
// for scalebloom filters across a grid of configurations.
//
// Usage:
//
//	go run ./cmd/bloombench -capacity 100000 -fpp 0.5,0.1,0.01,0.0001 -probes 1000000
//
// Flags:
//
//	-capacity  Distinct elements inserted per filter (default: 100,000)
//	-fpp       Comma-separated false-positive targets (default: 0.1,0.01,0.001)
//	-probes    Never-inserted elements probed per filter (default: 1,000,000)
//	-file      Also write a packed filter file and re-probe it via mmap
//	-workers   Configurations measured in parallel (default: GOMAXPROCS)
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamirms/scalebloom"
)

type result struct {
	fpp        float64
	measured   float64
	insertions int
	fillTime   time.Duration
	probeTime  time.Duration
	fileRate   float64 // measured via mmap reader; only set with -file
}

func main() {
	capacityFlag := flag.Int("capacity", 100_000, "distinct elements inserted per filter")
	fppFlag := flag.String("fpp", "0.1,0.01,0.001", "comma-separated false-positive targets")
	probesFlag := flag.Int("probes", 1_000_000, "never-inserted elements probed per filter")
	fileFlag := flag.Bool("file", false, "also write a packed file and re-probe it via mmap")
	workersFlag := flag.Int("workers", runtime.GOMAXPROCS(0), "configurations measured in parallel")
	flag.Parse()

	targets, err := parseTargets(*fppFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -fpp: %v\n", err)
		os.Exit(1)
	}

	results := make([]result, len(targets))
	var g errgroup.Group
	g.SetLimit(*workersFlag)
	for i, fpp := range targets {
		g.Go(func() error {
			r, err := measure(*capacityFlag, fpp, *probesFlag, *fileFlag)
			if err != nil {
				return fmt.Errorf("fpp=%g: %w", fpp, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("%-10s %-12s %-12s %-10s %-12s %s\n",
		"target", "measured", "file", "inserted", "fill", "probe")
	for _, r := range results {
		file := "-"
		if *fileFlag {
			file = fmt.Sprintf("%.3g", r.fileRate)
		}
		fmt.Printf("%-10g %-12.3g %-12s %-10d %-12s %s\n",
			r.fpp, r.measured, file, r.insertions, r.fillTime.Round(time.Millisecond),
			r.probeTime.Round(time.Millisecond))
	}
}

func parseTargets(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// measure fills a filter to capacity with distinct integers and probes a
// disjoint integer range for false positives.
func measure(capacity int, fpp float64, probes int, toFile bool) (result, error) {
	f, err := scalebloom.NewFixed(capacity, fpp, scalebloom.Int64Hasher{})
	if err != nil {
		return result{}, err
	}

	start := time.Now()
	// Hash collisions can report a fresh element as already present, so
	// drive the counter to capacity rather than counting loop iterations.
	next := int64(0)
	for f.Insertions() < capacity && next < int64(capacity)*100 {
		f.Insert(next)
		next++
	}
	fillTime := time.Since(start)

	// Probe a range disjoint from every possibly-inserted value.
	probeBase := int64(capacity) * 100
	start = time.Now()
	falsePositives := 0
	for i := range probes {
		if f.MightContain(probeBase + int64(i)) {
			falsePositives++
		}
	}
	probeTime := time.Since(start)

	r := result{
		fpp:        fpp,
		measured:   float64(falsePositives) / float64(probes),
		insertions: f.Insertions(),
		fillTime:   fillTime,
		probeTime:  probeTime,
	}

	if toFile {
		dir, err := os.MkdirTemp("", "bloombench")
		if err != nil {
			return result{}, err
		}
		defer os.RemoveAll(dir)
		path := filepath.Join(dir, "filter.sbf")
		if err := f.WriteFile(path); err != nil {
			return result{}, err
		}
		reader, err := scalebloom.Open(path, scalebloom.Int64Hasher{})
		if err != nil {
			return result{}, err
		}
		defer reader.Close()
		fileFP := 0
		for i := range probes {
			if reader.MightContain(probeBase + int64(i)) {
				fileFP++
			}
		}
		r.fileRate = float64(fileFP) / float64(probes)
	}
	return r, nil
}
