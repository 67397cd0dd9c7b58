//go:build ignore

// Package main generates a synthetic data directory for benchmarking.
// Usage: go run scripts/generate-data.go -files 5000 -output testdata/bench
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numFiles  = flag.Int("files", 1000, "Number of dataset files to generate")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
	noise     = flag.Float64("noise", 0.05, "Fraction of extra non-CSV files")
)

var (
	places   = []string{"Springfield", "Riverside", "Franklin", "Greenville", "Clinton", "Fairview", "Madison", "Georgetown"}
	suffixes = []string{"", "Unified", "City", "County", "Valley", "Lake"}
	subjects = []string{"Math", "Reading", "Science", "ELA", "History", "Writing"}
)

const header = "SchoolYear,District,Subject,Cohort,Score\n"

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *outputDir, err)
		os.Exit(1)
	}

	seen := make(map[string]bool, *numFiles)
	generated := 0
	for generated < *numFiles {
		name := datasetName(rng)
		if seen[name] {
			continue
		}
		seen[name] = true

		if err := os.WriteFile(filepath.Join(*outputDir, name), rows(rng), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", name, err)
			os.Exit(1)
		}
		generated++
	}

	extra := int(float64(*numFiles) * *noise)
	for i := 0; i < extra; i++ {
		name := fmt.Sprintf("notes_%d.txt", i)
		if err := os.WriteFile(filepath.Join(*outputDir, name), []byte("not a dataset\n"), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Generated %d dataset files and %d other files in %s\n", generated, extra, *outputDir)
}

// datasetName returns <year>_<district words...>_<subject>.csv, sometimes
// with spaces inside the district and sometimes with no district at all.
func datasetName(rng *rand.Rand) string {
	year := fmt.Sprintf("%d", 2000+rng.Intn(26))
	subject := subjects[rng.Intn(len(subjects))]

	var district string
	switch rng.Intn(10) {
	case 0:
	case 1, 2:
		district = places[rng.Intn(len(places))] + " " + suffixes[1+rng.Intn(len(suffixes)-1)]
	default:
		words := []string{places[rng.Intn(len(places))]}
		if s := suffixes[rng.Intn(len(suffixes))]; s != "" {
			words = append(words, s)
		}
		district = strings.Join(words, "_")
	}

	if district == "" {
		return fmt.Sprintf("%s_%s.csv", year, subject)
	}
	return fmt.Sprintf("%s_%s_%s.csv", year, district, subject)
}

func rows(rng *rand.Rand) []byte {
	var b strings.Builder
	b.WriteString(header)
	n := 1 + rng.Intn(20)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,x,x,%d,%.1f\n", 2000+rng.Intn(26), rng.Intn(12), rng.Float64()*100)
	}
	return []byte(b.String())
}
