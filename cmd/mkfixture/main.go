// mkfixture creates a small representative catalog fixture from a full tariff file.
// Rows are bucketed by service category so every classifier rule is covered, plus
// a bucket of rows that carry no value to price.
// Usage: go run ./cmd/mkfixture --in testdata/tariff.parquet --out testdata/tariff-small.parquet --per-category 20
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gyeh/clinictariff/internal/catalog"
	"github.com/gyeh/clinictariff/internal/classify"
	"github.com/gyeh/clinictariff/internal/model"
	"github.com/gyeh/clinictariff/internal/parquetread"
)

const unpriceable = "unpriceable"

func main() {
	in := flag.String("in", "testdata/tariff.parquet", "input parquet")
	out := flag.String("out", "testdata/tariff-small.parquet", "output parquet")
	perCategory := flag.Int("per-category", 20, "max rows kept per category")
	checkOnly := flag.Bool("check", false, "only print stats, don't write")
	flag.Parse()

	reader, err := parquetread.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	if err := parquetread.ValidateSchema(reader.Schema()); err != nil {
		fmt.Fprintf(os.Stderr, "schema: %v\n", err)
		os.Exit(1)
	}

	// Bucket names in output order: every category, then the unpriceable rows.
	var order []string
	for _, c := range classify.AllCategories() {
		order = append(order, string(c))
	}
	order = append(order, unpriceable)

	buckets := make(map[string][]model.ServiceRow, len(order))
	seen := make(map[string]int, len(order))

	buf := make([]model.ServiceRow, 1024)
	var totalRead, noCode int
	for {
		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			totalRead++
			s, ok := catalog.ParseRow(&buf[i])
			if !ok {
				noCode++
				continue
			}
			name := unpriceable
			if s.Priceable() {
				name = string(classify.Classify(s.DisplayText()))
			}
			seen[name]++
			if len(buckets[name]) < *perCategory {
				buckets[name] = append(buckets[name], buf[i])
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", readErr)
			os.Exit(1)
		}
	}
	fmt.Printf("Scanned %d rows (%d without code)\n", totalRead, noCode)

	if *checkOnly {
		for _, name := range order {
			fmt.Printf("  %-12s %d\n", name, seen[name])
		}
		return
	}

	var selected []model.ServiceRow
	for _, name := range order {
		selected = append(selected, buckets[name]...)
	}

	if err := parquetread.WriteFile(*out, selected); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(selected), *out)
	fmt.Println("Category distribution:")
	for _, name := range order {
		if c := len(buckets[name]); c > 0 {
			fmt.Printf("  %-12s %d (of %d)\n", name, c, seen[name])
		}
	}
}

