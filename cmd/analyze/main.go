// Command analyze runs a one-shot analysis against a workbook and writes
// the simultaneous-hours CSV, without starting the server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"simulcheck/internal/analysis"
	"simulcheck/internal/exporter"
	"simulcheck/internal/schema"
	"simulcheck/internal/workbook"
)

func main() {
	var (
		file      = flag.StringP("file", "f", "data.xlsm", "workbook file to analyze")
		building  = flag.StringP("building", "b", "", "building to analyze")
		threshold = flag.IntP("threshold", "t", 700, "kBTU/h threshold for 'on' status (0-5000)")
		outDir    = flag.StringP("out", "o", ".", "directory for the output CSV")
		chwSheet  = flag.String("chw-sheet", "CHW hourly", "name of the CHW sheet")
		mthwSheet = flag.String("mthw-sheet", "MTHW hourly", "name of the MTHW sheet")
		list      = flag.BoolP("list", "l", false, "list buildings present in both sheets and exit")
		verbose   = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *threshold < 0 || *threshold > 5000 {
		fatalf("threshold must be between 0 and 5000, got %d", *threshold)
	}

	loader := workbook.NewLoader("Timestamp", logger)
	wb, err := loader.Load(*file, *chwSheet, *mthwSheet)
	if err != nil {
		fatalf("failed to load workbook: %v", err)
	}

	sch, err := schema.Build(wb.CHW.Columns, wb.MTHW.Columns, logger)
	if err != nil {
		fatalf("failed to read building columns: %v", err)
	}

	buildings := sch.Buildings()
	if len(buildings) == 0 {
		fatalf("no buildings are present in both the %s and %s sheets", *chwSheet, *mthwSheet)
	}

	if *list {
		for _, b := range buildings {
			fmt.Println(b)
		}
		return
	}

	if *building == "" {
		fatalf("--building is required (use --list to see choices)")
	}

	cols, ok := sch.Lookup(*building)
	if !ok {
		fatalf("building %q is not present in both sheets (use --list to see choices)", *building)
	}

	chw, err := wb.CHW.Series(cols.CHW)
	if err != nil {
		fatalf("failed to read CHW series: %v", err)
	}
	mthw, err := wb.MTHW.Series(cols.MTHW)
	if err != nil {
		fatalf("failed to read MTHW series: %v", err)
	}

	result := analysis.Apply(*building, analysis.Join(chw, mthw), float64(*threshold))

	path, err := exporter.SaveSimultaneous(*outDir, *building, result.Simultaneous)
	if err != nil {
		fatalf("failed to write output: %v", err)
	}

	fmt.Printf("%s: %d simultaneous heating+cooling hours above %d kBTU/h\n",
		*building, result.Count, *threshold)
	fmt.Printf("wrote %s\n", path)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
