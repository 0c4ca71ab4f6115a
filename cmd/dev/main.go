package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"aivaceo/adapters/db"
	"aivaceo/adapters/render"
	"aivaceo/domain/dataset"
	"aivaceo/internal/profiling"
	"aivaceo/internal/testkit"
	"aivaceo/internal/visualization"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aivaceo-dev",
		Short: "AIVACEO development tools",
	}

	rootCmd.AddCommand(
		newSeedCmd(),
		newSmokeTestCmd(),
		newDeterminismTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	var outDir, sqlitePath string
	var rows int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo business data as CSV, XLSX and optionally SQLite",
		Long: `Write invoices and customers tables for local development.

Example: aivaceo-dev seed --out ./data --rows 1000 --sqlite ./data/demo.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateSeedData(cmd.Context(), outDir, sqlitePath, rows, seed)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "data", "Output directory")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Also load the tables into this SQLite database")
	cmd.Flags().IntVar(&rows, "rows", 200, "Rows per table before duplicates")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic data")
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run every scanner and chart operation over demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context(), rows)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 500, "Rows of demo data")
	return cmd
}

func newDeterminismTestCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Check that two reports over the same data are identical",
		RunE: func(cmd *cobra.Command, args []string) error {
			return testDeterminism(cmd.Context(), seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the demo data")
	return cmd
}

func demoTables(rows int, seed int64) (map[string]*dataset.Dataset, error) {
	config := testkit.DefaultBusinessConfig()
	config.RowCount = rows
	config.Seed = seed

	invoices, err := testkit.NewBusinessDataGenerator(config).Invoices()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoices: %w", err)
	}
	customers, err := testkit.NewBusinessDataGenerator(config).Customers()
	if err != nil {
		return nil, fmt.Errorf("failed to generate customers: %w", err)
	}
	return map[string]*dataset.Dataset{"invoices": invoices, "customers": customers}, nil
}

func generateSeedData(ctx context.Context, outDir, sqlitePath string, rows int, seed int64) error {
	fmt.Println("Generating seed data...")

	tables, err := demoTables(rows, seed)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	for _, name := range []string{"invoices", "customers"} {
		ds := tables[name]
		csvPath := filepath.Join(outDir, name+".csv")
		if err := testkit.WriteCSVFile(csvPath, ds); err != nil {
			return err
		}
		xlsxPath := filepath.Join(outDir, name+".xlsx")
		if err := testkit.WriteXLSXFile(xlsxPath, name, ds); err != nil {
			return err
		}
		fmt.Printf("Wrote %s and %s (%d rows)\n", csvPath, xlsxPath, ds.Rows())
	}

	if sqlitePath != "" {
		conn, err := db.Connect(ctx, db.DriverSQLite, sqlitePath)
		if err != nil {
			return err
		}
		defer conn.Close()
		for _, name := range []string{"invoices", "customers"} {
			if err := testkit.LoadTable(ctx, conn, name, tables[name]); err != nil {
				return err
			}
			fmt.Printf("Loaded table %s into %s\n", name, sqlitePath)
		}
	}

	fmt.Println("Seed data generation completed successfully")
	return nil
}

func runSmokeTests(ctx context.Context, rows int) error {
	fmt.Println("Running smoke tests...")

	tables, err := demoTables(rows, 42)
	if err != nil {
		return err
	}
	ds := tables["invoices"]
	scanner := profiling.NewScanner(ds)
	engine := visualization.NewEngine(ds)

	tests := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"overview", func(ctx context.Context) error {
			_, err := scanner.ScanOverview()
			return err
		}},
		{"columns", func(ctx context.Context) error {
			for _, name := range ds.ColumnNames() {
				if _, err := scanner.AnalyzeColumn(name); err != nil {
					return err
				}
			}
			return nil
		}},
		{"correlations", func(ctx context.Context) error {
			_, err := scanner.FindCorrelations(0.5)
			return err
		}},
		{"patterns", func(ctx context.Context) error {
			if scanner.DetectPatterns() == nil {
				return fmt.Errorf("no pattern result")
			}
			return nil
		}},
		{"insights", func(ctx context.Context) error {
			if n := len(scanner.GenerateInsights()); n == 0 || n > 10 {
				return fmt.Errorf("unexpected insight count %d", n)
			}
			return nil
		}},
		{"report", func(ctx context.Context) error {
			_, err := profiling.BuildReport(ctx, scanner, 4)
			return err
		}},
		{"charts", func(ctx context.Context) error {
			overview, err := engine.OverviewCharts()
			if err != nil {
				return err
			}
			for _, format := range []string{render.FormatSVG, render.FormatPNG} {
				if _, err := render.Bytes(overview.DataTypes, format, render.DefaultOptions()); err != nil {
					return err
				}
				if _, err := render.Bytes(engine.CorrelationHeatmap(), format, render.DefaultOptions()); err != nil {
					return err
				}
			}
			return nil
		}},
	}

	failed := 0
	for _, test := range tests {
		if err := test.fn(ctx); err != nil {
			fmt.Printf("✗ %s: %v\n", test.name, err)
			failed++
			continue
		}
		fmt.Printf("✓ %s\n", test.name)
	}
	if failed > 0 {
		return fmt.Errorf("%d smoke test(s) failed", failed)
	}
	fmt.Println("All smoke tests passed")
	return nil
}

func testDeterminism(ctx context.Context, seed int64) error {
	fmt.Printf("Testing determinism with seed %d...\n", seed)

	encode := func() ([]byte, error) {
		tables, err := demoTables(300, seed)
		if err != nil {
			return nil, err
		}
		report, err := profiling.BuildReport(ctx, profiling.NewScanner(tables["invoices"]), 4)
		if err != nil {
			return nil, err
		}
		// everything but the generation time must match
		report.GeneratedAt = time.Time{}
		return json.Marshal(report)
	}

	first, err := encode()
	if err != nil {
		return err
	}
	second, err := encode()
	if err != nil {
		return err
	}
	if !bytes.Equal(first, second) {
		return fmt.Errorf("reports differ between runs")
	}
	fmt.Println("Determinism check passed")
	return nil
}
