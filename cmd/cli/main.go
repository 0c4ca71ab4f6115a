package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"aivaceo/adapters/api"
	"aivaceo/adapters/db"
	"aivaceo/adapters/memory"
	"aivaceo/app"
	"aivaceo/domain/dataset"
	"aivaceo/internal/config"
	apperrors "aivaceo/internal/errors"
	"aivaceo/internal/testkit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sourceFlags selects the dataset every command works on
type sourceFlags struct {
	file  string
	sheet string

	demo      bool
	demoTable string
	rows      int
	seed      int64

	url      string
	dataPath string
	token    string

	driver string
	dsn    string
	query  string

	analysisConfig string
	jsonOutput     bool
	noColor        bool
}

func newRootCmd() *cobra.Command {
	flags := &sourceFlags{}

	rootCmd := &cobra.Command{
		Use:   "aivaceo-cli",
		Short: "Scan tabular business data for quality, patterns and insights",
		Long: `Scan a CSV/XLSX file, a JSON records feed, a SQL query or generated demo
data and print its overview, column analyses, correlations, patterns,
insights, full report or charts.

Examples:
  aivaceo-cli overview --file sales.xlsx --sheet Q1
  aivaceo-cli insights --demo --rows 500
  aivaceo-cli correlations --file sales.csv --threshold 0.3 --json
  aivaceo-cli chart compare quantity amount --demo --out trend.svg`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				color.NoColor = true
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.file, "file", "", "CSV or XLSX file to scan")
	pf.StringVar(&flags.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	pf.BoolVar(&flags.demo, "demo", false, "Scan generated business data")
	pf.StringVar(&flags.demoTable, "demo-table", "invoices", "Demo table: invoices|customers")
	pf.IntVar(&flags.rows, "rows", 200, "Rows of demo data")
	pf.Int64Var(&flags.seed, "seed", 42, "Random seed for demo data")
	pf.StringVar(&flags.url, "url", "", "JSON records endpoint to scan")
	pf.StringVar(&flags.dataPath, "data-path", "", "Path to the records array in the JSON response")
	pf.StringVar(&flags.token, "token", "", "Bearer token for the records endpoint")
	pf.StringVar(&flags.driver, "driver", db.DriverPostgres, "SQL driver: postgres|sqlite")
	pf.StringVar(&flags.dsn, "dsn", "", "SQL data source name")
	pf.StringVar(&flags.query, "query", "", "SQL query whose result is scanned (requires --dsn)")
	pf.StringVar(&flags.analysisConfig, "config", os.Getenv("ANALYSIS_CONFIG"), "YAML file with analysis thresholds")
	pf.BoolVar(&flags.jsonOutput, "json", false, "Print results as JSON")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(
		newOverviewCmd(flags),
		newColumnCmd(flags),
		newCorrelationsCmd(flags),
		newPatternsCmd(flags),
		newInsightsCmd(flags),
		newReportCmd(flags),
		newChartCmd(flags),
	)
	return rootCmd
}

// session is a loaded dataset together with the service that analyses it
type session struct {
	service  *app.ScanService
	snapshot *dataset.Snapshot
	conn     *sqlx.DB
}

func (s *session) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// open loads the dataset selected by the flags; exactly one source must be given
func open(ctx context.Context, flags *sourceFlags) (*session, error) {
	selected := 0
	for _, set := range []bool{flags.file != "", flags.demo, flags.url != "", flags.query != ""} {
		if set {
			selected++
		}
	}
	if selected != 1 {
		return nil, apperrors.InvalidInput("choose exactly one of --file, --demo, --url or --query")
	}

	analysis, err := config.LoadAnalysis(flags.analysisConfig)
	if err != nil {
		return nil, err
	}
	serviceConfig := app.ServiceConfig{
		Analysis:    analysis.Profiling,
		Coercion:    analysis.Coercion,
		Concurrency: analysis.Concurrency,
	}

	sess := &session{}
	if flags.query != "" {
		if flags.dsn == "" {
			return nil, apperrors.InvalidInput("--query requires --dsn")
		}
		sess.conn, err = db.Connect(ctx, flags.driver, flags.dsn)
		if err != nil {
			return nil, err
		}
		serviceConfig.DB = sess.conn
	}
	sess.service = app.NewScanService(memory.NewSnapshotStore(0), serviceConfig)

	switch {
	case flags.file != "":
		sess.snapshot, err = sess.service.LoadFile(ctx, flags.file, flags.sheet)
	case flags.demo:
		sess.snapshot, err = loadDemo(ctx, sess.service, flags)
	case flags.url != "":
		source := api.DefaultRecordsSource(flags.url)
		source.DataPath = flags.dataPath
		if flags.token != "" {
			source.AuthMethod = api.AuthBearer
			source.AuthToken = flags.token
		}
		sess.snapshot, err = sess.service.LoadAPI(ctx, source)
	default:
		sess.snapshot, err = sess.service.LoadQuery(ctx, "query", flags.query)
	}
	if err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func loadDemo(ctx context.Context, service *app.ScanService, flags *sourceFlags) (*dataset.Snapshot, error) {
	genConfig := testkit.DefaultBusinessConfig()
	genConfig.RowCount = flags.rows
	genConfig.Seed = flags.seed
	gen := testkit.NewBusinessDataGenerator(genConfig)

	var ds *dataset.Dataset
	var err error
	switch strings.ToLower(flags.demoTable) {
	case "invoices":
		ds, err = gen.Invoices()
	case "customers":
		ds, err = gen.Customers()
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown demo table: %s", flags.demoTable))
	}
	if err != nil {
		return nil, err
	}
	return service.Register(ctx, "demo-"+strings.ToLower(flags.demoTable), dataset.SourceDemo, "", ds)
}
