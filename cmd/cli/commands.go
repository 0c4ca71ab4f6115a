package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"aivaceo/adapters/render"
	"aivaceo/domain/chart"
	apperrors "aivaceo/internal/errors"
	"aivaceo/internal/visualization"
	"aivaceo/ui/services"
)

func newOverviewCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Dataset shape, types, missing values and quality score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			overview, err := sess.service.ScannerFor(sess.snapshot).ScanOverview()
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return printJSON(cmd.OutOrStdout(), overview)
			}
			printOverview(cmd.OutOrStdout(), sess.snapshot.Name, overview)
			return nil
		},
	}
}

func newColumnCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "column [name]",
		Short: "Detailed analysis of one column",
		Long: `Analyse one column: numeric columns get distribution statistics and IQR
outliers, text columns get top values and email/phone/URL counts, datetime
columns get their range and most common year and month.

Example: aivaceo-cli column amount --file invoices.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			analysis, err := sess.service.ScannerFor(sess.snapshot).AnalyzeColumn(args[0])
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return printJSON(cmd.OutOrStdout(), analysis)
			}
			printColumn(cmd.OutOrStdout(), analysis)
			return nil
		},
	}
}

func newCorrelationsCmd(flags *sourceFlags) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "correlations",
		Short: "Pearson correlations between numeric columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			scanner := sess.service.ScannerFor(sess.snapshot)
			if !cmd.Flags().Changed("threshold") {
				threshold = scanner.Options().CorrelationThreshold
			}
			result, err := scanner.FindCorrelations(threshold)
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printCorrelations(cmd.OutOrStdout(), result, threshold)
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Minimum |r| listed as a strong correlation")
	return cmd
}

func newPatternsCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "Missing-data, duplicate and value patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			patterns := sess.service.ScannerFor(sess.snapshot).DetectPatterns()
			if flags.jsonOutput {
				return printJSON(cmd.OutOrStdout(), patterns)
			}
			printPatterns(cmd.OutOrStdout(), patterns)
			return nil
		},
	}
}

func newInsightsCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Human-readable findings about the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			insights := sess.service.ScannerFor(sess.snapshot).GenerateInsights()
			if flags.jsonOutput {
				return printJSON(cmd.OutOrStdout(), insights)
			}
			printInsights(cmd.OutOrStdout(), insights)
			return nil
		},
	}
}

func newReportCmd(flags *sourceFlags) *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Full scan report as Markdown, HTML or JSON",
		Long: `Run every analysis and write one report.

Example: aivaceo-cli report --file sales.csv --format html --out sales.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			report, err := sess.service.ReportFor(cmd.Context(), sess.snapshot)
			if err != nil {
				return err
			}

			if flags.jsonOutput {
				format = "json"
			}
			var body []byte
			reports := services.NewReportService()
			switch strings.ToLower(format) {
			case "md", "markdown":
				body = []byte(reports.Markdown(report))
			case "html":
				body = reports.HTML(report)
			case "json":
				body, err = marshalJSON(report)
				if err != nil {
					return err
				}
			default:
				return apperrors.InvalidInput("unknown report format: " + format)
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			printDone(cmd.OutOrStdout(), "Report written to %s", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "md", "Report format: md|html|json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func newChartCmd(flags *sourceFlags) *cobra.Command {
	var out, format, chartType string
	var width, height int

	cmd := &cobra.Command{
		Use:   "chart [kind] [columns...]",
		Short: "Render a chart as SVG or PNG",
		Long: `Render one chart. Kinds:
  types                      data type distribution
  missing                    missing values per column
  metrics                    rows, columns and missing cells
  column NAME                one column (--type auto|histogram|bar|box|line|scatter|pie)
  correlation                correlation heatmap
  compare X Y                two columns against each other (--type scatter|line)
  timeseries DATE VALUE      a numeric column over a datetime column
  multi A B [C...]           several numeric columns (--type line|bar)
  quality                    per-column quality scores
  uniqueness                 per-column unique ratio
  memory                     per-column memory usage
  shape                      rows against columns

The format follows the --out extension unless --format is given; without
--out the chart definition is printed as JSON.

Example: aivaceo-cli chart column amount --type box --demo --out amount.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := open(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer sess.Close()

			ch, err := buildChart(sess.service.EngineFor(sess.snapshot), args[0], args[1:], chartType)
			if err != nil {
				return err
			}
			if ch == nil {
				return apperrors.InsufficientData(fmt.Sprintf("no %s chart can be drawn for this data", args[0]))
			}

			if out == "" {
				return printJSON(cmd.OutOrStdout(), ch)
			}
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			data, err := render.Bytes(ch, format, render.Options{Width: width, Height: height})
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write chart: %w", err)
			}
			printDone(cmd.OutOrStdout(), "%s chart written to %s", ch.Title, out)
			return nil
		},
	}

	defaults := render.DefaultOptions()
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.svg or .png)")
	cmd.Flags().StringVar(&format, "format", "", "Image format: svg|png")
	cmd.Flags().StringVar(&chartType, "type", "", "Chart variant for column, compare and multi")
	cmd.Flags().IntVar(&width, "width", defaults.Width, "Canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", defaults.Height, "Canvas height in pixels")
	return cmd
}

// buildChart resolves a chart kind and its column arguments
func buildChart(engine *visualization.Engine, kind string, columns []string, chartType string) (*chart.Chart, error) {
	need := func(n int) error {
		if len(columns) < n {
			return apperrors.InvalidInput(fmt.Sprintf("chart %s needs %d column name(s)", kind, n))
		}
		for _, name := range columns {
			if _, ok := engine.Dataset().Column(name); !ok {
				return apperrors.ColumnNotFound(name)
			}
		}
		return nil
	}

	kind = strings.ToLower(kind)
	switch kind {
	case "types", "missing", "metrics":
		overview, err := engine.OverviewCharts()
		if err != nil {
			return nil, err
		}
		switch kind {
		case "types":
			return overview.DataTypes, nil
		case "missing":
			return overview.MissingData, nil
		}
		return overview.Metrics, nil
	case "uniqueness", "memory":
		analytics, err := engine.AnalyticsCharts()
		if err != nil {
			return nil, err
		}
		if kind == "uniqueness" {
			return analytics.Uniqueness, nil
		}
		return analytics.MemoryUsage, nil
	case "quality":
		return engine.QualityDashboard(), nil
	case "shape":
		return engine.DataShapeChart(), nil
	case "correlation":
		return engine.CorrelationHeatmap(), nil
	case "column":
		if err := need(1); err != nil {
			return nil, err
		}
		t, err := visualization.ParseChartType(chartType)
		if err != nil {
			return nil, err
		}
		return engine.ColumnChart(columns[0], t), nil
	case "compare":
		if err := need(2); err != nil {
			return nil, err
		}
		t, err := visualization.ParseComparisonType(chartType)
		if err != nil {
			return nil, err
		}
		return engine.ComparisonChart(columns[0], columns[1], t), nil
	case "timeseries":
		if err := need(2); err != nil {
			return nil, err
		}
		return engine.TimeSeriesChart(columns[0], columns[1]), nil
	case "multi":
		if err := need(2); err != nil {
			return nil, err
		}
		t, err := visualization.ParseMultiType(chartType)
		if err != nil {
			return nil, err
		}
		return engine.MultiColumnChart(columns, t), nil
	}
	return nil, apperrors.InvalidInput("unknown chart kind: " + kind)
}
