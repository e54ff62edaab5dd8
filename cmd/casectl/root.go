package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/godilite/caseops/internal/app"
	"github.com/godilite/caseops/internal/config"
	"github.com/godilite/caseops/internal/repository/models"
	"github.com/godilite/caseops/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	source           string
	path             string
	fallbackEncoding string
	dbDriver         string
	dbDSN            string
	thresholdsPath   string
	verbose          bool
	noColor          bool

	tech, status, priority, owner []string

	maxLateness      float64
	proactiveOptimal float64
	excludeLate      bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "casectl",
		Short: "Inspect, filter and export support case datasets",
		Long: `casectl loads a support case dataset from a CSV file, the embedded sample
or a SQL store, applies filters and prints the dashboard KPIs and monthly
health labels. It can also export filtered cases and import CSV files into
the SQL store served by the caseops server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.source, "source", config.SourceCSV, "data source: csv, embedded or sql")
	pf.StringVar(&opts.path, "path", "./data/cases.csv", "CSV file for --source csv")
	pf.StringVar(&opts.fallbackEncoding, "fallback-encoding", "latin1", "encoding tried when the file is not valid UTF-8")
	pf.StringVar(&opts.dbDriver, "db-driver", "sqlite3", "SQL driver for --source sql: sqlite3 or mysql")
	pf.StringVar(&opts.dbDSN, "db-dsn", "./data/cases.db", "SQL data source name (sqlite path or mysql/mariadb URL)")
	pf.StringVar(&opts.thresholdsPath, "thresholds", "./thresholds.yaml", "thresholds YAML file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	pf.StringSliceVar(&opts.tech, "tech", nil, "technologies to keep (repeatable or comma separated)")
	pf.StringSliceVar(&opts.status, "status", nil, "statuses to keep")
	pf.StringSliceVar(&opts.priority, "priority", nil, "priorities to keep")
	pf.StringSliceVar(&opts.owner, "owner", nil, "case owners to keep")

	pf.Float64Var(&opts.maxLateness, "max-lateness", service.DefaultMaxLatenessDays, "mean completion days above which a month needs attention")
	pf.Float64Var(&opts.proactiveOptimal, "proactive-optimal", service.DefaultProactivePctOptimal, "proactive percentage above which a month is optimal")
	pf.BoolVar(&opts.excludeLate, "exclude-late", false, "drop months whose mean completion exceeds --max-lateness")

	root.AddCommand(
		newSummaryCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newOptionsCmd(opts),
	)
	return root
}

func (o *globalOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func (o *globalOptions) config() *config.Config {
	return &config.Config{
		DataSource:            o.source,
		CasesPath:             o.path,
		CasesFallbackEncoding: o.fallbackEncoding,
		DBDriver:              o.dbDriver,
		DBPath:                o.dbDSN,
	}
}

// selection includes only the filter flags that were set, so an unset flag
// does not filter and an explicitly empty one matches nothing.
func (o *globalOptions) selection(cmd *cobra.Command) service.Selection {
	sel := service.Selection{}
	flags := []struct {
		name   string
		column models.Column
		values []string
	}{
		{"tech", models.ColumnTechnology, o.tech},
		{"status", models.ColumnStatus, o.status},
		{"priority", models.ColumnPriority, o.priority},
		{"owner", models.ColumnCaseOwner, o.owner},
	}
	for _, f := range flags {
		if cmd.Flags().Changed(f.name) {
			sel[f.column] = append([]string{}, f.values...)
		}
	}
	return sel
}

// thresholds starts from the thresholds file and environment, then applies
// any threshold flags that were set.
func (o *globalOptions) thresholds(cmd *cobra.Command) (service.Thresholds, error) {
	t, err := config.LoadThresholds(o.thresholdsPath)
	if err != nil {
		return t, err
	}
	if cmd.Flags().Changed("max-lateness") {
		t.MaxLatenessDays = o.maxLateness
	}
	if cmd.Flags().Changed("proactive-optimal") {
		t.ProactivePctOptimal = o.proactiveOptimal
	}
	if cmd.Flags().Changed("exclude-late") {
		t.ExcludeLate = o.excludeLate
	}
	return t, t.Validate()
}

// openDashboard builds a dashboard service over the selected source. The
// returned close func releases the source.
func (o *globalOptions) openDashboard(ctx context.Context, cmd *cobra.Command) (*service.DashboardService, func(), error) {
	t, err := o.thresholds(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := o.logger()
	src, err := app.OpenSource(ctx, o.config(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open source: %w", err)
	}
	svc := service.NewDashboardService(src, nil, t, logger)
	return svc, func() { _ = src.Close() }, nil
}
