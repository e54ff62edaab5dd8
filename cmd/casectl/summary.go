package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/godilite/caseops/internal/service"
	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print KPIs and monthly health labels for the filtered cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := opts.openDashboard(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			d, err := svc.GetDashboard(cmd.Context(), service.DashboardQuery{Selection: opts.selection(cmd)})
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), d)
		},
	}
}

var statusColors = map[service.Status]*color.Color{
	service.StatusAttention: color.New(color.FgRed, color.Bold),
	service.StatusOptimal:   color.New(color.FgGreen),
	service.StatusStable:    color.New(color.FgYellow),
}

func colorStatus(s service.Status) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

func printSummary(w io.Writer, d *service.Dashboard) error {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	if d.NoData {
		fmt.Fprintln(w, dim.Sprint("No data: the case source does not exist yet."))
		return nil
	}

	fmt.Fprintf(w, "%s %s\n", bold.Sprint("Source:"), d.Source)
	if s := d.Stats; s.CoercedDates+s.CoercedNumbers+s.InvariantViolations > 0 {
		fmt.Fprintln(w, dim.Sprintf("Recovered %d dates, %d numbers, %d closed-before-opened rows (%s)",
			s.CoercedDates, s.CoercedNumbers, s.InvariantViolations, s.Encoding))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range d.Display {
		fmt.Fprintf(tw, "%s\t%s\n", k.Label, formatKPI(k.Value))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold.Sprint("Aging"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, b := range d.AgingBuckets {
		fmt.Fprintf(tw, "%s\t%d\n", b.Name, b.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold.Sprint("Monthly"))
	if len(d.Monthly.Aggregates) == 0 {
		fmt.Fprintln(w, dim.Sprint("no dated cases in the selection"))
		return nil
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tTECHNOLOGY\tSRS\tP1/P2\tIRT\tMTTC\tPROACTIVE\tSTATUS")
	for _, a := range d.Monthly.Aggregates {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f\t%.1f\t%.0f%%\t%s\n",
			a.Label, a.Technology, a.TotalRequests, a.HighPriority,
			a.MeanInitialResponse, a.MeanResolutionDays, a.ProactivePct, colorStatus(a.Status))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if d.Monthly.Excluded > 0 {
		fmt.Fprintln(w, dim.Sprintf("%d late months hidden", d.Monthly.Excluded))
	}
	return nil
}

func formatKPI(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
