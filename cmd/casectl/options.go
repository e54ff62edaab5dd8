package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/godilite/caseops/internal/service"
	"github.com/spf13/cobra"
)

func newOptionsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the filter values present in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := opts.openDashboard(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := svc.GetFilterOptions(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if res.NoData {
				fmt.Fprintln(w, "No data.")
				return nil
			}
			bold := color.New(color.Bold)
			for _, col := range service.FilterableColumns {
				fmt.Fprintf(w, "%s: %s\n", bold.Sprint(string(col)), strings.Join(res.Options[col], ", "))
			}
			return nil
		},
	}
}
