package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *globalOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered cases as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			svc, closeFn, err := opts.openDashboard(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, createErr := os.Create(out)
				if createErr != nil {
					return fmt.Errorf("create %s: %w", out, createErr)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}

			n, err := svc.ExportCSV(cmd.Context(), opts.selection(cmd), w)
			if err != nil {
				return err
			}
			if w != cmd.OutOrStdout() {
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d cases to %s\n", n, out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
