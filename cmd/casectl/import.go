package main

import (
	"fmt"

	"github.com/godilite/caseops/internal/app"
	"github.com/godilite/caseops/internal/config"
	"github.com/godilite/caseops/internal/repository"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newImportCmd(opts *globalOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the SQL store contents with a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := opts.logger()

			ds, err := repository.NewCSVCaseSource(args[0],
				repository.WithFallbackEncoding(opts.fallbackEncoding)).Load(ctx)
			if err != nil {
				return err
			}
			if ds.Missing {
				return fmt.Errorf("%s does not exist", args[0])
			}

			cfg := opts.config()
			cfg.DataSource = config.SourceSQL
			store, db, err := app.OpenStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			var progress func()
			if !quiet {
				bar := progressbar.NewOptions64(int64(len(ds.Records)),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("importing cases"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				defer bar.Finish()
				progress = func() { _ = bar.Add(1) }
			}

			if err := store.ReplaceAll(ctx, ds.Records, progress); err != nil {
				return err
			}

			identity, err := store.Identity(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cases (%s, %s)\n", len(ds.Records), ds.Stats.Encoding, identity)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}
