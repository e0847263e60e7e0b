package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/ritmo/internal/synth"
)

type genOptions struct {
	synth.Config
	output  string
	url     string
	race    string
	top     int
	timeout time.Duration
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &genOptions{Config: synth.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a synthetic results file",
		Long: `Generate a synthetic race results file.

With --url the file is uploaded to a running service instead, and the
served per-gender podium is checked against one computed locally.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rootOpts.Workers > 0 {
				opts.Workers = rootOpts.Workers
			}
			if opts.url != "" {
				return runUpload(cmd, opts)
			}
			runners, err := synth.Generate(cmd.Context(), opts.Config)
			if err != nil {
				return err
			}
			return writeOutput(cmd, opts.output, func(w io.Writer) error {
				return synth.WriteCSV(w, opts.DistanceKm, runners)
			})
		},
	}
	f := cmd.Flags()
	f.IntVarP(&opts.Runners, "runners", "n", opts.Runners, "number of result rows")
	f.Float64VarP(&opts.DistanceKm, "distance-km", "d", opts.DistanceKm, "race distance in kilometres")
	f.Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed; equal seeds give equal files")
	f.Float64Var(&opts.NoChipRate, "no-chip-rate", opts.NoChipRate, "fraction of rows without chip time")
	f.Float64Var(&opts.NoSplitsRate, "no-splits-rate", opts.NoSplitsRate, "fraction of rows without splits")
	f.Float64Var(&opts.AdaptedRate, "adapted-rate", opts.AdaptedRate, "fraction of rows in an adapted category")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	f.StringVar(&opts.url, "url", "", "base URL of a running service to upload to")
	f.StringVar(&opts.race, "race", "Synthetic race", "race name used for the upload")
	f.IntVar(&opts.top, "top", 10, "podium length to verify")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP request timeout")
	return cmd
}

func runUpload(cmd *cobra.Command, opts *genOptions) error {
	stats, err := synth.Run(cmd.Context(), synth.RunConfig{
		Config:  opts.Config,
		BaseURL: opts.url,
		Race:    opts.race,
		TopN:    opts.top,
		Timeout: opts.timeout,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "generated %d, inserted %d, omitted %d, verified %d in %s\n",
		stats.Generated, stats.Inserted, stats.Omitted, stats.Verified, stats.Duration.Round(time.Millisecond))
	return err
}
