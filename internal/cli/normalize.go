package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/ritmo/internal/adapters/csvio"
	"github.com/okian/ritmo/internal/domain/normalize"
)

// Output formats of the normalize command.
var normalizeFormats = []string{"csv", "json", "parquet"}

type normalizeOptions struct {
	distanceKm float64
	profile    string
	format     string
	output     string
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &normalizeOptions{}
	cmd := &cobra.Command{
		Use:   "normalize <file.csv|->",
		Short: "Map a results file onto the canonical columns",
		Long: `Normalize a vendor results file: resolve its headers, clean durations,
genders and categories, and derive the average pace and pace range.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().Float64VarP(&opts.distanceKm, "distance-km", "d", 0, "race distance in kilometres")
	cmd.Flags().StringVar(&opts.profile, "profile", normalize.ReportProfile.Name, "normalization profile (report|ingest)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "output format (csv|json|parquet)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func runNormalize(cmd *cobra.Command, rootOpts *RootOptions, opts *normalizeOptions, input string) error {
	profile, ok := normalize.ProfileByName(opts.profile)
	if !ok {
		return fmt.Errorf("unknown profile %q", opts.profile)
	}
	if !isValidFormat(opts.format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.format, normalizeFormats)
	}
	table, err := readTable(cmd, input)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, err := startService(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer svc.Stop()

	b, err := svc.Normalize(ctx, profile, opts.distanceKm, table)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "kept %d, blank %d, omitted %d\n", b.Kept, b.Blank, b.Omitted)

	return writeOutput(cmd, opts.output, func(w io.Writer) error {
		switch opts.format {
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(b.Records)
		case "parquet":
			data, err := csvio.MarshalParquet(b.Records)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}
		return csvio.WriteCSV(w, b.Records)
	})
}

func isValidFormat(format string) bool {
	for _, f := range normalizeFormats {
		if f == format {
			return true
		}
	}
	return false
}

func readTable(cmd *cobra.Command, input string) (csvio.Table, error) {
	in, err := openInput(cmd, input)
	if err != nil {
		return csvio.Table{}, err
	}
	defer func() { _ = in.Close() }()
	return csvio.Read(in)
}

type analyzeOptions struct {
	distanceKm float64
	output     string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:          "analyze <file.csv|->",
		Short:        "Compute the statistics report of a results file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := readTable(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := startService(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer svc.Stop()

			report, _, err := svc.Analyze(ctx, opts.distanceKm, table)
			if err != nil {
				return err
			}
			return writeOutput(cmd, opts.output, func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			})
		},
	}
	cmd.Flags().Float64VarP(&opts.distanceKm, "distance-km", "d", 0, "race distance in kilometres")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
