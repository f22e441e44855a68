package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/normalize"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	Report bool // include the source of every field
}

// NormalizeResult is the JSON payload of the normalize command.
type NormalizeResult struct {
	Config  form.Config       `json:"config"`
	Hash    string            `json:"hash"`
	Sources map[string]string `json:"sources,omitempty"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize <record>",
		Short: "Normalize a stored record into the canonical configuration",
		Long: `Resolve every field of a stored record (JSON or YAML, "-" for stdin)
through the canonical, nested and flat shapes, falling back to defaults.

Examples:
  formc normalize record.json
  formc normalize legacy.yaml --report
  cat record.json | formc normalize - --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Report, "report", false, "show which source supplied each field")

	return cmd
}

func runNormalize(opts *NormalizeOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	record, err := readRecord(path, cmd.InOrStdin())
	if err != nil {
		return failInput(formatter, err)
	}

	cfg, report := normalize.New().NormalizeWithReport(record)
	hash, err := form.ContentHash(cfg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	result := NormalizeResult{Config: cfg, Hash: hash}
	if opts.Report {
		result.Sources = make(map[string]string, len(report))
		for _, f := range report.Fields() {
			result.Sources[string(f)] = report[f]
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	body, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	fmt.Fprintln(formatter.Writer, string(body))
	if opts.Report {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Sources:")
		for _, f := range report.Fields() {
			fmt.Fprintf(formatter.Writer, "  %-32s %s\n", f, report[f])
		}
	}
	formatter.VerboseLog("hash %s", hash)
	return nil
}
