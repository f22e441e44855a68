package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/compiler"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/form"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/normalize"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Canonical bool // treat the input as a canonical configuration
}

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid              bool                 `json:"valid"`
	Hash               string               `json:"hash"`
	SchemaViolations   []schema.Violation   `json:"schema_violations"`
	ContractViolations []compiler.Violation `json:"contract_violations"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <record>",
		Short: "Check a record against the schema and the compiler contract",
		Long: `Normalize a stored record and check the result against the CUE schema
of the canonical configuration and the compiler's preconditions.

With --canonical the input is taken as an already canonical configuration
and is not normalized; missing keys decode as zero values.

Exit codes:
  0 - No violations
  1 - Violations found
  2 - Unreadable input`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "input is a canonical configuration")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	record, err := readRecord(path, cmd.InOrStdin())
	if err != nil {
		return failInput(formatter, err)
	}

	var cfg form.Config
	if opts.Canonical {
		if cfg, err = decodeCanonical(record); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeParseFailed, err.Error(), nil)
		}
	} else {
		cfg = normalize.Normalize(record)
	}

	checker, err := schema.NewChecker()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	result := ValidationResult{
		SchemaViolations:   orEmpty(checker.Check(cfg)),
		ContractViolations: orEmpty(compiler.CheckContract(cfg)),
	}
	result.Valid = len(result.SchemaViolations) == 0 && len(result.ContractViolations) == 0
	if result.Hash, err = form.ContentHash(cfg); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		writeValidationText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d schema and %d contract violation(s)",
			len(result.SchemaViolations), len(result.ContractViolations)))
	}
	return nil
}

func writeValidationText(f *OutputFormatter, result ValidationResult) {
	if result.Valid {
		fmt.Fprintf(f.Writer, "✓ Valid (%s)\n", shortHash(result.Hash))
		return
	}
	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, v := range result.SchemaViolations {
		fmt.Fprintf(f.Writer, "  %s: %s\n", ErrCodeSchema, v.String())
	}
	for _, v := range result.ContractViolations {
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n", v.Code, v.Field, v.Message)
	}
}

// decodeCanonical reads record as a form.Config by re-encoding it.
func decodeCanonical(record map[string]any) (form.Config, error) {
	var cfg form.Config
	raw, err := json.Marshal(record)
	if err != nil {
		return cfg, fmt.Errorf("encoding canonical config: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decoding canonical config: %w", err)
	}
	return cfg, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
