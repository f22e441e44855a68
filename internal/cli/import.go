package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/publish"
)

// ImportResult is the JSON payload of the import command.
type ImportResult struct {
	FormID    string    `json:"form_id"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <form-id> <record>",
		Short: "Store a record as the next revision of a form",
		Long: `Save a raw record (JSON or YAML, "-" for stdin) in the configured store.
The record is stored as given; it is normalized when compiled.

Examples:
  formc import salon-a record.json
  formc import salon-a legacy.yaml --config ./configs/formc.yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runImport(opts *RootOptions, formID, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if !publish.ValidFormID(formID) {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFormID, fmt.Sprintf("invalid form id %q", formID), nil)
	}
	record, err := readRecord(path, cmd.InOrStdin())
	if err != nil {
		return failInput(formatter, err)
	}

	e, err := loadEnv(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	defer e.Close()

	st, err := e.store()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	rec, err := st.SaveRecord(cmdContext(cmd), formID, record)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := ImportResult{FormID: rec.FormID, Revision: rec.Revision, CreatedAt: rec.CreatedAt}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %s revision %d\n", result.FormID, result.Revision)
	return nil
}
