package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/publish"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/store"
)

// PublishResult is the JSON payload of the publish command.
type PublishResult struct {
	FormID     string `json:"form_id"`
	Hash       string `json:"hash"`
	Dir        string `json:"dir"`
	Seq        int    `json:"seq"`
	Revision   int    `json:"revision"`
	Unchanged  bool   `json:"unchanged"`
	Cached     bool   `json:"cached"`
	Superseded string `json:"superseded,omitempty"`
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <form-id>",
		Short: "Compile the latest revision of a form and publish it",
		Long: `Build the latest stored revision of a form and write its files to
<publish.root>/<form-id>/<hash>/. Publishing an unchanged configuration
records nothing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runPublish(opts *RootOptions, formID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	ctx := cmdContext(cmd)

	if !publish.ValidFormID(formID) {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFormID, fmt.Sprintf("invalid form id %q", formID), nil)
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
	p, err := e.pipeline(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	svc := &publish.Service{
		Store:     st,
		Pipeline:  p,
		Publisher: publish.DirPublisher{Root: e.cfg.Publish.Root},
		Log:       e.log,
	}

	out, err := svc.Publish(ctx, formID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no stored record for %s", formID), nil)
	case err != nil:
		return failBuild(formatter, err)
	}

	result := PublishResult{
		FormID:    formID,
		Hash:      out.Publication.Hash,
		Dir:       out.Publication.Dir,
		Seq:       int(out.Publication.Seq),
		Revision:  out.Publication.Revision,
		Unchanged: out.Unchanged,
		Cached:    out.Result.Cached,
	}
	if out.Superseded != nil {
		result.Superseded = out.Superseded.Dir
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if result.Unchanged {
		fmt.Fprintf(formatter.Writer, "= %s unchanged (%s, seq %d)\n", formID, shortHash(result.Hash), result.Seq)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "✓ Published %s revision %d as seq %d\n", formID, result.Revision, result.Seq)
	fmt.Fprintf(formatter.Writer, "  %s\n", result.Dir)
	if result.Superseded != "" {
		fmt.Fprintf(formatter.Writer, "  supersedes %s\n", result.Superseded)
	}
	return nil
}
