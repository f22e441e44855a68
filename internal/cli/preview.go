package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/publish"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/server"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Address string // overrides server.address
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve the preview API and published forms",
		Long: `Start the HTTP server: preview compilation of unsaved records, stored
records and publications, published forms, a submission sink for testing
compiled forms and Prometheus metrics at /metrics.

The server stops on SIGINT or SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPreview(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Address, "addr", "", "listen address (overrides server.address)")

	return cmd
}

func runPreview(ctx context.Context, opts *PreviewOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	e, err := loadEnv(opts.RootOptions)
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

	sc := e.cfg.Server
	if opts.Address != "" {
		sc.Address = opts.Address
	}
	srv := server.New(p, st, svc, e.log)
	if err := srv.ListenAndServe(ctx, server.ListenConfig{
		Address:         sc.Address,
		ReadTimeout:     sc.ReadTimeout,
		WriteTimeout:    sc.WriteTimeout,
		ShutdownTimeout: sc.ShutdownTimeout,
	}); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return nil
}
