package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wakuwakusystemsharing/form-management-sub001/internal/compiler"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/pipeline"
	"github.com/wakuwakusystemsharing/form-management-sub001/internal/schema"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output directory
}

// CompiledFile is one written artifact file.
type CompiledFile struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Bytes int    `json:"bytes"`
}

// CompilationResult is the JSON payload of the compile command.
type CompilationResult struct {
	Hash     string         `json:"hash"`
	Title    string         `json:"title"`
	Files    []CompiledFile `json:"files"`
	Warnings []string       `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <record>",
		Short: "Compile a stored record into a static form",
		Long: `Normalize a stored record and compile it into index.html (a single
self-contained document) plus form.html, style.css and app.js.

Without --output only the summary is printed.

Exit codes:
  0 - Compiled
  2 - Unreadable input, contract violation or write failure`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	record, err := readRecord(path, cmd.InOrStdin())
	if err != nil {
		return failInput(formatter, err)
	}

	checker, err := schema.NewChecker()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	p := pipeline.New(pipeline.WithSchema(checker), pipeline.WithLogger(offlineLogger(opts.RootOptions)))

	res, err := p.Build(cmdContext(cmd), record)
	if err != nil {
		return failBuild(formatter, err)
	}

	result := CompilationResult{Hash: res.Artifact.Hash, Title: res.Config.BasicInfo.Title}
	for _, v := range res.SchemaViolations {
		result.Warnings = append(result.Warnings, v.String())
	}

	files := res.Artifact.Files()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	if opts.Output != "" {
		if err := os.MkdirAll(opts.Output, 0o755); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("creating output directory: %v", err), nil)
		}
	}
	for _, name := range names {
		f := CompiledFile{Name: name, Bytes: len(files[name])}
		if opts.Output != "" {
			f.Path = filepath.Join(opts.Output, name)
			if err := os.WriteFile(f.Path, files[name], 0o644); err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", name, err), nil)
			}
			formatter.VerboseLog("wrote %s", f.Path)
		}
		result.Files = append(result.Files, f)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %q (%s)\n\n", result.Title, shortHash(result.Hash))
	for _, f := range result.Files {
		target := f.Name
		if f.Path != "" {
			target = f.Path
		}
		fmt.Fprintf(formatter.Writer, "  %-24s %d bytes\n", target, f.Bytes)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Warnings:")
		for _, w := range result.Warnings {
			fmt.Fprintf(formatter.Writer, "  %s\n", w)
		}
	}
	return nil
}

// failBuild reports a pipeline error. Contract violations list every
// broken precondition.
func failBuild(f *OutputFormatter, err error) error {
	var ce *compiler.ContractError
	if errors.As(err, &ce) {
		return f.Fail(ExitCommandError, ErrCodeContract, "compiler contract violated", ce.Violations)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// cmdContext returns the command context, or Background when the command
// runs outside Execute (unit tests call RunE directly).
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
