// Package main provides the CLI entry point for shapeinfer, a tool that
// infers a JSON Schema or Go source type from one or more JSON samples.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	shapeinfer "go.shapeinfer.dev/shapeinfer"
	"go.shapeinfer.dev/shapeinfer/codegen"
	"go.shapeinfer.dev/shapeinfer/discover"
	"go.shapeinfer.dev/shapeinfer/filter"
	"go.shapeinfer.dev/shapeinfer/log"
	"go.shapeinfer.dev/shapeinfer/profile"
	"go.shapeinfer.dev/shapeinfer/schemadoc"
	"go.shapeinfer.dev/shapeinfer/version"
)

func main() {
	cfg := shapeinfer.NewConfig()

	logCfg := log.NewConfig()
	profileCfg := profile.NewConfig()
	profiler := profileCfg.NewProfiler()

	var (
		configPath string
		shards     int
		typeName   string
		pkgName    string
		filterExpr string
	)

	rootCmd := &cobra.Command{
		Use:   "shapeinfer [flags] <file.json|dir|glob> [...]",
		Short: "Infer a JSON Schema or Go type from JSON samples",
		Long: `shapeinfer reads one or more JSON samples (files, directories, or globs)
and folds them into a single summary of the shapes observed: value ranges,
string enums and patterns, array arity, and object field presence. It emits
either a debug JSON Schema (--emit=schema, the default) or generated Go
source (--emit=go) describing a strict decoder for that shape.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return profiler.Start()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return profiler.Stop()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, logCfg, args, runOptions{
				configPath: configPath,
				shards:     shards,
				typeName:   typeName,
				pkgName:    pkgName,
				filterExpr: filterExpr,
			})
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())
	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	profileCfg.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.Flags().StringVar(&configPath, "config", "",
		"path to a YAML policy/hints config file (see shapeinfer.LoadConfigFile)")
	rootCmd.Flags().IntVar(&shards, "shards", 4,
		"number of concurrent folding workers")
	rootCmd.Flags().StringVar(&typeName, "type", "Document",
		"exported Go type name for --emit=go")
	rootCmd.Flags().StringVar(&pkgName, "package", "shapeinferred",
		"package name for --emit=go")
	rootCmd.Flags().StringVar(&filterExpr, "filter", "",
		`pre-filter expression selecting a sub-value out of each sample before inference, e.g. ".items[].price"`)

	for _, registerCompletions := range []func(*cobra.Command) error{
		cfg.RegisterCompletions, logCfg.RegisterCompletions, profileCfg.RegisterCompletions,
	} {
		if err := registerCompletions(rootCmd); err != nil {
			fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
		}
	}

	rootCmd.Version = version.Version

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath string
	shards     int
	typeName   string
	pkgName    string
	filterExpr string
}

func run(ctx context.Context, cfg *shapeinfer.Config, logCfg *log.Config, args []string, opts runOptions) error {
	handler, err := logCfg.NewHandler(os.Stderr)
	if err != nil {
		return err
	}

	logger := slog.New(handler)

	var auditPub *log.Publisher

	if cfg.AuditLog != "" {
		auditFile, openErr := os.OpenFile(cfg.AuditLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if openErr != nil {
			return fmt.Errorf("%w: opening audit log: %w", shapeinfer.ErrReadInput, openErr)
		}
		defer auditFile.Close()

		auditPub = log.NewPublisher()
		defer auditPub.Close()

		sub := auditPub.Subscribe()

		go func() {
			for entry := range sub.C() {
				auditFile.Write(entry)
			}
		}()
	}

	var literalHints []shapeinfer.Hint

	if opts.configPath != "" {
		literalHints, err = shapeinfer.LoadConfigFile(cfg, opts.configPath)
		if err != nil {
			return err
		}
	}

	gen := cfg.NewGenerator()

	discoverOpts := []discover.Option{
		discover.WithPolicy(cfg.Policy()),
		discover.WithShards(opts.shards),
	}

	if opts.filterExpr != "" {
		expr, parseErr := filter.Parse(opts.filterExpr)
		if parseErr != nil {
			return parseErr
		}

		discoverOpts = append(discoverOpts, discover.WithFilter(expr))
	}

	if len(literalHints) > 0 {
		discoverOpts = append(discoverOpts, discover.WithHinters(&shapeinfer.StaticHints{
			HinterName: "config-file",
			List:       literalHints,
		}))
	}

	interactive := term.IsTerminal(int(os.Stderr.Fd()))

	discoverOpts = append(discoverOpts, discover.WithNotice(func(path, msg string) {
		if auditPub != nil {
			fmt.Fprintf(auditPub, `{"path":%q,"msg":%q}`+"\n", path, msg)
		}

		if interactive {
			fmt.Fprintf(os.Stderr, "\x1b[2m%s: %s\x1b[0m\n", path, msg)
		}
	}))

	result, err := discover.Run(ctx, args, discoverOpts...)
	if err != nil {
		return err
	}

	for _, fileErr := range result.Errors {
		logger.Warn("skipping file", "path", fileErr.Path, "err", fileErr.Err)
	}

	logger.Debug("folded samples", "files", len(result.Files), "failures", len(result.Errors))

	var out []byte

	switch cfg.Emit {
	case "go":
		out, err = codegen.Generate(opts.pkgName, opts.typeName, result.Ty, gen.StrictCodegen())
		if err != nil {
			return err
		}
	case "schema", "":
		out, err = marshalSchema(schemadoc.Emit(result.Ty))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown --emit value %q", shapeinfer.ErrInvalidOption, cfg.Emit)
	}

	return writeOutput(cfg.Output, out)
}

func marshalSchema(schema any) ([]byte, error) {
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shapeinfer.ErrWriteOutput, err)
	}

	return append(out, '\n'), nil
}

func writeOutput(path string, out []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(out)
		if err != nil {
			return fmt.Errorf("%w: %w", shapeinfer.ErrWriteOutput, err)
		}

		return nil
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("%w: %w", shapeinfer.ErrWriteOutput, err)
	}

	return nil
}
