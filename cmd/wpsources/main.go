package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/webpack/webpack-sources/internal/logger"
	"github.com/webpack/webpack-sources/internal/sourcemap"
	"github.com/webpack/webpack-sources/pkg/api"
)

const wpsourcesVersion = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		logger.PrintErrorToStderr(os.Args, err.Error())
		os.Exit(1)
	}
}

type buildFlags struct {
	manifest              string
	sourcemap             string
	linesOnly             bool
	asciiOnly             bool
	sourceRoot            string
	excludeSourcesContent bool
	outdir                string
	fileName              string
	logLevel              string
	color                 string
	errorLimit            int
}

func (flags *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flags.manifest, "manifest", "m", "bundle.yaml", "The bundle manifest")
	cmd.Flags().StringVar(&flags.sourcemap, "sourcemap", "", "Source map mode (none, inline, linked, external)")
	cmd.Flags().BoolVar(&flags.linesOnly, "lines-only", false, "Map whole lines instead of tokens")
	cmd.Flags().BoolVar(&flags.asciiOnly, "ascii-only", false, "Escape non-ASCII characters in source maps")
	cmd.Flags().StringVar(&flags.sourceRoot, "source-root", "", "The \"sourceRoot\" of generated source maps")
	cmd.Flags().BoolVar(&flags.excludeSourcesContent, "exclude-sources-content", false, "Leave \"sourcesContent\" out of source maps")
	cmd.Flags().StringVar(&flags.outdir, "outdir", "", "The output directory")
	cmd.Flags().StringVar(&flags.fileName, "file-name", "", "Output file name template using [name] and [hash]")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "Logging level (verbose, info, warning, error, silent)")
	cmd.Flags().StringVar(&flags.color, "color", "", "Force use of color terminal escapes (true or false)")
	cmd.Flags().IntVar(&flags.errorLimit, "error-limit", 10, "Maximum error count or 0 to disable")
}

func (flags *buildFlags) options() (api.BuildOptions, error) {
	options := api.BuildOptions{
		Manifest:              flags.manifest,
		LinesOnly:             flags.linesOnly,
		ASCIIOnly:             flags.asciiOnly,
		SourceRoot:            flags.sourceRoot,
		ExcludeSourcesContent: flags.excludeSourcesContent,
		Outdir:                flags.outdir,
		FileName:              flags.fileName,
		ErrorLimit:            flags.errorLimit,
		Write:                 true,
	}

	switch flags.sourcemap {
	case "":
		options.Sourcemap = api.SourceMapDefault
	case "none", "false":
		options.Sourcemap = api.SourceMapNone
	case "inline":
		options.Sourcemap = api.SourceMapInline
	case "linked", "true":
		options.Sourcemap = api.SourceMapLinked
	case "external":
		options.Sourcemap = api.SourceMapExternal
	default:
		return api.BuildOptions{}, fmt.Errorf("invalid source map mode %q", flags.sourcemap)
	}

	switch flags.logLevel {
	case "verbose":
		options.LogLevel = api.LogLevelVerbose
	case "info":
		options.LogLevel = api.LogLevelInfo
	case "warning":
		options.LogLevel = api.LogLevelWarning
	case "error":
		options.LogLevel = api.LogLevelError
	case "silent":
		options.LogLevel = api.LogLevelSilent
	default:
		return api.BuildOptions{}, fmt.Errorf("invalid log level %q", flags.logLevel)
	}

	switch flags.color {
	case "":
		options.Color = api.ColorIfTerminal
	case "true":
		options.Color = api.ColorAlways
	case "false":
		options.Color = api.ColorNever
	default:
		return api.BuildOptions{}, fmt.Errorf("invalid color %q (valid: true, false)", flags.color)
	}
	return options, nil
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wpsources",
		Short:         "Compose modules into chunks with exact source maps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(buildCmd(), watchCmd(), lookupCmd(), versionCmd())
	return cmd
}

func buildCmd() *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the chunks of a manifest once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := flags.options()
			if err != nil {
				return err
			}
			result := api.Build(options)
			if len(result.Errors) > 0 {
				// The errors were already printed by the build
				os.Exit(1)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func watchCmd() *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build the chunks of a manifest and rebuild when inputs change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := flags.options()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return api.Watch(ctx, options, nil)
		},
	}
	flags.register(cmd)
	return cmd
}

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <file.map> <line> <column>",
		Short: "Print the original position of a generated position",
		Long: `Print the original position of a generated position. The line is
1-based and the column is 0-based, counted in UTF-16 code units.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil || line < 1 {
				return fmt.Errorf("invalid line %q", args[1])
			}
			column, err := strconv.Atoi(args[2])
			if err != nil || column < 0 {
				return fmt.Errorf("invalid column %q", args[2])
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sm, err := sourcemap.Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			text, ok := lookup(sm, line, column)
			if !ok {
				return fmt.Errorf("no original position for %d:%d", line, column)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func lookup(sm *sourcemap.SourceMap, line int, column int) (string, bool) {
	mapping := sourcemap.Find(sourcemap.DecodeMappings(sm.Mappings), line, column)
	if mapping == nil || mapping.SourceIndex < 0 {
		return "", false
	}
	text := fmt.Sprintf("%s:%d:%d", sm.SourceAt(mapping.SourceIndex), mapping.OriginalLine, mapping.OriginalColumn)
	if mapping.NameIndex >= 0 && mapping.NameIndex < len(sm.Names) {
		text += " (" + sm.Names[mapping.NameIndex] + ")"
	}
	return text, true
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), wpsourcesVersion)
		},
	}
}
