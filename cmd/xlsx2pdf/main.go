package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/NikBulygin/xlsx2pdf/config"
	"github.com/NikBulygin/xlsx2pdf/core"
)

const envPrefix = "XLSX2PDF"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("Generation failed", "error", err)
		os.Exit(1)
	}
}

type logFlags struct {
	level  string
	format string
}

func (l *logFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&l.level, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&l.format, "log-format", "text", "log format: text or json")
}

func (l *logFlags) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.level)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q: %w", l.level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch l.format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid -log-format %q", l.format)
}

// decodeJSON parses an optional JSON object flag value.
func decodeJSON(name, value string, dst any) error {
	if value == "" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(value)))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid -%s: %w", name, err)
	}
	return nil
}

func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	generate := newGenerateCommand(stdout, stderr)
	validate := newValidateCommand(stdout, stderr)

	rootFS := flag.NewFlagSet("xlsx2pdf", flag.ContinueOnError)
	rootFS.SetOutput(stderr)
	root := &ffcli.Command{
		Name:        "xlsx2pdf",
		ShortUsage:  "xlsx2pdf <subcommand> [flags]",
		ShortHelp:   "Fill xlsx templates and render them as stamped PDFs.",
		FlagSet:     rootFS,
		Subcommands: []*ffcli.Command{generate, validate},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}
	return root.ParseAndRun(ctx, args)
}

func newGenerateCommand(stdout, stderr io.Writer) *ffcli.Command {
	fs := flag.NewFlagSet("xlsx2pdf generate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "xlsx2pdf.yaml", "path to the configuration bundle")
	report := fs.String("report", "", "report name")
	template := fs.String("template", "", "template workbook (overrides the report's)")
	resolver := fs.String("resolver", "", "extension program producing the parameters")
	watermark := fs.String("watermark", "", "watermark PDF; page 1 is overlaid on every page")
	outputDir := fs.String("out", "", "output directory")
	prepared := fs.Bool("prepared", false, "use -params as they are, without running the resolver")
	allowUnused := fs.Bool("allow-unused", false, "accept parameters that have no placeholder in the template")
	params := fs.String("params", "", "parameters as a JSON object")
	metadata := fs.String("metadata", "", "PDF metadata as a JSON object of strings")
	s3Bucket := fs.String("s3-bucket", "", "S3 bucket receiving the final PDF")
	s3Prefix := fs.String("s3-prefix", "xlsx2pdf", "S3 key prefix")
	var lf logFlags
	lf.register(fs)

	return &ffcli.Command{
		Name:       "generate",
		ShortUsage: "xlsx2pdf generate -config FILE -report NAME [flags]",
		ShortHelp:  "Generate one report and print the path of the PDF.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(ctx context.Context, _ []string) error {
			logger, err := lf.logger(stderr)
			if err != nil {
				return err
			}

			o := config.Overrides{
				Template:  *template,
				Resolver:  *resolver,
				Watermark: *watermark,
				OutputDir: *outputDir,
				Prepared:  *prepared,
			}
			if *params != "" {
				if o.Params, err = config.DecodeParams(strings.NewReader(*params)); err != nil {
					return fmt.Errorf("invalid -params: %w", err)
				}
			}
			if err := decodeJSON("metadata", *metadata, &o.Metadata); err != nil {
				return err
			}

			logger.Info("Loading configuration bundle", "file", *configFile)
			bundle, err := config.LoadBundle(*configFile)
			if err != nil {
				return err
			}
			rc, err := config.Prepare(bundle, *report, o)
			if err != nil {
				return err
			}

			path, err := generateReport(ctx, logger, bundle, rc, *allowUnused, *s3Bucket, *s3Prefix)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, path)
			return nil
		},
	}
}

func generateReport(ctx context.Context, logger *slog.Logger, bundle *config.Bundle, rc *config.RunConfig, allowUnused bool, bucket, prefix string) (string, error) {
	fetchers := core.NewSourceFetchers(logger)
	defer func() {
		if closeErr := fetchers.Close(); closeErr != nil {
			logger.Warn("Failed to close data sources", "error", closeErr)
		}
	}()

	gctx := core.NewGenerationContext(logger, rc.Report, config.NewRegistryFromBundle(bundle), fetchers, rc.Params, time.Now())

	var resolver core.ParamResolver = core.StaticResolver{}
	if rc.Resolver != "" {
		resolver = core.NewCommandResolver(logger, rc.Resolver, rc.Interpreter)
	}
	if len(rc.Tables) > 0 {
		resolver = &core.DataViewResolver{Base: resolver, Context: gctx}
	}

	var converter core.Converter
	if rc.Converter == config.ConverterBuiltin {
		converter = core.NewBuiltinConverter(logger)
	} else {
		converter = core.NewOfficeConverter(logger, rc.Converter)
	}

	gen := core.NewGenerator(logger, resolver, converter, core.NewPDFStamper(logger))
	gen.Engine.AllowUnused = allowUnused

	if bucket != "" {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return "", fmt.Errorf("unable to load AWS SDK config for S3: %w", err)
		}
		gen.Publisher = core.NewS3Uploader(logger, cfg, bucket, prefix)
	}

	return gen.Generate(ctx, core.Job{
		ReportName: rc.ReportName,
		Template:   rc.Template,
		OutputDir:  rc.OutputDir,
		Watermark:  rc.Watermark,
		Metadata:   rc.Metadata,
		Params:     gctx.Parameters,
	})
}

func newValidateCommand(stdout, stderr io.Writer) *ffcli.Command {
	fs := flag.NewFlagSet("xlsx2pdf validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "xlsx2pdf.yaml", "path to the configuration bundle")
	report := fs.String("report", "", "also check the files of this report")

	return &ffcli.Command{
		Name:       "validate",
		ShortUsage: "xlsx2pdf validate -config FILE [-report NAME]",
		ShortHelp:  "Check a configuration bundle without generating anything.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(ctx context.Context, _ []string) error {
			bundle, err := config.LoadBundle(*configFile)
			if err != nil {
				return err
			}
			if *report != "" {
				if _, err := config.Prepare(bundle, *report, config.Overrides{}); err != nil {
					return err
				}
			}
			fmt.Fprintf(stdout, "%s: ok (%d reports)\n", *configFile, len(bundle.Reports))
			return nil
		},
	}
}
