package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-certidao-reader/internal/certidao"
	"github.com/a3tai/mcp-certidao-reader/internal/config"
	"github.com/a3tai/mcp-certidao-reader/internal/document"
	"github.com/a3tai/mcp-certidao-reader/internal/form"
	"github.com/a3tai/mcp-certidao-reader/internal/logging"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type options struct {
	dir         string
	logLevel    string
	format      string
	maxFileSize int64

	receita string
	fgts    string
	sefaz   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "certidao-extract",
		Short: "Extract report fields from Brazilian tax compliance certificates",
		Long: `Extract CNPJ, dates and situação from Receita Federal, FGTS and SEFAZ
certificates without running the MCP server.

Examples:
  certidao-extract extract fgts crf.pdf            # one file, kind given
  certidao-extract extract auto rf.pdf --format json
  pdftotext rf.pdf - | certidao-extract extract receita_federal -
  certidao-extract fill --receita rf.pdf --fgts crf.pdf --sefaz sefaz.pdf
  certidao-extract kinds`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dir, "dir", ".", "Directory containing certificate PDFs")
	root.PersistentFlags().StringVar(&opts.logLevel, "loglevel", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", formatText, "Output format (text, json)")
	root.PersistentFlags().Int64Var(&opts.maxFileSize, "maxfilesize", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")

	root.AddCommand(newExtractCmd(opts), newFillCmd(opts), newKindsCmd(opts))
	return root
}

func newExtractCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <kind|auto> <file.pdf|->",
		Short: "Extract the fields of one certificate",
		Long: `Extract the fields of one certificate. The kind is receita_federal, fgts,
sefaz or auto. A file of "-" reads the certificate text from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			service, err := newService(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runExtract(cmd.Context(), service, kind, args[1], cmd.InOrStdin(), cmd.OutOrStdout(), opts.format)
		},
	}
}

func newFillCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Merge several certificates into the report form payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			var files []document.FileRequest
			for _, f := range []document.FileRequest{
				{Path: opts.receita, Kind: certidao.KindReceitaFederal},
				{Path: opts.fgts, Kind: certidao.KindFGTS},
				{Path: opts.sefaz, Kind: certidao.KindSEFAZ},
			} {
				if f.Path != "" {
					files = append(files, f)
				}
			}
			if len(files) == 0 {
				return errors.WithHint(errors.New("no certificate given"), "pass at least one of --receita, --fgts or --sefaz")
			}

			service, err := newService(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			report, err := service.ExtractAll(cmd.Context(), files)
			if err != nil {
				return err
			}
			if opts.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&opts.receita, "receita", "", "Receita Federal situação fiscal PDF")
	cmd.Flags().StringVar(&opts.fgts, "fgts", "", "FGTS CRF PDF")
	cmd.Flags().StringVar(&opts.sefaz, "sefaz", "", "SEFAZ certificate or debit extract PDF")
	return cmd
}

func newKindsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List supported certificate kinds and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			if opts.format == formatJSON {
				schemas := make(map[string][]string)
				for _, k := range certidao.Kinds() {
					schemas[k.String()] = k.Schema()
				}
				return writeJSON(cmd.OutOrStdout(), schemas)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tFIELD\tFORM CONTROL")
			for _, k := range certidao.Kinds() {
				for _, field := range k.Schema() {
					control, _ := form.Control(k, field)
					fmt.Fprintf(tw, "%s\t%s\t%s\n", k, field, control)
				}
			}
			return tw.Flush()
		},
	}
}

func newService(opts *options, logOut io.Writer) (*document.Service, error) {
	logger, err := logging.NewWithWriter(opts.logLevel, config.LogFormatConsole, logOut)
	if err != nil {
		return nil, err
	}
	return document.NewService(opts.maxFileSize, opts.dir, logger)
}

func runExtract(ctx context.Context, service *document.Service, kind certidao.Kind, file string, in io.Reader, out io.Writer, format string) error {
	if file == "-" {
		raw, err := io.ReadAll(in)
		if err != nil {
			return errors.Wrap(err, "read stdin")
		}
		result, guess, err := service.ExtractText(ctx, string(raw), kind)
		if err != nil {
			return err
		}
		if format == formatJSON {
			return writeJSON(out, map[string]any{"classification": guess, "result": result})
		}
		return writeResult(out, result)
	}

	ex, err := service.ExtractFile(ctx, file, kind)
	if err != nil {
		return err
	}
	if format == formatJSON {
		return writeJSON(out, ex)
	}
	if ex.Standing != nil {
		fmt.Fprintf(out, "standing: %s\n", ex.Standing.Status)
	}
	return writeResult(out, ex.Result)
}

func parseKindArg(raw string) (certidao.Kind, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "auto") {
		return "", nil
	}
	return certidao.ParseKind(raw)
}

func checkFormat(format string) error {
	if format != formatText && format != formatJSON {
		return errors.Newf("unknown format %q (use text or json)", format)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResult(out io.Writer, result *certidao.Result) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "kind\t%s\n", result.Kind)
	for _, name := range result.Kind.Schema() {
		field, _ := result.Get(name)
		switch {
		case !field.Found:
			fmt.Fprintf(tw, "%s\t-\n", name)
		case certidao.IsListField(name):
			fmt.Fprintf(tw, "%s\t%s\n", name, strings.Join(field.Values, "; "))
		default:
			fmt.Fprintf(tw, "%s\t%s\n", name, field.Value)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	return nil
}

func writeReport(out io.Writer, report *document.Report) error {
	for _, f := range report.Failures {
		fmt.Fprintf(out, "failed: %s: %s\n", f.Path, f.Error)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, key := range report.Payload.Keys() {
		value := report.Payload[key]
		if rows, ok := value.([]string); ok {
			value = strings.Join(rows, "; ")
		}
		fmt.Fprintf(tw, "%s\t%v\n", key, value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if report.ValidationError != "" {
		fmt.Fprintf(out, "warning: payload failed validation: %s\n", report.ValidationError)
	}
	return nil
}
