package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medsai/report-engine/internal/logging"
	"github.com/medsai/report-engine/pkg/reporting"
)

type renderOptions struct {
	input   string
	output  string
	format  string
	catalog string
}

func newRenderCmd() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an analysis record file into a report",
		Long: `Render reads an analysis record (JSON, or YAML for .yaml/.yml files) and
writes the report. Use "-" for stdin or stdout.`,
		Example: `  medsai-report render -i record.json -o report.pdf
  medsai-report render -i record.yaml --format csv -o -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "analysis record file (JSON or YAML), - for stdin")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default analysis_report.<format>)")
	cmd.Flags().StringVar(&opts.format, "format", "pdf", "report format: pdf or csv")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "workup catalog TOML file overriding the built-in panels")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions) error {
	format, err := reporting.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}

	parse := reporting.ParseJSON
	switch strings.ToLower(filepath.Ext(opts.input)) {
	case ".yaml", ".yml":
		parse = reporting.ParseYAML
	}
	rec, err := parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.input, err)
	}

	logger := logging.New("render", logging.WithWriter(cmd.ErrOrStderr()))
	engineOpts := []reporting.Option{reporting.WithLogger(logger)}
	if opts.catalog != "" {
		catalog, err := reporting.LoadWorkupCatalog(opts.catalog)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, reporting.WithWorkupCatalog(catalog))
	}

	res, err := reporting.NewReportEngine(engineOpts...).Generate(reporting.Request{Record: rec, Format: format})
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = "analysis_report" + format.Extension()
	}
	if output == "-" {
		_, err = cmd.OutOrStdout().Write(res.Data)
		return err
	}
	if err := os.WriteFile(output, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	if format == reporting.FormatPDF {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d pages, %d bytes)\n", output, res.Pages, len(res.Data))
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", output, len(res.Data))
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
