package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	platformcmd "github.com/muslimbek77/tanlov-ai/internal/platform/cmd"
	platformi18n "github.com/muslimbek77/tanlov-ai/internal/platform/i18n"
	"github.com/muslimbek77/tanlov-ai/internal/services/analysis"
)

type exportFunc func(c *analysis.Client, ctx context.Context, result analysis.Result, lang platformi18n.Language) (analysis.Export, error)

func newExportCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a finished analysis as a report",
		Long: `Render a finished analysis as a report.

The result comes from [result-json] or, without it, from the stored analysis.
The report is written under the name the service suggests unless --output is
given; --output - writes it to stdout.`,
	}

	formats := []struct {
		use, short string
		render     exportFunc
	}{
		{"pdf", "Render a PDF report", (*analysis.Client).ExportPDF},
		{"excel", "Render an Excel workbook", (*analysis.Client).ExportExcel},
		{"csv", "Render a CSV table", (*analysis.Client).ExportCSV},
	}
	for _, format := range formats {
		var output string
		sub := &cobra.Command{
			Use:   format.use + " [result-json]",
			Short: format.short,
			Args:  cobra.MaximumNArgs(1),
			RunE: app.traced(platformcmd.ServiceCLI, func(cmd *cobra.Command, args []string) error {
				return app.runExport(cmd, args, output, format.render)
			}),
		}
		sub.Flags().StringVarP(&output, "output", "o", "", "output file path")
		cmd.AddCommand(sub)
	}
	return cmd
}

func (c *cli) runExport(cmd *cobra.Command, args []string, output string, render exportFunc) error {
	ctx := cmd.Context()
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	result, err := c.readResult(ctx, path)
	if err != nil {
		return err
	}

	export, err := render(c.analysisClient(ctx), ctx, result, c.language(ctx))
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := c.stdout.Write(export.Body)
		return err
	}
	if output == "" {
		output = filepath.Base(export.Filename)
	}
	if err := os.WriteFile(output, export.Body, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if c.jsonOut {
		return outputJSON(c.stdout, map[string]any{
			"path":         output,
			"content_type": export.ContentType,
			"bytes":        len(export.Body),
		})
	}
	_, err = fmt.Fprintf(c.stdout, "%s (%d bytes)\n", output, len(export.Body))
	return err
}
