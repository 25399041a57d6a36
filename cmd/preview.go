package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/internal/preview"
	"github.com/oakwood-commons/tplx/pkg/loader"
)

var (
	previewOutput = newOutputFormat("text", "text", "html", "json", "yaml")
	previewText   string
	previewData   string
	previewStrict bool
	previewFields []string
)

type previewOptions struct {
	Template string
	Data     any
	Output   string
	Strict   bool
}

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Fill a template with sample values",
	Long: `Replace every known placeholder with a value from a sample document and
print the result. Placeholders that are not in the catalog, or that the sample
has no value for, are left as typed and reported on stderr.`,
	Example: "\n  tplx preview reminder.md\n  tplx preview reminder.md --data acme.yaml -o html\n  tplx preview --text 'Total: {{invoice_total}}' --strict\n",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template := previewText
		if len(args) == 1 {
			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			template = data
		}
		data, err := loadSampleData(previewData, appConfig.Preview.SampleData)
		if err != nil {
			return err
		}
		engine := newEngine(rootCtx, appConfig, previewFields...)
		return runPreview(rootCtx, cmd.OutOrStdout(), cmd.ErrOrStderr(), engine, previewOptions{
			Template: template,
			Data:     data,
			Output:   previewOutput.String(),
			Strict:   previewStrict,
		})
	},
}

//nolint:gochecknoinits // cobra wiring
func init() {
	f := previewCmd.Flags()
	f.StringVar(&previewText, "text", "", "template text (instead of a file)")
	f.StringVar(&previewData, "data", "", "sample document (json/yaml/toml); default from config or the bundled sample")
	f.BoolVar(&previewStrict, "strict", false, "fail when a placeholder is unknown or has no sample value")
	f.StringArrayVar(&previewFields, "fields", nil, "extra custom-field file (json/yaml/toml); repeatable")
	f.VarP(previewOutput, "output", "o", "output format: text|html|json|yaml")
}

// loadSampleData reads the first non-empty path, or the bundled sample.
func loadSampleData(paths ...string) (any, error) {
	for _, p := range paths {
		if p != "" {
			data, err := loader.LoadFile(p)
			if err != nil {
				return nil, fmt.Errorf("load sample data: %w", err)
			}
			return data, nil
		}
	}
	return preview.DefaultSampleData()
}

func runPreview(ctx context.Context, w, errw io.Writer, engine *completion.Engine, opts previewOptions) error {
	rnd, err := preview.New(engine.Catalog(ctx))
	if err != nil {
		return err
	}
	res, err := rnd.Render(opts.Template, opts.Data)
	if err != nil {
		return err
	}

	switch opts.Output {
	case "json", "yaml":
		if err := writeStructured(w, res, opts.Output); err != nil {
			return err
		}
	case "html":
		if _, err := w.Write(preview.ToHTML(res.Text)); err != nil {
			return err
		}
	default:
		text := res.Text
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
	}

	if len(res.Unknown) > 0 {
		fmt.Fprintf(errw, "unknown placeholders: %s\n", strings.Join(res.Unknown, ", "))
	}
	if len(res.Unresolved) > 0 {
		fmt.Fprintf(errw, "no sample value for: %s\n", strings.Join(res.Unresolved, ", "))
	}
	if opts.Strict && len(res.Unknown)+len(res.Unresolved) > 0 {
		return fmt.Errorf("%d placeholder(s) left unfilled", len(res.Unknown)+len(res.Unresolved))
	}
	return nil
}
