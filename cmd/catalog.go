package cmd

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/internal/config"
	"github.com/oakwood-commons/tplx/internal/formatter"
	"github.com/oakwood-commons/tplx/internal/limiter"
	"github.com/oakwood-commons/tplx/internal/ui"
)

var (
	catalogOutput   = newOutputFormat("table", "table", "tree", "json", "yaml", "toml")
	catalogSearch   string
	catalogCategory string
	catalogFields   []string
	catalogWidth    int
	catalogPage     limiter.Config
)

// catalogDocument is the structured form of a catalog listing.
type catalogDocument struct {
	Version       string             `json:"version" yaml:"version" toml:"version"`
	StaticVersion string             `json:"staticVersion" yaml:"staticVersion" toml:"staticVersion"`
	Tokens        []completion.Token `json:"tokens" yaml:"tokens" toml:"tokens"`
}

type catalogOptions struct {
	Output   string
	Search   string
	Category string
	Width    int
	NoColor  bool
	Theme    config.ThemeConfig
	Page     limiter.Config
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the placeholders available for completion",
	Long: `List the merged placeholder catalog: the shipped tokens followed by the
custom fields from the configured sources.`,
	Example: "\n  tplx catalog\n  tplx catalog --search pay -o json\n  tplx catalog --fields fields.yaml -o tree\n",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine := newEngine(rootCtx, appConfig, catalogFields...)
		width := catalogWidth
		if width <= 0 {
			width, _ = ui.DetectTerminalSize()
		}
		return runCatalog(rootCtx, cmd.OutOrStdout(), engine, catalogOptions{
			Output:   catalogOutput.String(),
			Search:   catalogSearch,
			Category: catalogCategory,
			Width:    width,
			NoColor:  appConfig.Editor.NoColor,
			Theme:    appConfig.Theme(),
			Page:     catalogPage,
		})
	},
}

//nolint:gochecknoinits // cobra wiring
func init() {
	f := catalogCmd.Flags()
	f.VarP(catalogOutput, "output", "o", "output format: table|tree|json|yaml|toml")
	f.StringVar(&catalogSearch, "search", "", "only list tokens whose value or description contains this text")
	f.StringVar(&catalogCategory, "category", "", "only list tokens in this category")
	f.StringArrayVar(&catalogFields, "fields", nil, "extra custom-field file (json/yaml/toml); repeatable")
	f.IntVar(&catalogWidth, "width", 0, "table width in columns (default: terminal width)")
	f.IntVar(&catalogPage.Limit, "limit", 0, "list at most this many tokens")
	f.IntVar(&catalogPage.Offset, "offset", 0, "skip the first N tokens")
	f.IntVar(&catalogPage.Tail, "tail", 0, "list only the last N tokens")
}

func runCatalog(ctx context.Context, w io.Writer, engine *completion.Engine, opts catalogOptions) error {
	cat := engine.Catalog(ctx)
	tokens := cat.Search(opts.Search)
	if opts.Category != "" {
		kept := tokens[:0]
		for _, t := range tokens {
			if strings.EqualFold(t.Category, opts.Category) {
				kept = append(kept, t)
			}
		}
		tokens = kept
	}
	if err := opts.Page.Validate(); err != nil {
		return err
	}
	total := len(tokens)
	tokens = limiter.Apply(opts.Page, tokens)

	switch {
	case isStructured(opts.Output):
		return writeStructured(w, catalogDocument{
			Version:       cat.Version(),
			StaticVersion: completion.StaticCatalogVersion,
			Tokens:        tokens,
		}, opts.Output)
	case opts.Output == "tree":
		_, err := io.WriteString(w, renderCatalogTree(cat.Version(), tokens))
		return err
	default:
		if len(tokens) == 0 {
			_, err := fmt.Fprintln(w, "no matching placeholders")
			return err
		}
		rows := make([][]string, 0, len(tokens))
		for _, t := range tokens {
			rows = append(rows, []string{t.Value, t.Category, t.Description})
		}
		_, err := io.WriteString(w, formatter.RenderTable([]string{"TOKEN", "CATEGORY", "DESCRIPTION"}, rows, formatter.TableOptions{
			Width:   opts.Width,
			NoColor: opts.NoColor,
			Colors:  tableColors(opts.Theme),
		}))
		if summary := opts.Page.Summary(total); err == nil && summary != "" {
			_, err = fmt.Fprintf(w, "(%s)\n", summary)
		}
		return err
	}
}

func renderCatalogTree(version string, tokens []completion.Token) string {
	groups := completion.GroupByCategory(tokens)
	branches := make([]formatter.Branch, 0, len(groups))
	for _, g := range groups {
		br := formatter.Branch{Name: g.Category}
		for _, t := range g.Items {
			br.Leaves = append(br.Leaves, formatter.Leaf{Name: t.Value, Meta: t.Description})
		}
		branches = append(branches, br)
	}
	return formatter.RenderTree("catalog "+version, branches, formatter.TreeOptions{Counts: true})
}

func tableColors(tc config.ThemeConfig) formatter.TableColors {
	c := func(v config.ColorValue) color.Color {
		if strings.TrimSpace(string(v)) == "" {
			return nil
		}
		return lipgloss.Color(string(v))
	}
	return formatter.TableColors{
		Header:    c(tc.Accent),
		Key:       c(tc.Category),
		Value:     c(tc.Text),
		Separator: c(tc.Border),
	}
}
