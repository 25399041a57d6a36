package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/pkg/logger"
)

var (
	completeOutput = newOutputFormat("text", "text", "json", "yaml", "toml")
	completeText   string
	completeFile   string
	completeCursor int
	completeSelect int
	completeCommit bool
	completeFields []string
)

type completeOptions struct {
	Buffer string
	// Cursor is a byte offset; negative means the end of the buffer.
	Cursor int
	Select int
	Commit bool
	Output string
}

// completeResult is the structured form of an uncommitted completion.
type completeResult struct {
	Phase         string              `json:"phase" yaml:"phase" toml:"phase"`
	CatalogStatus string              `json:"catalogStatus" yaml:"catalogStatus" toml:"catalogStatus"`
	Trigger       *completion.Trigger `json:"trigger,omitempty" yaml:"trigger,omitempty" toml:"trigger,omitempty"`
	Dropdown      completion.Dropdown `json:"dropdown" yaml:"dropdown" toml:"dropdown"`
}

var errNoTrigger = errors.New("no open placeholder before the cursor")

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Show the completion dropdown for a buffer and cursor",
	Long: `Run one completion step without an editor. The buffer comes from --text,
--file, or stdin ("--file -"). Without --commit the dropdown is printed; with
--commit the selected placeholder is inserted and the new buffer is printed.`,
	Example: "\n  tplx complete --text 'Dear {{cli'\n  tplx complete --text 'Dear {{cli' --select 1 --commit\n  cat reminder.md | tplx complete --file - --cursor 120 -o json\n",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		buffer := completeText
		if completeFile != "" {
			data, err := readInput(completeFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			buffer = data
		}
		engine := newEngine(rootCtx, appConfig, completeFields...)
		return runComplete(rootCtx, cmd.OutOrStdout(), engine, completeOptions{
			Buffer: buffer,
			Cursor: completeCursor,
			Select: completeSelect,
			Commit: completeCommit,
			Output: completeOutput.String(),
		})
	},
}

//nolint:gochecknoinits // cobra wiring
func init() {
	f := completeCmd.Flags()
	f.StringVar(&completeText, "text", "", "template text")
	f.StringVar(&completeFile, "file", "", "read the template from a file, or stdin with -")
	f.IntVar(&completeCursor, "cursor", -1, "cursor byte offset (default: end of the buffer)")
	f.IntVar(&completeSelect, "select", 0, "highlight the candidate at this index")
	f.BoolVar(&completeCommit, "commit", false, "insert the highlighted candidate and print the result")
	f.StringArrayVar(&completeFields, "fields", nil, "extra custom-field file (json/yaml/toml); repeatable")
	f.VarP(completeOutput, "output", "o", "output format: text|json|yaml|toml")
	completeCmd.MarkFlagsMutuallyExclusive("text", "file")
}

func runComplete(ctx context.Context, w io.Writer, engine *completion.Engine, opts completeOptions) error {
	lgr := logger.FromContext(ctx)
	sess := engine.Open()
	if sess.CatalogStatus() == completion.CatalogPending {
		sess.ResolveCatalog(engine.FetchFields(ctx))
	}
	lgr.V(1).Info("catalog", logger.CatalogVersionKey, sess.Catalog().Version(), "status", sess.CatalogStatus().String())

	cursor := opts.Cursor
	if cursor < 0 || cursor > len(opts.Buffer) {
		cursor = len(opts.Buffer)
	}
	st := sess.Update(opts.Buffer, cursor)
	if opts.Select != 0 && !sess.Hover(opts.Select) {
		return fmt.Errorf("selection %d out of range (%d candidates)", opts.Select, len(st.Filtered))
	}

	if opts.Commit {
		if !st.Active {
			return errNoTrigger
		}
		ins, ok := sess.Commit()
		if !ok {
			return fmt.Errorf("no placeholders match %q", st.Trigger.Term)
		}
		if isStructured(opts.Output) {
			return writeStructured(w, ins, opts.Output)
		}
		_, err := io.WriteString(w, ins.Buffer)
		if err == nil && !strings.HasSuffix(ins.Buffer, "\n") {
			_, err = io.WriteString(w, "\n")
		}
		return err
	}

	if isStructured(opts.Output) {
		res := completeResult{
			Phase:         sess.Phase().String(),
			CatalogStatus: sess.CatalogStatus().String(),
			Dropdown:      sess.Dropdown(),
		}
		if st.Active {
			trig := st.Trigger
			res.Trigger = &trig
		}
		return writeStructured(w, res, opts.Output)
	}
	_, err := io.WriteString(w, renderDropdownText(sess))
	return err
}

// renderDropdownText lists the candidates grouped by category, marking the
// selected one.
func renderDropdownText(sess *completion.Session) string {
	st := sess.State()
	if !st.Active {
		return fmt.Sprintf("no open placeholder at offset %d\n", st.Cursor)
	}
	d := sess.Dropdown()
	var b strings.Builder
	fmt.Fprintf(&b, "{{%s  (line %d, column %d)\n", d.SearchTerm, d.Anchor.Line+1, d.Anchor.Column+1)
	if !d.Visible {
		fmt.Fprintf(&b, "no placeholders match %q\n", d.SearchTerm)
		return b.String()
	}
	for _, g := range d.Groups {
		b.WriteString(g.Category + "\n")
		for i, t := range g.Items {
			marker := "  "
			if g.Indices[i] == d.Selected {
				marker = "› "
			}
			fmt.Fprintf(&b, "%s%3d  %-22s %s\n", marker, g.Indices[i], t.Value, t.Description)
		}
	}
	return b.String()
}
