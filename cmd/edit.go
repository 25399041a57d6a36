package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tplx/internal/ui"
	"github.com/oakwood-commons/tplx/pkg/logger"
	"github.com/oakwood-commons/tplx/pkg/settings"
)

var (
	editPress    []string
	editSnapshot bool
	editWidth    int
	editHeight   int
	editTheme    string
	editFields   []string
)

var editCmd = &cobra.Command{
	Use:   "edit [file]",
	Short: "Edit a template with live placeholder completion",
	Long: `Open a template in the terminal editor. Typing "{{" opens the completion
dropdown; up/down move the selection, tab or enter inserts, esc dismisses.
ctrl+s saves, ctrl+y copies the template to the clipboard, f1 toggles help.

A missing file is created on the first save. With "-" or piped input the
template is read from stdin and cannot be saved.`,
	Example: "\n  tplx edit reminder.md\n  tplx edit reminder.md --snapshot --press 'Dear {{cli' --width 80 --height 20\n",
	Args:    cobra.MaximumNArgs(1),
	Annotations: map[string]string{
		hostAnnotation: string(settings.HostEditor),
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, text, err := loadEditorText(args, cmd)
		if err != nil {
			return err
		}

		themeCfg := appConfig.Theme()
		if editTheme != "" {
			tc, ok := appConfig.Themes[editTheme]
			if !ok {
				return fmt.Errorf("unknown theme %q (available: %v)", editTheme, appConfig.ThemeNames())
			}
			themeCfg = tc
		}
		opts := ui.Options{
			Engine:     newEngine(rootCtx, appConfig, editFields...),
			Path:       path,
			Text:       text,
			Theme:      ui.ThemeFromConfig(themeCfg, appConfig.Editor.NoColor),
			MaxVisible: appConfig.Editor.MaxVisible,
			Width:      editWidth,
			Height:     editHeight,
			Logger:     *logger.FromContext(rootCtx),
		}

		if editSnapshot {
			if opts.Width <= 0 || opts.Height <= 0 {
				w, h := ui.DetectTerminalSize()
				opts.Width, opts.Height = max(opts.Width, w), max(opts.Height, h)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSnapshot(rootCtx, ui.SnapshotConfig{Options: opts, StartKeys: editPress}))
			return nil
		}

		progOpts, cleanup := editorProgramOptions()
		defer cleanup()
		final, err := ui.Run(rootCtx, opts, editPress, progOpts...)
		if err != nil {
			return err
		}
		if final.Dirty() {
			fmt.Fprintln(cmd.ErrOrStderr(), "unsaved changes discarded")
		}
		return nil
	},
}

//nolint:gochecknoinits // cobra wiring
func init() {
	f := editCmd.Flags()
	f.StringArrayVar(&editPress, "press", nil, "simulate keys on startup; <Key> for special keys (e.g. <Tab>, <Esc>, <Down>, <C-s>)")
	f.BoolVar(&editSnapshot, "snapshot", false, "render a single frame and exit; honors --width/--height")
	f.IntVar(&editWidth, "width", 0, "editor width in columns")
	f.IntVar(&editHeight, "height", 0, "editor height in rows")
	f.StringVar(&editTheme, "theme", "", "theme name (default from config)")
	f.StringArrayVar(&editFields, "fields", nil, "extra custom-field file (json/yaml/toml); repeatable")
}

// loadEditorText resolves the file argument. A missing file starts empty.
func loadEditorText(args []string, cmd *cobra.Command) (path, text string, err error) {
	if len(args) == 0 || args[0] == "-" {
		if len(args) == 0 && !stdinIsPiped() {
			return "", "", nil
		}
		text, err = readInput("-", cmd.InOrStdin())
		return "", text, err
	}
	path = args[0]
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return path, string(data), nil
	case errors.Is(err, fs.ErrNotExist):
		return path, "", nil
	default:
		return "", "", fmt.Errorf("read template: %w", err)
	}
}
