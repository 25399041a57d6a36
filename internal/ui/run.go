package ui

import (
	"context"
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts the editor program and returns the final model. Width and
// height in opts, when set, pin the window size.
func Run(ctx context.Context, opts Options, startKeys []string, progOpts ...tea.ProgramOption) (*Model, error) {
	pinned := opts.Width > 0 && opts.Height > 0
	if !pinned {
		w, h := DetectTerminalSize()
		opts.Width, opts.Height = max(opts.Width, w), max(opts.Height, h)
	}
	m := NewModel(ctx, opts)
	ApplyStartupKeys(m, startKeys)

	if pinned {
		progOpts = append(progOpts, tea.WithWindowSize(opts.Width, opts.Height))
	}
	progOpts = append(progOpts, tea.WithContext(ctx))
	final, err := tea.NewProgram(m, progOpts...).Run()
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm, err
	}
	return m, err
}

// SnapshotConfig configures a single rendered frame.
type SnapshotConfig struct {
	Options
	StartKeys []string
}

// RenderSnapshot renders one frame without starting a program. A pending
// custom-field fetch runs synchronously first.
func RenderSnapshot(ctx context.Context, cfg SnapshotConfig) string {
	m := NewModel(ctx, cfg.Options)
	if cmd := m.Init(); cmd != nil {
		m.Update(cmd())
	}
	ApplyStartupKeys(m, cfg.StartKeys)
	return m.Render()
}

// DetectTerminalSize returns the size of the first terminal among stdout,
// stderr and stdin, falling back to $COLUMNS and then 80x24.
func DetectTerminalSize() (int, int) {
	for _, fd := range []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()} {
		if w, h, err := term.GetSize(int(fd)); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	if col, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && col > 0 {
		return col, defaultHeight
	}
	return defaultWidth, defaultHeight
}
