// Package ui is the terminal template editor: a Bubble Tea model that hosts a
// completion session and renders its dropdown under the open placeholder.
package ui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/pkg/logger"
)

const (
	defaultWidth      = 80
	defaultHeight     = 24
	defaultMaxVisible = 8
	indentUnit        = "  "
)

// catalogMsg carries the custom-field fetch result into the update loop.
type catalogMsg struct {
	fields []completion.CustomField
	err    error
}

// cursorRestoreMsg moves the cursor after a commit, once the new buffer has
// been rendered.
type cursorRestoreMsg struct {
	cursor int
}

// Options configures a Model.
type Options struct {
	Engine     *completion.Engine
	Path       string
	Text       string
	Theme      Theme
	MaxVisible int
	Width      int
	Height     int
	Logger     logr.Logger
}

// Model is the editor state.
type Model struct {
	ctx     context.Context
	engine  *completion.Engine
	session *completion.Session
	log     logr.Logger

	keys  KeyMap
	help  help.Model
	theme Theme

	path   string
	buffer string
	cursor int
	// pendingCursor is the post-commit cursor waiting for its restore
	// message; -1 when none.
	pendingCursor int
	dirty         bool
	quitArmed     bool
	showHelp      bool

	status    string
	statusErr bool

	width      int
	height     int
	top        int
	maxVisible int
}

// NewModel creates an editor with the cursor at the end of the text.
func NewModel(ctx context.Context, opts Options) *Model {
	engine := opts.Engine
	if engine == nil {
		engine = completion.NewEngine(nil, nil, opts.Logger)
	}
	lgr := opts.Logger
	if lgr.GetSink() == nil {
		lgr = *logger.FromContext(ctx)
	}
	m := &Model{
		ctx:           ctx,
		engine:        engine,
		log:           lgr,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		theme:         opts.Theme,
		path:          opts.Path,
		buffer:        opts.Text,
		cursor:        len(opts.Text),
		pendingCursor: -1,
		width:         opts.Width,
		height:        opts.Height,
		maxVisible:    opts.MaxVisible,
	}
	if m.width <= 0 {
		m.width = defaultWidth
	}
	if m.height <= 0 {
		m.height = defaultHeight
	}
	if m.maxVisible <= 0 {
		m.maxVisible = defaultMaxVisible
	}
	m.session = engine.Open(completion.WithLogger(lgr))
	m.sync()
	return m
}

// Buffer returns the current text.
func (m *Model) Buffer() string { return m.buffer }

// Cursor returns the cursor byte offset.
func (m *Model) Cursor() int { return m.cursor }

// Session exposes the completion session.
func (m *Model) Session() *completion.Session { return m.session }

// Dirty reports unsaved changes.
func (m *Model) Dirty() bool { return m.dirty }

// Status returns the status line text.
func (m *Model) Status() string { return m.status }

// Init starts the custom-field fetch when the catalog is still pending.
func (m *Model) Init() tea.Cmd {
	if m.session.CatalogStatus() != completion.CatalogPending {
		return nil
	}
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		fields, err := engine.FetchFields(ctx)
		return catalogMsg{fields: fields, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scrollToCursor()
		return m, nil
	case catalogMsg:
		m.resolveCatalog(msg.fields, msg.err)
		return m, nil
	case cursorRestoreMsg:
		m.restoreCursor(msg.cursor)
		return m, nil
	case tea.PasteMsg:
		m.restoreCursor(m.pendingCursor)
		m.buffer, m.cursor = insertAt(m.buffer, m.cursor, msg.Content)
		m.edited()
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) resolveCatalog(fields []completion.CustomField, err error) {
	if !m.session.ResolveCatalog(fields, err) {
		return
	}
	cat := m.session.Catalog()
	if err != nil {
		m.setStatus("custom fields unavailable; static placeholders only", true)
		return
	}
	m.log.V(1).Info("catalog ready", logger.CatalogVersionKey, cat.Version(), "tokens", cat.Len())
	m.setStatus(fmt.Sprintf("%d placeholders loaded", cat.Len()), false)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.restoreCursor(m.pendingCursor)

	if !key.Matches(msg, m.keys.Quit) {
		m.quitArmed = false
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.dirty && !m.quitArmed {
			m.quitArmed = true
			m.setStatus("unsaved changes; press ctrl+q again to quit", true)
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Save):
		m.save()
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		if err := CopyToClipboard(m.buffer); err != nil {
			m.setStatus("copy failed: "+err.Error(), true)
		} else {
			m.setStatus("template copied to clipboard", false)
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	if m.session.State().Visible {
		switch {
		case key.Matches(msg, m.keys.Down):
			m.session.MoveDown()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.session.MoveUp()
			return m, nil
		case key.Matches(msg, m.keys.Accept):
			return m, m.commit()
		case key.Matches(msg, m.keys.Dismiss):
			m.session.Cancel()
			return m, nil
		}
	}

	switch msg.String() {
	case "enter":
		m.buffer, m.cursor = insertAt(m.buffer, m.cursor, "\n")
		m.edited()
	case "tab":
		m.buffer, m.cursor = insertAt(m.buffer, m.cursor, indentUnit)
		m.edited()
	case "backspace":
		m.buffer, m.cursor = deleteBefore(m.buffer, m.cursor)
		m.edited()
	case "delete":
		m.buffer = deleteAfter(m.buffer, m.cursor)
		m.edited()
	case "left":
		m.cursor = moveLeft(m.buffer, m.cursor)
		m.sync()
	case "right":
		m.cursor = moveRight(m.buffer, m.cursor)
		m.sync()
	case "up":
		m.cursor = moveUp(m.buffer, m.cursor)
		m.sync()
	case "down":
		m.cursor = moveDown(m.buffer, m.cursor)
		m.sync()
	case "home", "ctrl+a":
		m.cursor = lineStart(m.buffer, m.cursor)
		m.sync()
	case "end", "ctrl+e":
		m.cursor = lineEnd(m.buffer, m.cursor)
		m.sync()
	case "esc":
		m.session.Cancel()
	default:
		if msg.Text != "" {
			m.buffer, m.cursor = insertAt(m.buffer, m.cursor, msg.Text)
			m.edited()
		}
	}
	return m, nil
}

// commit splices the selected token in and schedules the cursor restore.
func (m *Model) commit() tea.Cmd {
	ins, ok := m.session.Commit()
	if !ok {
		return nil
	}
	m.buffer = ins.Buffer
	m.dirty = true
	m.pendingCursor = ins.Cursor
	if m.cursor > len(m.buffer) {
		m.cursor = len(m.buffer)
	}
	return func() tea.Msg { return cursorRestoreMsg{cursor: ins.Cursor} }
}

func (m *Model) restoreCursor(cursor int) {
	if m.pendingCursor < 0 || cursor < 0 {
		return
	}
	m.pendingCursor = -1
	m.cursor = min(cursor, len(m.buffer))
	m.sync()
}

func (m *Model) edited() {
	m.dirty = true
	m.sync()
}

// sync hands the buffer and cursor to the session, which recomputes the
// trigger and candidates from scratch.
func (m *Model) sync() {
	m.session.Update(m.buffer, m.cursor)
	m.scrollToCursor()
}

func (m *Model) bodyHeight() int {
	h := m.height - 3
	if m.showHelp {
		h -= len(m.keys.FullHelp()[0]) - 1
	}
	return max(h, 1)
}

func (m *Model) scrollToCursor() {
	line := cursorLine(m.buffer, m.cursor)
	h := m.bodyHeight()
	if line < m.top {
		m.top = line
	}
	if line >= m.top+h {
		m.top = line - h + 1
	}
}

func (m *Model) save() {
	if m.path == "" {
		m.setStatus("no file to save to; start the editor with a path", true)
		return
	}
	if err := writeFileAtomic(m.path, []byte(m.buffer)); err != nil {
		m.log.Error(err, "save failed", "path", m.path)
		m.setStatus("save failed: "+err.Error(), true)
		return
	}
	m.dirty = false
	m.log.V(1).Info("template saved", "path", m.path, "bytes", len(m.buffer))
	m.setStatus("saved "+m.path, false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// View renders the editor on the alternate screen.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render returns the current frame as a string.
func (m *Model) Render() string {
	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteByte('\n')
	sb.WriteString(strings.Join(m.renderBody(), "\n"))
	sb.WriteByte('\n')
	sb.WriteString(m.renderFooter())
	return sb.String()
}
