package completion

import (
	"github.com/go-logr/logr"
)

// Phase is the lifecycle position of a completion session.
type Phase int

const (
	PhaseIdle     Phase = iota // No open trigger before the cursor
	PhaseMatching              // A trigger is open and candidates are being offered
)

func (p Phase) String() string {
	if p == PhaseMatching {
		return "matching"
	}
	return "idle"
}

// CatalogStatus tracks the one-time custom-field fetch of a session.
type CatalogStatus int

const (
	CatalogPending CatalogStatus = iota // Fetch in flight; static tokens only
	CatalogReady                        // Custom fields merged
	CatalogFailed                       // Fetch failed; static tokens for the rest of the session
)

func (c CatalogStatus) String() string {
	switch c {
	case CatalogReady:
		return "ready"
	case CatalogFailed:
		return "failed"
	default:
		return "pending"
	}
}

// State is a snapshot of the editor state owned by a Session.
type State struct {
	Buffer   string  `json:"buffer"`
	Cursor   int     `json:"cursor"`
	Active   bool    `json:"active"`
	Trigger  Trigger `json:"trigger"`
	Filtered []Token `json:"filtered"`
	Selected int     `json:"selectedIndex"`
	// Visible is Active with a non-empty candidate list. An empty list leaves
	// the session open so that editing the term can bring matches back.
	Visible bool `json:"visible"`
}

// Dropdown is what a host needs to render the candidate list.
type Dropdown struct {
	Visible    bool    `json:"visible"`
	SearchTerm string  `json:"searchTerm"`
	Groups     []Group `json:"groupedCandidates"`
	Selected   int     `json:"selectedIndex"`
	Anchor     Anchor  `json:"anchor"`
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger used for catalog diagnostics.
func WithLogger(lgr logr.Logger) SessionOption {
	return func(s *Session) { s.log = lgr }
}

// WithCommitHook registers fn to run after every successful commit.
func WithCommitHook(fn func(Insertion)) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// Session owns the completion state of one editor. Every buffer or cursor
// change is handled by Update, which recomputes trigger, candidates, and
// selection from scratch. A Session is not safe for concurrent use; hosts feed
// it events one at a time.
type Session struct {
	static  []Token
	catalog *Catalog
	status  CatalogStatus

	buffer   string
	cursor   int
	trigger  Trigger
	active   bool
	filtered []Token
	sel      Selection

	log   logr.Logger
	hooks []func(Insertion)
}

// NewSession opens a session over the static list with the custom-field fetch
// still pending. Call ResolveCatalog when the fetch completes.
func NewSession(static []Token, opts ...SessionOption) *Session {
	s := &Session{
		static:  append([]Token(nil), static...),
		catalog: NewCatalog(static),
		status:  CatalogPending,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewReadySession opens a session over an already merged catalog.
func NewReadySession(catalog *Catalog, opts ...SessionOption) *Session {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	s := NewSession(catalog.tokens, opts...)
	s.catalog = catalog
	s.status = CatalogReady
	return s
}

// ResolveCatalog delivers the result of the custom-field fetch. Only the first
// call has an effect. On error the session keeps the static catalog for good.
// If a trigger is open, candidates are recomputed against the new catalog.
func (s *Session) ResolveCatalog(fields []CustomField, err error) bool {
	if s.status != CatalogPending {
		return false
	}
	if err != nil {
		s.status = CatalogFailed
		s.log.V(1).Info("custom fields unavailable, using static catalog", "error", err.Error())
		return true
	}
	s.catalog = NewMergedCatalog(s.static, fields)
	s.status = CatalogReady
	s.log.V(1).Info("catalog ready", "tokens", s.catalog.Len(), "catalog_version", s.catalog.Version())
	if s.active {
		s.recompute()
	}
	return true
}

// CatalogStatus reports the state of the custom-field fetch.
func (s *Session) CatalogStatus() CatalogStatus { return s.status }

// Catalog returns the catalog candidates are currently drawn from.
func (s *Session) Catalog() *Catalog { return s.catalog }

// Update records a new buffer and cursor and recomputes the session.
func (s *Session) Update(buffer string, cursor int) State {
	s.buffer = buffer
	s.cursor = clampOffset(buffer, cursor)
	s.recompute()
	return s.State()
}

func (s *Session) recompute() {
	t, ok := DetectTrigger(s.buffer, s.cursor)
	s.trigger, s.active = t, ok
	if !ok {
		s.filtered = nil
		s.sel.Reset(0)
		return
	}
	s.filtered = Filter(s.catalog.tokens, t.Term)
	s.sel.Reset(len(s.filtered))
}

// Phase reports whether a trigger is open.
func (s *Session) Phase() Phase {
	if s.active {
		return PhaseMatching
	}
	return PhaseIdle
}

// MoveDown advances the selection. No-op without candidates.
func (s *Session) MoveDown() bool {
	if !s.active || len(s.filtered) == 0 {
		return false
	}
	s.sel.MoveDown()
	return true
}

// MoveUp retreats the selection. No-op without candidates.
func (s *Session) MoveUp() bool {
	if !s.active || len(s.filtered) == 0 {
		return false
	}
	s.sel.MoveUp()
	return true
}

// Hover selects the candidate at flat index i, as a pointer hover does.
func (s *Session) Hover(i int) bool {
	if !s.active {
		return false
	}
	return s.sel.Hover(i)
}

// Selected returns the highlighted candidate.
func (s *Session) Selected() (Token, bool) {
	if !s.active || len(s.filtered) == 0 {
		return Token{}, false
	}
	return s.filtered[s.sel.Index()], true
}

// Commit splices the highlighted candidate into the buffer and closes the
// session. It is a no-op, reporting false, when no session is open or there
// are no candidates. The host must apply the returned buffer and restore the
// cursor once its own update has settled.
func (s *Session) Commit() (Insertion, bool) {
	tok, ok := s.Selected()
	if !ok {
		return Insertion{}, false
	}
	ins := Insert(s.buffer, s.cursor, s.trigger.Start, tok)
	s.buffer, s.cursor = ins.Buffer, ins.Cursor
	s.close()
	for _, hook := range s.hooks {
		hook(ins)
	}
	return ins, true
}

// Pick selects candidate i and commits it, as a click on a rendered row does.
func (s *Session) Pick(i int) (Insertion, bool) {
	if !s.Hover(i) {
		return Insertion{}, false
	}
	return s.Commit()
}

// Cancel closes the session without touching the buffer. The next Update
// recomputes from scratch and may reopen it.
func (s *Session) Cancel() bool {
	if !s.active {
		return false
	}
	s.close()
	return true
}

func (s *Session) close() {
	s.active = false
	s.trigger = Trigger{}
	s.filtered = nil
	s.sel.Reset(0)
}

// State returns a snapshot of the editor state.
func (s *Session) State() State {
	st := State{
		Buffer:  s.buffer,
		Cursor:  s.cursor,
		Active:  s.active,
		Visible: s.active && len(s.filtered) > 0,
	}
	if s.active {
		st.Trigger = s.trigger
		st.Filtered = append([]Token(nil), s.filtered...)
		st.Selected = s.sel.Index()
	}
	return st
}

// Dropdown returns the render model for the candidate list.
func (s *Session) Dropdown() Dropdown {
	if !s.active {
		return Dropdown{}
	}
	return Dropdown{
		Visible:    len(s.filtered) > 0,
		SearchTerm: s.trigger.Term,
		Groups:     GroupByCategory(s.filtered),
		Selected:   s.sel.Index(),
		Anchor:     AnchorFor(s.buffer, s.trigger.Start),
	}
}
