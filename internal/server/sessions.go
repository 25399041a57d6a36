package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/internal/customfields"
	"github.com/oakwood-commons/tplx/pkg/logger"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Event types sent by websocket clients.
const (
	EventUpdate = "update"
	EventDown   = "moveDown"
	EventUp     = "moveUp"
	EventHover  = "hover"
	EventCommit = "commit"
	EventPick   = "pick"
	EventCancel = "cancel"
	EventState  = "state"
)

// Reply types sent to websocket clients.
const (
	ReplyState     = "state"
	ReplyInsertion = "insertion"
	ReplyCatalog   = "catalog"
	ReplyError     = "error"
	ReplyClosed    = "closed"
)

// Event is one editor event. Buffer and Cursor are used by update; Index by
// hover and pick.
type Event struct {
	Type   string `json:"type"`
	Buffer string `json:"buffer,omitempty"`
	Cursor int    `json:"cursor,omitempty"`
	Index  int    `json:"index,omitempty"`
}

// Reply is the session state after an event. For an insertion the client
// replaces its text with Insertion.Buffer and then moves the caret to
// Insertion.Cursor.
type Reply struct {
	Type           string                `json:"type"`
	Phase          string                `json:"phase,omitempty"`
	CatalogStatus  string                `json:"catalogStatus,omitempty"`
	CatalogVersion string                `json:"catalogVersion,omitempty"`
	Changed        bool                  `json:"changed"`
	State          *completion.State     `json:"state,omitempty"`
	Dropdown       *completion.Dropdown  `json:"dropdown,omitempty"`
	Insertion      *completion.Insertion `json:"insertion,omitempty"`
	Error          string                `json:"error,omitempty"`
}

// SessionInfo describes a live session.
type SessionInfo struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	LastSeen      time.Time `json:"lastSeen"`
	CatalogStatus string    `json:"catalogStatus"`
	Phase         string    `json:"phase"`
	Insertions    int       `json:"insertions"`
}

// EditorSession is a completion session owned by one remote editor. Events
// are applied under a lock because the custom-field fetch resolves on its own
// goroutine.
type EditorSession struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	sess     *completion.Session
	lastSeen time.Time
	inserted int
	now      func() time.Time
	log      logr.Logger

	changed   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc
}

// NewEditorSession opens a session on engine. When custom fields must be
// fetched, the fetch starts immediately and Changed fires once it resolves.
func NewEditorSession(engine *completion.Engine, lgr logr.Logger) *EditorSession {
	id := uuid.NewString()
	lgr = lgr.WithValues(logger.SessionIDKey, id)
	now := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	es := &EditorSession{
		ID:        id,
		CreatedAt: now,
		lastSeen:  now,
		now:       time.Now,
		log:       lgr,
		changed:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		cancel:    cancel,
	}
	// The hook runs inside Commit, which Apply calls with es.mu held.
	es.sess = engine.Open(completion.WithLogger(lgr), completion.WithCommitHook(es.recordInsertion))
	if es.sess.CatalogStatus() == completion.CatalogPending {
		go es.fetch(ctx, engine)
	} else {
		cancel()
	}
	return es
}

func (es *EditorSession) recordInsertion(ins completion.Insertion) {
	es.inserted++
	es.log.V(1).Info("placeholder inserted", "cursor", ins.Cursor, "total", es.inserted)
}

// fetch resolves the catalog once. A session closed first drops the result.
func (es *EditorSession) fetch(ctx context.Context, engine *completion.Engine) {
	var res customfields.Result
	select {
	case <-ctx.Done():
		return
	case res = <-customfields.FetchAsync(ctx, customfields.SourceFunc(engine.FetchFields)):
	}
	if ctx.Err() != nil {
		return
	}
	fields, err := res.Fields, res.Err
	es.mu.Lock()
	resolved := es.sess.ResolveCatalog(fields, err)
	version := es.sess.Catalog().Version()
	es.mu.Unlock()
	if !resolved {
		return
	}
	es.log.V(1).Info("catalog resolved", logger.CatalogVersionKey, version, "fields", len(fields))
	select {
	case es.changed <- struct{}{}:
	default:
	}
}

// Changed fires after the custom-field fetch has resolved.
func (es *EditorSession) Changed() <-chan struct{} { return es.changed }

// Done is closed when the session is closed.
func (es *EditorSession) Done() <-chan struct{} { return es.done }

// Close stops the fetch and releases waiters. It is safe to call twice.
func (es *EditorSession) Close() {
	es.closeOnce.Do(func() {
		es.cancel()
		close(es.done)
	})
}

// Apply feeds ev to the session and returns the resulting reply.
func (es *EditorSession) Apply(ev Event) Reply {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.lastSeen = es.now()

	var changed bool
	switch ev.Type {
	case EventUpdate:
		es.sess.Update(ev.Buffer, ev.Cursor)
		changed = true
	case EventDown:
		changed = es.sess.MoveDown()
	case EventUp:
		changed = es.sess.MoveUp()
	case EventHover:
		changed = es.sess.Hover(ev.Index)
	case EventCancel:
		changed = es.sess.Cancel()
	case EventCommit, EventPick:
		var (
			ins completion.Insertion
			ok  bool
		)
		if ev.Type == EventPick {
			ins, ok = es.sess.Pick(ev.Index)
		} else {
			ins, ok = es.sess.Commit()
		}
		rep := es.snapshotLocked(ReplyState)
		if ok {
			rep.Type = ReplyInsertion
			rep.Insertion = &ins
			rep.Changed = true
		}
		return rep
	case EventState:
	default:
		rep := es.snapshotLocked(ReplyError)
		rep.Error = fmt.Sprintf("unknown event type %q", ev.Type)
		return rep
	}
	rep := es.snapshotLocked(ReplyState)
	rep.Changed = changed
	return rep
}

// Snapshot returns the current state as a reply of the given type.
func (es *EditorSession) Snapshot(kind string) Reply {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.snapshotLocked(kind)
}

func (es *EditorSession) snapshotLocked(kind string) Reply {
	st := es.sess.State()
	dd := es.sess.Dropdown()
	return Reply{
		Type:           kind,
		Phase:          es.sess.Phase().String(),
		CatalogStatus:  es.sess.CatalogStatus().String(),
		CatalogVersion: es.sess.Catalog().Version(),
		State:          &st,
		Dropdown:       &dd,
	}
}

// Info describes the session.
func (es *EditorSession) Info() SessionInfo {
	es.mu.Lock()
	defer es.mu.Unlock()
	return SessionInfo{
		ID:            es.ID,
		CreatedAt:     es.CreatedAt,
		LastSeen:      es.lastSeen,
		CatalogStatus: es.sess.CatalogStatus().String(),
		Phase:         es.sess.Phase().String(),
		Insertions:    es.inserted,
	}
}

func (es *EditorSession) idleSince() time.Time {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.lastSeen
}

// Registry tracks live editor sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*EditorSession
	idle     time.Duration
	now      func() time.Time
}

// NewRegistry creates a registry that reaps sessions idle for longer than idle.
func NewRegistry(idle time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*EditorSession),
		idle:     idle,
		now:      time.Now,
	}
}

// Add registers es.
func (r *Registry) Add(es *EditorSession) {
	r.mu.Lock()
	r.sessions[es.ID] = es
	r.mu.Unlock()
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*EditorSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	es, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return es, nil
}

// Remove closes and forgets the session with id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	es, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	es.Close()
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns every live session, oldest first.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for _, es := range r.sessions {
		out = append(out, es.Info())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Reap closes sessions that have seen no event for longer than the idle
// timeout and returns their IDs.
func (r *Registry) Reap() []string {
	cutoff := r.now().Add(-r.idle)
	r.mu.Lock()
	var stale []*EditorSession
	for id, es := range r.sessions {
		if es.idleSince().Before(cutoff) {
			stale = append(stale, es)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(stale))
	for _, es := range stale {
		es.Close()
		ids = append(ids, es.ID)
	}
	sort.Strings(ids)
	return ids
}

// CloseAll closes and forgets every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*EditorSession)
	r.mu.Unlock()
	for _, es := range all {
		es.Close()
	}
}

func (r *Registry) reapLoop(ctx context.Context, lgr logr.Logger) {
	interval := r.idle / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range r.Reap() {
				lgr.V(1).Info("session expired", logger.SessionIDKey, id)
			}
		}
	}
}
