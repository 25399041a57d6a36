package completion

import (
	"context"

	"github.com/go-logr/logr"
)

// FieldSource supplies the custom fields merged into the catalog when an
// editor opens. Implementations live in the customfields package.
type FieldSource interface {
	Fetch(ctx context.Context) ([]CustomField, error)
}

// Engine holds the static catalog and the custom-field source, and opens
// sessions for editors.
type Engine struct {
	static []Token
	source FieldSource
	log    logr.Logger
}

// NewEngine creates an engine. A nil static list means the shipped catalog;
// a nil source means static tokens only.
func NewEngine(static []Token, source FieldSource, lgr logr.Logger) *Engine {
	if static == nil {
		static = StaticCatalog()
	}
	return &Engine{
		static: static,
		source: source,
		log:    lgr,
	}
}

// Static returns a copy of the engine's static token list.
func (e *Engine) Static() []Token {
	return append([]Token(nil), e.static...)
}

// HasSource reports whether custom fields need to be fetched.
func (e *Engine) HasSource() bool {
	return e.source != nil
}

// Open starts a session. Without a source the catalog is ready immediately;
// otherwise the caller runs FetchFields and hands the result to
// Session.ResolveCatalog.
func (e *Engine) Open(opts ...SessionOption) *Session {
	opts = append([]SessionOption{WithLogger(e.log)}, opts...)
	if e.source == nil {
		return NewReadySession(NewCatalog(e.static), opts...)
	}
	return NewSession(e.static, opts...)
}

// FetchFields runs the custom-field fetch.
func (e *Engine) FetchFields(ctx context.Context) ([]CustomField, error) {
	if e.source == nil {
		return nil, nil
	}
	return e.source.Fetch(ctx)
}

// Catalog fetches custom fields synchronously and returns the merged catalog,
// falling back to the static catalog when the fetch fails.
func (e *Engine) Catalog(ctx context.Context) *Catalog {
	fields, err := e.FetchFields(ctx)
	if err != nil {
		e.log.V(1).Info("custom fields unavailable, using static catalog", "error", err.Error())
		return NewCatalog(e.static)
	}
	return NewMergedCatalog(e.static, fields)
}
