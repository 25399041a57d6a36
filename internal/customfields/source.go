// Package customfields provides the sources the completion engine fetches
// user-defined fields from: an HTTP backend, local files, fixed lists, and
// combinations of those.
package customfields

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/tplx/internal/completion"
)

// Source fetches custom fields. It satisfies completion.FieldSource.
type Source interface {
	Fetch(ctx context.Context) ([]completion.CustomField, error)
}

// SourceFunc adapts a fetch function, such as completion.Engine.FetchFields,
// to a Source.
type SourceFunc func(ctx context.Context) ([]completion.CustomField, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]completion.CustomField, error) {
	return f(ctx)
}

// StaticSource serves a fixed list.
type StaticSource []completion.CustomField

// Fetch returns a copy of the list.
func (s StaticSource) Fetch(context.Context) ([]completion.CustomField, error) {
	return append([]completion.CustomField(nil), s...), nil
}

// MultiSource fetches from every source concurrently and concatenates the results
// in source order. Any failure fails the whole fetch.
type MultiSource []Source

func (m MultiSource) Fetch(ctx context.Context) ([]completion.CustomField, error) {
	results := make([][]completion.CustomField, len(m))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range m {
		g.Go(func() error {
			fields, err := src.Fetch(gctx)
			if err != nil {
				return fmt.Errorf("source %d: %w", i, err)
			}
			results[i] = fields
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []completion.CustomField
	for _, fields := range results {
		out = append(out, fields...)
	}
	return out, nil
}

// ActiveOnly wraps src and drops inactive fields. The completion engine
// itself offers inactive fields; this is for deployments that hide them.
func ActiveOnly(src Source) Source {
	return activeOnly{src: src}
}

type activeOnly struct {
	src Source
}

func (a activeOnly) Fetch(ctx context.Context) ([]completion.CustomField, error) {
	fields, err := a.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := fields[:0:0]
	for _, f := range fields {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out, nil
}

// Result is the outcome of an asynchronous fetch.
type Result struct {
	Fields []completion.CustomField
	Err    error
}

// FetchAsync starts src.Fetch in a goroutine and delivers exactly one Result
// on the returned channel, which is buffered so an abandoned fetch never
// blocks.
func FetchAsync(ctx context.Context, src Source) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		fields, err := src.Fetch(ctx)
		ch <- Result{Fields: fields, Err: err}
	}()
	return ch
}
