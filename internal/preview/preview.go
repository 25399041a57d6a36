// Package preview renders a template with sample values: every known
// placeholder is replaced by evaluating its token expression (CEL) against a
// sample document bound to "_".
package preview

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/pkg/loader"
)

//go:embed sample_data.yaml
var defaultSampleYAML []byte

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// Result is a rendered template plus the placeholders that were left as is.
type Result struct {
	Text     string `json:"text" yaml:"text"`
	Replaced int    `json:"replaced" yaml:"replaced"`
	// Unknown lists identifiers missing from the catalog.
	Unknown []string `json:"unknown,omitempty" yaml:"unknown,omitempty"`
	// Unresolved lists catalog identifiers the sample data has no value for.
	Unresolved []string `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

// Renderer substitutes placeholders. It is safe for concurrent use.
type Renderer struct {
	env     *cel.Env
	catalog *completion.Catalog

	mu       sync.Mutex
	programs map[string]cel.Program
}

// New creates a renderer for catalog.
func New(catalog *completion.Catalog) (*Renderer, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Renderer{
		env:      env,
		catalog:  catalog,
		programs: make(map[string]cel.Program),
	}, nil
}

// DefaultSampleData returns the bundled sample document.
func DefaultSampleData() (any, error) {
	return loader.Load(bytes.NewReader(defaultSampleYAML), loader.FormatYAML)
}

// Render replaces each "{{identifier}}" in template whose token resolves
// against data. Unknown and unresolved placeholders stay verbatim.
func (r *Renderer) Render(template string, data any) (Result, error) {
	var res Result
	seenUnknown := map[string]bool{}
	seenUnresolved := map[string]bool{}
	var firstErr error

	res.Text = placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		id := completion.Identifier(match)
		tok, ok := r.catalog.Lookup(id)
		if !ok {
			if !seenUnknown[id] {
				seenUnknown[id] = true
				res.Unknown = append(res.Unknown, id)
			}
			return match
		}
		value, err := r.resolve(tok, data)
		if err != nil {
			if !seenUnresolved[id] {
				seenUnresolved[id] = true
				res.Unresolved = append(res.Unresolved, id)
			}
			var ce compileError
			if errors.As(err, &ce) && firstErr == nil {
				firstErr = err
			}
			return match
		}
		res.Replaced++
		return value
	})
	return res, firstErr
}

type compileError struct {
	identifier string
	err        error
}

func (e compileError) Error() string {
	return fmt.Sprintf("token %s: %v", e.identifier, e.err)
}

func (e compileError) Unwrap() error { return e.err }

func (r *Renderer) resolve(tok completion.Token, data any) (string, error) {
	expr := tok.Expr
	if expr == "" {
		expr = fmt.Sprintf("_[%q]", tok.Identifier())
	}
	prg, err := r.program(expr)
	if err != nil {
		return "", compileError{identifier: tok.Identifier(), err: err}
	}
	v, err := eval(prg, data)
	if err != nil {
		return "", err
	}
	return format(v), nil
}

func (r *Renderer) program(expr string) (cel.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prg, ok := r.programs[expr]; ok {
		return prg, nil
	}
	prg, err := compile(r.env, expr)
	if err != nil {
		return nil, err
	}
	r.programs[expr] = prg
	return prg, nil
}

// ToHTML renders Markdown (email bodies are usually written in it) to HTML.
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}
