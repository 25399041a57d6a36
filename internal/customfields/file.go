package customfields

import (
	"context"
	"fmt"
	"os"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/pkg/loader"
)

// FileSource reads fields from a JSON, YAML or TOML file on every fetch.
// The document is either a list of fields or a table with a "fields" list
// (TOML has no top-level arrays).
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]completion.CustomField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	format, ok := loader.FormatFromPath(s.Path)
	if !ok {
		format = loader.Sniff(data)
	}

	var root any
	if err := loader.Unmarshal(data, format, &root); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	if _, isList := root.([]any); isList {
		var fields []completion.CustomField
		if err := loader.Unmarshal(data, format, &fields); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Path, err)
		}
		return fields, nil
	}
	var doc struct {
		Fields []completion.CustomField `json:"fields" yaml:"fields" toml:"fields"`
	}
	if err := loader.Unmarshal(data, format, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return doc.Fields, nil
}
