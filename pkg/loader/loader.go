// Package loader reads structured documents (JSON, YAML, TOML) used as custom
// field lists and preview sample data. The format comes from the file
// extension when there is one, otherwise it is sniffed from the content.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a supported document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty input")

var (
	// [section], [[array]], ["quoted"], [a.b]; JSON arrays like [1, 2] do not match.
	tomlSection = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// key = value, as opposed to YAML key: value.
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// FormatFromPath maps a file extension to a format. ok is false for unknown
// or missing extensions.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// ParseFormat accepts a format name as typed on the command line.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json, yaml or toml)", name)
	}
}

// Sniff guesses the format of input. JSON wins for a leading brace or
// bracket unless the content reads as TOML tables; anything else is YAML.
func Sniff(input []byte) Format {
	text := strings.TrimSpace(string(input))
	if isLikelyTOML(text) {
		return FormatTOML
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		if json.Valid([]byte(text)) {
			return FormatJSON
		}
	}
	return FormatYAML
}

func isLikelyTOML(text string) bool {
	sections, pairs, lines := 0, 0, 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines++
		if tomlSection.MatchString(line) {
			sections++
		}
		if tomlKeyValue.MatchString(line) {
			pairs++
		}
	}
	return sections > 0 || (lines > 0 && pairs > lines/2)
}

// Unmarshal decodes data in the given format into out. An empty format
// sniffs the content.
func Unmarshal(data []byte, format Format, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmpty
	}
	if format == "" {
		format = Sniff(data)
	}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("invalid TOML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	return nil
}

// UnmarshalFile reads path and decodes it into out, choosing the format by
// extension and falling back to sniffing.
func UnmarshalFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	format, _ := FormatFromPath(path)
	if err := Unmarshal(data, format, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadFile reads path into a generic tree with JSON-compatible values.
func LoadFile(path string) (any, error) {
	var root any
	if err := UnmarshalFile(path, &root); err != nil {
		return nil, err
	}
	return Normalize(root), nil
}

// Load decodes r into a generic tree with JSON-compatible values.
func Load(r io.Reader, format Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var root any
	if err := Unmarshal(data, format, &root); err != nil {
		return nil, err
	}
	return Normalize(root), nil
}

// Normalize rewrites decoder output so that every map is map[string]any and
// every sequence is []any. yaml.v3 can produce map[any]any for non-string
// keys, which CEL cannot index.
func Normalize(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = Normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

// Marshal encodes v in the given format.
func Marshal(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
