package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type field struct {
	FieldName string `json:"fieldName" yaml:"fieldName" toml:"fieldName"`
	IsActive  bool   `json:"isActive" yaml:"isActive" toml:"isActive"`
}

type fieldList struct {
	Fields []field `json:"fields" yaml:"fields" toml:"fields"`
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{name: "json object", input: `{"a": 1}`, want: FormatJSON},
		{name: "json array", input: `[1, 2, 3]`, want: FormatJSON},
		{name: "yaml mapping", input: "a: 1\nb: two", want: FormatYAML},
		{name: "yaml list", input: "- fieldName: x\n- fieldName: y", want: FormatYAML},
		{name: "toml table array", input: "[[fields]]\nfieldName = \"x\"", want: FormatTOML},
		{name: "toml pairs", input: "a = 1\nb = \"two\"", want: FormatTOML},
		{name: "broken json is yaml", input: `{invalid}`, want: FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff([]byte(tt.input)))
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	f, ok := FormatFromPath("fields.YML")
	assert.True(t, ok)
	assert.Equal(t, FormatYAML, f)

	_, ok = FormatFromPath("fields")
	assert.False(t, ok)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" TOML ")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestUnmarshalAllFormats(t *testing.T) {
	inputs := map[Format]string{
		FormatJSON: `{"fields": [{"fieldName": "po", "isActive": true}]}`,
		FormatYAML: "fields:\n  - fieldName: po\n    isActive: true\n",
		FormatTOML: "[[fields]]\nfieldName = \"po\"\nisActive = true\n",
	}
	for format, input := range inputs {
		t.Run(string(format), func(t *testing.T) {
			var got fieldList
			require.NoError(t, Unmarshal([]byte(input), format, &got))
			assert.Equal(t, []field{{FieldName: "po", IsActive: true}}, got.Fields)

			var sniffed fieldList
			require.NoError(t, Unmarshal([]byte(input), "", &sniffed))
			assert.Equal(t, got, sniffed)
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	var out any
	assert.ErrorIs(t, Unmarshal([]byte("  \n"), "", &out), ErrEmpty)
	assert.ErrorContains(t, Unmarshal([]byte(`{"a":`), FormatJSON, &out), "invalid JSON")
	assert.Error(t, Unmarshal([]byte(`a`), Format("xml"), &out))
}

func TestUnmarshalFileUsesExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  - fieldName: vat\n"), 0o600))

	var got fieldList
	require.NoError(t, UnmarshalFile(path, &got))
	assert.Equal(t, "vat", got.Fields[0].FieldName)

	err := UnmarshalFile(filepath.Join(dir, "missing.json"), &got)
	assert.Error(t, err)
}

func TestLoadNormalizes(t *testing.T) {
	got, err := Load(strings.NewReader("client:\n  name: Acme\n  1: one\nitems:\n  - a\n"), FormatYAML)
	require.NoError(t, err)

	root, ok := got.(map[string]any)
	require.True(t, ok)
	client, ok := root["client"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", client["name"])
	assert.Equal(t, "one", client["1"])
	assert.Equal(t, []any{"a"}, root["items"])
}

func TestMarshal(t *testing.T) {
	v := fieldList{Fields: []field{{FieldName: "po"}}}
	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(v, format)
			require.NoError(t, err)
			var back fieldList
			require.NoError(t, Unmarshal(data, format, &back))
			assert.Equal(t, v, back)
		})
	}
	_, err := Marshal(v, Format("xml"))
	assert.Error(t, err)
}
