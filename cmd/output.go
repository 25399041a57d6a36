package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oakwood-commons/tplx/pkg/loader"
)

// outputFormat is a --output flag value restricted to a fixed set of names.
type outputFormat struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*outputFormat)(nil)

func newOutputFormat(def string, allowed ...string) *outputFormat {
	return &outputFormat{value: def, allowed: allowed}
}

func (o *outputFormat) String() string { return o.value }

func (o *outputFormat) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range o.allowed {
		if v == a {
			o.value = v
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(o.allowed, "|"))
}

func (o *outputFormat) Type() string { return "format" }

// isStructured reports formats handled by writeStructured.
func isStructured(format string) bool {
	switch loader.Format(format) {
	case loader.FormatJSON, loader.FormatYAML, loader.FormatTOML:
		return true
	}
	return false
}

// writeStructured marshals v as json, yaml or toml.
func writeStructured(w io.Writer, v any, format string) error {
	data, err := loader.Marshal(v, loader.Format(format))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
