package customfields

import (
	"os"
	"time"
)

// Options describes the configured custom-field backends.
type Options struct {
	URL string
	// TokenEnv names the environment variable holding the bearer token.
	TokenEnv   string
	Timeout    time.Duration
	Files      []string
	ActiveOnly bool
}

// Build assembles a Source from opts. It returns nil when nothing is
// configured, which leaves the engine on static tokens only.
func Build(opts Options) Source {
	var sources MultiSource
	if opts.URL != "" {
		src := &HTTPSource{BaseURL: opts.URL, Timeout: opts.Timeout}
		if opts.TokenEnv != "" {
			src.Token = os.Getenv(opts.TokenEnv)
		}
		sources = append(sources, src)
	}
	for _, path := range opts.Files {
		if path != "" {
			sources = append(sources, FileSource{Path: path})
		}
	}

	var src Source
	switch len(sources) {
	case 0:
		return nil
	case 1:
		src = sources[0]
	default:
		src = sources
	}
	if opts.ActiveOnly {
		src = ActiveOnly(src)
	}
	return src
}
