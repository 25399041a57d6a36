package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/internal/config"
	"github.com/oakwood-commons/tplx/internal/customfields"
	"github.com/oakwood-commons/tplx/pkg/logger"
	"github.com/oakwood-commons/tplx/pkg/settings"
)

// hostAnnotation marks the surface a subcommand drives; see settings.Host.
const hostAnnotation = "tplx/host"

var (
	debug      bool
	logFile    string
	configFile string
	noColor    bool
	quiet      bool

	// rootCtx carries the logger and run settings to every subcommand.
	rootCtx = context.Background()
	// appConfig is the merged configuration loaded before any subcommand runs.
	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: "tplx - placeholder completion for invoice email templates",
	Long: `tplx offers {{placeholder}} completion for invoice email templates.

Type "{{" in the editor and a dropdown lists the matching placeholders,
grouped by category: client, company, invoice, payment, bank, and the custom
fields your account defines. The same engine is available as one-shot
commands and as an HTTP/websocket service for browser editors.`,
	Example: "\n  tplx catalog --search bank\n  tplx complete --text 'Dear {{cli'\n  tplx edit reminder.md\n  tplx preview reminder.md --html\n  tplx serve --addr :8087\n",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		run := settings.NewCliParams()
		run.LogFile = logFile
		run.ConfigFile = configFile
		run.IsQuiet = quiet
		run.NoColor = noColor
		if debug {
			run.MinLogLevel = -1
		}
		if h, ok := cmd.Annotations[hostAnnotation]; ok {
			run.Host = settings.Host(h)
		}

		lgr, err := setupLogger(run)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		cfg, err := config.Load(config.ResolvePath(configFile))
		if err != nil {
			return err
		}
		if noColor {
			cfg.Editor.NoColor = true
		}
		appConfig = cfg

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		rootCtx = settings.IntoContext(logger.WithLogger(ctx, lgr), run)
		return nil
	},
}

// setupLogger picks the sink for this run. The terminal editor owns the screen,
// so it only logs when a file was requested.
func setupLogger(run *settings.Run) (*logr.Logger, error) {
	if run.Interactive() && run.LogFile == "" {
		return logger.GetNoopLogger(), nil
	}
	level := run.MinLogLevel
	if run.IsQuiet && level >= 0 {
		level = 1
	}
	return logger.Setup(logger.Options{Level: level, FilePath: run.LogFile})
}

//nolint:gochecknoinits // cobra wiring
func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringVar(&logFile, "log-file", "", "append JSON logs to this file instead of stderr")
	pf.StringVar(&configFile, "config-file", "", "path to a YAML config file (default $XDG_CONFIG_HOME/tplx/config.yaml)")
	pf.BoolVar(&noColor, "no-color", false, "disable color output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	rootCmd.AddCommand(catalogCmd, completeCmd, editCmd, previewCmd, serveCmd, versionCmd, configCmd)
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx as the parent of every
// command context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// customFieldOptions maps the config section onto the source builder.
func customFieldOptions(cfg config.CustomFieldsConfig) customfields.Options {
	return customfields.Options{
		URL:        cfg.URL,
		TokenEnv:   cfg.TokenEnv,
		Timeout:    cfg.Timeout.Std(),
		Files:      cfg.Files,
		ActiveOnly: cfg.ActiveOnly,
	}
}

// newEngine builds the completion engine for the loaded config. extraFiles
// are added as further custom-field sources.
func newEngine(ctx context.Context, cfg config.Config, extraFiles ...string) *completion.Engine {
	opts := customFieldOptions(cfg.CustomFields)
	opts.Files = append(append([]string(nil), opts.Files...), extraFiles...)
	lgr := *logger.FromContext(ctx)

	var source completion.FieldSource
	if src := customfields.Build(opts); src != nil {
		source = src
	}
	lgr.V(1).Info("engine ready", "customFieldSource", source != nil)
	return completion.NewEngine(nil, source, lgr)
}

// readInput returns the contents of path, or stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return string(data), nil
}

