package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/tplx/internal/server"
	"github.com/oakwood-commons/tplx/pkg/logger"
	"github.com/oakwood-commons/tplx/pkg/settings"
)

var (
	serveAddr   string
	serveData   string
	serveFields []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the completion engine over HTTP and websockets",
	Long: `Start the HTTP service used by browser editors.

  GET    /api/catalog             merged catalog (ETag, ?q= search)
  POST   /api/complete            dropdown for {buffer, cursor}
  POST   /api/insert              splice a token at the open placeholder
  POST   /api/preview             fill a template with sample values
  GET    /api/sessions            live editor sessions
  POST   /api/sessions            open an editor session
  GET    /api/sessions/{id}/ws    drive a session with editor events
  DELETE /api/sessions/{id}       close a session`,
	Args: cobra.NoArgs,
	Annotations: map[string]string{
		hostAnnotation: string(settings.HostServer),
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := serveAddr
		if addr == "" {
			addr = appConfig.Server.Addr
		}
		sample, err := loadSampleData(serveData, appConfig.Preview.SampleData)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(newEngine(ctx, appConfig, serveFields...), server.Options{
			Logger:         *logger.FromContext(ctx),
			SessionIdle:    appConfig.Server.SessionIdle.Std(),
			SampleData:     sample,
			AllowedOrigins: appConfig.Server.AllowedOrigins,
		})
		return srv.Serve(ctx, addr)
	},
}

//nolint:gochecknoinits // cobra wiring
func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8087)")
	f.StringVar(&serveData, "data", "", "sample document for /api/preview")
	f.StringArrayVar(&serveFields, "fields", nil, "extra custom-field file (json/yaml/toml); repeatable")
}
