package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trademind/internal/server"
)

// addServeCommands adds the HTTP server command.
func addServeCommands(rootCmd *cobra.Command, a *App) {
	rootCmd.AddCommand(newServeCmd(a))
}

func newServeCmd(a *App) *cobra.Command {
	var port int
	var dev, noRefresh bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal as a JSON HTTP API",
		Long: `Start the HTTP API under /api with a /health and /metrics endpoint.

While running, the AI coaching advice is refreshed on the [advisor]
refresh_schedule from config.toml.`,
		Example: `  trademind serve
  trademind serve --port 9090 --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := a.Session(ctx)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("port") {
				port = a.Config.Server.Port
			}
			if !cmd.Flags().Changed("dev") {
				dev = a.Config.Server.DevMode
			}

			srv := server.New(server.Config{
				Log:     a.Logger,
				Session: s,
				Port:    port,
				DevMode: dev,
				Version: Version,
			})

			if !noRefresh {
				refresher, err := server.NewAdviceRefresher(s, a.Config.Advisor.RefreshSchedule, a.Logger)
				if err != nil {
					return err
				}
				refresher.Start()
				defer refresher.Stop()
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			output.Success("✓ Listening on http://localhost:%d", port)
			output.Dim("Press Ctrl+C to stop")

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			output.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port")
	cmd.Flags().BoolVar(&dev, "dev", false, "development mode (open CORS, no compression)")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "disable scheduled advice refresh")
	return cmd
}
