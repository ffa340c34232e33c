package cli

import (
	"fmt"
	"net"

	"github.com/r3dlabs/termkit/internal/api"
	"github.com/r3dlabs/termkit/internal/logger"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshots as JSON over HTTP",
	Long: `Serve system, process and network snapshots as JSON until interrupted.

Routes:
  GET /healthz
  GET /api/system?partitions=true
  GET /api/processes?sort=memory&limit=10&filter=postgres
  GET /api/network
  GET /api/history?tool=sys&limit=5

Examples:
  termkit serve
  termkit serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig()
		addr := cfg.Serve.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		opts := api.Options{
			Backend: &provider,
			Clock:   clock,
			Settle:  settle,
			Logger:  logger.NewEnvLogger("[serve]"),
			Version: formatVersion(version),
		}
		store, err := openHistory()
		if err != nil {
			opts.Logger.Warn("session history unavailable: %v", err)
		}
		if store != nil {
			defer store.Close()
			opts.History = store
		}

		srv := api.NewServer(cfg, opts)
		return srv.Serve(commandContext(cmd), addr, func(a net.Addr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Serving snapshots on http://%s (Ctrl+C to stop)\n",
				ui.SuccessStyle().Render(ui.SymbolSuccess), a)
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from serve.addr)")
	rootCmd.AddCommand(serveCmd)
}
