package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"doclib/interfaces/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP browse API and document grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		router := web.NewRouter(web.Dependencies{
			DB:          a.db,
			Browser:     a.stack.Browser,
			Links:       a.stack.Client,
			Logger:      a.logger,
			HTTPLogPath: a.cfg.HTTPLogPath,
		})
		return web.Serve(ctx, addr, router, a.logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (HTTP_ADDR when empty)")
}
