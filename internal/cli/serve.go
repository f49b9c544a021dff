package cli

import (
	"log"
	"net"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/cmplot/internal/handlers"
)

func (a *app) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the heatmap renderer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			handler := handlers.NewHandler(r, cfg.Server.MaxUploadMB<<20)

			log.Printf("Server starting on %s", cfg.Server.Addr)
			log.Println("Endpoints:")
			log.Println("  GET /health  - Health check")
			log.Println("  POST /render - Render a confusion matrix CSV to PNG")
			log.Printf("\n💡 Upload test: curl -X POST -F \"file=@confusion_matrix.csv\" %s -o cm.png\n\n", renderURL(cfg.Server.Addr))

			if err := a.listen(cfg.Server.Addr, handler.Routes()); err != nil {
				return failure(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr and PORT)")
	return cmd
}

// renderURL is the /render endpoint as reached from this machine when
// listening on addr.
func renderURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/render"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/render"
}
