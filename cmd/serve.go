package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"campus-navigator/handlers"
	"campus-navigator/services"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the routing and guidance HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("host") {
			serveHost = cfg.Server.Host
		}
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Server.Port
		}

		log.Println("Loading path network and landmarks...")
		rs, err := services.LoadRoutingService(cfg)
		if err != nil {
			return err
		}
		nodes, edges := rs.GraphStats()
		log.Printf("Routing graph ready: %d nodes, %d edges, %d landmarks", nodes, edges, len(rs.Landmarks()))

		ss := services.NewSessionService(cfg, rs, nil, nil)
		defer ss.Shutdown()

		addr := fmt.Sprintf("%s:%d", serveHost, servePort)
		log.Printf("Campus navigator starting on %s", addr)
		return handlers.NewRouter(rs, ss).Run(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
