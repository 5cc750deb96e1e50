package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"campus-navigator/preprocessing"
)

var graphgenCmd = &cobra.Command{
	Use:   "graphgen <network.geojson> [output.gob]",
	Short: "Build the routing graph from a GeoJSON path network and cache it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := cfg.Data.GraphCache
		if len(args) == 2 {
			output = args[1]
		}

		g, err := preprocessing.ConvertNetwork(input, output)
		if err != nil {
			return fmt.Errorf("graph generation failed: %w", err)
		}
		fmt.Printf("Wrote %s: %d nodes, %d edges\n", output, len(g.Nodes), g.EdgeCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphgenCmd)
}
