package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"campus-navigator/geo"
	"campus-navigator/services"
	"campus-navigator/utils"
)

var (
	routeFrom    string
	routeTo      string
	routeGeoJSON bool
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Compute a walking route between two lon,lat points",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := utils.ParseCoordinate(routeFrom)
		if err != nil {
			return err
		}
		to, err := utils.ParseCoordinate(routeTo)
		if err != nil {
			return err
		}

		rs, err := services.LoadRoutingService(cfg)
		if err != nil {
			return err
		}

		result := rs.Route(from, to)
		if result.Empty() {
			fmt.Println("No walking route found.")
			return nil
		}

		if routeGeoJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.GeoJSON())
		}

		fmt.Printf("Route: %d points, %s\n", len(result.Coordinates), geo.FormatDistance(result.DistanceM))
		for i, c := range result.Coordinates {
			fmt.Printf("  %3d %s\n", i, c)
		}
		return nil
	},
}

func init() {
	routeCmd.Flags().StringVar(&routeFrom, "from", "", "Start as lon,lat")
	routeCmd.Flags().StringVar(&routeTo, "to", "", "Destination as lon,lat")
	routeCmd.Flags().BoolVar(&routeGeoJSON, "geojson", false, "Print the route as a GeoJSON feature")
	_ = routeCmd.MarkFlagRequired("from")
	_ = routeCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(routeCmd)
}
