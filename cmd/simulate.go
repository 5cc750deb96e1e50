package cmd

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"campus-navigator/geo"
	"campus-navigator/guidance"
	"campus-navigator/services"
	"campus-navigator/simulation"
	"campus-navigator/speech"
	"campus-navigator/utils"
)

var (
	simFrom  string
	simTo    string
	simSpeed string
	simTour  bool
	simMuted bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Walk a route on virtual time and print what would be said",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := utils.ParseCoordinate(simFrom)
		if err != nil {
			return err
		}
		to, err := utils.ParseCoordinate(simTo)
		if err != nil {
			return err
		}
		speed, err := simulation.ParseSpeed(simSpeed)
		if err != nil {
			return err
		}

		rs, err := services.LoadRoutingService(cfg)
		if err != nil {
			return err
		}

		mock := clock.NewMock()
		start := mock.Now()
		now := start
		lastInstruction := ""

		session := guidance.New(guidance.Options{
			Config:    cfg,
			Landmarks: rs.Landmarks(),
			Router:    rs.Router(),
			Clock:     mock,
			TourMode:  simTour,
			Muted:     simMuted,
			Speed:     speed,
			OnSubtitle: func(s speech.Subtitle) {
				if s.Visible {
					fmt.Printf("[%6.1fs] %-10s %q\n", now.Sub(start).Seconds(), s.Source, s.Text)
				}
			},
		})

		route := session.Start(from, to)
		if route.Empty() {
			fmt.Println("No walking route found.")
			return nil
		}
		fmt.Printf("Walking %s at %s pace\n", geo.FormatDistance(route.DistanceM), speed)

		frame := cfg.Simulation.TickInterval()
		limit := time.Duration(route.DistanceM/cfg.Simulation.SlowMPS*2)*time.Second + time.Minute
		for now.Sub(start) < limit {
			now = now.Add(frame)
			u := session.Tick(now)

			text := u.Instruction.Text
			if u.Instruction.Maneuver.IsTurn() {
				text += " in " + u.Instruction.Distance
			}
			if verbose && u.Instruction.Text != lastInstruction {
				fmt.Printf("[%6.1fs] %-10s %s\n", now.Sub(start).Seconds(), "display", text)
			}
			lastInstruction = u.Instruction.Text

			if u.Finished && !u.Speaking && !u.Subtitle.Visible {
				fmt.Printf("Arrived after %s\n", now.Sub(start).Round(time.Second))
				return nil
			}
		}
		return fmt.Errorf("simulation did not finish within %s", limit)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simFrom, "from", "", "Start as lon,lat")
	simulateCmd.Flags().StringVar(&simTo, "to", "", "Destination as lon,lat")
	simulateCmd.Flags().StringVar(&simSpeed, "speed", "normal", "Walking pace: slow, normal or fast")
	simulateCmd.Flags().BoolVar(&simTour, "tour", false, "Narrate landmarks along the way")
	simulateCmd.Flags().BoolVar(&simMuted, "muted", false, "Record narration without showing it")
	_ = simulateCmd.MarkFlagRequired("from")
	_ = simulateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(simulateCmd)
}
