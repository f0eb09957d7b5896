package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tidbyt.dev/ptv"
	"tidbyt.dev/ptv/model"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously displays departures from the configured stops",
	Args:  cobra.NoArgs,
	RunE:  watch,
}

var frameInterval time.Duration

func init() {
	watchCmd.Flags().DurationVarP(&frameInterval, "frame", "f", ptv.DefaultFrameInterval, "Time between redraws")
}

func formatCountdowns(view model.DirectionView) string {
	parts := []string{}
	for i, countdown := range view.Countdowns {
		if i == 0 {
			parts = append(parts, ptv.DisplayCountdown(countdown))
		} else {
			parts = append(parts, countdown)
		}
	}
	return strings.Join(parts, ", ")
}

func renderFrame(frame []ptv.StopViews) {
	// Clear screen, cursor home
	fmt.Print("\033[H\033[2J")

	for _, sv := range frame {
		name := sv.Stop.Name
		if name == "" {
			name = sv.Stop.ID
		}
		fmt.Printf("%s (%s)\n", name, sv.Stop.RouteType)

		city, outbound := ptv.Split(sv.Views)
		if len(city) > 0 {
			fmt.Printf("  city      %-4s %s\n", city[0].RouteNumber, formatCountdowns(city[0]))
		} else {
			fmt.Printf("  no city %ss\n", sv.Stop.RouteType)
		}

		if soonest, found := ptv.Soonest(outbound); found {
			fmt.Printf("  outbound  %-4s %s (%s)\n", soonest.RouteNumber, formatCountdowns(soonest), soonest.Label)
		}
		fmt.Println()
	}
}

func watch(cmd *cobra.Command, args []string) error {
	board, err := LoadBoard(nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	err = board.Run(ctx, frameInterval, renderFrame)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
