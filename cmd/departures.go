package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"tidbyt.dev/ptv"
	"tidbyt.dev/ptv/model"
)

var departuresCmd = &cobra.Command{
	Use:   "departures <stop_id>",
	Short: "Lists upcoming departures from a stop, by direction",
	Args:  cobra.ExactArgs(1),
	RunE:  departures,
}

var (
	routeType string
	csvOutput bool
)

func init() {
	departuresCmd.Flags().StringVarP(&routeType, "route-type", "t", "tram", "Route type (train, tram, bus, vline, nightbus)")
	departuresCmd.Flags().BoolVarP(&csvOutput, "csv", "", false, "Output CSV")
}

type departureRow struct {
	Direction   string `csv:"direction"`
	City        bool   `csv:"city"`
	RouteNumber string `csv:"route_number"`
	Countdown   string `csv:"countdown"`
	Time        string `csv:"time"`
}

func departureRows(views []model.DirectionView) []*departureRow {
	rows := []*departureRow{}
	for _, view := range views {
		for i, countdown := range view.Countdowns {
			rows = append(rows, &departureRow{
				Direction:   view.Label,
				City:        view.City,
				RouteNumber: view.RouteNumber,
				Countdown:   countdown,
				Time:        view.Times[i].Format("15:04:05"),
			})
		}
	}
	return rows
}

func departures(cmd *cobra.Command, args []string) error {
	rt, err := model.ParseRouteType(routeType)
	if err != nil {
		return err
	}

	board, err := LoadBoard([]model.StopRef{{ID: args[0], RouteType: rt}})
	if err != nil {
		return err
	}

	board.Update(cmd.Context())
	views := board.Views(cmd.Context(), board.Stops[0])

	rows := departureRows(views)

	if csvOutput {
		out, err := gocsv.MarshalString(&rows)
		if err != nil {
			return fmt.Errorf("marshaling csv: %w", err)
		}
		fmt.Print(out)
		return nil
	}

	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "No upcoming departures from %s stop %s\n", rt, args[0])
		return nil
	}

	tbl := table.New("Direction", "Route", "Departs", "Time")
	for _, row := range rows {
		direction := row.Direction
		if row.City {
			direction = strings.ToUpper(direction)
		}
		tbl.AddRow(direction, row.RouteNumber, ptv.DisplayCountdown(row.Countdown), row.Time)
	}
	tbl.Print()

	return nil
}
