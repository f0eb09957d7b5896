package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"tidbyt.dev/ptv/model"
)

var directionsCmd = &cobra.Command{
	Use:   "directions <stop_id>",
	Short: "Lists the directions and routes serving a stop",
	Args:  cobra.ExactArgs(1),
	RunE:  directions,
}

func init() {
	directionsCmd.Flags().StringVarP(&routeType, "route-type", "t", "tram", "Route type (train, tram, bus, vline, nightbus)")
}

func directions(cmd *cobra.Command, args []string) error {
	rt, err := model.ParseRouteType(routeType)
	if err != nil {
		return err
	}

	board, err := LoadBoard([]model.StopRef{{ID: args[0], RouteType: rt}})
	if err != nil {
		return err
	}

	board.Populate(cmd.Context())
	stop := board.Stops[0]

	if len(stop.Directions) == 0 {
		return fmt.Errorf("no directions found for %s stop %s", rt, stop.ID)
	}

	tbl := table.New("ID", "Direction", "City", "Routes")
	for _, d := range stop.Directions {
		routes := []string{}
		for _, routeID := range d.RouteIDs {
			route := board.Routes.Resolve(cmd.Context(), stop, routeID)
			label := strconv.Itoa(routeID)
			if route.Number != "" {
				label = fmt.Sprintf("%s (%d)", route.Number, routeID)
			}
			routes = append(routes, label)
		}
		tbl.AddRow(d.ID, d.Name, board.Reducer.IsCityBound(d.Name), strings.Join(routes, ", "))
	}
	tbl.Print()

	return nil
}
