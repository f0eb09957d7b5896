package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route <route_id>",
	Short: "Shows the name and number of a route",
	Args:  cobra.ExactArgs(1),
	RunE:  route,
}

func route(cmd *cobra.Command, args []string) error {
	routeID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid route id: %w", err)
	}

	setupLogger()

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	r, err := BuildClient(cfg).Route(cmd.Context(), routeID)
	if err != nil {
		return err
	}

	number := r.Number
	if number == "" {
		number = "-"
	}
	fmt.Printf("%d\t%s\t%s\n", routeID, number, r.Name)

	return nil
}
