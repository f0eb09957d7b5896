package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tidbyt.dev/ptv"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Writes upcoming departures from the configured stops as GTFS-realtime",
	Args:  cobra.NoArgs,
	RunE:  feed,
}

var (
	feedOutput string
	feedText   bool
)

func init() {
	feedCmd.Flags().StringVarP(&feedOutput, "output", "o", "", "Output file (default stdout)")
	feedCmd.Flags().BoolVarP(&feedText, "text", "", false, "Protobuf text format")
}

func feed(cmd *cobra.Command, args []string) error {
	board, err := LoadBoard(nil)
	if err != nil {
		return err
	}

	board.Update(cmd.Context())

	data, err := ptv.MarshalFeed(ptv.BuildFeed(board.AllDepartures(), time.Now()), feedText)
	if err != nil {
		return err
	}

	if feedOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	tmp := feedOutput + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, feedOutput); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}

	return nil
}
