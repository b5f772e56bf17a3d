package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:          "fetch <year> <day>",
	Short:        "Fetch a puzzle input",
	Long:         `Resolve the puzzle input for a year and day through the local cache, fetching from the judge only if it is not cached yet, and print it.`,
	Args:         cobra.ExactArgs(2),
	RunE:         runFetch,
	SilenceUsage: true,
}

func runFetch(cmd *cobra.Command, args []string) error {
	year, day, err := parseYearDay(args[0], args[1])
	if err != nil {
		return err
	}

	driver, err := newDriver(cmd)
	if err != nil {
		return err
	}

	defer driver.Close()

	input, err := driver.Input(cmd.Context(), year, day)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), input)

	return nil
}

func parseYearDay(yearArg, dayArg string) (int, int, error) {
	year, err := strconv.Atoi(yearArg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", yearArg)
	}

	day, err := strconv.Atoi(dayArg)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid day %q", dayArg)
	}

	return year, day, nil
}
