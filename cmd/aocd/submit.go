package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"aocd"
	"aocd/classify"
)

var submitCmd = &cobra.Command{
	Use:          "submit <year> <day> <part> <answer>",
	Short:        "Submit an answer",
	Long:         `Submit an answer for a year, day and part, and print the judge's verdict. Outcomes already known locally are reported without contacting the judge.`,
	Args:         cobra.ExactArgs(4),
	RunE:         runSubmit,
	SilenceUsage: true,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	key, err := parseKey(args[0], args[1], args[2])
	if err != nil {
		return err
	}

	answer := args[3]
	if answer == "" {
		return fmt.Errorf("answer must not be empty")
	}

	driver, err := newDriver(cmd)
	if err != nil {
		return err
	}

	defer driver.Close()

	verdict, err := driver.Submit(cmd.Context(), key, answer)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), describe(verdict))

	switch verdict.Kind {
	case classify.Incorrect:
		return fmt.Errorf("answer was not accepted")
	case classify.Unknown:
		return fmt.Errorf("judge response was not recognized")
	}

	return nil
}

// describe renders a verdict as a single result line.
func describe(v classify.Verdict) string {
	switch v.Kind {
	case classify.Correct:
		return "Correct!"
	case classify.AlreadySolved:
		return "Already solved."
	case classify.Incorrect:
		if v.Detail != "" {
			return fmt.Sprintf("Incorrect (%s).", v.Detail)
		}

		return "Incorrect."
	case classify.RateLimited:
		return fmt.Sprintf("Rate limited: wait %s before submitting again.", v.Wait)
	}

	return "Unrecognized judge response."
}

func parseKey(yearArg, dayArg, partArg string) (aocd.Key, error) {
	year, day, err := parseYearDay(yearArg, dayArg)
	if err != nil {
		return aocd.Key{}, err
	}

	part, err := strconv.Atoi(partArg)
	if err != nil {
		return aocd.Key{}, fmt.Errorf("invalid part %q", partArg)
	}

	key := aocd.Key{Year: year, Day: day, Part: aocd.Part(part)}
	if err := key.Validate(); err != nil {
		return aocd.Key{}, err
	}

	return key, nil
}
