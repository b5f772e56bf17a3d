package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"aocd/cache"
	"aocd/internal/config"
)

var statusCmd = &cobra.Command{
	Use:          "status <year> <day>",
	Short:        "Show recorded submission outcomes",
	Long:         `Print the locally recorded submission outcomes for both parts of a day. Reads only local state; the judge is never contacted.`,
	Args:         cobra.ExactArgs(2),
	RunE:         runStatus,
	SilenceUsage: true,
}

func runStatus(cmd *cobra.Command, args []string) error {
	year, day, err := parseYearDay(args[0], args[1])
	if err != nil {
		return err
	}

	cfg, err := config.NewLoader().Load(cmd)
	if err != nil {
		return err
	}

	subs, err := cache.OpenSubmissions(filepath.Join(cfg.Dir, "cache", cache.DefaultDBFile))
	if err != nil {
		return err
	}

	defer subs.Close()

	out := cmd.OutOrStdout()

	for part := 1; part <= 2; part++ {
		rec, err := subs.Get(year, day, part)
		if err != nil {
			return err
		}

		state := "unsolved"
		if rec.Solved {
			state = "solved"
		}

		fmt.Fprintf(out, "%d day %d part %d: %s\n", year, day, part, state)

		answers := make([]string, 0, len(rec.Answers))
		for answer := range rec.Answers {
			answers = append(answers, answer)
		}

		sort.Strings(answers)

		for _, answer := range answers {
			outcome := rec.Answers[answer]
			fmt.Fprintf(out, "  %s: %s (%s)\n", answer, outcome.Kind, outcome.SubmittedAt.Format("2006-01-02 15:04"))
		}
	}

	return nil
}
