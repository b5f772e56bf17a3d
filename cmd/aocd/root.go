package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aocd"
	"aocd/classify"
	"aocd/internal/config"
	"aocd/internal/version"
	"aocd/session"
)

var rootCmd = &cobra.Command{
	Use:          "aocd",
	Short:        "Advent of Code driver",
	Long:         `Fetch Advent of Code puzzle inputs and submit answers from the command line.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().StringP("session-file", "s", "", "Path to the session cookie file")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Storage root for inputs and submission records")
	rootCmd.PersistentFlags().String("base-url", "", "Judge endpoint (for testing)")
	rootCmd.PersistentFlags().String("patterns", "", "Response pattern file overriding the built-in table")
	rootCmd.PersistentFlags().BoolP("wait", "w", false, "Sleep out a judge cooldown and resubmit once")
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
}

// newDriver assembles a driver from the resolved configuration.
func newDriver(cmd *cobra.Command) (*aocd.Driver, error) {
	cfg, err := config.NewLoader().Load(cmd)
	if err != nil {
		return nil, err
	}

	token, err := session.Load(cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	driver, err := aocd.New(token, cfg.Dir)
	if err != nil {
		return nil, err
	}

	driver.Client.BaseURL = cfg.BaseURL
	driver.WaitOnRateLimit = cfg.Wait

	if cfg.PatternsFile != "" {
		patterns, err := classify.LoadPatterns(cfg.PatternsFile)
		if err != nil {
			driver.Close()
			return nil, err
		}

		driver.Patterns = patterns
	}

	return driver, nil
}
