package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kazuki/runbridge/internal/magicpod"
	"github.com/kazuki/runbridge/internal/pipeline"
	"github.com/kazuki/runbridge/internal/testrail"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run a MagicPod batch run and push the results into TestRail",
	Long: `Starts a batch run for the configured test setting, polls until it
reaches a terminal status (or the deadline passes), resolves the TestRail
run id from the persisted plan document, and posts one result per case.`,
	RunE: runRun,
}

var (
	runTestSettingID  int
	runPlanFile       string
	runPollInterval   string
	runPollMaxWait    string
	runStrictDeadline bool
)

func init() {
	runCommand.Flags().IntVar(&runTestSettingID, "test-setting", 0, "MagicPod test setting id (defaults to MAGICPOD_TEST_SETTING_ID)")
	runCommand.Flags().StringVar(&runPlanFile, "plan-file", "", "Path of the persisted TestRail plan JSON (defaults to TESTRAIL_TESTPLAN_JSON_FILENAME)")
	runCommand.Flags().StringVar(&runPollInterval, "poll-interval", "", "Poll interval, e.g. 10s")
	runCommand.Flags().StringVar(&runPollMaxWait, "max-wait", "", "Maximum time to wait for the batch run, e.g. 30m")
	runCommand.Flags().BoolVar(&runStrictDeadline, "strict-deadline", false, "Treat a poll deadline overrun as fatal instead of reporting the last snapshot")
	rootCmd.AddCommand(runCommand)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("test-setting") {
		cfg.MagicPod.TestSettingID = runTestSettingID
	}
	if cmd.Flags().Changed("plan-file") {
		cfg.TestRail.PlanFile = runPlanFile
	}
	if cmd.Flags().Changed("poll-interval") {
		cfg.Poll.Interval = runPollInterval
	}
	if cmd.Flags().Changed("max-wait") {
		cfg.Poll.MaxWait = runPollMaxWait
	}

	if err := cfg.ValidateMagicPod(); err != nil {
		return err
	}
	if err := cfg.ValidateTestRail(false); err != nil {
		return err
	}
	interval, maxWait, err := cfg.PollDurations()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // stderr sync failure is uninteresting

	mp, err := magicpod.NewClient(cfg.MagicPod.APIToken, cfg.MagicPod.Organization, cfg.MagicPod.Project, nil)
	if err != nil {
		return err
	}
	tr, err := testrail.NewClient(cfg.TestRail.URL, cfg.TestRail.User, cfg.TestRail.Password, nil)
	if err != nil {
		return err
	}

	return pipeline.Run(context.Background(), pipeline.RunOptions{
		Runner:         mp,
		Poster:         tr,
		TestSettingID:  cfg.MagicPod.TestSettingID,
		PlanFile:       cfg.TestRail.PlanFile,
		PollInterval:   interval,
		PollMaxWait:    maxWait,
		StrictDeadline: runStrictDeadline,
		Logger:         log,
	})
}
