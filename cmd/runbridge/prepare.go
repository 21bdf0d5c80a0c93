package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kazuki/runbridge/internal/pipeline"
	"github.com/kazuki/runbridge/internal/testrail"
)

var prepareCommand = &cobra.Command{
	Use:   "prepare",
	Short: "Create a TestRail test plan and persist its document",
	Long: `Creates a test plan from a YAML template (or the built-in default)
via add_plan and writes the raw response JSON to the plan file, where the
run command later resolves the run id from it.`,
	RunE: runPrepare,
}

var (
	prepareProjectID int
	prepareTemplate  string
	preparePlanFile  string
)

func init() {
	prepareCommand.Flags().IntVar(&prepareProjectID, "project", 0, "TestRail project id (defaults to TESTRAIL_PROJECT_ID)")
	prepareCommand.Flags().StringVarP(&prepareTemplate, "template", "t", "", "Path to a YAML plan template")
	prepareCommand.Flags().StringVar(&preparePlanFile, "plan-file", "", "Where to write the plan JSON (defaults to TESTRAIL_TESTPLAN_JSON_FILENAME)")
	rootCmd.AddCommand(prepareCommand)
}

func runPrepare(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("project") {
		cfg.TestRail.ProjectID = prepareProjectID
	}
	if cmd.Flags().Changed("plan-file") {
		cfg.TestRail.PlanFile = preparePlanFile
	}

	if err := cfg.ValidateTestRail(true); err != nil {
		return err
	}

	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // stderr sync failure is uninteresting

	tr, err := testrail.NewClient(cfg.TestRail.URL, cfg.TestRail.User, cfg.TestRail.Password, nil)
	if err != nil {
		return err
	}

	return pipeline.Prepare(context.Background(), pipeline.PrepareOptions{
		Creator:      tr,
		ProjectID:    cfg.TestRail.ProjectID,
		TemplatePath: prepareTemplate,
		PlanFile:     cfg.TestRail.PlanFile,
		Logger:       log,
	})
}
