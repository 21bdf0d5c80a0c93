package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kazuki/runbridge/internal/testrail"
)

// PlanCreator creates test plans. *testrail.Client satisfies it.
type PlanCreator interface {
	AddPlan(ctx context.Context, projectID int, req testrail.PlanRequest) (json.RawMessage, error)
}

// PrepareOptions holds everything the prepare flow needs.
type PrepareOptions struct {
	Creator      PlanCreator
	ProjectID    int
	TemplatePath string // empty means the built-in template
	PlanFile     string
	Logger       *zap.Logger
}

// Prepare creates a TestRail plan from the template and persists the
// raw response document for the run flow to consume later.
func Prepare(ctx context.Context, opts PrepareOptions) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fmt.Println("Step 1/3: Loading plan template...")
	tpl := testrail.DefaultPlanTemplate()
	if opts.TemplatePath != "" {
		var err error
		tpl, err = testrail.LoadPlanTemplate(opts.TemplatePath)
		if err != nil {
			return err
		}
	}

	req := tpl.Request(time.Now())
	fmt.Printf("Step 2/3: Creating test plan %q in project %d...\n", req.Name, opts.ProjectID)
	raw, err := opts.Creator.AddPlan(ctx, opts.ProjectID, req)
	if err != nil {
		return fmt.Errorf("create test plan: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "    "); err == nil {
		fmt.Println(pretty.String())
	}

	fmt.Printf("Step 3/3: Saving plan document to %s...\n", opts.PlanFile)
	if err := testrail.SavePlan(opts.PlanFile, raw); err != nil {
		return err
	}
	log.Info("test plan prepared",
		zap.String("name", req.Name), zap.String("plan_file", opts.PlanFile))
	return nil
}
