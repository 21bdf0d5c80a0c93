package testrail

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PlanTemplate describes the plan to create, loaded from a YAML file.
type PlanTemplate struct {
	Name    string      `yaml:"name"`
	Entries []PlanEntry `yaml:"entries"`
}

// LoadPlanTemplate reads a plan template from a YAML file.
func LoadPlanTemplate(path string) (*PlanTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testrail: read plan template %s: %w", path, err)
	}
	var tpl PlanTemplate
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("testrail: parse plan template %s: %w", path, err)
	}
	if len(tpl.Entries) == 0 {
		return nil, fmt.Errorf("testrail: plan template %s declares no entries", path)
	}
	return &tpl, nil
}

// DefaultPlanTemplate returns the built-in single-suite template used
// when no template file is given.
func DefaultPlanTemplate() *PlanTemplate {
	return &PlanTemplate{
		Entries: []PlanEntry{
			{
				SuiteID:    1,
				Name:       "Login_Automation",
				IncludeAll: true,
				ConfigIDs:  []int{2},
				Runs: []PlanEntryRun{
					{IncludeAll: true, CaseIDs: []int{1}, ConfigIDs: []int{2}},
				},
			},
		},
	}
}

// Request turns the template into an add_plan request. An empty name
// falls back to a timestamped one so repeated CI runs stay apart.
func (t *PlanTemplate) Request(now time.Time) PlanRequest {
	name := t.Name
	if name == "" {
		name = now.Format("2006-01-02-15-04") + " MagicPod Test"
	}
	return PlanRequest{Name: name, Entries: t.Entries}
}
