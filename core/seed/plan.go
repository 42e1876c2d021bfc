// Package seed fills an empty database with the demo dataset.
//
// A Plan is an ordered list of steps. Each step turns fixtures into validated inputs (Build)
// and persists them one by one (Create). Steps run in order, so a step may only reference
// records created by the steps it Needs.
package seed

import (
	"context"
	"fmt"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
)

// Record is one row a step is about to create.
type Record struct {
	// Key is the fixture name later steps reference the row by. Empty when nothing does.
	Key string
	// Input is struct-validated before anything is written.
	Input interface{}
	// Model is a pointer to the row to insert.
	Model interface{}
}

type Step struct {
	Name  string
	Table core.Table
	Needs []string
	// Build resolves the references of the step fixtures and returns the rows to create.
	Build func(st *State) ([]Record, error)
	// Create persists one row and returns its id.
	Create func(ctx context.Context, model interface{}) (string, error)
}

type Plan []Step

// Validate checks the plan can run in order:
// step names are unique, every step runs after the steps it needs,
// and every table is filled after the tables it references.
func (p Plan) Validate() error {
	done := make(map[string]bool, len(p))
	filled := make(map[core.Table]bool, len(p))
	for i, step := range p {
		step := step
		err := vala.BeginValidation().Validate(
			vala.StringNotEmpty(step.Name, fmt.Sprintf("steps[%d].Name", i)),
			vala.StringNotEmpty(string(step.Table), step.Name+".Table"),
			func() (bool, string) {
				return step.Build != nil && step.Create != nil, fmt.Sprintf("step %q needs both Build and Create", step.Name)
			},
			func() (bool, string) {
				return !done[step.Name], fmt.Sprintf("step %q is declared twice", step.Name)
			},
			func() (bool, string) {
				_, ok := core.References[step.Table]
				return ok, fmt.Sprintf("step %q fills unknown table %q", step.Name, step.Table)
			},
		).Check()
		if err != nil {
			return errors.Wrap(err, "invalid seed plan")
		}

		for _, need := range step.Needs {
			if !done[need] {
				return errors.Errorf("invalid seed plan: step %q needs %q, which does not run before it", step.Name, need)
			}
		}
		for _, ref := range core.References[step.Table] {
			for _, later := range p[i+1:] {
				if later.Table == ref && !filled[ref] {
					return errors.Errorf("invalid seed plan: step %q fills %s after %q references it", later.Name, ref, step.Name)
				}
			}
		}
		done[step.Name] = true
		filled[step.Table] = true
	}
	return nil
}
