package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/user"
)

type (
	// Purger empties every table, children before parents, in one transaction.
	Purger interface {
		Purge(ctx context.Context) ([]core.Table, error)
	}

	// Counter returns the row count of every table.
	Counter interface {
		Counts(ctx context.Context) (map[core.Table]int, error)
	}
)

// StepError tells which step of a run failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("seed step %q: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

type Credential struct {
	Label string
	Email string
}

// Report sums up a run.
type Report struct {
	DryRun      bool
	Created     map[core.Table]int // rows created per table, profiles included
	Counts      map[core.Table]int // rows per table after the run
	Password    string
	Credentials []Credential
}

type Seeder struct {
	plan     Plan
	data     Dataset
	validate *validator.Validate
	purger   Purger
	counter  Counter
	logger   *log.Logger
	now      func() time.Time
}

func NewSeeder(data Dataset, targets Targets, validate *validator.Validate, purger Purger, counter Counter, logger *log.Logger) *Seeder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Seeder{
		plan:     NewPlan(data, targets),
		data:     data,
		validate: validate,
		purger:   purger,
		counter:  counter,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Seeder) report(dryRun bool) Report {
	r := Report{DryRun: dryRun, Created: make(map[core.Table]int), Password: s.data.Password}
	for _, u := range s.data.Users {
		r.Credentials = append(r.Credentials, Credential{Label: u.Label, Email: u.Email})
	}
	return r
}

func (s *Seeder) count(r *Report, table core.Table, rec Record) {
	r.Created[table]++
	if usr, ok := rec.Model.(*user.User); ok && usr.Profile != nil {
		r.Created[core.TableProfiles]++
	}
}

// DryRun builds and validates every record against placeholder ids. It writes nothing.
func (s *Seeder) DryRun(ctx context.Context) (Report, error) {
	if err := s.plan.Validate(); err != nil {
		return Report{}, err
	}
	r := s.report(true)
	st := NewState(s.now(), "")
	for _, step := range s.plan {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		recs, err := step.Build(st)
		if err != nil {
			return Report{}, &StepError{Step: step.Name, Err: err}
		}
		for _, rec := range recs {
			if err = s.validate.Struct(rec.Input); err != nil {
				return Report{}, &StepError{Step: step.Name, Err: err}
			}
			st.set(step.Table, rec.Key, uuid.NewString())
			s.count(&r, step.Table, rec)
		}
	}
	return r, nil
}

// Run dry-runs the plan, empties the database, then creates every record in order.
// A failure stops the run where it is: rows created before it stay.
func (s *Seeder) Run(ctx context.Context) (Report, error) {
	s.logger.Println("validating seed plan...")
	if _, err := s.DryRun(ctx); err != nil {
		return Report{}, err
	}

	s.logger.Println("cleaning existing data...")
	if _, err := s.purger.Purge(ctx); err != nil {
		return Report{}, errors.Wrap(err, "purging database")
	}

	hash, err := user.HashPassword(s.data.Password)
	if err != nil {
		return Report{}, errors.Wrap(err, "hashing password")
	}

	r := s.report(false)
	st := NewState(s.now(), hash)
	for _, step := range s.plan {
		s.logger.Printf("creating %s...", step.Name)
		recs, err := step.Build(st)
		if err != nil {
			return Report{}, &StepError{Step: step.Name, Err: err}
		}
		for _, rec := range recs {
			id, err := step.Create(ctx, rec.Model)
			if err != nil {
				return Report{}, &StepError{Step: step.Name, Err: err}
			}
			st.set(step.Table, rec.Key, id)
			s.count(&r, step.Table, rec)
		}
	}

	if r.Counts, err = s.counter.Counts(ctx); err != nil {
		return Report{}, errors.Wrap(err, "counting rows")
	}
	s.logger.Println("database seeding completed")
	return r, nil
}

// Print writes the summary and the login credentials of r.
func (r Report) Print(w io.Writer) {
	counts := r.Counts
	if counts == nil {
		counts = r.Created
	}
	if r.DryRun {
		fmt.Fprintln(w, "Dry run: nothing was written. The run would create:")
	} else {
		fmt.Fprintln(w, "Summary:")
	}
	for _, table := range core.Tables {
		fmt.Fprintf(w, "- %-22s %d\n", table, counts[table])
	}
	fmt.Fprintf(w, "\nLogin credentials (password for all: %s):\n", r.Password)
	for _, c := range r.Credentials {
		fmt.Fprintf(w, "- %s: %s\n", c.Label, c.Email)
	}
}
