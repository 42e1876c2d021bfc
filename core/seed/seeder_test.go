package seed_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/academic"
	"github.com/trezcool/schoolsaas/core/people"
	"github.com/trezcool/schoolsaas/core/school"
	"github.com/trezcool/schoolsaas/core/seed"
	"github.com/trezcool/schoolsaas/core/user"
	"github.com/trezcool/schoolsaas/storage/database/gormdb"
	testutil "github.com/trezcool/schoolsaas/tests"
)

var wantCounts = map[core.Table]int{
	core.TableUsers:               9,
	core.TableProfiles:            9,
	core.TableSchools:             1,
	core.TableClasses:             3,
	core.TableSubjects:            5,
	core.TableTeachers:            2,
	core.TableParents:             2,
	core.TableStudents:            3,
	core.TableClassSubjects:       3,
	core.TableTimetables:          0,
	core.TableAttendances:         4,
	core.TableExams:               2,
	core.TableResults:             2,
	core.TableAssignments:         2,
	core.TableFeeStructures:       3,
	core.TableFeePayments:         3,
	core.TableMeetings:            2,
	core.TableMeetingParticipants: 4,
	core.TableNotifications:       4,
	core.TableAnnouncements:       3,
}

func newSeeder(env *testutil.Env, data seed.Dataset) *seed.Seeder {
	return seed.NewSeeder(data, gormdb.SeedTargets(env.Gorm), env.Validate, env.Purger, env.Counter, nil)
}

func TestPlanValidate(t *testing.T) {
	env := testutil.NewEnv(t)
	targets := gormdb.SeedTargets(env.Gorm)
	require.NoError(t, seed.NewPlan(seed.Demo(), targets).Validate())

	noop := seed.Step{
		Build:  func(*seed.State) ([]seed.Record, error) { return nil, nil },
		Create: func(context.Context, interface{}) (string, error) { return "", nil },
	}
	step := func(name string, table core.Table, needs ...string) seed.Step {
		s := noop
		s.Name, s.Table, s.Needs = name, table, needs
		return s
	}

	tests := []struct {
		name string
		plan seed.Plan
	}{
		{
			name: "duplicate name",
			plan: seed.Plan{step("schools", core.TableSchools), step("schools", core.TableSchools)},
		},
		{
			name: "needs a later step",
			plan: seed.Plan{step("classes", core.TableClasses, "schools"), step("schools", core.TableSchools)},
		},
		{
			name: "needs an unknown step",
			plan: seed.Plan{step("schools", core.TableSchools, "districts")},
		},
		{
			name: "referenced table filled later",
			plan: seed.Plan{step("classes", core.TableClasses), step("schools", core.TableSchools)},
		},
		{
			name: "unknown table",
			plan: seed.Plan{step("districts", core.Table("districts"))},
		},
		{
			name: "missing create",
			plan: seed.Plan{{Name: "schools", Table: core.TableSchools, Build: noop.Build}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.plan.Validate())
		})
	}
}

func TestDryRun(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	report, err := newSeeder(env, seed.Demo()).DryRun(ctx)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 9, report.Created[core.TableUsers])
	assert.Equal(t, 9, report.Created[core.TableProfiles])
	assert.Equal(t, 4, report.Created[core.TableMeetingParticipants])
	assert.Len(t, report.Credentials, 9)

	counts, err := env.Counter.Counts(ctx)
	require.NoError(t, err)
	for table, cnt := range counts {
		assert.Zero(t, cnt, "dry run wrote into %s", table)
	}

	var out bytes.Buffer
	report.Print(&out)
	assert.Contains(t, out.String(), "principal@school.com")
	assert.Contains(t, out.String(), seed.DefaultPassword)
}

func TestDryRun_Failures(t *testing.T) {
	env := testutil.NewEnv(t)

	tests := []struct {
		name     string
		edit     func(d *seed.Dataset)
		wantStep string
	}{
		{
			name:     "teacher from a parent account",
			edit:     func(d *seed.Dataset) { d.Teachers[0].User = "parent1" },
			wantStep: "teachers",
		},
		{
			name:     "student in an unknown class",
			edit:     func(d *seed.Dataset) { d.Students[0].Class = "11C" },
			wantStep: "students",
		},
		{
			name:     "invalid email",
			edit:     func(d *seed.Dataset) { d.Users[0].Email = "principal" },
			wantStep: "users",
		},
		{
			name:     "exam ending before it starts",
			edit:     func(d *seed.Dataset) { d.Exams[0].Input.EndDate = core.MustDate("2024-08-01") },
			wantStep: "exams",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := seed.Demo()
			tt.edit(&data)
			_, err := newSeeder(env, data).DryRun(context.Background())
			var stepErr *seed.StepError
			require.ErrorAs(t, err, &stepErr)
			assert.Equal(t, tt.wantStep, stepErr.Step)
		})
	}
}

func TestRun(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	seeder := newSeeder(env, seed.Demo())

	first, err := seeder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantCounts, first.Counts)

	// seeding again starts over
	second, err := seeder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Counts, second.Counts)

	// one hash shared by every account
	users, _, err := env.UserRepo.QueryUsers(ctx, user.QueryFilter{}, core.Page{Size: 20})
	require.NoError(t, err)
	require.Len(t, users, 9)
	for _, usr := range users {
		assert.Equal(t, users[0].PasswordHash, usr.PasswordHash)
	}
	assert.NoError(t, users[0].CheckPassword(seed.DefaultPassword))

	principal, err := env.Users.Authenticate(ctx, "principal@school.com", seed.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, user.RolePrincipal, principal.Role)
}

type failingExams struct {
	core.Store[academic.Exam]
}

func (failingExams) Create(context.Context, *academic.Exam) error {
	return errors.New("disk full")
}

func TestRun_CreateFailure(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	targets := gormdb.SeedTargets(env.Gorm)
	targets.Academic.Exams = failingExams{Store: targets.Academic.Exams}
	seeder := seed.NewSeeder(seed.Demo(), targets, env.Validate, env.Purger, env.Counter, nil)

	_, err := seeder.Run(ctx)
	var stepErr *seed.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "exams", stepErr.Step)
	assert.EqualError(t, stepErr.Err, "disk full")

	// rows of the steps before the failure stay
	counts, err := env.Counter.Counts(ctx)
	require.NoError(t, err)
	for _, table := range []core.Table{
		core.TableUsers, core.TableSchools, core.TableClasses, core.TableSubjects, core.TableStudents, core.TableAttendances,
	} {
		assert.Equal(t, wantCounts[table], counts[table], table)
	}
	assert.Zero(t, counts[core.TableExams])
	assert.Zero(t, counts[core.TableResults])
	assert.Zero(t, counts[core.TableFeeStructures])
}

func TestRun_PurgeRollback(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	seeder := newSeeder(env, seed.Demo())
	first, err := seeder.Run(ctx)
	require.NoError(t, err)

	_, err = env.DB.ExecContext(ctx, `CREATE TRIGGER keep_subjects BEFORE DELETE ON subjects
BEGIN
	SELECT RAISE(ABORT, 'subjects are locked');
END`)
	require.NoError(t, err)

	_, err = seeder.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purging database")

	// tables emptied before subjects are back
	counts, err := env.Counter.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Counts, counts)
}

func TestRun_Invariants(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	_, err := newSeeder(env, seed.Demo()).Run(ctx)
	require.NoError(t, err)

	page, err := env.School.QueryClasses(ctx, school.ClassFilter{}, core.Page{})
	require.NoError(t, err)
	classIDs := make(map[string]bool)
	for _, c := range page.Data.([]school.Class) {
		classIDs[c.ID] = true
	}
	require.Len(t, classIDs, 3)

	page, err = env.People.QueryStudents(ctx, people.StudentFilter{}, core.Page{})
	require.NoError(t, err)
	for _, s := range page.Data.([]people.Student) {
		assert.True(t, classIDs[s.ClassID], "student %s in an unknown class", s.AdmissionNumber)
		require.NotNil(t, s.User)
		assert.Equal(t, user.RoleStudent, s.User.Role)
	}

	page, err = env.People.QueryTeachers(ctx, people.TeacherFilter{}, core.Page{})
	require.NoError(t, err)
	for _, tch := range page.Data.([]people.Teacher) {
		require.NotNil(t, tch.User)
		assert.Equal(t, user.RoleTeacher, tch.User.Role)
	}

	page, err = env.People.QueryParents(ctx, people.ParentFilter{}, core.Page{})
	require.NoError(t, err)
	for _, p := range page.Data.([]people.Parent) {
		require.NotNil(t, p.User)
		assert.Equal(t, user.RoleParent, p.User.Role)
	}

	page, err = env.Academic.QueryResults(ctx, academic.ResultFilter{}, core.Page{})
	require.NoError(t, err)
	results := page.Data.([]academic.Result)
	require.Len(t, results, 2)
	for _, r := range results {
		exam, err := env.Academic.GetExam(ctx, r.ExamID)
		require.NoError(t, err)
		assert.Equal(t, r.MarksObtained >= float64(exam.PassingMarks), r.IsPassed)
		assert.Equal(t, academic.Grade(r.Percentage), r.Grade)
	}
}
