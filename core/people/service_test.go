package people_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/people"
	"github.com/trezcool/schoolsaas/core/user"
	testutil "github.com/trezcool/schoolsaas/tests"
)

func TestRoleRecordsNeedMatchingRole(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	parentUsr := testutil.CreateUser(t, env.UserRepo, "Suresh", "Sharma", "parent@test.in", "", user.RoleParent, true)

	tests := []struct {
		name   string
		create func() error
	}{
		{
			name: "teacher from a parent",
			create: func() error {
				_, err := env.People.CreateTeacher(ctx, people.NewTeacher{
					UserID: parentUsr.ID, EmployeeID: "TCH001", Qualification: "B.Ed", JoiningDate: core.MustDate("2020-01-01"),
				})
				return err
			},
		},
		{
			name: "student from a parent",
			create: func() error {
				_, err := env.People.CreateStudent(ctx, people.NewStudent{
					UserID: parentUsr.ID, RollNumber: "1", AdmissionNumber: "ADM1", ClassID: uuid.NewString(),
					AdmissionDate: core.MustDate("2024-04-01"),
				})
				return err
			},
		},
		{
			name: "parent from an unknown user",
			create: func() error {
				_, err := env.People.CreateParent(ctx, people.NewParent{UserID: uuid.NewString()})
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.create()
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "userId", vErr.Fields[0].Field)
		})
	}

	p, err := env.People.CreateParent(ctx, people.NewParent{UserID: parentUsr.ID})
	require.NoError(t, err)
	got, err := env.People.ParentByUser(ctx, parentUsr.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	require.NotNil(t, got.User)
	assert.Equal(t, "Suresh Sharma", got.User.FullName())
}

func TestStudentReferences(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	class := env.CreateClass(t, "10", "A")
	usr := testutil.CreateUser(t, env.UserRepo, "Rahul", "Sharma", "student@test.in", "", user.RoleStudent, true)

	missing := uuid.NewString()
	ns := people.NewStudent{
		UserID:          usr.ID,
		RollNumber:      "1",
		AdmissionNumber: "ADM2024001",
		ClassID:         uuid.NewString(),
		AdmissionDate:   core.MustDate("2024-04-01"),
	}
	_, err := env.People.CreateStudent(ctx, ns)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "classId", vErr.Fields[0].Field)

	ns.ClassID = class.ID
	ns.ParentID = &missing
	_, err = env.People.CreateStudent(ctx, ns)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "parentId", vErr.Fields[0].Field)

	ns.ParentID = nil
	s, err := env.People.CreateStudent(ctx, ns)
	require.NoError(t, err)

	got, err := env.People.StudentByUser(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	require.NotNil(t, got.Class)
	assert.Equal(t, "10A", got.Class.Label())

	// the user cannot go while the student references it
	assert.ErrorIs(t, env.Users.Delete(ctx, usr.ID), core.ErrInUse)
	require.NoError(t, env.People.DeleteStudent(ctx, s.ID))
	require.NoError(t, env.Users.Delete(ctx, usr.ID))

	_, err = env.People.GetStudent(ctx, s.ID)
	assert.Equal(t, people.ErrStudentNotFound, err)
}

func TestQueryStudents(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	a := env.CreateClass(t, "10", "A")
	b := env.CreateClass(t, "10", "B")
	env.CreateStudent(t, "s1@test.in", "ADM001", a.ID)
	env.CreateStudent(t, "s2@test.in", "ADM002", a.ID)
	env.CreateStudent(t, "s3@test.in", "ADM003", b.ID)

	page, err := env.People.QueryStudents(ctx, people.StudentFilter{ClassID: a.ID}, core.Page{Size: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 1)

	page, err = env.People.QueryStudents(ctx, people.StudentFilter{Search: "adm003"}, core.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	students := page.Data.([]people.Student)
	assert.Equal(t, b.ID, students[0].ClassID)
}
