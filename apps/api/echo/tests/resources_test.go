package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/schoolsaas/apps/api/echo"
	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/academic"
	"github.com/trezcool/schoolsaas/core/meeting"
	"github.com/trezcool/schoolsaas/core/notice"
	"github.com/trezcool/schoolsaas/core/school"
	"github.com/trezcool/schoolsaas/core/user"
)

const schoolBody = `{
	"name": "Delhi Public School",
	"code": "DPS001",
	"board": "CBSE",
	"address": "Mathura Road",
	"city": "New Delhi",
	"state": "Delhi",
	"pincode": "110003",
	"phone": "+91-11-24692000",
	"email": "info@dps.in",
	"establishedYear": "1949"
}`

func Test_schoolApi(t *testing.T) {
	app := setup(t)
	principal := app.createUser(t, "principal@test.in", user.RolePrincipal, true)
	teacher := app.createUser(t, "teacher@test.in", user.RoleTeacher, true)

	app.run(t, []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/api/schools", body: []byte(schoolBody), wantCode: http.StatusUnauthorized},
		{
			name: "teacher cannot write", method: http.MethodPost, path: "/api/schools", body: []byte(schoolBody),
			token: app.token(t, teacher), wantCode: http.StatusForbidden, wantData: marshallObj(t, Response{Error: "permission denied"}),
		},
		{
			name: "unknown field", method: http.MethodPost, path: "/api/schools", token: app.token(t, principal),
			body: []byte(`{"name": "X", "motto": "lol"}`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, Response{Message: "validation failed", Error: map[string]string{"motto": "unknown field"}}),
		},
		{
			name: "not json", method: http.MethodPost, path: "/api/schools", token: app.token(t, principal),
			body: []byte(`[1, 2]`), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, Response{Error: "request body must be a JSON object"}),
		},
	})

	var created school.School
	t.Run("created", func(t *testing.T) {
		rec := app.serve(newAuthRequest(http.MethodPost, "/api/schools", app.token(t, principal), []byte(schoolBody)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		env := decodeEnvelope(t, rec, &created)
		assert.True(t, env.Success)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "DPS001", created.Code)
		assert.True(t, created.EstablishedYear.Valid)
		assert.EqualValues(t, 1949, created.EstablishedYear.Int)
	})

	app.run(t, []httpTest{
		{
			name: "duplicate code", method: http.MethodPost, path: "/api/schools", body: []byte(schoolBody),
			token: app.token(t, principal), wantCode: http.StatusConflict, wantData: marshallObj(t, Response{Error: core.ErrConflict.Error()}),
		},
		{name: "teacher can read", path: "/api/schools/" + created.ID, token: app.token(t, teacher), wantCode: http.StatusOK},
		{
			name: "not found", path: "/api/schools/lol", token: app.token(t, teacher), wantCode: http.StatusNotFound,
			wantData: marshallObj(t, Response{Error: "school not found"}),
		},
		{
			name: "update", method: http.MethodPut, path: "/api/schools/" + created.ID, token: app.token(t, principal),
			body: []byte(`{"city": "Delhi"}`), wantCode: http.StatusOK,
		},
		{
			name: "class", method: http.MethodPost, path: "/api/classes", token: app.token(t, principal),
			body: []byte(`{"name": "10", "section": "A", "academicYear": "2024-2025", "schoolId": "` + created.ID + `", "capacity": "35"}`),
			wantCode: http.StatusCreated,
		},
		{
			name: "school in use", method: http.MethodDelete, path: "/api/schools/" + created.ID, token: app.token(t, principal),
			wantCode: http.StatusConflict, wantData: marshallObj(t, Response{Error: core.ErrInUse.Error()}),
		},
	})

	s, err := app.School.GetSchool(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Delhi", s.City)

	classes, err := app.School.QueryClasses(context.Background(), school.ClassFilter{SchoolID: created.ID}, core.Page{})
	require.NoError(t, err)
	require.Len(t, classes.Data, 1)
	assert.Equal(t, 35, classes.Data.([]school.Class)[0].Capacity)
}

func Test_academicApi_assignments(t *testing.T) {
	app := setup(t)
	class := app.CreateClass(t, "10", "A")
	student := app.CreateStudent(t, "student@test.in", "ADM001", class.ID)
	tch := app.CreateTeacher(t, "teacher@test.in", "EMP001")
	teacher, err := app.Users.GetByID(context.Background(), tch.UserID)
	require.NoError(t, err)
	parent := app.createUser(t, "parent@test.in", user.RoleParent, true)

	body := []byte(`{"title": "Essay", "description": "Write about monsoons", "dueDate": "2024-12-01", "totalMarks": "50", "studentId": "` + student.ID + `"}`)
	app.run(t, []httpTest{
		{name: "parent cannot assign", method: http.MethodPost, path: "/api/assignments", token: app.token(t, parent), body: body, wantCode: http.StatusForbidden},
		{
			name: "unknown student", method: http.MethodPost, path: "/api/assignments", token: app.token(t, teacher),
			body:     []byte(`{"title": "Essay", "description": "d", "dueDate": "2024-12-01", "totalMarks": 50, "studentId": "9b2f3f0e-8a57-4d4e-9a53-1f1b1f4f3b11"}`),
			wantCode: http.StatusBadRequest,
		},
	})

	var a academic.Assignment
	rec := app.serve(newAuthRequest(http.MethodPost, "/api/assignments", app.token(t, teacher), body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeEnvelope(t, rec, &a)
	assert.Equal(t, 50, a.TotalMarks)
	assert.Equal(t, academic.AssignmentPending, a.Status)

	grade := []byte(`{"marksObtained": 42, "feedback": "Good work"}`)
	app.run(t, []httpTest{
		{
			name: "grade before submission", method: http.MethodPost, path: "/api/assignments/" + a.ID + "/grade", token: app.token(t, teacher),
			body: grade, wantCode: http.StatusConflict, wantData: marshallObj(t, Response{Error: academic.ErrNotSubmitted.Error()}),
		},
		{name: "submit", method: http.MethodPost, path: "/api/assignments/" + a.ID + "/submit", token: app.token(t, teacher), wantCode: http.StatusOK},
		{name: "grade", method: http.MethodPost, path: "/api/assignments/" + a.ID + "/grade", token: app.token(t, teacher), body: grade, wantCode: http.StatusOK},
		{
			name: "grade twice", method: http.MethodPost, path: "/api/assignments/" + a.ID + "/grade", token: app.token(t, teacher),
			body: grade, wantCode: http.StatusConflict, wantData: marshallObj(t, Response{Error: academic.ErrAlreadyGraded.Error()}),
		},
		{name: "read", path: "/api/assignments/" + a.ID, token: app.token(t, parent), wantCode: http.StatusOK},
		{name: "delete", method: http.MethodDelete, path: "/api/assignments/" + a.ID, token: app.token(t, teacher), wantCode: http.StatusNoContent},
	})
}

func Test_academicApi_attendanceSummary(t *testing.T) {
	app := setup(t)
	class := app.CreateClass(t, "9", "B")
	student := app.CreateStudent(t, "student@test.in", "ADM002", class.ID)
	tch := app.CreateTeacher(t, "teacher@test.in", "EMP002")
	teacher, err := app.Users.GetByID(context.Background(), tch.UserID)
	require.NoError(t, err)

	for _, day := range []string{"2024-07-01", "2024-07-02", "2024-07-03"} {
		rec := app.serve(newAuthRequest(http.MethodPost, "/api/attendance", app.token(t, teacher),
			[]byte(`{"date": "`+day+`", "status": "PRESENT", "studentId": "`+student.ID+`", "markedBy": "`+tch.ID+`"}`)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := app.serve(newAuthRequest(http.MethodGet, "/api/attendance/summary/"+student.ID+"?from=2024-07-02", app.token(t, teacher)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sum academic.AttendanceSummary
	decodeEnvelope(t, rec, &sum)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 2, sum.Counts[academic.AttendancePresent])

	rec = app.serve(newAuthRequest(http.MethodGet, "/api/attendance/summary/lol", app.token(t, teacher)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_meetingApi(t *testing.T) {
	app := setup(t)
	tch := app.CreateTeacher(t, "teacher@test.in", "EMP003")
	teacher, err := app.Users.GetByID(context.Background(), tch.UserID)
	require.NoError(t, err)
	principal := app.createUser(t, "principal@test.in", user.RolePrincipal, true)
	parent := app.createUser(t, "parent@test.in", user.RoleParent, true)
	outsider := app.createUser(t, "outsider@test.in", user.RoleParent, true)

	body := []byte(`{"title": "PTM", "type": "PARENT_TEACHER", "scheduledAt": "2030-01-10T10:00:00Z", "duration": "30"}`)
	app.run(t, []httpTest{
		{name: "principal cannot create", method: http.MethodPost, path: "/api/meetings", token: app.token(t, principal), body: body, wantCode: http.StatusForbidden},
		{name: "parent cannot create", method: http.MethodPost, path: "/api/meetings", token: app.token(t, parent), body: body, wantCode: http.StatusForbidden},
	})

	var m meeting.Meeting
	rec := app.serve(newAuthRequest(http.MethodPost, "/api/meetings", app.token(t, teacher), body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeEnvelope(t, rec, &m)
	assert.Equal(t, tch.ID, m.CreatedBy)
	assert.Equal(t, 30, m.Duration)

	app.run(t, []httpTest{
		{
			name: "invite parent", method: http.MethodPost, path: "/api/meetings/" + m.ID + "/participants", token: app.token(t, teacher),
			body: []byte(`{"userId": "` + parent.ID + `"}`), wantCode: http.StatusOK,
		},
		{
			name: "outsider cannot respond", method: http.MethodPost, path: "/api/meetings/" + m.ID + "/respond", token: app.token(t, outsider),
			body: []byte(`{"status": "ACCEPTED"}`), wantCode: http.StatusNotFound,
		},
		{
			name: "parent accepts", method: http.MethodPost, path: "/api/meetings/" + m.ID + "/respond", token: app.token(t, parent),
			body: []byte(`{"status": "ACCEPTED"}`), wantCode: http.StatusOK,
		},
	})

	count := func(usr user.User) int64 {
		rec := app.serve(newAuthRequest(http.MethodGet, "/api/meetings", app.token(t, usr)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page struct {
			Total int64 `json:"total"`
		}
		decodeEnvelope(t, rec, &page)
		return page.Total
	}
	assert.EqualValues(t, 1, count(teacher))
	assert.EqualValues(t, 1, count(parent))
	assert.EqualValues(t, 0, count(outsider))
	assert.EqualValues(t, 1, count(principal))

	app.run(t, []httpTest{
		{
			name: "cancel", method: http.MethodPost, path: "/api/meetings/" + m.ID + "/status", token: app.token(t, teacher),
			body: []byte(`{"status": "CANCELLED"}`), wantCode: http.StatusOK,
		},
		{
			name: "closed meeting", method: http.MethodPost, path: "/api/meetings/" + m.ID + "/respond", token: app.token(t, parent),
			body: []byte(`{"status": "DECLINED"}`), wantCode: http.StatusConflict,
			wantData: marshallObj(t, Response{Error: meeting.ErrMeetingClosed.Error()}),
		},
	})
}

func Test_noticeApi(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	admin := app.createUser(t, "admin@test.in", user.RoleAdmin, true)
	teacher := app.createUser(t, "teacher@test.in", user.RoleTeacher, true)
	parent := app.createUser(t, "parent@test.in", user.RoleParent, true)

	t.Run("notifications", func(t *testing.T) {
		body := []byte(`{"userId": "` + parent.ID + `", "title": "Fee due", "message": "Please pay the term fee", "type": "FEE"}`)
		app.run(t, []httpTest{
			{name: "parent cannot notify", method: http.MethodPost, path: "/api/notifications", token: app.token(t, parent), body: body, wantCode: http.StatusForbidden},
			{name: "teacher notifies", method: http.MethodPost, path: "/api/notifications", token: app.token(t, teacher), body: body, wantCode: http.StatusCreated},
		})
		n, err := app.Notices.Notify(ctx, notice.NewNotification{UserID: parent.ID, Title: "Meeting", Message: "PTM tomorrow"})
		require.NoError(t, err)

		rec := app.serve(newAuthRequest(http.MethodGet, "/api/notifications?isRead=false", app.token(t, parent)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page struct {
			Total int64 `json:"total"`
		}
		decodeEnvelope(t, rec, &page)
		assert.EqualValues(t, 2, page.Total)

		app.run(t, []httpTest{
			{name: "someone else's", method: http.MethodPost, path: "/api/notifications/" + n.ID + "/read", token: app.token(t, teacher), wantCode: http.StatusNotFound},
			{name: "read", method: http.MethodPost, path: "/api/notifications/" + n.ID + "/read", token: app.token(t, parent), wantCode: http.StatusOK},
			{
				name: "read all", method: http.MethodPost, path: "/api/notifications/read-all", token: app.token(t, parent), wantCode: http.StatusOK,
				wantData: marshallObj(t, Response{Success: true, Data: map[string]int{"count": 1}}),
			},
			{name: "delete", method: http.MethodDelete, path: "/api/notifications/" + n.ID, token: app.token(t, parent), wantCode: http.StatusNoContent},
		})
	})

	t.Run("announcements", func(t *testing.T) {
		app.run(t, []httpTest{
			{
				name: "teacher cannot announce", method: http.MethodPost, path: "/api/announcements", token: app.token(t, teacher),
				body: []byte(`{"title": "Holiday", "content": "School closed"}`), wantCode: http.StatusForbidden,
			},
			{
				name: "for everybody", method: http.MethodPost, path: "/api/announcements", token: app.token(t, admin),
				body: []byte(`{"title": "Holiday", "content": "School closed", "type": "HOLIDAY"}`), wantCode: http.StatusCreated,
			},
			{
				name: "for teachers", method: http.MethodPost, path: "/api/announcements", token: app.token(t, admin),
				body: []byte(`{"title": "Staff meeting", "content": "Friday 4pm", "targetRole": "TEACHER"}`), wantCode: http.StatusCreated,
			},
			{
				name: "scheduled", method: http.MethodPost, path: "/api/announcements", token: app.token(t, admin),
				body: []byte(`{"title": "Annual day", "content": "Save the date", "publishedAt": "2099-01-01T00:00:00Z"}`), wantCode: http.StatusCreated,
			},
		})

		count := func(usr user.User) int64 {
			rec := app.serve(newAuthRequest(http.MethodGet, "/api/announcements", app.token(t, usr)))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var page struct {
				Total int64 `json:"total"`
			}
			decodeEnvelope(t, rec, &page)
			return page.Total
		}
		assert.EqualValues(t, 3, count(admin))
		assert.EqualValues(t, 2, count(teacher))
		assert.EqualValues(t, 1, count(parent))
	})
}
