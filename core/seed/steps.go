package seed

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/academic"
	"github.com/trezcool/schoolsaas/core/finance"
	"github.com/trezcool/schoolsaas/core/meeting"
	"github.com/trezcool/schoolsaas/core/notice"
	"github.com/trezcool/schoolsaas/core/people"
	"github.com/trezcool/schoolsaas/core/school"
	"github.com/trezcool/schoolsaas/core/user"
)

// Targets is where the seeded rows go.
type Targets struct {
	Users    user.Repository
	School   school.Stores
	People   people.Stores
	Academic academic.Stores
	Finance  finance.Stores
	Meetings meeting.Stores
	Notices  notice.Stores
}

type keyed interface {
	PrimaryKey() string
}

// insert adapts a store to Step.Create.
func insert[T any](store core.Store[T]) func(ctx context.Context, model interface{}) (string, error) {
	return func(ctx context.Context, model interface{}) (string, error) {
		obj, ok := model.(*T)
		if !ok {
			return "", errors.Errorf("cannot store %T", model)
		}
		if err := store.Create(ctx, obj); err != nil {
			return "", err
		}
		return any(obj).(keyed).PrimaryKey(), nil
	}
}

func insertUser(repo user.Repository) func(ctx context.Context, model interface{}) (string, error) {
	return func(ctx context.Context, model interface{}) (string, error) {
		usr, ok := model.(*user.User)
		if !ok {
			return "", errors.Errorf("cannot store %T", model)
		}
		if err := repo.CreateUser(ctx, usr); err != nil {
			return "", err
		}
		return usr.ID, nil
	}
}

func optional(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

// NewPlan returns the steps creating data into t, parents before children.
func NewPlan(data Dataset, t Targets) Plan {
	return Plan{
		{
			Name:  "schools",
			Table: core.TableSchools,
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Schools))
				for _, f := range data.Schools {
					s := f.Input.School()
					recs = append(recs, Record{Key: f.Key, Input: f.Input, Model: &s})
				}
				return recs, nil
			},
			Create: insert(t.School.Schools),
		},
		{
			Name:  "classes",
			Table: core.TableClasses,
			Needs: []string{"schools"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Classes))
				for _, f := range data.Classes {
					in := f.Input
					var err error
					if in.SchoolID, err = st.ID(core.TableSchools, f.School); err != nil {
						return nil, errors.Wrapf(err, "class %q", f.Key)
					}
					c := in.Class()
					recs = append(recs, Record{Key: f.Key, Input: in, Model: &c})
				}
				return recs, nil
			},
			Create: insert(t.School.Classes),
		},
		{
			Name:  "subjects",
			Table: core.TableSubjects,
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Subjects))
				for _, f := range data.Subjects {
					s := f.Input.Subject()
					recs = append(recs, Record{Key: f.Key, Input: f.Input, Model: &s})
				}
				return recs, nil
			},
			Create: insert(t.School.Subjects),
		},
		{
			Name:  "users",
			Table: core.TableUsers,
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Users))
				for _, f := range data.Users {
					st.roles[f.Key] = f.Role
					usr := user.User{
						Email:         core.CleanString(f.Email, true),
						PasswordHash:  st.PasswordHash,
						Role:          f.Role,
						IsActive:      true,
						EmailVerified: true,
						Profile: &user.Profile{
							FirstName: f.FirstName,
							LastName:  f.LastName,
							Phone:     optional(f.Phone),
							Gender:    optional(f.Gender),
							Address:   optional(f.Address),
							City:      optional(f.City),
							State:     optional(f.State),
							Pincode:   optional(f.Pincode),
						},
					}
					if !f.DateOfBirth.IsZero() {
						usr.Profile.DateOfBirth = null.TimeFrom(core.DateOf(f.DateOfBirth))
					}
					recs = append(recs, Record{Key: f.Key, Input: f, Model: &usr})
				}
				return recs, nil
			},
			Create: insertUser(t.Users),
		},
		{
			Name:  "teachers",
			Table: core.TableTeachers,
			Needs: []string{"users"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Teachers))
				for _, f := range data.Teachers {
					in := f.Input
					var err error
					if in.UserID, err = st.UserID(f.User, user.RoleTeacher); err != nil {
						return nil, errors.Wrapf(err, "teacher %q", f.Key)
					}
					tch := in.Teacher()
					recs = append(recs, Record{Key: f.Key, Input: in, Model: &tch})
				}
				return recs, nil
			},
			Create: insert(t.People.Teachers),
		},
		{
			Name:  "parents",
			Table: core.TableParents,
			Needs: []string{"users"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Parents))
				for _, f := range data.Parents {
					in := f.Input
					var err error
					if in.UserID, err = st.UserID(f.User, user.RoleParent); err != nil {
						return nil, errors.Wrapf(err, "parent %q", f.Key)
					}
					p := in.Parent()
					recs = append(recs, Record{Key: f.Key, Input: in, Model: &p})
				}
				return recs, nil
			},
			Create: insert(t.People.Parents),
		},
		{
			Name:  "students",
			Table: core.TableStudents,
			Needs: []string{"users", "classes", "parents"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Students))
				for _, f := range data.Students {
					in := f.Input
					var err error
					if in.UserID, err = st.UserID(f.User, user.RoleStudent); err != nil {
						return nil, errors.Wrapf(err, "student %q", f.Key)
					}
					if in.ClassID, err = st.ID(core.TableClasses, f.Class); err != nil {
						return nil, errors.Wrapf(err, "student %q", f.Key)
					}
					if in.ParentID, err = st.OptionalID(core.TableParents, f.Parent); err != nil {
						return nil, errors.Wrapf(err, "student %q", f.Key)
					}
					s := in.Student()
					recs = append(recs, Record{Key: f.Key, Input: in, Model: &s})
				}
				return recs, nil
			},
			Create: insert(t.People.Students),
		},
		{
			Name:  "class subjects",
			Table: core.TableClassSubjects,
			Needs: []string{"classes", "subjects", "teachers"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.ClassSubjects))
				for _, f := range data.ClassSubjects {
					var in school.NewClassSubject
					var err error
					if in.ClassID, err = st.ID(core.TableClasses, f.Class); err != nil {
						return nil, err
					}
					if in.SubjectID, err = st.ID(core.TableSubjects, f.Subject); err != nil {
						return nil, err
					}
					if in.TeacherID, err = st.ID(core.TableTeachers, f.Teacher); err != nil {
						return nil, err
					}
					cs := school.ClassSubject{ClassID: in.ClassID, SubjectID: in.SubjectID, TeacherID: in.TeacherID}
					recs = append(recs, Record{Input: in, Model: &cs})
				}
				return recs, nil
			},
			Create: insert(t.School.ClassSubjects),
		},
		{
			Name:  "attendance",
			Table: core.TableAttendances,
			Needs: []string{"students", "teachers"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Attendances))
				for _, f := range data.Attendances {
					in := academic.NewAttendance{Date: st.Today(-f.DaysAgo), Status: f.Status}
					if f.Remarks != "" {
						in.Remarks = &f.Remarks
					}
					var err error
					if in.StudentID, err = st.ID(core.TableStudents, f.Student); err != nil {
						return nil, err
					}
					if in.MarkedBy, err = st.ID(core.TableTeachers, f.Teacher); err != nil {
						return nil, err
					}
					a := in.Attendance()
					recs = append(recs, Record{Input: in, Model: &a})
				}
				return recs, nil
			},
			Create: insert(t.Academic.Attendances),
		},
		{
			Name:  "exams",
			Table: core.TableExams,
			Needs: []string{"classes", "teachers"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Exams))
				for _, f := range data.Exams {
					in := f.Input
					var err error
					if in.ClassID, err = st.ID(core.TableClasses, f.Class); err != nil {
						return nil, errors.Wrapf(err, "exam %q", f.Key)
					}
					if in.ConductedBy, err = st.ID(core.TableTeachers, f.Teacher); err != nil {
						return nil, errors.Wrapf(err, "exam %q", f.Key)
					}
					e := in.Exam()
					recs = append(recs, Record{Key: f.Key, Input: in, Model: &e})
				}
				return recs, nil
			},
			Create: insert(t.Academic.Exams),
		},
		{
			Name:  "results",
			Table: core.TableResults,
			Needs: []string{"students", "exams", "subjects"},
			Build: func(st *State) ([]Record, error) {
				exams := make(map[string]academic.Exam, len(data.Exams))
				for _, f := range data.Exams {
					exams[f.Key] = f.Input.Exam()
				}
				recs := make([]Record, 0, len(data.Results))
				for _, f := range data.Results {
					exam, ok := exams[f.Exam]
					if !ok {
						return nil, errors.Errorf("unknown exam %q", f.Exam)
					}
					in := f.Input
					var err error
					if in.StudentID, err = st.ID(core.TableStudents, f.Student); err != nil {
						return nil, err
					}
					if in.ExamID, err = st.ID(core.TableExams, f.Exam); err != nil {
						return nil, err
					}
					if in.SubjectID, err = st.ID(core.TableSubjects, f.Subject); err != nil {
						return nil, err
					}
					r := in.Result(exam)
					if r.MarksObtained > r.MaxMarks {
						return nil, errors.Errorf("result of %q in %q: %v marks out of %v", f.Student, f.Exam, r.MarksObtained, r.MaxMarks)
					}
					recs = append(recs, Record{Input: in, Model: &r})
				}
				return recs, nil
			},
			Create: insert(t.Academic.Results),
		},
		{
			Name:  "fee structures",
			Table: core.TableFeeStructures,
			Needs: []string{"classes"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.FeeStructures))
				for _, f := range data.FeeStructures {
					in := f.Input
					var err error
					if in.ClassID, err = st.ID(core.TableClasses, f.Class); err != nil {
						return nil, err
					}
					fs := in.FeeStructure()
					recs = append(recs, Record{Input: in, Model: &fs})
				}
				return recs, nil
			},
			Create: insert(t.Finance.FeeStructures),
		},
		{
			Name:  "fee payments",
			Table: core.TableFeePayments,
			Needs: []string{"students"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.FeePayments))
				for _, f := range data.FeePayments {
					in := f.Input
					var err error
					if in.StudentID, err = st.ID(core.TableStudents, f.Student); err != nil {
						return nil, err
					}
					fp := in.FeePayment()
					recs = append(recs, Record{Input: in, Model: &fp})
				}
				return recs, nil
			},
			Create: insert(t.Finance.FeePayments),
		},
		{
			Name:  "meetings",
			Table: core.TableMeetings,
			Needs: []string{"teachers"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Meetings))
				for _, f := range data.Meetings {
					in := f.Input
					var err error
					if in.CreatedBy, err = st.ID(core.TableTeachers, f.Teacher); err != nil {
						return nil, errors.Wrapf(err, "meeting %q", f.Key)
					}
					m := in.Meeting()
					recs = append(recs, Record{Key: f.Key, Input: in, Model: &m})
				}
				return recs, nil
			},
			Create: insert(t.Meetings.Meetings),
		},
		{
			Name:  "meeting participants",
			Table: core.TableMeetingParticipants,
			Needs: []string{"meetings", "users"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Participants))
				for _, f := range data.Participants {
					meetingID, err := st.ID(core.TableMeetings, f.Meeting)
					if err != nil {
						return nil, err
					}
					in := f.Input
					if in.UserID, err = st.UserID(f.User, ""); err != nil {
						return nil, err
					}
					p := in.Participant(meetingID)
					recs = append(recs, Record{Input: in, Model: &p})
				}
				return recs, nil
			},
			Create: insert(t.Meetings.Participants),
		},
		{
			Name:  "notifications",
			Table: core.TableNotifications,
			Needs: []string{"users"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Notifications))
				for _, f := range data.Notifications {
					in := f.Input
					var err error
					if in.UserID, err = st.UserID(f.User, ""); err != nil {
						return nil, err
					}
					n := in.Notification()
					if f.IsRead {
						n.IsRead = true
						n.ReadAt = null.TimeFrom(st.Now)
					}
					recs = append(recs, Record{Input: in, Model: &n})
				}
				return recs, nil
			},
			Create: insert(t.Notices.Notifications),
		},
		{
			Name:  "announcements",
			Table: core.TableAnnouncements,
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Announcements))
				for _, f := range data.Announcements {
					a := f.Input.Announcement(st.Now)
					recs = append(recs, Record{Input: f.Input, Model: &a})
				}
				return recs, nil
			},
			Create: insert(t.Notices.Announcements),
		},
		{
			Name:  "assignments",
			Table: core.TableAssignments,
			Needs: []string{"students", "subjects", "teachers"},
			Build: func(st *State) ([]Record, error) {
				recs := make([]Record, 0, len(data.Assignments))
				for _, f := range data.Assignments {
					in := f.Input
					var err error
					if in.StudentID, err = st.ID(core.TableStudents, f.Student); err != nil {
						return nil, err
					}
					if in.SubjectID, err = st.OptionalID(core.TableSubjects, f.Subject); err != nil {
						return nil, err
					}
					if in.AssignedBy, err = st.OptionalID(core.TableTeachers, f.Teacher); err != nil {
						return nil, err
					}
					a := in.Assignment()
					recs = append(recs, Record{Input: in, Model: &a})
				}
				return recs, nil
			},
			Create: insert(t.Academic.Assignments),
		},
	}
}
