package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
)

var (
	// errors
	ErrSchoolNotFound       = core.NewNotFoundError("school")
	ErrClassNotFound        = core.NewNotFoundError("class")
	ErrSubjectNotFound      = core.NewNotFoundError("subject")
	ErrClassSubjectNotFound = core.NewNotFoundError("class subject")
	ErrTimetableNotFound    = core.NewNotFoundError("timetable")

	errEndBeforeStart = errors.New("endTime must be after startTime")
)

type (
	// Stores gathers the storage of every school structure record.
	Stores struct {
		Schools       core.Store[School]
		Classes       core.Store[Class]
		Subjects      core.Store[Subject]
		ClassSubjects core.Store[ClassSubject]
		Timetables    core.Store[Timetable]
	}

	Service interface {
		CreateSchool(ctx context.Context, ns NewSchool) (School, error)
		GetSchool(ctx context.Context, id string) (School, error)
		UpdateSchool(ctx context.Context, id string, us UpdateSchool) (School, error)
		DeleteSchool(ctx context.Context, id string) error
		QuerySchools(ctx context.Context, filter SchoolFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		CreateClass(ctx context.Context, nc NewClass) (Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		UpdateClass(ctx context.Context, id string, uc UpdateClass) (Class, error)
		DeleteClass(ctx context.Context, id string) error
		QueryClasses(ctx context.Context, filter ClassFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		CreateSubject(ctx context.Context, ns NewSubject) (Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		UpdateSubject(ctx context.Context, id string, us UpdateSubject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error
		QuerySubjects(ctx context.Context, filter SubjectFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		// AssignSubject makes a teacher responsible for a subject in a class.
		AssignSubject(ctx context.Context, ncs NewClassSubject) (ClassSubject, error)
		GetClassSubject(ctx context.Context, id string) (ClassSubject, error)
		UpdateClassSubject(ctx context.Context, id string, ucs UpdateClassSubject) (ClassSubject, error)
		DeleteClassSubject(ctx context.Context, id string) error
		QueryClassSubjects(ctx context.Context, filter ClassSubjectFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		CreateTimetable(ctx context.Context, nt NewTimetable) (Timetable, error)
		GetTimetable(ctx context.Context, id string) (Timetable, error)
		UpdateTimetable(ctx context.Context, id string, utt UpdateTimetable) (Timetable, error)
		DeleteTimetable(ctx context.Context, id string) error
		QueryTimetables(ctx context.Context, filter TimetableFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)
	}

	service struct {
		stores Stores
		refs   core.RefChecker
	}
)

var _ Service = (*service)(nil)

func NewService(stores Stores, refs core.RefChecker) Service {
	return &service{stores: stores, refs: refs}
}

// Schools

func (svc *service) CreateSchool(ctx context.Context, ns NewSchool) (School, error) {
	s := ns.School()
	if err := svc.stores.Schools.Create(ctx, &s); err != nil {
		return School{}, errors.Wrap(err, "creating school")
	}
	return s, nil
}

func (svc *service) GetSchool(ctx context.Context, id string) (School, error) {
	return svc.stores.Schools.Get(ctx, id)
}

func (svc *service) UpdateSchool(ctx context.Context, id string, us UpdateSchool) (School, error) {
	s, err := svc.GetSchool(ctx, id)
	if err != nil {
		return School{}, err
	}
	us.Apply(&s)
	if err = svc.stores.Schools.Update(ctx, &s); err != nil {
		return School{}, errors.Wrap(err, "updating school")
	}
	return s, nil
}

func (svc *service) DeleteSchool(ctx context.Context, id string) error {
	return svc.stores.Schools.Delete(ctx, id)
}

func (svc *service) QuerySchools(ctx context.Context, filter SchoolFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Schools, filter.Filter(), page, ordering...)
}

// Classes

func (svc *service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	if err := core.CheckRef(ctx, svc.refs, core.TableSchools, "schoolId", nc.SchoolID); err != nil {
		return Class{}, err
	}
	c := nc.Class()
	if err := svc.stores.Classes.Create(ctx, &c); err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	return c, nil
}

func (svc *service) GetClass(ctx context.Context, id string) (Class, error) {
	return svc.stores.Classes.Get(ctx, id)
}

func (svc *service) UpdateClass(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	c, err := svc.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	uc.Apply(&c)
	if err = svc.stores.Classes.Update(ctx, &c); err != nil {
		return Class{}, errors.Wrap(err, "updating class")
	}
	return c, nil
}

func (svc *service) DeleteClass(ctx context.Context, id string) error {
	return svc.stores.Classes.Delete(ctx, id)
}

func (svc *service) QueryClasses(ctx context.Context, filter ClassFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Classes, filter.Filter(), page, ordering...)
}

// Subjects

func (svc *service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	s := ns.Subject()
	if err := svc.stores.Subjects.Create(ctx, &s); err != nil {
		return Subject{}, errors.Wrap(err, "creating subject")
	}
	return s, nil
}

func (svc *service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.stores.Subjects.Get(ctx, id)
}

func (svc *service) UpdateSubject(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	s, err := svc.GetSubject(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	us.Apply(&s)
	if err = svc.stores.Subjects.Update(ctx, &s); err != nil {
		return Subject{}, errors.Wrap(err, "updating subject")
	}
	return s, nil
}

func (svc *service) DeleteSubject(ctx context.Context, id string) error {
	return svc.stores.Subjects.Delete(ctx, id)
}

func (svc *service) QuerySubjects(ctx context.Context, filter SubjectFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Subjects, filter.Filter(), page, ordering...)
}

// Class subjects

func (svc *service) AssignSubject(ctx context.Context, ncs NewClassSubject) (ClassSubject, error) {
	if err := svc.checkClassSubjectTeacher(ctx, ncs.ClassID, ncs.SubjectID, ncs.TeacherID); err != nil {
		return ClassSubject{}, err
	}
	cs := ClassSubject{
		ClassID:   ncs.ClassID,
		SubjectID: ncs.SubjectID,
		TeacherID: ncs.TeacherID,
	}
	if err := svc.stores.ClassSubjects.Create(ctx, &cs); err != nil {
		return ClassSubject{}, errors.Wrap(err, "creating class subject")
	}
	return cs, nil
}

func (svc *service) checkClassSubjectTeacher(ctx context.Context, classID, subjectID, teacherID string) error {
	if err := core.CheckRef(ctx, svc.refs, core.TableClasses, "classId", classID); err != nil {
		return err
	}
	if err := core.CheckRef(ctx, svc.refs, core.TableSubjects, "subjectId", subjectID); err != nil {
		return err
	}
	return core.CheckRef(ctx, svc.refs, core.TableTeachers, "teacherId", teacherID)
}

func (svc *service) GetClassSubject(ctx context.Context, id string) (ClassSubject, error) {
	return svc.stores.ClassSubjects.Get(ctx, id)
}

func (svc *service) UpdateClassSubject(ctx context.Context, id string, ucs UpdateClassSubject) (ClassSubject, error) {
	cs, err := svc.GetClassSubject(ctx, id)
	if err != nil {
		return ClassSubject{}, err
	}
	if err = core.CheckRef(ctx, svc.refs, core.TableTeachers, "teacherId", ucs.TeacherID); err != nil {
		return ClassSubject{}, err
	}
	cs.TeacherID = ucs.TeacherID
	if err = svc.stores.ClassSubjects.Update(ctx, &cs); err != nil {
		return ClassSubject{}, errors.Wrap(err, "updating class subject")
	}
	return cs, nil
}

func (svc *service) DeleteClassSubject(ctx context.Context, id string) error {
	return svc.stores.ClassSubjects.Delete(ctx, id)
}

func (svc *service) QueryClassSubjects(ctx context.Context, filter ClassSubjectFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.ClassSubjects, filter.Filter(), page, ordering...)
}

// Timetables

func (svc *service) CreateTimetable(ctx context.Context, nt NewTimetable) (Timetable, error) {
	if nt.EndTime <= nt.StartTime {
		return Timetable{}, core.NewFieldError("endTime", errEndBeforeStart)
	}
	if err := svc.checkClassSubjectTeacher(ctx, nt.ClassID, nt.SubjectID, nt.TeacherID); err != nil {
		return Timetable{}, err
	}
	t := nt.Timetable()
	if err := svc.stores.Timetables.Create(ctx, &t); err != nil {
		return Timetable{}, errors.Wrap(err, "creating timetable")
	}
	return t, nil
}

func (svc *service) GetTimetable(ctx context.Context, id string) (Timetable, error) {
	return svc.stores.Timetables.Get(ctx, id)
}

func (svc *service) UpdateTimetable(ctx context.Context, id string, utt UpdateTimetable) (Timetable, error) {
	t, err := svc.GetTimetable(ctx, id)
	if err != nil {
		return Timetable{}, err
	}
	utt.Apply(&t)
	if t.EndTime <= t.StartTime {
		return Timetable{}, core.NewFieldError("endTime", errEndBeforeStart)
	}
	if utt.TeacherID != nil {
		if err = core.CheckRef(ctx, svc.refs, core.TableTeachers, "teacherId", t.TeacherID); err != nil {
			return Timetable{}, err
		}
	}
	if err = svc.stores.Timetables.Update(ctx, &t); err != nil {
		return Timetable{}, errors.Wrap(err, "updating timetable")
	}
	return t, nil
}

func (svc *service) DeleteTimetable(ctx context.Context, id string) error {
	return svc.stores.Timetables.Delete(ctx, id)
}

func (svc *service) QueryTimetables(ctx context.Context, filter TimetableFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Timetables, filter.Filter(), page, ordering...)
}
