package school

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
)

// Boards
const (
	BoardCBSE = "CBSE"
	BoardICSE = "ICSE"
)

// Subject types
const (
	SubjectCore            = "CORE"
	SubjectElective        = "ELECTIVE"
	SubjectOptional        = "OPTIONAL"
	SubjectExtraCurricular = "EXTRA_CURRICULAR"
)

// DefaultClassCapacity is used when a class is created without a capacity.
const DefaultClassCapacity = 40

type School struct {
	core.Model
	Name            string      `json:"name" gorm:"not null"`
	Code            string      `json:"code" gorm:"uniqueIndex;not null"`
	Board           string      `json:"board" gorm:"not null"`
	Address         string      `json:"address" gorm:"not null"`
	City            string      `json:"city" gorm:"not null"`
	State           string      `json:"state" gorm:"not null"`
	Pincode         string      `json:"pincode" gorm:"not null"`
	Phone           string      `json:"phone" gorm:"not null"`
	Email           string      `json:"email" gorm:"not null"`
	Website         null.String `json:"website"`
	PrincipalName   null.String `json:"principalName"`
	EstablishedYear null.Int    `json:"establishedYear"`
}

func (School) TableName() string { return string(core.TableSchools) }

type Class struct {
	core.Model
	Name         string      `json:"name" gorm:"not null"`
	Section      string      `json:"section" gorm:"not null"`
	AcademicYear string      `json:"academicYear" gorm:"not null"`
	SchoolID     string      `json:"schoolId" gorm:"not null"`
	Capacity     int         `json:"capacity" gorm:"not null"`
	RoomNumber   null.String `json:"roomNumber"`
}

func (Class) TableName() string { return string(core.TableClasses) }

// Label returns the short class name, e.g. "10A".
func (c Class) Label() string { return c.Name + c.Section }

type Subject struct {
	core.Model
	Name        string      `json:"name" gorm:"not null"`
	Code        string      `json:"code" gorm:"uniqueIndex;not null"`
	Type        string      `json:"type" gorm:"not null"`
	Description null.String `json:"description"`
}

func (Subject) TableName() string { return string(core.TableSubjects) }

// ClassSubject assigns the teacher of a subject in a class.
type ClassSubject struct {
	core.Model
	ClassID   string `json:"classId" gorm:"not null"`
	SubjectID string `json:"subjectId" gorm:"not null"`
	TeacherID string `json:"teacherId" gorm:"not null"`
}

func (ClassSubject) TableName() string { return string(core.TableClassSubjects) }

// Timetable is one weekly period of a class. DayOfWeek goes from 1 (Monday) to 7 (Sunday).
type Timetable struct {
	core.Model
	ClassID   string      `json:"classId" gorm:"not null"`
	SubjectID string      `json:"subjectId" gorm:"not null"`
	TeacherID string      `json:"teacherId" gorm:"not null"`
	DayOfWeek int         `json:"dayOfWeek" gorm:"not null"`
	StartTime string      `json:"startTime" gorm:"not null"`
	EndTime   string      `json:"endTime" gorm:"not null"`
	Room      null.String `json:"room"`
}

func (Timetable) TableName() string { return string(core.TableTimetables) }

type NewSchool struct {
	Name            string  `json:"name" validate:"required,max=200"`
	Code            string  `json:"code" validate:"required,max=50"`
	Board           string  `json:"board" validate:"required,oneof=CBSE ICSE"`
	Address         string  `json:"address" validate:"required"`
	City            string  `json:"city" validate:"required"`
	State           string  `json:"state" validate:"required"`
	Pincode         string  `json:"pincode" validate:"required,numeric,len=6"`
	Phone           string  `json:"phone" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Website         *string `json:"website" validate:"omitempty,url"`
	PrincipalName   *string `json:"principalName"`
	EstablishedYear *int    `json:"establishedYear" validate:"omitempty,min=1800,max=2100"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

func (ns NewSchool) School() School {
	return School{
		Name:            ns.Name,
		Code:            ns.Code,
		Board:           ns.Board,
		Address:         ns.Address,
		City:            ns.City,
		State:           ns.State,
		Pincode:         ns.Pincode,
		Phone:           ns.Phone,
		Email:           ns.Email,
		Website:         null.StringFromPtr(ns.Website),
		PrincipalName:   null.StringFromPtr(ns.PrincipalName),
		EstablishedYear: null.IntFromPtr(ns.EstablishedYear),
	}
}

type UpdateSchool struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	Board           *string `json:"board" validate:"omitempty,oneof=CBSE ICSE"`
	Address         *string `json:"address" validate:"omitempty,min=1"`
	City            *string `json:"city" validate:"omitempty,min=1"`
	State           *string `json:"state" validate:"omitempty,min=1"`
	Pincode         *string `json:"pincode" validate:"omitempty,numeric,len=6"`
	Phone           *string `json:"phone" validate:"omitempty,min=1"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Website         *string `json:"website" validate:"omitempty,url"`
	PrincipalName   *string `json:"principalName"`
	EstablishedYear *int    `json:"establishedYear" validate:"omitempty,min=1800,max=2100"`
}

func (us UpdateSchool) Validate(validate *validator.Validate) error { return validate.Struct(us) }

func (us UpdateSchool) Apply(s *School) {
	core.SetString(&s.Name, us.Name)
	core.SetString(&s.Board, us.Board)
	core.SetString(&s.Address, us.Address)
	core.SetString(&s.City, us.City)
	core.SetString(&s.State, us.State)
	core.SetString(&s.Pincode, us.Pincode)
	core.SetString(&s.Phone, us.Phone)
	core.SetString(&s.Email, us.Email)
	core.SetNullString(&s.Website, us.Website)
	core.SetNullString(&s.PrincipalName, us.PrincipalName)
	if us.EstablishedYear != nil {
		s.EstablishedYear = null.IntFrom(*us.EstablishedYear)
	}
}

type NewClass struct {
	Name         string  `json:"name" validate:"required,max=50"`
	Section      string  `json:"section" validate:"required,max=10"`
	AcademicYear string  `json:"academicYear" validate:"required,academicyear"`
	SchoolID     string  `json:"schoolId" validate:"required,uuid"`
	Capacity     int     `json:"capacity" validate:"omitempty,min=1,max=500"`
	RoomNumber   *string `json:"roomNumber"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Section = core.CleanString(nc.Section)
	return validate.Struct(nc)
}

func (nc NewClass) Class() Class {
	capacity := nc.Capacity
	if capacity == 0 {
		capacity = DefaultClassCapacity
	}
	return Class{
		Name:         nc.Name,
		Section:      nc.Section,
		AcademicYear: nc.AcademicYear,
		SchoolID:     nc.SchoolID,
		Capacity:     capacity,
		RoomNumber:   null.StringFromPtr(nc.RoomNumber),
	}
}

type UpdateClass struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=50"`
	Section      *string `json:"section" validate:"omitempty,min=1,max=10"`
	AcademicYear *string `json:"academicYear" validate:"omitempty,academicyear"`
	Capacity     *int    `json:"capacity" validate:"omitempty,min=1,max=500"`
	RoomNumber   *string `json:"roomNumber"`
}

func (uc UpdateClass) Validate(validate *validator.Validate) error { return validate.Struct(uc) }

func (uc UpdateClass) Apply(c *Class) {
	core.SetString(&c.Name, uc.Name)
	core.SetString(&c.Section, uc.Section)
	core.SetString(&c.AcademicYear, uc.AcademicYear)
	if uc.Capacity != nil {
		c.Capacity = *uc.Capacity
	}
	core.SetNullString(&c.RoomNumber, uc.RoomNumber)
}

type NewSubject struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Code        string  `json:"code" validate:"required,max=20"`
	Type        string  `json:"type" validate:"required,oneof=CORE ELECTIVE OPTIONAL EXTRA_CURRICULAR"`
	Description *string `json:"description"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)
	return validate.Struct(ns)
}

func (ns NewSubject) Subject() Subject {
	return Subject{
		Name:        ns.Name,
		Code:        ns.Code,
		Type:        ns.Type,
		Description: null.StringFromPtr(ns.Description),
	}
}

type UpdateSubject struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Type        *string `json:"type" validate:"omitempty,oneof=CORE ELECTIVE OPTIONAL EXTRA_CURRICULAR"`
	Description *string `json:"description"`
}

func (us UpdateSubject) Validate(validate *validator.Validate) error { return validate.Struct(us) }

func (us UpdateSubject) Apply(s *Subject) {
	core.SetString(&s.Name, us.Name)
	core.SetString(&s.Type, us.Type)
	core.SetNullString(&s.Description, us.Description)
}

type NewClassSubject struct {
	ClassID   string `json:"classId" validate:"required,uuid"`
	SubjectID string `json:"subjectId" validate:"required,uuid"`
	TeacherID string `json:"teacherId" validate:"required,uuid"`
}

func (ncs NewClassSubject) Validate(validate *validator.Validate) error { return validate.Struct(ncs) }

type UpdateClassSubject struct {
	TeacherID string `json:"teacherId" validate:"required,uuid"`
}

func (ucs UpdateClassSubject) Validate(validate *validator.Validate) error {
	return validate.Struct(ucs)
}

type NewTimetable struct {
	ClassID   string  `json:"classId" validate:"required,uuid"`
	SubjectID string  `json:"subjectId" validate:"required,uuid"`
	TeacherID string  `json:"teacherId" validate:"required,uuid"`
	DayOfWeek int     `json:"dayOfWeek" validate:"required,min=1,max=7"`
	StartTime string  `json:"startTime" validate:"required,hhmm"`
	EndTime   string  `json:"endTime" validate:"required,hhmm"`
	Room      *string `json:"room"`
}

func (nt NewTimetable) Validate(validate *validator.Validate) error { return validate.Struct(nt) }

func (nt NewTimetable) Timetable() Timetable {
	return Timetable{
		ClassID:   nt.ClassID,
		SubjectID: nt.SubjectID,
		TeacherID: nt.TeacherID,
		DayOfWeek: nt.DayOfWeek,
		StartTime: nt.StartTime,
		EndTime:   nt.EndTime,
		Room:      null.StringFromPtr(nt.Room),
	}
}

type UpdateTimetable struct {
	TeacherID *string `json:"teacherId" validate:"omitempty,uuid"`
	DayOfWeek *int    `json:"dayOfWeek" validate:"omitempty,min=1,max=7"`
	StartTime *string `json:"startTime" validate:"omitempty,hhmm"`
	EndTime   *string `json:"endTime" validate:"omitempty,hhmm"`
	Room      *string `json:"room"`
}

func (utt UpdateTimetable) Validate(validate *validator.Validate) error { return validate.Struct(utt) }

func (utt UpdateTimetable) Apply(t *Timetable) {
	core.SetString(&t.TeacherID, utt.TeacherID)
	if utt.DayOfWeek != nil {
		t.DayOfWeek = *utt.DayOfWeek
	}
	core.SetString(&t.StartTime, utt.StartTime)
	core.SetString(&t.EndTime, utt.EndTime)
	core.SetNullString(&t.Room, utt.Room)
}

type SchoolFilter struct {
	Search string `query:"search"`
	Board  string `query:"board"`
	City   string `query:"city"`
}

func (qf SchoolFilter) Filter() *core.Filter {
	return core.NewFilter().
		Search(qf.Search, "name", "code").
		EqIf("board", qf.Board).
		EqIf("city", qf.City)
}

type ClassFilter struct {
	SchoolID     string `query:"schoolId"`
	AcademicYear string `query:"academicYear"`
	Name         string `query:"name"`
}

func (qf ClassFilter) Filter() *core.Filter {
	return core.NewFilter().
		EqIf("school_id", qf.SchoolID).
		EqIf("academic_year", qf.AcademicYear).
		EqIf("name", qf.Name)
}

type SubjectFilter struct {
	Search string `query:"search"`
	Type   string `query:"type"`
}

func (qf SubjectFilter) Filter() *core.Filter {
	return core.NewFilter().
		Search(qf.Search, "name", "code").
		EqIf("type", qf.Type)
}

type ClassSubjectFilter struct {
	ClassID   string `query:"classId"`
	SubjectID string `query:"subjectId"`
	TeacherID string `query:"teacherId"`
}

func (qf ClassSubjectFilter) Filter() *core.Filter {
	return core.NewFilter().
		EqIf("class_id", qf.ClassID).
		EqIf("subject_id", qf.SubjectID).
		EqIf("teacher_id", qf.TeacherID)
}

type TimetableFilter struct {
	ClassID   string `query:"classId"`
	TeacherID string `query:"teacherId"`
	DayOfWeek int    `query:"dayOfWeek"`
}

func (qf TimetableFilter) Filter() *core.Filter {
	f := core.NewFilter().
		EqIf("class_id", qf.ClassID).
		EqIf("teacher_id", qf.TeacherID)
	if qf.DayOfWeek > 0 {
		f.Eq("day_of_week", qf.DayOfWeek)
	}
	return f
}
