package people

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/school"
	"github.com/trezcool/schoolsaas/core/user"
)

type Teacher struct {
	core.Model
	UserID         string       `json:"userId" gorm:"uniqueIndex;not null"`
	EmployeeID     string       `json:"employeeId" gorm:"uniqueIndex;not null"`
	Qualification  string       `json:"qualification" gorm:"not null"`
	Experience     null.Int     `json:"experience"`
	JoiningDate    time.Time    `json:"joiningDate" gorm:"not null"`
	Specialization null.String  `json:"specialization"`
	Salary         null.Float64 `json:"salary"`
	User           *user.User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Teacher) TableName() string { return string(core.TableTeachers) }

type Parent struct {
	core.Model
	UserID       string      `json:"userId" gorm:"uniqueIndex;not null"`
	Occupation   null.String `json:"occupation"`
	Relationship null.String `json:"relationship"`
	User         *user.User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Parent) TableName() string { return string(core.TableParents) }

type Student struct {
	core.Model
	UserID          string        `json:"userId" gorm:"uniqueIndex;not null"`
	RollNumber      string        `json:"rollNumber" gorm:"not null"`
	AdmissionNumber string        `json:"admissionNumber" gorm:"uniqueIndex;not null"`
	ClassID         string        `json:"classId" gorm:"not null"`
	ParentID        null.String   `json:"parentId"`
	AdmissionDate   time.Time     `json:"admissionDate" gorm:"not null"`
	BloodGroup      null.String   `json:"bloodGroup"`
	EmergencyPhone  null.String   `json:"emergencyPhone"`
	User            *user.User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Class           *school.Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

func (Student) TableName() string { return string(core.TableStudents) }

type NewTeacher struct {
	UserID         string    `json:"userId" validate:"required,uuid"`
	EmployeeID     string    `json:"employeeId" validate:"required,max=50"`
	Qualification  string    `json:"qualification" validate:"required,max=200"`
	Experience     *int      `json:"experience" validate:"omitempty,min=0,max=80"`
	JoiningDate    time.Time `json:"joiningDate" validate:"required"`
	Specialization *string   `json:"specialization"`
	Salary         *float64  `json:"salary" validate:"omitempty,gt=0"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.EmployeeID = core.CleanString(nt.EmployeeID)
	nt.Qualification = core.CleanString(nt.Qualification)
	return validate.Struct(nt)
}

func (nt NewTeacher) Teacher() Teacher {
	return Teacher{
		UserID:         nt.UserID,
		EmployeeID:     nt.EmployeeID,
		Qualification:  nt.Qualification,
		Experience:     null.IntFromPtr(nt.Experience),
		JoiningDate:    core.DateOf(nt.JoiningDate),
		Specialization: null.StringFromPtr(nt.Specialization),
		Salary:         null.Float64FromPtr(nt.Salary),
	}
}

type UpdateTeacher struct {
	Qualification  *string  `json:"qualification" validate:"omitempty,min=1,max=200"`
	Experience     *int     `json:"experience" validate:"omitempty,min=0,max=80"`
	Specialization *string  `json:"specialization"`
	Salary         *float64 `json:"salary" validate:"omitempty,gt=0"`
}

func (ut UpdateTeacher) Validate(validate *validator.Validate) error { return validate.Struct(ut) }

func (ut UpdateTeacher) Apply(t *Teacher) {
	core.SetString(&t.Qualification, ut.Qualification)
	if ut.Experience != nil {
		t.Experience = null.IntFrom(*ut.Experience)
	}
	core.SetNullString(&t.Specialization, ut.Specialization)
	if ut.Salary != nil {
		t.Salary = null.Float64From(*ut.Salary)
	}
}

type NewParent struct {
	UserID       string  `json:"userId" validate:"required,uuid"`
	Occupation   *string `json:"occupation" validate:"omitempty,max=100"`
	Relationship *string `json:"relationship" validate:"omitempty,max=50"`
}

func (np NewParent) Validate(validate *validator.Validate) error { return validate.Struct(np) }

func (np NewParent) Parent() Parent {
	return Parent{
		UserID:       np.UserID,
		Occupation:   null.StringFromPtr(np.Occupation),
		Relationship: null.StringFromPtr(np.Relationship),
	}
}

type UpdateParent struct {
	Occupation   *string `json:"occupation" validate:"omitempty,max=100"`
	Relationship *string `json:"relationship" validate:"omitempty,max=50"`
}

func (up UpdateParent) Validate(validate *validator.Validate) error { return validate.Struct(up) }

func (up UpdateParent) Apply(p *Parent) {
	core.SetNullString(&p.Occupation, up.Occupation)
	core.SetNullString(&p.Relationship, up.Relationship)
}

type NewStudent struct {
	UserID          string    `json:"userId" validate:"required,uuid"`
	RollNumber      string    `json:"rollNumber" validate:"required,max=50"`
	AdmissionNumber string    `json:"admissionNumber" validate:"required,max=50"`
	ClassID         string    `json:"classId" validate:"required,uuid"`
	ParentID        *string   `json:"parentId" validate:"omitempty,uuid"`
	AdmissionDate   time.Time `json:"admissionDate" validate:"required"`
	BloodGroup      *string   `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	EmergencyPhone  *string   `json:"emergencyPhone" validate:"omitempty,max=20"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.AdmissionNumber = core.CleanString(ns.AdmissionNumber)
	return validate.Struct(ns)
}

func (ns NewStudent) Student() Student {
	return Student{
		UserID:          ns.UserID,
		RollNumber:      ns.RollNumber,
		AdmissionNumber: ns.AdmissionNumber,
		ClassID:         ns.ClassID,
		ParentID:        null.StringFromPtr(ns.ParentID),
		AdmissionDate:   core.DateOf(ns.AdmissionDate),
		BloodGroup:      null.StringFromPtr(ns.BloodGroup),
		EmergencyPhone:  null.StringFromPtr(ns.EmergencyPhone),
	}
}

type UpdateStudent struct {
	RollNumber     *string `json:"rollNumber" validate:"omitempty,min=1,max=50"`
	ClassID        *string `json:"classId" validate:"omitempty,uuid"`
	ParentID       *string `json:"parentId" validate:"omitempty,uuid"`
	BloodGroup     *string `json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	EmergencyPhone *string `json:"emergencyPhone" validate:"omitempty,max=20"`
}

func (us UpdateStudent) Validate(validate *validator.Validate) error { return validate.Struct(us) }

func (us UpdateStudent) Apply(s *Student) {
	core.SetString(&s.RollNumber, us.RollNumber)
	if us.ClassID != nil && *us.ClassID != s.ClassID {
		s.ClassID = *us.ClassID
		s.Class = nil
	}
	core.SetNullString(&s.ParentID, us.ParentID)
	core.SetNullString(&s.BloodGroup, us.BloodGroup)
	core.SetNullString(&s.EmergencyPhone, us.EmergencyPhone)
}

type TeacherFilter struct {
	Search string `query:"search"`
}

func (qf TeacherFilter) Filter() *core.Filter {
	return core.NewFilter().Search(qf.Search, "employee_id", "qualification", "specialization")
}

type ParentFilter struct {
	UserID string `query:"userId"`
}

func (qf ParentFilter) Filter() *core.Filter {
	return core.NewFilter().EqIf("user_id", qf.UserID)
}

type StudentFilter struct {
	ClassID  string `query:"classId"`
	ParentID string `query:"parentId"`
	Search   string `query:"search"`
}

func (qf StudentFilter) Filter() *core.Filter {
	return core.NewFilter().
		EqIf("class_id", qf.ClassID).
		EqIf("parent_id", qf.ParentID).
		Search(qf.Search, "roll_number", "admission_number")
}
