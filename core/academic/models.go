package academic

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
)

// Attendance statuses
const (
	AttendancePresent   = "PRESENT"
	AttendanceAbsent    = "ABSENT"
	AttendanceLate      = "LATE"
	AttendanceExcused   = "EXCUSED"
	AttendanceSickLeave = "SICK_LEAVE"
	AttendanceHoliday   = "HOLIDAY"
)

// Exam types
const (
	ExamUnitTest   = "UNIT_TEST"
	ExamQuarterly  = "QUARTERLY"
	ExamHalfYearly = "HALF_YEARLY"
	ExamAnnual     = "ANNUAL"
	ExamBoard10th  = "BOARD_10TH"
	ExamBoard12th  = "BOARD_12TH"
	ExamMockTest   = "MOCK_TEST"
)

// Assignment statuses
const (
	AssignmentPending   = "PENDING"
	AssignmentSubmitted = "SUBMITTED"
	AssignmentGraded    = "GRADED"
	AssignmentOverdue   = "OVERDUE"
)

var AttendanceStatuses = []string{
	AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused, AttendanceSickLeave, AttendanceHoliday,
}

type Attendance struct {
	core.Model
	StudentID string      `json:"studentId" gorm:"not null"`
	Date      time.Time   `json:"date" gorm:"not null"`
	Status    string      `json:"status" gorm:"not null"`
	MarkedBy  string      `json:"markedBy" gorm:"not null"`
	Remarks   null.String `json:"remarks"`
}

func (Attendance) TableName() string { return string(core.TableAttendances) }

type Exam struct {
	core.Model
	Name         string      `json:"name" gorm:"not null"`
	Description  null.String `json:"description"`
	Type         string      `json:"type" gorm:"not null"`
	ClassID      string      `json:"classId" gorm:"not null"`
	StartDate    time.Time   `json:"startDate" gorm:"not null"`
	EndDate      time.Time   `json:"endDate" gorm:"not null"`
	TotalMarks   int         `json:"totalMarks" gorm:"not null"`
	PassingMarks int         `json:"passingMarks" gorm:"not null"`
	AcademicYear string      `json:"academicYear" gorm:"not null"`
	ConductedBy  string      `json:"conductedBy" gorm:"not null"`
	IsPublished  bool        `json:"isPublished" gorm:"not null"`
}

func (Exam) TableName() string { return string(core.TableExams) }

// Result is the mark of a student for one subject of an exam.
// Percentage, Grade and IsPassed are derived from the marks on every write.
type Result struct {
	core.Model
	StudentID     string      `json:"studentId" gorm:"not null"`
	ExamID        string      `json:"examId" gorm:"not null"`
	SubjectID     string      `json:"subjectId" gorm:"not null"`
	MarksObtained float64     `json:"marksObtained" gorm:"not null"`
	MaxMarks      float64     `json:"maxMarks" gorm:"not null"`
	Percentage    float64     `json:"percentage" gorm:"not null"`
	Grade         string      `json:"grade" gorm:"not null"`
	IsPassed      bool        `json:"isPassed" gorm:"not null"`
	Remarks       null.String `json:"remarks"`
}

func (Result) TableName() string { return string(core.TableResults) }

func (r *Result) derive(exam Exam) {
	if r.MaxMarks <= 0 {
		r.MaxMarks = float64(exam.TotalMarks)
	}
	r.Percentage = Percentage(r.MarksObtained, r.MaxMarks)
	r.Grade = Grade(r.Percentage)
	r.IsPassed = r.MarksObtained >= float64(exam.PassingMarks)
}

type Assignment struct {
	core.Model
	Title         string       `json:"title" gorm:"not null"`
	Description   string       `json:"description" gorm:"not null"`
	DueDate       time.Time    `json:"dueDate" gorm:"not null"`
	TotalMarks    int          `json:"totalMarks" gorm:"not null"`
	MarksObtained null.Float64 `json:"marksObtained"`
	Status        string       `json:"status" gorm:"not null"`
	StudentID     string       `json:"studentId" gorm:"not null"`
	SubjectID     null.String  `json:"subjectId"`
	AssignedBy    null.String  `json:"assignedBy"`
	SubmittedAt   null.Time    `json:"submittedAt"`
	Feedback      null.String  `json:"feedback"`
}

func (Assignment) TableName() string { return string(core.TableAssignments) }

// AttendanceSummary counts the attendance records of a student by status.
type AttendanceSummary struct {
	StudentID string         `json:"studentId"`
	Total     int            `json:"total"`
	Counts    map[string]int `json:"counts"`
	// Rate is the share of school days (holidays excluded) the student attended, late arrivals included.
	Rate float64 `json:"rate"`
}

type NewAttendance struct {
	StudentID string    `json:"studentId" validate:"required,uuid"`
	Date      time.Time `json:"date" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=PRESENT ABSENT LATE EXCUSED SICK_LEAVE HOLIDAY"`
	MarkedBy  string    `json:"markedBy" validate:"required,uuid"`
	Remarks   *string   `json:"remarks" validate:"omitempty,max=500"`
}

func (na NewAttendance) Validate(validate *validator.Validate) error { return validate.Struct(na) }

func (na NewAttendance) Attendance() Attendance {
	return Attendance{
		StudentID: na.StudentID,
		Date:      core.DateOf(na.Date),
		Status:    na.Status,
		MarkedBy:  na.MarkedBy,
		Remarks:   null.StringFromPtr(na.Remarks),
	}
}

type UpdateAttendance struct {
	Status  *string `json:"status" validate:"omitempty,oneof=PRESENT ABSENT LATE EXCUSED SICK_LEAVE HOLIDAY"`
	Remarks *string `json:"remarks" validate:"omitempty,max=500"`
}

func (ua UpdateAttendance) Validate(validate *validator.Validate) error { return validate.Struct(ua) }

func (ua UpdateAttendance) Apply(a *Attendance) {
	core.SetString(&a.Status, ua.Status)
	core.SetNullString(&a.Remarks, ua.Remarks)
}

type NewExam struct {
	Name         string    `json:"name" validate:"required,max=200"`
	Description  *string   `json:"description"`
	Type         string    `json:"type" validate:"required,oneof=UNIT_TEST QUARTERLY HALF_YEARLY ANNUAL BOARD_10TH BOARD_12TH MOCK_TEST"`
	ClassID      string    `json:"classId" validate:"required,uuid"`
	StartDate    time.Time `json:"startDate" validate:"required"`
	EndDate      time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	TotalMarks   int       `json:"totalMarks" validate:"required,min=1"`
	PassingMarks int       `json:"passingMarks" validate:"min=0,ltefield=TotalMarks"`
	AcademicYear string    `json:"academicYear" validate:"required,academicyear"`
	ConductedBy  string    `json:"conductedBy" validate:"required,uuid"`
	IsPublished  bool      `json:"isPublished"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	return validate.Struct(ne)
}

func (ne NewExam) Exam() Exam {
	return Exam{
		Name:         ne.Name,
		Description:  null.StringFromPtr(ne.Description),
		Type:         ne.Type,
		ClassID:      ne.ClassID,
		StartDate:    core.DateOf(ne.StartDate),
		EndDate:      core.DateOf(ne.EndDate),
		TotalMarks:   ne.TotalMarks,
		PassingMarks: ne.PassingMarks,
		AcademicYear: ne.AcademicYear,
		ConductedBy:  ne.ConductedBy,
		IsPublished:  ne.IsPublished,
	}
}

type UpdateExam struct {
	Name         *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string    `json:"description"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	TotalMarks   *int       `json:"totalMarks" validate:"omitempty,min=1"`
	PassingMarks *int       `json:"passingMarks" validate:"omitempty,min=0"`
}

func (ue UpdateExam) Validate(validate *validator.Validate) error { return validate.Struct(ue) }

func (ue UpdateExam) Apply(e *Exam) {
	core.SetString(&e.Name, ue.Name)
	core.SetNullString(&e.Description, ue.Description)
	if ue.StartDate != nil {
		e.StartDate = core.DateOf(*ue.StartDate)
	}
	if ue.EndDate != nil {
		e.EndDate = core.DateOf(*ue.EndDate)
	}
	if ue.TotalMarks != nil {
		e.TotalMarks = *ue.TotalMarks
	}
	if ue.PassingMarks != nil {
		e.PassingMarks = *ue.PassingMarks
	}
}

type NewResult struct {
	StudentID     string   `json:"studentId" validate:"required,uuid"`
	ExamID        string   `json:"examId" validate:"required,uuid"`
	SubjectID     string   `json:"subjectId" validate:"required,uuid"`
	MarksObtained float64  `json:"marksObtained" validate:"min=0"`
	MaxMarks      *float64 `json:"maxMarks" validate:"omitempty,gt=0"`
	Remarks       *string  `json:"remarks" validate:"omitempty,max=500"`
}

func (nr NewResult) Validate(validate *validator.Validate) error { return validate.Struct(nr) }

// Result returns the result of nr in exam, with percentage, grade and pass status derived.
func (nr NewResult) Result(exam Exam) Result {
	r := Result{
		StudentID:     nr.StudentID,
		ExamID:        nr.ExamID,
		SubjectID:     nr.SubjectID,
		MarksObtained: nr.MarksObtained,
		Remarks:       null.StringFromPtr(nr.Remarks),
	}
	if nr.MaxMarks != nil {
		r.MaxMarks = *nr.MaxMarks
	}
	r.derive(exam)
	return r
}

type UpdateResult struct {
	MarksObtained *float64 `json:"marksObtained" validate:"omitempty,min=0"`
	MaxMarks      *float64 `json:"maxMarks" validate:"omitempty,gt=0"`
	Remarks       *string  `json:"remarks" validate:"omitempty,max=500"`
}

func (ur UpdateResult) Validate(validate *validator.Validate) error { return validate.Struct(ur) }

type NewAssignment struct {
	Title         string     `json:"title" validate:"required,max=200"`
	Description   string     `json:"description" validate:"required"`
	DueDate       time.Time  `json:"dueDate" validate:"required"`
	TotalMarks    int        `json:"totalMarks" validate:"required,min=1"`
	StudentID     string     `json:"studentId" validate:"required,uuid"`
	SubjectID     *string    `json:"subjectId" validate:"omitempty,uuid"`
	AssignedBy    *string    `json:"assignedBy" validate:"omitempty,uuid"`
	Status        string     `json:"status" validate:"omitempty,oneof=PENDING SUBMITTED GRADED OVERDUE"`
	MarksObtained *float64   `json:"marksObtained" validate:"omitempty,min=0"`
	SubmittedAt   *time.Time `json:"submittedAt"`
	Feedback      *string    `json:"feedback"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.Struct(na)
}

func (na NewAssignment) Assignment() Assignment {
	status := na.Status
	if status == "" {
		status = AssignmentPending
	}
	return Assignment{
		Title:         na.Title,
		Description:   na.Description,
		DueDate:       na.DueDate.UTC(),
		TotalMarks:    na.TotalMarks,
		MarksObtained: null.Float64FromPtr(na.MarksObtained),
		Status:        status,
		StudentID:     na.StudentID,
		SubjectID:     null.StringFromPtr(na.SubjectID),
		AssignedBy:    null.StringFromPtr(na.AssignedBy),
		SubmittedAt:   null.TimeFromPtr(na.SubmittedAt),
		Feedback:      null.StringFromPtr(na.Feedback),
	}
}

type UpdateAssignment struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,min=1"`
	DueDate     *time.Time `json:"dueDate"`
	TotalMarks  *int       `json:"totalMarks" validate:"omitempty,min=1"`
	SubjectID   *string    `json:"subjectId" validate:"omitempty,uuid"`
}

func (ua UpdateAssignment) Validate(validate *validator.Validate) error { return validate.Struct(ua) }

func (ua UpdateAssignment) Apply(a *Assignment) {
	core.SetString(&a.Title, ua.Title)
	core.SetString(&a.Description, ua.Description)
	if ua.DueDate != nil {
		a.DueDate = ua.DueDate.UTC()
	}
	if ua.TotalMarks != nil {
		a.TotalMarks = *ua.TotalMarks
	}
	core.SetNullString(&a.SubjectID, ua.SubjectID)
}

type GradeAssignment struct {
	MarksObtained float64 `json:"marksObtained" validate:"min=0"`
	Feedback      *string `json:"feedback" validate:"omitempty,max=2000"`
}

func (ga GradeAssignment) Validate(validate *validator.Validate) error { return validate.Struct(ga) }

type AttendanceFilter struct {
	StudentID string    `query:"studentId"`
	MarkedBy  string    `query:"markedBy"`
	Status    string    `query:"status"`
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
}

func (qf AttendanceFilter) Filter() *core.Filter {
	f := core.NewFilter().
		EqIf("student_id", qf.StudentID).
		EqIf("marked_by", qf.MarkedBy).
		EqIf("status", qf.Status)
	if !qf.From.IsZero() {
		f.Cond("date >= ?", core.DateOf(qf.From))
	}
	if !qf.To.IsZero() {
		f.Cond("date <= ?", core.DateOf(qf.To))
	}
	return f
}

type ExamFilter struct {
	ClassID      string `query:"classId"`
	Type         string `query:"type"`
	AcademicYear string `query:"academicYear"`
	IsPublished  *bool  `query:"isPublished"`
}

func (qf ExamFilter) Filter() *core.Filter {
	f := core.NewFilter().
		EqIf("class_id", qf.ClassID).
		EqIf("type", qf.Type).
		EqIf("academic_year", qf.AcademicYear)
	if qf.IsPublished != nil {
		f.Eq("is_published", *qf.IsPublished)
	}
	return f
}

type ResultFilter struct {
	StudentID string `query:"studentId"`
	ExamID    string `query:"examId"`
	SubjectID string `query:"subjectId"`
}

func (qf ResultFilter) Filter() *core.Filter {
	return core.NewFilter().
		EqIf("student_id", qf.StudentID).
		EqIf("exam_id", qf.ExamID).
		EqIf("subject_id", qf.SubjectID)
}

type AssignmentFilter struct {
	StudentID  string `query:"studentId"`
	SubjectID  string `query:"subjectId"`
	AssignedBy string `query:"assignedBy"`
	Status     string `query:"status"`
}

func (qf AssignmentFilter) Filter() *core.Filter {
	return core.NewFilter().
		EqIf("student_id", qf.StudentID).
		EqIf("subject_id", qf.SubjectID).
		EqIf("assigned_by", qf.AssignedBy).
		EqIf("status", qf.Status)
}
