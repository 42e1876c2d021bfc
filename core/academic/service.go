package academic

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
)

var (
	// errors
	ErrAttendanceNotFound = core.NewNotFoundError("attendance")
	ErrExamNotFound       = core.NewNotFoundError("exam")
	ErrResultNotFound     = core.NewNotFoundError("result")
	ErrAssignmentNotFound = core.NewNotFoundError("assignment")
	ErrAlreadyGraded      = errors.New("assignment has already been graded")
	ErrNotSubmitted       = errors.New("assignment has not been submitted yet")

	errMarksAboveMax   = errors.New("marks cannot exceed the maximum marks")
	errEndBeforeStart  = errors.New("endDate must not be before startDate")
	errPassingTooHigh  = errors.New("passingMarks cannot exceed totalMarks")
	errExamDoesntExist = errors.New("exam does not exist")
	errResultsAboveMax = errors.New("some results have more marks than totalMarks")
)

type (
	Stores struct {
		Attendances core.Store[Attendance]
		Exams       core.Store[Exam]
		Results     core.Store[Result]
		Assignments core.Store[Assignment]

		// InTx runs fn against stores bound to one transaction. nil runs fn on these stores as is.
		InTx func(ctx context.Context, fn func(Stores) error) error
	}

	Service interface {
		MarkAttendance(ctx context.Context, na NewAttendance) (Attendance, error)
		GetAttendance(ctx context.Context, id string) (Attendance, error)
		UpdateAttendance(ctx context.Context, id string, ua UpdateAttendance) (Attendance, error)
		DeleteAttendance(ctx context.Context, id string) error
		QueryAttendance(ctx context.Context, filter AttendanceFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)
		AttendanceSummary(ctx context.Context, studentID string, from, to time.Time) (AttendanceSummary, error)

		CreateExam(ctx context.Context, ne NewExam) (Exam, error)
		GetExam(ctx context.Context, id string) (Exam, error)
		UpdateExam(ctx context.Context, id string, ue UpdateExam) (Exam, error)
		PublishExam(ctx context.Context, id string) (Exam, error)
		DeleteExam(ctx context.Context, id string) error
		QueryExams(ctx context.Context, filter ExamFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		// RecordResult stores the marks of a student and derives percentage, grade and pass status from the exam.
		RecordResult(ctx context.Context, nr NewResult) (Result, error)
		GetResult(ctx context.Context, id string) (Result, error)
		UpdateResult(ctx context.Context, id string, ur UpdateResult) (Result, error)
		DeleteResult(ctx context.Context, id string) error
		QueryResults(ctx context.Context, filter ResultFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		UpdateAssignment(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error)
		SubmitAssignment(ctx context.Context, id string) (Assignment, error)
		GradeAssignment(ctx context.Context, id string, ga GradeAssignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id string) error
		QueryAssignments(ctx context.Context, filter AssignmentFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)
	}

	service struct {
		stores Stores
		refs   core.RefChecker
		now    func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(stores Stores, refs core.RefChecker) Service {
	return &service{stores: stores, refs: refs, now: time.Now}
}

// Attendance

func (svc *service) MarkAttendance(ctx context.Context, na NewAttendance) (Attendance, error) {
	if err := core.CheckRef(ctx, svc.refs, core.TableStudents, "studentId", na.StudentID); err != nil {
		return Attendance{}, err
	}
	if err := core.CheckRef(ctx, svc.refs, core.TableTeachers, "markedBy", na.MarkedBy); err != nil {
		return Attendance{}, err
	}
	a := na.Attendance()
	if err := svc.stores.Attendances.Create(ctx, &a); err != nil {
		return Attendance{}, errors.Wrap(err, "creating attendance")
	}
	return a, nil
}

func (svc *service) GetAttendance(ctx context.Context, id string) (Attendance, error) {
	return svc.stores.Attendances.Get(ctx, id)
}

func (svc *service) UpdateAttendance(ctx context.Context, id string, ua UpdateAttendance) (Attendance, error) {
	a, err := svc.GetAttendance(ctx, id)
	if err != nil {
		return Attendance{}, err
	}
	ua.Apply(&a)
	if err = svc.stores.Attendances.Update(ctx, &a); err != nil {
		return Attendance{}, errors.Wrap(err, "updating attendance")
	}
	return a, nil
}

func (svc *service) DeleteAttendance(ctx context.Context, id string) error {
	return svc.stores.Attendances.Delete(ctx, id)
}

func (svc *service) QueryAttendance(ctx context.Context, filter AttendanceFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Attendances, filter.Filter(), page, ordering...)
}

func (svc *service) AttendanceSummary(ctx context.Context, studentID string, from, to time.Time) (AttendanceSummary, error) {
	ok, err := svc.refs.Exists(ctx, core.TableStudents, studentID)
	if err != nil {
		return AttendanceSummary{}, err
	}
	if !ok {
		return AttendanceSummary{}, core.NewNotFoundError("student")
	}

	records, err := svc.stores.Attendances.All(ctx, AttendanceFilter{StudentID: studentID, From: from, To: to}.Filter())
	if err != nil {
		return AttendanceSummary{}, errors.Wrap(err, "listing attendance")
	}

	sum := AttendanceSummary{
		StudentID: studentID,
		Total:     len(records),
		Counts:    make(map[string]int, len(AttendanceStatuses)),
	}
	for _, status := range AttendanceStatuses {
		sum.Counts[status] = 0
	}
	for _, a := range records {
		sum.Counts[a.Status]++
	}
	if schoolDays := sum.Total - sum.Counts[AttendanceHoliday]; schoolDays > 0 {
		attended := sum.Counts[AttendancePresent] + sum.Counts[AttendanceLate]
		sum.Rate = Percentage(float64(attended), float64(schoolDays))
	}
	return sum, nil
}

// Exams

func checkExamDates(e Exam) error {
	if e.EndDate.Before(e.StartDate) {
		return core.NewFieldError("endDate", errEndBeforeStart)
	}
	if e.PassingMarks > e.TotalMarks {
		return core.NewFieldError("passingMarks", errPassingTooHigh)
	}
	return nil
}

func (svc *service) CreateExam(ctx context.Context, ne NewExam) (Exam, error) {
	e := ne.Exam()
	if err := checkExamDates(e); err != nil {
		return Exam{}, err
	}
	if err := core.CheckRef(ctx, svc.refs, core.TableClasses, "classId", ne.ClassID); err != nil {
		return Exam{}, err
	}
	if err := core.CheckRef(ctx, svc.refs, core.TableTeachers, "conductedBy", ne.ConductedBy); err != nil {
		return Exam{}, err
	}
	if err := svc.stores.Exams.Create(ctx, &e); err != nil {
		return Exam{}, errors.Wrap(err, "creating exam")
	}
	return e, nil
}

func (svc *service) GetExam(ctx context.Context, id string) (Exam, error) {
	return svc.stores.Exams.Get(ctx, id)
}

func (svc *service) UpdateExam(ctx context.Context, id string, ue UpdateExam) (Exam, error) {
	e, err := svc.GetExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	prev := e
	ue.Apply(&e)
	if err = checkExamDates(e); err != nil {
		return Exam{}, err
	}

	err = svc.inTx(ctx, func(stores Stores) error {
		if err := stores.Exams.Update(ctx, &e); err != nil {
			return errors.Wrap(err, "updating exam")
		}
		if e.PassingMarks == prev.PassingMarks && e.TotalMarks == prev.TotalMarks {
			return nil
		}
		return rederiveResults(ctx, stores.Results, prev, e)
	})
	if err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (svc *service) inTx(ctx context.Context, fn func(Stores) error) error {
	if svc.stores.InTx == nil {
		return fn(svc.stores)
	}
	return svc.stores.InTx(ctx, fn)
}

// rederiveResults keeps the stored results of an exam in line with its new marks.
// Results whose maximum followed the old total follow the new one.
func rederiveResults(ctx context.Context, results core.Store[Result], prev, exam Exam) error {
	rs, err := results.All(ctx, ResultFilter{ExamID: exam.ID}.Filter())
	if err != nil {
		return errors.Wrap(err, "listing exam results")
	}
	for i := range rs {
		r := &rs[i]
		if r.MaxMarks == float64(prev.TotalMarks) {
			r.MaxMarks = float64(exam.TotalMarks)
		}
		r.derive(exam)
		if checkMarks(*r) != nil {
			return core.NewFieldError("totalMarks", errResultsAboveMax)
		}
		if err = results.Update(ctx, r); err != nil {
			return errors.Wrap(err, "updating result")
		}
	}
	return nil
}

func (svc *service) PublishExam(ctx context.Context, id string) (Exam, error) {
	e, err := svc.GetExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	if e.IsPublished {
		return e, nil
	}
	e.IsPublished = true
	if err = svc.stores.Exams.Update(ctx, &e); err != nil {
		return Exam{}, errors.Wrap(err, "publishing exam")
	}
	return e, nil
}

func (svc *service) DeleteExam(ctx context.Context, id string) error {
	return svc.stores.Exams.Delete(ctx, id)
}

func (svc *service) QueryExams(ctx context.Context, filter ExamFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Exams, filter.Filter(), page, ordering...)
}

// Results

func (svc *service) resultExam(ctx context.Context, examID string) (Exam, error) {
	exam, err := svc.GetExam(ctx, examID)
	if err != nil {
		if core.IsNotFound(err) {
			return Exam{}, core.NewFieldError("examId", errExamDoesntExist)
		}
		return Exam{}, errors.Wrap(err, "finding exam")
	}
	return exam, nil
}

func checkMarks(r Result) error {
	if r.MarksObtained > r.MaxMarks {
		return core.NewFieldError("marksObtained", errMarksAboveMax)
	}
	return nil
}

func (svc *service) RecordResult(ctx context.Context, nr NewResult) (Result, error) {
	exam, err := svc.resultExam(ctx, nr.ExamID)
	if err != nil {
		return Result{}, err
	}
	if err = core.CheckRef(ctx, svc.refs, core.TableStudents, "studentId", nr.StudentID); err != nil {
		return Result{}, err
	}
	if err = core.CheckRef(ctx, svc.refs, core.TableSubjects, "subjectId", nr.SubjectID); err != nil {
		return Result{}, err
	}

	r := nr.Result(exam)
	if err = checkMarks(r); err != nil {
		return Result{}, err
	}
	if err = svc.stores.Results.Create(ctx, &r); err != nil {
		return Result{}, errors.Wrap(err, "creating result")
	}
	return r, nil
}

func (svc *service) GetResult(ctx context.Context, id string) (Result, error) {
	return svc.stores.Results.Get(ctx, id)
}

func (svc *service) UpdateResult(ctx context.Context, id string, ur UpdateResult) (Result, error) {
	r, err := svc.GetResult(ctx, id)
	if err != nil {
		return Result{}, err
	}
	exam, err := svc.resultExam(ctx, r.ExamID)
	if err != nil {
		return Result{}, err
	}
	if ur.MarksObtained != nil {
		r.MarksObtained = *ur.MarksObtained
	}
	if ur.MaxMarks != nil {
		r.MaxMarks = *ur.MaxMarks
	}
	core.SetNullString(&r.Remarks, ur.Remarks)
	r.derive(exam)
	if err = checkMarks(r); err != nil {
		return Result{}, err
	}
	if err = svc.stores.Results.Update(ctx, &r); err != nil {
		return Result{}, errors.Wrap(err, "updating result")
	}
	return r, nil
}

func (svc *service) DeleteResult(ctx context.Context, id string) error {
	return svc.stores.Results.Delete(ctx, id)
}

func (svc *service) QueryResults(ctx context.Context, filter ResultFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Results, filter.Filter(), page, ordering...)
}

// Assignments

func (svc *service) CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error) {
	if err := core.CheckRef(ctx, svc.refs, core.TableStudents, "studentId", na.StudentID); err != nil {
		return Assignment{}, err
	}
	if na.SubjectID != nil {
		if err := core.CheckRef(ctx, svc.refs, core.TableSubjects, "subjectId", *na.SubjectID); err != nil {
			return Assignment{}, err
		}
	}
	if na.AssignedBy != nil {
		if err := core.CheckRef(ctx, svc.refs, core.TableTeachers, "assignedBy", *na.AssignedBy); err != nil {
			return Assignment{}, err
		}
	}
	a := na.Assignment()
	if a.MarksObtained.Valid && a.MarksObtained.Float64 > float64(a.TotalMarks) {
		return Assignment{}, core.NewFieldError("marksObtained", errMarksAboveMax)
	}
	if err := svc.stores.Assignments.Create(ctx, &a); err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return a, nil
}

func (svc *service) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	return svc.stores.Assignments.Get(ctx, id)
}

func (svc *service) UpdateAssignment(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error) {
	a, err := svc.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	ua.Apply(&a)
	if ua.SubjectID != nil && a.SubjectID.Valid {
		if err = core.CheckRef(ctx, svc.refs, core.TableSubjects, "subjectId", a.SubjectID.String); err != nil {
			return Assignment{}, err
		}
	}
	if err = svc.stores.Assignments.Update(ctx, &a); err != nil {
		return Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return a, nil
}

func (svc *service) SubmitAssignment(ctx context.Context, id string) (Assignment, error) {
	a, err := svc.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if a.Status == AssignmentGraded {
		return Assignment{}, core.NewValidationError(ErrAlreadyGraded)
	}
	a.Status = AssignmentSubmitted
	a.SubmittedAt = null.TimeFrom(svc.now().UTC())
	if err = svc.stores.Assignments.Update(ctx, &a); err != nil {
		return Assignment{}, errors.Wrap(err, "submitting assignment")
	}
	return a, nil
}

func (svc *service) GradeAssignment(ctx context.Context, id string, ga GradeAssignment) (Assignment, error) {
	a, err := svc.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if a.Status != AssignmentSubmitted {
		if a.Status == AssignmentGraded {
			return Assignment{}, core.NewValidationError(ErrAlreadyGraded)
		}
		return Assignment{}, core.NewValidationError(ErrNotSubmitted)
	}
	if ga.MarksObtained > float64(a.TotalMarks) {
		return Assignment{}, core.NewFieldError("marksObtained", errMarksAboveMax)
	}
	a.MarksObtained = null.Float64From(ga.MarksObtained)
	core.SetNullString(&a.Feedback, ga.Feedback)
	a.Status = AssignmentGraded
	if err = svc.stores.Assignments.Update(ctx, &a); err != nil {
		return Assignment{}, errors.Wrap(err, "grading assignment")
	}
	return a, nil
}

func (svc *service) DeleteAssignment(ctx context.Context, id string) error {
	return svc.stores.Assignments.Delete(ctx, id)
}

func (svc *service) QueryAssignments(ctx context.Context, filter AssignmentFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Assignments, filter.Filter(), page, ordering...)
}
