package seed

import (
	"time"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/academic"
	"github.com/trezcool/schoolsaas/core/finance"
	"github.com/trezcool/schoolsaas/core/meeting"
	"github.com/trezcool/schoolsaas/core/notice"
	"github.com/trezcool/schoolsaas/core/people"
	"github.com/trezcool/schoolsaas/core/school"
	"github.com/trezcool/schoolsaas/core/user"
)

// DefaultPassword is the password of every demo account.
const DefaultPassword = "password123"

// Fixtures reference each other by Key. ID fields of the embedded inputs are filled by the plan.
type (
	SchoolFixture struct {
		Key   string
		Input school.NewSchool
	}

	ClassFixture struct {
		Key    string
		School string
		Input  school.NewClass
	}

	SubjectFixture struct {
		Key   string
		Input school.NewSubject
	}

	UserFixture struct {
		Key string `json:"-"`
		// Label names the account in the printed credentials.
		Label       string    `json:"-"`
		Email       string    `json:"email" validate:"required,email"`
		Role        string    `json:"role" validate:"required,role"`
		FirstName   string    `json:"firstName" validate:"required,max=100"`
		LastName    string    `json:"lastName" validate:"required,max=100"`
		Phone       string    `json:"phone" validate:"max=20"`
		DateOfBirth time.Time `json:"dateOfBirth"`
		Gender      string    `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
		Address     string    `json:"address"`
		City        string    `json:"city"`
		State       string    `json:"state"`
		Pincode     string    `json:"pincode" validate:"omitempty,numeric,len=6"`
	}

	TeacherFixture struct {
		Key   string
		User  string
		Input people.NewTeacher
	}

	ParentFixture struct {
		Key   string
		User  string
		Input people.NewParent
	}

	StudentFixture struct {
		Key    string
		User   string
		Class  string
		Parent string // optional
		Input  people.NewStudent
	}

	ClassSubjectFixture struct {
		Class, Subject, Teacher string
	}

	AttendanceFixture struct {
		Student, Teacher string
		// DaysAgo counts back from the run date.
		DaysAgo int
		Status  string
		Remarks string
	}

	ExamFixture struct {
		Key     string
		Class   string
		Teacher string
		Input   academic.NewExam
	}

	ResultFixture struct {
		Student, Exam, Subject string
		Input                  academic.NewResult
	}

	FeeStructureFixture struct {
		Class string
		Input finance.NewFeeStructure
	}

	FeePaymentFixture struct {
		Student string
		Input   finance.NewFeePayment
	}

	MeetingFixture struct {
		Key     string
		Teacher string
		Input   meeting.NewMeeting
	}

	ParticipantFixture struct {
		Meeting, User string
		Input         meeting.NewParticipant
	}

	NotificationFixture struct {
		User   string
		IsRead bool
		Input  notice.NewNotification
	}

	AnnouncementFixture struct {
		// Input.PublishedAt defaults to the run clock.
		Input notice.NewAnnouncement
	}

	AssignmentFixture struct {
		Student string
		Subject string // optional
		Teacher string // optional
		Input   academic.NewAssignment
	}
)

// Dataset is everything a seed run creates.
type Dataset struct {
	Password      string
	Schools       []SchoolFixture
	Classes       []ClassFixture
	Subjects      []SubjectFixture
	Users         []UserFixture
	Teachers      []TeacherFixture
	Parents       []ParentFixture
	Students      []StudentFixture
	ClassSubjects []ClassSubjectFixture
	Attendances   []AttendanceFixture
	Exams         []ExamFixture
	Results       []ResultFixture
	FeeStructures []FeeStructureFixture
	FeePayments   []FeePaymentFixture
	Meetings      []MeetingFixture
	Participants  []ParticipantFixture
	Notifications []NotificationFixture
	Announcements []AnnouncementFixture
	Assignments   []AssignmentFixture
}

func ptr[T any](v T) *T { return &v }

func day(s string) time.Time { return core.MustDate(s) }

// Demo returns the demo dataset of a Delhi CBSE school.
func Demo() Dataset {
	const year = "2024-2025"
	return Dataset{
		Password: DefaultPassword,
		Schools: []SchoolFixture{
			{Key: "dps", Input: school.NewSchool{
				Name:            "Delhi Public School",
				Code:            "DPS001",
				Board:           school.BoardCBSE,
				Address:         "123 School Street",
				City:            "Delhi",
				State:           "Delhi",
				Pincode:         "110001",
				Phone:           "+91-11-12345678",
				Email:           "info@dpsdelhi.edu.in",
				Website:         ptr("https://dpsdelhi.edu.in"),
				PrincipalName:   ptr("Dr. Rajesh Kumar"),
				EstablishedYear: ptr(1995),
			}},
		},
		Classes: []ClassFixture{
			{Key: "10A", School: "dps", Input: school.NewClass{Name: "10", Section: "A", AcademicYear: year, Capacity: 40, RoomNumber: ptr("101")}},
			{Key: "10B", School: "dps", Input: school.NewClass{Name: "10", Section: "B", AcademicYear: year, Capacity: 40, RoomNumber: ptr("102")}},
			{Key: "12A", School: "dps", Input: school.NewClass{Name: "12", Section: "A", AcademicYear: year, Capacity: 35, RoomNumber: ptr("201")}},
		},
		Subjects: []SubjectFixture{
			{Key: "math", Input: school.NewSubject{Name: "Mathematics", Code: "MATH101", Type: school.SubjectCore, Description: ptr("Advanced Mathematics for Class 10 & 12")}},
			{Key: "science", Input: school.NewSubject{Name: "Science", Code: "SCI101", Type: school.SubjectCore, Description: ptr("General Science")}},
			{Key: "english", Input: school.NewSubject{Name: "English", Code: "ENG101", Type: school.SubjectCore, Description: ptr("English Language & Literature")}},
			{Key: "physics", Input: school.NewSubject{Name: "Physics", Code: "PHY201", Type: school.SubjectCore, Description: ptr("Physics for Class 12")}},
			{Key: "chemistry", Input: school.NewSubject{Name: "Chemistry", Code: "CHEM201", Type: school.SubjectCore, Description: ptr("Chemistry for Class 12")}},
		},
		Users: []UserFixture{
			{
				Key: "principal", Label: "Principal", Email: "principal@school.com", Role: user.RolePrincipal,
				FirstName: "Rajesh", LastName: "Kumar", Phone: "+91-9876543210", DateOfBirth: day("1975-05-15"),
				Gender: user.GenderMale, Address: "456 Principal Avenue", City: "Delhi", State: "Delhi", Pincode: "110002",
			},
			{
				Key: "mathTeacher", Label: "Math Teacher", Email: "math.teacher@school.com", Role: user.RoleTeacher,
				FirstName: "Priya", LastName: "Sharma", Phone: "+91-9876543211", DateOfBirth: day("1985-08-20"),
				Gender: user.GenderFemale, Address: "789 Teacher Lane", City: "Delhi", State: "Delhi", Pincode: "110003",
			},
			{
				Key: "scienceTeacher", Label: "Science Teacher", Email: "science.teacher@school.com", Role: user.RoleTeacher,
				FirstName: "Amit", LastName: "Verma", Phone: "+91-9876543212", DateOfBirth: day("1982-03-10"),
				Gender: user.GenderMale, Address: "321 Science Road", City: "Delhi", State: "Delhi", Pincode: "110004",
			},
			{
				Key: "finance", Label: "Finance", Email: "finance@school.com", Role: user.RoleFinance,
				FirstName: "Neha", LastName: "Gupta", Phone: "+91-9876543213", DateOfBirth: day("1990-12-05"),
				Gender: user.GenderFemale, Address: "654 Finance Street", City: "Delhi", State: "Delhi", Pincode: "110005",
			},
			{
				Key: "parent1", Label: "Parent 1", Email: "parent1@email.com", Role: user.RoleParent,
				FirstName: "Suresh", LastName: "Patel", Phone: "+91-9876543214", DateOfBirth: day("1980-07-25"),
				Gender: user.GenderMale, Address: "111 Parent Colony", City: "Delhi", State: "Delhi", Pincode: "110006",
			},
			{
				Key: "parent2", Label: "Parent 2", Email: "parent2@email.com", Role: user.RoleParent,
				FirstName: "Kavita", LastName: "Singh", Phone: "+91-9876543215", DateOfBirth: day("1982-11-30"),
				Gender: user.GenderFemale, Address: "222 Guardian Avenue", City: "Delhi", State: "Delhi", Pincode: "110007",
			},
			{
				Key: "student1", Label: "Student 1 (Class 10A)", Email: "student1@email.com", Role: user.RoleStudent,
				FirstName: "Rahul", LastName: "Patel", Phone: "+91-9876543216", DateOfBirth: day("2008-04-15"),
				Gender: user.GenderMale, Address: "111 Parent Colony", City: "Delhi", State: "Delhi", Pincode: "110006",
			},
			{
				Key: "student2", Label: "Student 2 (Class 12A)", Email: "student2@email.com", Role: user.RoleStudent,
				FirstName: "Priya", LastName: "Singh", Phone: "+91-9876543217", DateOfBirth: day("2006-09-20"),
				Gender: user.GenderFemale, Address: "222 Guardian Avenue", City: "Delhi", State: "Delhi", Pincode: "110007",
			},
			{
				Key: "student3", Label: "Student 3 (Class 10B)", Email: "student3@email.com", Role: user.RoleStudent,
				FirstName: "Ankit", LastName: "Sharma", Phone: "+91-9876543218", DateOfBirth: day("2008-06-10"),
				Gender: user.GenderMale, Address: "333 Student Street", City: "Delhi", State: "Delhi", Pincode: "110008",
			},
		},
		Teachers: []TeacherFixture{
			{Key: "math", User: "mathTeacher", Input: people.NewTeacher{
				EmployeeID:     "TCH001",
				Qualification:  "M.Sc. Mathematics, B.Ed",
				Experience:     ptr(10),
				JoiningDate:    day("2014-06-01"),
				Specialization: ptr("Advanced Mathematics"),
				Salary:         ptr(50000.0),
			}},
			{Key: "science", User: "scienceTeacher", Input: people.NewTeacher{
				EmployeeID:     "TCH002",
				Qualification:  "M.Sc. Physics, B.Ed",
				Experience:     ptr(8),
				JoiningDate:    day("2016-07-15"),
				Specialization: ptr("Physics & Chemistry"),
				Salary:         ptr(48000.0),
			}},
		},
		Parents: []ParentFixture{
			{Key: "parent1", User: "parent1", Input: people.NewParent{Occupation: ptr("Business Owner"), Relationship: ptr("Father")}},
			{Key: "parent2", User: "parent2", Input: people.NewParent{Occupation: ptr("Doctor"), Relationship: ptr("Mother")}},
		},
		Students: []StudentFixture{
			{Key: "student1", User: "student1", Class: "10A", Parent: "parent1", Input: people.NewStudent{
				RollNumber: "STU001", AdmissionNumber: "ADM2024001", AdmissionDate: day("2024-04-01"),
				BloodGroup: ptr("O+"), EmergencyPhone: ptr("+91-9876543214"),
			}},
			{Key: "student2", User: "student2", Class: "12A", Parent: "parent2", Input: people.NewStudent{
				RollNumber: "STU002", AdmissionNumber: "ADM2024002", AdmissionDate: day("2024-04-01"),
				BloodGroup: ptr("A+"), EmergencyPhone: ptr("+91-9876543215"),
			}},
			{Key: "student3", User: "student3", Class: "10B", Input: people.NewStudent{
				RollNumber: "STU003", AdmissionNumber: "ADM2024003", AdmissionDate: day("2024-04-01"),
				BloodGroup: ptr("B+"), EmergencyPhone: ptr("+91-9876543219"),
			}},
		},
		ClassSubjects: []ClassSubjectFixture{
			{Class: "10A", Subject: "math", Teacher: "math"},
			{Class: "10A", Subject: "science", Teacher: "science"},
			{Class: "12A", Subject: "physics", Teacher: "science"},
		},
		Attendances: []AttendanceFixture{
			{Student: "student1", Teacher: "math", DaysAgo: 0, Status: academic.AttendancePresent},
			{Student: "student1", Teacher: "math", DaysAgo: 1, Status: academic.AttendancePresent},
			{Student: "student2", Teacher: "science", DaysAgo: 0, Status: academic.AttendancePresent},
			{Student: "student3", Teacher: "math", DaysAgo: 0, Status: academic.AttendanceAbsent, Remarks: "Sick leave"},
		},
		Exams: []ExamFixture{
			{Key: "quarterly", Class: "10A", Teacher: "math", Input: academic.NewExam{
				Name:         "Quarterly Examination - Q1 2024",
				Description:  ptr("First quarterly exam of academic year 2024-2025"),
				Type:         academic.ExamQuarterly,
				StartDate:    day("2024-09-01"),
				EndDate:      day("2024-09-15"),
				TotalMarks:   100,
				PassingMarks: 35,
				AcademicYear: year,
				IsPublished:  true,
			}},
			{Key: "board", Class: "12A", Teacher: "science", Input: academic.NewExam{
				Name:         "Board Examination - Class 12 (CBSE)",
				Description:  ptr("CBSE Board Exam for Class 12"),
				Type:         academic.ExamBoard12th,
				StartDate:    day("2025-02-15"),
				EndDate:      day("2025-03-30"),
				TotalMarks:   100,
				PassingMarks: 33,
				AcademicYear: year,
			}},
		},
		Results: []ResultFixture{
			{Student: "student1", Exam: "quarterly", Subject: "math", Input: academic.NewResult{
				MarksObtained: 85, MaxMarks: ptr(100.0), Remarks: ptr("Excellent performance"),
			}},
			{Student: "student1", Exam: "quarterly", Subject: "science", Input: academic.NewResult{
				MarksObtained: 78, MaxMarks: ptr(100.0), Remarks: ptr("Good work"),
			}},
		},
		FeeStructures: []FeeStructureFixture{
			{Class: "10A", Input: finance.NewFeeStructure{
				FeeName: "Tuition Fee", Amount: 25000, Term: finance.TermQuarterly, DueDate: day("2024-07-15"),
				Description: ptr("Quarterly tuition fee for Class 10"),
			}},
			{Class: "10A", Input: finance.NewFeeStructure{
				FeeName: "Exam Fee", Amount: 5000, Term: finance.TermAnnual, DueDate: day("2024-08-30"),
				Description: ptr("Annual exam fee"),
			}},
			{Class: "12A", Input: finance.NewFeeStructure{
				FeeName: "Tuition Fee", Amount: 30000, Term: finance.TermQuarterly, DueDate: day("2024-07-15"),
				Description: ptr("Quarterly tuition fee for Class 12"),
			}},
		},
		FeePayments: []FeePaymentFixture{
			{Student: "student1", Input: finance.NewFeePayment{
				Amount: 25000, FeeType: "Tuition Fee", Term: finance.TermQuarterly, PaymentDate: day("2024-07-10"),
				PaymentMethod: finance.MethodOnline, TransactionID: ptr("TXN001202407101234"),
				Status: finance.PaymentCompleted, ReceiptNumber: "RCP001",
			}},
			{Student: "student2", Input: finance.NewFeePayment{
				Amount: 30000, FeeType: "Tuition Fee", Term: finance.TermQuarterly, PaymentDate: day("2024-07-12"),
				PaymentMethod: finance.MethodUPI, TransactionID: ptr("TXN002202407125678"),
				Status: finance.PaymentCompleted, ReceiptNumber: "RCP002",
			}},
			{Student: "student3", Input: finance.NewFeePayment{
				Amount: 12500, FeeType: "Tuition Fee (Partial)", Term: finance.TermQuarterly, PaymentDate: day("2024-07-08"),
				PaymentMethod: finance.MethodCash, TransactionID: ptr("TXN003202407080001"),
				Status: finance.PaymentCompleted, ReceiptNumber: "RCP003", Remarks: ptr("Partial payment - balance pending"),
			}},
		},
		Meetings: []MeetingFixture{
			{Key: "ptm", Teacher: "math", Input: meeting.NewMeeting{
				Title:       "Parent-Teacher Meeting - Class 10A",
				Description: ptr("Quarterly parent-teacher meeting to discuss student progress"),
				Type:        meeting.TypeParentTeacher,
				ScheduledAt: time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC),
				Duration:    120,
				Location:    ptr("School Auditorium"),
				Agenda:      ptr("Discuss student performance and upcoming board exams"),
			}},
			{Key: "review", Teacher: "math", Input: meeting.NewMeeting{
				Title:       "One-on-One: Rahul Progress Review",
				Description: ptr("Individual meeting with parent to discuss Rahul progress"),
				Type:        meeting.TypeOneOnOne,
				ScheduledAt: time.Date(2024, 12, 25, 15, 0, 0, 0, time.UTC),
				Duration:    30,
				Location:    ptr("Teacher Cabin"),
			}},
		},
		Participants: []ParticipantFixture{
			{Meeting: "ptm", User: "mathTeacher", Input: meeting.NewParticipant{Role: meeting.RoleOrganizer, Status: meeting.ParticipantAccepted}},
			{Meeting: "ptm", User: "parent1", Input: meeting.NewParticipant{Role: meeting.RoleAttendee, Status: meeting.ParticipantPending}},
			{Meeting: "review", User: "mathTeacher", Input: meeting.NewParticipant{Role: meeting.RoleOrganizer, Status: meeting.ParticipantAccepted}},
			{Meeting: "review", User: "parent1", Input: meeting.NewParticipant{Role: meeting.RoleAttendee, Status: meeting.ParticipantAccepted}},
		},
		Notifications: []NotificationFixture{
			{User: "parent1", Input: notice.NewNotification{
				Title: "Attendance Alert", Message: "Your child Rahul was marked present today", Type: notice.NotificationAttendance,
			}},
			{User: "student1", Input: notice.NewNotification{
				Title: "Exam Results Published", Message: "Your quarterly exam results are now available", Type: notice.NotificationResult,
			}},
			{User: "parent2", IsRead: true, Input: notice.NewNotification{
				Title: "Fee Payment Successful", Message: "Fee payment of ₹30,000 received successfully", Type: notice.NotificationFee,
			}},
			{User: "parent1", Input: notice.NewNotification{
				Title: "Meeting Scheduled", Message: "Parent-Teacher meeting scheduled for Dec 20, 2024", Type: notice.NotificationMeeting,
			}},
		},
		Announcements: []AnnouncementFixture{
			{Input: notice.NewAnnouncement{
				Title:     "Annual Day Celebration",
				Content:   "Our school annual day will be celebrated on January 15, 2025. All students and parents are invited.",
				Type:      notice.AnnouncementEvent,
				Priority:  notice.PriorityHigh,
				ExpiresAt: ptr(day("2025-01-15")),
			}},
			{Input: notice.NewAnnouncement{
				Title:    "Winter Break Notice",
				Content:  "School will remain closed from December 25, 2024 to January 5, 2025 for winter break.",
				Type:     notice.AnnouncementHoliday,
				Priority: notice.PriorityNormal,
			}},
			{Input: notice.NewAnnouncement{
				Title:      "Board Exam Registration",
				Content:    "Class 10 and 12 students must complete board exam registration by December 31, 2024.",
				Type:       notice.AnnouncementExam,
				Priority:   notice.PriorityUrgent,
				TargetRole: ptr(user.RoleStudent),
				ExpiresAt:  ptr(day("2024-12-31")),
			}},
		},
		Assignments: []AssignmentFixture{
			{Student: "student1", Input: academic.NewAssignment{
				Title:       "Mathematics Assignment - Quadratic Equations",
				Description: "Solve all problems from Chapter 4: Quadratic Equations (Exercise 4.1 to 4.4)",
				DueDate:     day("2024-12-30"),
				TotalMarks:  50,
				Status:      academic.AssignmentPending,
			}},
			{Student: "student1", Input: academic.NewAssignment{
				Title:         "Science Project - Renewable Energy",
				Description:   "Prepare a detailed project report on renewable energy sources with diagrams",
				DueDate:       day("2024-12-28"),
				TotalMarks:    100,
				Status:        academic.AssignmentSubmitted,
				SubmittedAt:   ptr(day("2024-12-20")),
				MarksObtained: ptr(85.0),
				Feedback:      ptr("Excellent work! Very detailed and well-presented."),
			}},
		},
	}
}
