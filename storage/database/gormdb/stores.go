package gormdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/trezcool/schoolsaas/core/academic"
	"github.com/trezcool/schoolsaas/core/finance"
	"github.com/trezcool/schoolsaas/core/meeting"
	"github.com/trezcool/schoolsaas/core/notice"
	"github.com/trezcool/schoolsaas/core/people"
	"github.com/trezcool/schoolsaas/core/school"
	"github.com/trezcool/schoolsaas/core/seed"
)

const userWithProfile = "User.Profile"

func SchoolStores(db *gorm.DB) school.Stores {
	return school.Stores{
		Schools:       NewStore[school.School](db, school.ErrSchoolNotFound),
		Classes:       NewStore[school.Class](db, school.ErrClassNotFound),
		Subjects:      NewStore[school.Subject](db, school.ErrSubjectNotFound),
		ClassSubjects: NewStore[school.ClassSubject](db, school.ErrClassSubjectNotFound),
		Timetables:    NewStore[school.Timetable](db, school.ErrTimetableNotFound),
	}
}

func PeopleStores(db *gorm.DB) people.Stores {
	return people.Stores{
		Teachers: NewStore[people.Teacher](db, people.ErrTeacherNotFound, userWithProfile),
		Parents:  NewStore[people.Parent](db, people.ErrParentNotFound, userWithProfile),
		Students: NewStore[people.Student](db, people.ErrStudentNotFound, userWithProfile, "Class"),
	}
}

func AcademicStores(db *gorm.DB) academic.Stores {
	return academic.Stores{
		Attendances: NewStore[academic.Attendance](db, academic.ErrAttendanceNotFound),
		Exams:       NewStore[academic.Exam](db, academic.ErrExamNotFound),
		Results:     NewStore[academic.Result](db, academic.ErrResultNotFound),
		Assignments: NewStore[academic.Assignment](db, academic.ErrAssignmentNotFound),
		InTx: func(ctx context.Context, fn func(academic.Stores) error) error {
			return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return fn(AcademicStores(tx))
			})
		},
	}
}

func FinanceStores(db *gorm.DB) finance.Stores {
	return finance.Stores{
		FeeStructures: NewStore[finance.FeeStructure](db, finance.ErrFeeStructureNotFound),
		FeePayments:   NewStore[finance.FeePayment](db, finance.ErrFeePaymentNotFound),
	}
}

func MeetingStores(db *gorm.DB) meeting.Stores {
	return meeting.Stores{
		Meetings:     NewStore[meeting.Meeting](db, meeting.ErrMeetingNotFound, "Participants"),
		Participants: NewStore[meeting.Participant](db, meeting.ErrParticipantNotFound),
	}
}

func NoticeStores(db *gorm.DB) notice.Stores {
	return notice.Stores{
		Notifications: NewStore[notice.Notification](db, notice.ErrNotificationNotFound),
		Announcements: NewStore[notice.Announcement](db, notice.ErrAnnouncementNotFound),
	}
}

// SeedTargets points a seed run at db.
func SeedTargets(db *gorm.DB) seed.Targets {
	return seed.Targets{
		Users:    NewUserRepository(db),
		School:   SchoolStores(db),
		People:   PeopleStores(db),
		Academic: AcademicStores(db),
		Finance:  FinanceStores(db),
		Meetings: MeetingStores(db),
		Notices:  NoticeStores(db),
	}
}
