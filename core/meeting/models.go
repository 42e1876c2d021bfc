package meeting

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
)

// Meeting types
const (
	TypeOneOnOne      = "ONE_ON_ONE"
	TypeGroup         = "GROUP"
	TypeParentTeacher = "PARENT_TEACHER"
	TypeStaff         = "STAFF_MEETING"
	TypeParent        = "PARENT_MEETING"
	TypeAdmin         = "ADMIN_MEETING"
)

// Meeting statuses
const (
	StatusScheduled   = "SCHEDULED"
	StatusInProgress  = "IN_PROGRESS"
	StatusCompleted   = "COMPLETED"
	StatusCancelled   = "CANCELLED"
	StatusRescheduled = "RESCHEDULED"
)

// Participant roles
const (
	RoleOrganizer = "ORGANIZER"
	RoleAttendee  = "ATTENDEE"
)

// Participant statuses
const (
	ParticipantPending   = "PENDING"
	ParticipantAccepted  = "ACCEPTED"
	ParticipantDeclined  = "DECLINED"
	ParticipantTentative = "TENTATIVE"
)

type Meeting struct {
	core.Model
	Title        string        `json:"title" gorm:"not null"`
	Description  null.String   `json:"description"`
	Type         string        `json:"type" gorm:"not null"`
	ScheduledAt  time.Time     `json:"scheduledAt" gorm:"not null"`
	Duration     int           `json:"duration" gorm:"not null"` // minutes
	Location     null.String   `json:"location"`
	MeetingLink  null.String   `json:"meetingLink"`
	Status       string        `json:"status" gorm:"not null"`
	Agenda       null.String   `json:"agenda"`
	Notes        null.String   `json:"notes"`
	CreatedBy    string        `json:"createdBy" gorm:"not null"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:MeetingID"`
}

func (Meeting) TableName() string { return string(core.TableMeetings) }

// EndsAt returns the time the meeting is planned to end.
func (m Meeting) EndsAt() time.Time {
	return m.ScheduledAt.Add(time.Duration(m.Duration) * time.Minute)
}

type Participant struct {
	core.Model
	MeetingID string `json:"meetingId" gorm:"not null"`
	UserID    string `json:"userId" gorm:"not null"`
	Role      string `json:"role" gorm:"not null"`
	Status    string `json:"status" gorm:"not null"`
}

func (Participant) TableName() string { return string(core.TableMeetingParticipants) }

type NewMeeting struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description *string   `json:"description"`
	Type        string    `json:"type" validate:"required,oneof=ONE_ON_ONE GROUP PARENT_TEACHER STAFF_MEETING PARENT_MEETING ADMIN_MEETING"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Duration    int       `json:"duration" validate:"required,gt=0,max=1440"`
	Location    *string   `json:"location" validate:"omitempty,max=200"`
	MeetingLink *string   `json:"meetingLink" validate:"omitempty,url"`
	Agenda      *string   `json:"agenda"`
	// CreatedBy is the organizing teacher. The API fills it from the authenticated teacher.
	CreatedBy string `json:"createdBy" validate:"required,uuid"`
}

func (nm *NewMeeting) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	return validate.Struct(nm)
}

func (nm NewMeeting) Meeting() Meeting {
	return Meeting{
		Title:       nm.Title,
		Description: null.StringFromPtr(nm.Description),
		Type:        nm.Type,
		ScheduledAt: nm.ScheduledAt.UTC(),
		Duration:    nm.Duration,
		Location:    null.StringFromPtr(nm.Location),
		MeetingLink: null.StringFromPtr(nm.MeetingLink),
		Status:      StatusScheduled,
		Agenda:      null.StringFromPtr(nm.Agenda),
		CreatedBy:   nm.CreatedBy,
	}
}

type UpdateMeeting struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Duration    *int       `json:"duration" validate:"omitempty,gt=0,max=1440"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	MeetingLink *string    `json:"meetingLink" validate:"omitempty,url"`
	Agenda      *string    `json:"agenda"`
	Notes       *string    `json:"notes"`
}

func (um UpdateMeeting) Validate(validate *validator.Validate) error { return validate.Struct(um) }

// Apply updates m. Moving a scheduled meeting marks it as RESCHEDULED.
func (um UpdateMeeting) Apply(m *Meeting) {
	core.SetString(&m.Title, um.Title)
	core.SetNullString(&m.Description, um.Description)
	if um.ScheduledAt != nil && !um.ScheduledAt.Equal(m.ScheduledAt) {
		m.ScheduledAt = um.ScheduledAt.UTC()
		if m.Status == StatusScheduled {
			m.Status = StatusRescheduled
		}
	}
	if um.Duration != nil {
		m.Duration = *um.Duration
	}
	core.SetNullString(&m.Location, um.Location)
	core.SetNullString(&m.MeetingLink, um.MeetingLink)
	core.SetNullString(&m.Agenda, um.Agenda)
	core.SetNullString(&m.Notes, um.Notes)
}

type UpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=SCHEDULED IN_PROGRESS COMPLETED CANCELLED RESCHEDULED"`
}

func (us UpdateStatus) Validate(validate *validator.Validate) error { return validate.Struct(us) }

type NewParticipant struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Role   string `json:"role" validate:"omitempty,oneof=ORGANIZER ATTENDEE"`
	Status string `json:"status" validate:"omitempty,oneof=PENDING ACCEPTED DECLINED TENTATIVE"`
}

func (np NewParticipant) Validate(validate *validator.Validate) error { return validate.Struct(np) }

// Participant returns an attendee whose answer is pending unless told otherwise.
func (np NewParticipant) Participant(meetingID string) Participant {
	p := Participant{MeetingID: meetingID, UserID: np.UserID, Role: np.Role, Status: np.Status}
	if p.Role == "" {
		p.Role = RoleAttendee
	}
	if p.Status == "" {
		p.Status = ParticipantPending
	}
	return p
}

// Response is the answer of a participant to an invitation.
type Response struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED DECLINED TENTATIVE"`
}

func (r Response) Validate(validate *validator.Validate) error { return validate.Struct(r) }

type MeetingFilter struct {
	CreatedBy string    `query:"createdBy"`
	Type      string    `query:"type"`
	Status    string    `query:"status"`
	From      time.Time `query:"from"`
	To        time.Time `query:"to"`
	// UserID keeps the meetings the user takes part in.
	UserID string `query:"userId"`
}

func (qf MeetingFilter) Filter() *core.Filter {
	f := core.NewFilter().
		EqIf("created_by", qf.CreatedBy).
		EqIf("type", qf.Type).
		EqIf("status", qf.Status)
	if !qf.From.IsZero() {
		f.Cond("scheduled_at >= ?", qf.From.UTC())
	}
	if !qf.To.IsZero() {
		f.Cond("scheduled_at <= ?", qf.To.UTC())
	}
	if qf.UserID != "" {
		f.Cond("id IN (SELECT meeting_id FROM meeting_participants WHERE user_id = ?)", qf.UserID)
	}
	return f
}
