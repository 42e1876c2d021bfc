package notice

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
)

// Notification types
const (
	NotificationAttendance   = "ATTENDANCE"
	NotificationResult       = "RESULT"
	NotificationMeeting      = "MEETING"
	NotificationFee          = "FEE"
	NotificationAnnouncement = "ANNOUNCEMENT"
	NotificationAssignment   = "ASSIGNMENT"
	NotificationGeneral      = "GENERAL"
)

// Announcement types
const (
	AnnouncementGeneral = "GENERAL"
	AnnouncementEvent   = "EVENT"
	AnnouncementHoliday = "HOLIDAY"
	AnnouncementExam    = "EXAM"
	AnnouncementNotice  = "NOTICE"
)

// Priorities
const (
	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

type Notification struct {
	core.Model
	UserID  string      `json:"userId" gorm:"not null"`
	Title   string      `json:"title" gorm:"not null"`
	Message string      `json:"message" gorm:"not null"`
	Type    string      `json:"type" gorm:"not null"`
	IsRead  bool        `json:"isRead" gorm:"not null"`
	ReadAt  null.Time   `json:"readAt"`
	Link    null.String `json:"link"`
}

func (Notification) TableName() string { return string(core.TableNotifications) }

type Announcement struct {
	core.Model
	Title       string      `json:"title" gorm:"not null"`
	Content     string      `json:"content" gorm:"not null"`
	Type        string      `json:"type" gorm:"not null"`
	Priority    string      `json:"priority" gorm:"not null"`
	TargetRole  null.String `json:"targetRole"`
	IsActive    bool        `json:"isActive" gorm:"not null"`
	PublishedAt time.Time   `json:"publishedAt" gorm:"not null"`
	ExpiresAt   null.Time   `json:"expiresAt"`
}

func (Announcement) TableName() string { return string(core.TableAnnouncements) }

// VisibleTo reports whether the announcement is shown to a user of `role` at `now`.
func (a Announcement) VisibleTo(role string, now time.Time) bool {
	if !a.IsActive || a.PublishedAt.After(now) {
		return false
	}
	if a.ExpiresAt.Valid && !a.ExpiresAt.Time.After(now) {
		return false
	}
	return !a.TargetRole.Valid || a.TargetRole.String == role
}

type NewNotification struct {
	UserID  string  `json:"userId" validate:"required,uuid"`
	Title   string  `json:"title" validate:"required,max=200"`
	Message string  `json:"message" validate:"required"`
	Type    string  `json:"type" validate:"omitempty,oneof=ATTENDANCE RESULT MEETING FEE ANNOUNCEMENT ASSIGNMENT GENERAL"`
	Link    *string `json:"link" validate:"omitempty,max=500"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	return validate.Struct(nn)
}

func (nn NewNotification) Notification() Notification {
	typ := nn.Type
	if typ == "" {
		typ = NotificationGeneral
	}
	return Notification{
		UserID:  nn.UserID,
		Title:   nn.Title,
		Message: nn.Message,
		Type:    typ,
		Link:    null.StringFromPtr(nn.Link),
	}
}

type NewAnnouncement struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Content     string     `json:"content" validate:"required"`
	Type        string     `json:"type" validate:"omitempty,oneof=GENERAL EVENT HOLIDAY EXAM NOTICE"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	TargetRole  *string    `json:"targetRole" validate:"omitempty,role"`
	PublishedAt *time.Time `json:"publishedAt"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.Struct(na)
}

// Announcement returns an active announcement, published at `now` unless scheduled later.
func (na NewAnnouncement) Announcement(now time.Time) Announcement {
	a := Announcement{
		Title:       na.Title,
		Content:     na.Content,
		Type:        na.Type,
		Priority:    na.Priority,
		TargetRole:  null.StringFromPtr(na.TargetRole),
		IsActive:    true,
		PublishedAt: now.UTC(),
	}
	if a.Type == "" {
		a.Type = AnnouncementGeneral
	}
	if a.Priority == "" {
		a.Priority = PriorityNormal
	}
	if na.PublishedAt != nil {
		a.PublishedAt = na.PublishedAt.UTC()
	}
	if na.ExpiresAt != nil {
		a.ExpiresAt = null.TimeFrom(na.ExpiresAt.UTC())
	}
	return a
}

type UpdateAnnouncement struct {
	Title      *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Content    *string    `json:"content" validate:"omitempty,min=1"`
	Type       *string    `json:"type" validate:"omitempty,oneof=GENERAL EVENT HOLIDAY EXAM NOTICE"`
	Priority   *string    `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	TargetRole *string    `json:"targetRole" validate:"omitempty,role"`
	IsActive   *bool      `json:"isActive"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

func (ua UpdateAnnouncement) Validate(validate *validator.Validate) error { return validate.Struct(ua) }

func (ua UpdateAnnouncement) Apply(a *Announcement) {
	core.SetString(&a.Title, ua.Title)
	core.SetString(&a.Content, ua.Content)
	core.SetString(&a.Type, ua.Type)
	core.SetString(&a.Priority, ua.Priority)
	core.SetNullString(&a.TargetRole, ua.TargetRole)
	if ua.IsActive != nil {
		a.IsActive = *ua.IsActive
	}
	if ua.ExpiresAt != nil {
		a.ExpiresAt = null.TimeFrom(ua.ExpiresAt.UTC())
	}
}

type NotificationFilter struct {
	UserID string `query:"-"`
	Type   string `query:"type"`
	IsRead *bool  `query:"isRead"`
}

func (qf NotificationFilter) Filter() *core.Filter {
	f := core.NewFilter().
		EqIf("user_id", qf.UserID).
		EqIf("type", qf.Type)
	if qf.IsRead != nil {
		f.Eq("is_read", *qf.IsRead)
	}
	return f
}

type AnnouncementFilter struct {
	Type     string `query:"type"`
	Priority string `query:"priority"`
	Search   string `query:"search"`
	// Role, when set, keeps the announcements visible to that role at Now.
	Role string    `query:"-"`
	Now  time.Time `query:"-"`
}

func (qf AnnouncementFilter) Filter() *core.Filter {
	f := core.NewFilter().
		EqIf("type", qf.Type).
		EqIf("priority", qf.Priority).
		Search(qf.Search, "title", "content")
	if qf.Role != "" {
		now := qf.Now.UTC()
		f.Eq("is_active", true).
			Cond("published_at <= ?", now).
			Cond("(expires_at IS NULL OR expires_at > ?)", now).
			Cond("(target_role IS NULL OR target_role = ?)", qf.Role)
	}
	return f
}
