package meeting

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolsaas/core"
)

var (
	// errors
	ErrMeetingNotFound     = core.NewNotFoundError("meeting")
	ErrParticipantNotFound = core.NewNotFoundError("meeting participant")
	ErrMeetingClosed       = errors.New("meeting is already completed or cancelled")
)

type (
	Stores struct {
		Meetings     core.Store[Meeting]
		Participants core.Store[Participant]
	}

	Service interface {
		// CreateMeeting schedules a meeting. When organizerID is set, that user joins it as an accepted ORGANIZER.
		CreateMeeting(ctx context.Context, nm NewMeeting, organizerID string) (Meeting, error)
		GetMeeting(ctx context.Context, id string) (Meeting, error)
		UpdateMeeting(ctx context.Context, id string, um UpdateMeeting) (Meeting, error)
		UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Meeting, error)
		DeleteMeeting(ctx context.Context, id string) error
		QueryMeetings(ctx context.Context, filter MeetingFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)

		Participants(ctx context.Context, meetingID string) ([]Participant, error)
		AddParticipant(ctx context.Context, meetingID string, np NewParticipant) (Participant, error)
		RemoveParticipant(ctx context.Context, meetingID, userID string) error
		// Respond records the answer of userID to the invitation.
		Respond(ctx context.Context, meetingID, userID string, r Response) (Participant, error)
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

func isClosed(m Meeting) bool {
	return m.Status == StatusCompleted || m.Status == StatusCancelled
}

func (svc *service) CreateMeeting(ctx context.Context, nm NewMeeting, organizerID string) (Meeting, error) {
	if err := core.CheckRef(ctx, svc.refs, core.TableTeachers, "createdBy", nm.CreatedBy); err != nil {
		return Meeting{}, err
	}
	m := nm.Meeting()
	if err := svc.stores.Meetings.Create(ctx, &m); err != nil {
		return Meeting{}, errors.Wrap(err, "creating meeting")
	}
	if organizerID != "" {
		p := Participant{MeetingID: m.ID, UserID: organizerID, Role: RoleOrganizer, Status: ParticipantAccepted}
		if err := svc.stores.Participants.Create(ctx, &p); err != nil {
			return Meeting{}, errors.Wrap(err, "adding organizer")
		}
		m.Participants = append(m.Participants, p)
	}
	return m, nil
}

func (svc *service) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	return svc.stores.Meetings.Get(ctx, id)
}

func (svc *service) UpdateMeeting(ctx context.Context, id string, um UpdateMeeting) (Meeting, error) {
	m, err := svc.GetMeeting(ctx, id)
	if err != nil {
		return Meeting{}, err
	}
	um.Apply(&m)
	if err = svc.stores.Meetings.Update(ctx, &m); err != nil {
		return Meeting{}, errors.Wrap(err, "updating meeting")
	}
	return m, nil
}

func (svc *service) UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Meeting, error) {
	m, err := svc.GetMeeting(ctx, id)
	if err != nil {
		return Meeting{}, err
	}
	if isClosed(m) && us.Status != m.Status {
		return Meeting{}, core.NewFieldError("status", ErrMeetingClosed)
	}
	m.Status = us.Status
	if err = svc.stores.Meetings.Update(ctx, &m); err != nil {
		return Meeting{}, errors.Wrap(err, "updating meeting status")
	}
	return m, nil
}

func (svc *service) DeleteMeeting(ctx context.Context, id string) error {
	return svc.stores.Meetings.Delete(ctx, id)
}

func (svc *service) QueryMeetings(ctx context.Context, filter MeetingFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Meetings, filter.Filter(), page, ordering...)
}

// Participants

func (svc *service) Participants(ctx context.Context, meetingID string) ([]Participant, error) {
	if _, err := svc.GetMeeting(ctx, meetingID); err != nil {
		return nil, err
	}
	return svc.stores.Participants.All(
		ctx,
		core.NewFilter().Eq("meeting_id", meetingID),
		core.DBOrdering{Field: "createdAt", Ascending: true},
	)
}

func (svc *service) AddParticipant(ctx context.Context, meetingID string, np NewParticipant) (Participant, error) {
	m, err := svc.GetMeeting(ctx, meetingID)
	if err != nil {
		return Participant{}, err
	}
	if isClosed(m) {
		return Participant{}, core.NewValidationError(ErrMeetingClosed)
	}
	if err = core.CheckRef(ctx, svc.refs, core.TableUsers, "userId", np.UserID); err != nil {
		return Participant{}, err
	}
	p := np.Participant(meetingID)
	if err = svc.stores.Participants.Create(ctx, &p); err != nil {
		return Participant{}, errors.Wrap(err, "adding participant")
	}
	return p, nil
}

func (svc *service) participant(ctx context.Context, meetingID, userID string) (Participant, error) {
	ps, err := svc.stores.Participants.All(ctx, core.NewFilter().Eq("meeting_id", meetingID).Eq("user_id", userID))
	if err != nil {
		return Participant{}, errors.Wrap(err, "finding participant")
	}
	if len(ps) == 0 {
		return Participant{}, ErrParticipantNotFound
	}
	return ps[0], nil
}

func (svc *service) RemoveParticipant(ctx context.Context, meetingID, userID string) error {
	p, err := svc.participant(ctx, meetingID, userID)
	if err != nil {
		return err
	}
	return svc.stores.Participants.Delete(ctx, p.ID)
}

func (svc *service) Respond(ctx context.Context, meetingID, userID string, r Response) (Participant, error) {
	m, err := svc.GetMeeting(ctx, meetingID)
	if err != nil {
		return Participant{}, err
	}
	if isClosed(m) {
		return Participant{}, core.NewValidationError(ErrMeetingClosed)
	}
	p, err := svc.participant(ctx, meetingID, userID)
	if err != nil {
		return Participant{}, err
	}
	p.Status = r.Status
	if err = svc.stores.Participants.Update(ctx, &p); err != nil {
		return Participant{}, errors.Wrap(err, "updating participant")
	}
	return p, nil
}
