package notice

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolsaas/core"
)

var (
	// errors
	ErrNotificationNotFound = core.NewNotFoundError("notification")
	ErrAnnouncementNotFound = core.NewNotFoundError("announcement")
)

type (
	Stores struct {
		Notifications core.Store[Notification]
		Announcements core.Store[Announcement]
	}

	Service interface {
		Notify(ctx context.Context, nn NewNotification) (Notification, error)
		// UserNotifications lists the notifications of one user. filter.UserID is overwritten.
		UserNotifications(ctx context.Context, userID string, filter NotificationFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)
		// MarkRead marks a notification of userID as read. Notifications of other users are not found.
		MarkRead(ctx context.Context, userID, id string) (Notification, error)
		// MarkAllRead marks every unread notification of userID as read and returns how many were.
		MarkAllRead(ctx context.Context, userID string) (int, error)
		DeleteNotification(ctx context.Context, userID, id string) error

		CreateAnnouncement(ctx context.Context, na NewAnnouncement) (Announcement, error)
		GetAnnouncement(ctx context.Context, id string) (Announcement, error)
		UpdateAnnouncement(ctx context.Context, id string, ua UpdateAnnouncement) (Announcement, error)
		DeleteAnnouncement(ctx context.Context, id string) error
		QueryAnnouncements(ctx context.Context, filter AnnouncementFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error)
		// ActiveAnnouncements lists the announcements currently visible to `role`, latest first.
		ActiveAnnouncements(ctx context.Context, role string, page core.Page) (core.Paginated, error)
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

// Notifications

func (svc *service) Notify(ctx context.Context, nn NewNotification) (Notification, error) {
	if err := core.CheckRef(ctx, svc.refs, core.TableUsers, "userId", nn.UserID); err != nil {
		return Notification{}, err
	}
	n := nn.Notification()
	if err := svc.stores.Notifications.Create(ctx, &n); err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}
	return n, nil
}

func (svc *service) UserNotifications(ctx context.Context, userID string, filter NotificationFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	filter.UserID = userID
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "createdAt"}}
	}
	return core.ListPage(ctx, svc.stores.Notifications, filter.Filter(), page, ordering...)
}

func (svc *service) ownNotification(ctx context.Context, userID, id string) (Notification, error) {
	n, err := svc.stores.Notifications.Get(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != userID {
		return Notification{}, ErrNotificationNotFound
	}
	return n, nil
}

func (svc *service) markRead(ctx context.Context, n *Notification) error {
	n.IsRead = true
	n.ReadAt = null.TimeFrom(svc.now().UTC())
	return svc.stores.Notifications.Update(ctx, n)
}

func (svc *service) MarkRead(ctx context.Context, userID, id string) (Notification, error) {
	n, err := svc.ownNotification(ctx, userID, id)
	if err != nil {
		return Notification{}, err
	}
	if n.IsRead {
		return n, nil
	}
	if err = svc.markRead(ctx, &n); err != nil {
		return Notification{}, errors.Wrap(err, "marking notification as read")
	}
	return n, nil
}

func (svc *service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread := false
	ns, err := svc.stores.Notifications.All(ctx, NotificationFilter{UserID: userID, IsRead: &unread}.Filter())
	if err != nil {
		return 0, errors.Wrap(err, "listing unread notifications")
	}
	for i := range ns {
		if err = svc.markRead(ctx, &ns[i]); err != nil {
			return i, errors.Wrap(err, "marking notification as read")
		}
	}
	return len(ns), nil
}

func (svc *service) DeleteNotification(ctx context.Context, userID, id string) error {
	if _, err := svc.ownNotification(ctx, userID, id); err != nil {
		return err
	}
	return svc.stores.Notifications.Delete(ctx, id)
}

// Announcements

func (svc *service) CreateAnnouncement(ctx context.Context, na NewAnnouncement) (Announcement, error) {
	a := na.Announcement(svc.now())
	if a.ExpiresAt.Valid && !a.ExpiresAt.Time.After(a.PublishedAt) {
		return Announcement{}, core.NewFieldError("expiresAt", errors.New("expiresAt must be after publishedAt"))
	}
	if err := svc.stores.Announcements.Create(ctx, &a); err != nil {
		return Announcement{}, errors.Wrap(err, "creating announcement")
	}
	return a, nil
}

func (svc *service) GetAnnouncement(ctx context.Context, id string) (Announcement, error) {
	return svc.stores.Announcements.Get(ctx, id)
}

func (svc *service) UpdateAnnouncement(ctx context.Context, id string, ua UpdateAnnouncement) (Announcement, error) {
	a, err := svc.GetAnnouncement(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	ua.Apply(&a)
	if err = svc.stores.Announcements.Update(ctx, &a); err != nil {
		return Announcement{}, errors.Wrap(err, "updating announcement")
	}
	return a, nil
}

func (svc *service) DeleteAnnouncement(ctx context.Context, id string) error {
	return svc.stores.Announcements.Delete(ctx, id)
}

func (svc *service) QueryAnnouncements(ctx context.Context, filter AnnouncementFilter, page core.Page, ordering ...core.DBOrdering) (core.Paginated, error) {
	return core.ListPage(ctx, svc.stores.Announcements, filter.Filter(), page, ordering...)
}

func (svc *service) ActiveAnnouncements(ctx context.Context, role string, page core.Page) (core.Paginated, error) {
	filter := AnnouncementFilter{Role: role, Now: svc.now()}
	return core.ListPage(ctx, svc.stores.Announcements, filter.Filter(), page, core.DBOrdering{Field: "publishedAt"})
}
