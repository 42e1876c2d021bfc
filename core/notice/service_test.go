package notice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/notice"
	"github.com/trezcool/schoolsaas/core/user"
	testutil "github.com/trezcool/schoolsaas/tests"
)

func TestNotifications(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.UserRepo, "Alice", "A", "alice@test.in", "", user.RoleParent, true)
	bob := testutil.CreateUser(t, env.UserRepo, "Bob", "B", "bob@test.in", "", user.RoleParent, true)

	var first notice.Notification
	for i, title := range []string{"Fee due", "Result published", "Meeting"} {
		n, err := env.Notices.Notify(ctx, notice.NewNotification{UserID: alice.ID, Title: title, Message: "..."})
		require.NoError(t, err)
		assert.Equal(t, notice.NotificationGeneral, n.Type)
		if i == 0 {
			first = n
		}
	}
	_, err := env.Notices.Notify(ctx, notice.NewNotification{UserID: uuid.NewString(), Title: "Lost", Message: "..."})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "userId", vErr.Fields[0].Field)

	// bob cannot touch alice's notifications
	_, err = env.Notices.MarkRead(ctx, bob.ID, first.ID)
	assert.Equal(t, notice.ErrNotificationNotFound, err)
	assert.Equal(t, notice.ErrNotificationNotFound, env.Notices.DeleteNotification(ctx, bob.ID, first.ID))

	n, err := env.Notices.MarkRead(ctx, alice.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	assert.True(t, n.ReadAt.Valid)

	count, err := env.Notices.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unread := false
	page, err := env.Notices.UserNotifications(ctx, alice.ID, notice.NotificationFilter{IsRead: &unread}, core.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)

	page, err = env.Notices.UserNotifications(ctx, bob.ID, notice.NotificationFilter{UserID: alice.ID}, core.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)

	require.NoError(t, env.Notices.DeleteNotification(ctx, alice.ID, first.ID))
	page, err = env.Notices.UserNotifications(ctx, alice.ID, notice.NotificationFilter{}, core.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
}

func TestActiveAnnouncements(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	future := now.Add(48 * time.Hour)
	parents := user.RoleParent

	for _, na := range []notice.NewAnnouncement{
		{Title: "Annual Day", Content: "Everyone welcome", PublishedAt: &past},
		{Title: "PTM", Content: "Parents only", TargetRole: &parents, PublishedAt: &yesterday},
		{Title: "Expired", Content: "Gone", PublishedAt: &past, ExpiresAt: &yesterday},
		{Title: "Scheduled", Content: "Not yet", PublishedAt: &future},
	} {
		_, err := env.Notices.CreateAnnouncement(ctx, na)
		require.NoError(t, err)
	}

	_, err := env.Notices.CreateAnnouncement(ctx, notice.NewAnnouncement{
		Title: "Broken", Content: "Expires first", PublishedAt: &yesterday, ExpiresAt: &past,
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "expiresAt", vErr.Fields[0].Field)

	page, err := env.Notices.ActiveAnnouncements(ctx, user.RoleParent, core.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	anns := page.Data.([]notice.Announcement)
	assert.Equal(t, "PTM", anns[0].Title, "latest first")
	assert.Equal(t, "Annual Day", anns[1].Title)

	page, err = env.Notices.ActiveAnnouncements(ctx, user.RoleTeacher, core.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = env.Notices.QueryAnnouncements(ctx, notice.AnnouncementFilter{}, core.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
}
