package repositories

import (
	"log/slog"
	"testing"
	"time"

	"collab-notes/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func Test_Notifications_Newest_First(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewNotificationRepository(db, slog.Default())
	at := time.Now().UTC()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n := domain.Notification{
			ID: uuid.New(), UserID: "u1", CandidateID: "cand-1",
			MessageID: uuid.New(), Preview: "ping", CreatedAt: at.Add(time.Duration(i) * time.Minute),
		}
		ids = append(ids, n.ID)
		req.NoError(repository.StoreNotification(n))
	}

	fetched, err := repository.GetNotifications("u1")
	req.NoError(err)
	req.Len(fetched, 3)
	// newest first: reverse of insertion order
	req.Equal(ids[2], fetched[0].ID)
	req.Equal(ids[1], fetched[1].ID)
	req.Equal(ids[0], fetched[2].ID)
}

func Test_MarkAllRead_Scoped_To_Recipient(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewNotificationRepository(db, slog.Default())
	at := time.Now().UTC()
	store := func(userID string) {
		req.NoError(repository.StoreNotification(domain.Notification{
			ID: uuid.New(), UserID: userID, CandidateID: "cand-1",
			MessageID: uuid.New(), Preview: "ping", CreatedAt: at,
		}))
	}
	store("u1")
	store("u1")
	store("u2")

	req.NoError(repository.MarkAllRead("u1"))

	forU1, err := repository.GetNotifications("u1")
	req.NoError(err)
	req.True(lo.EveryBy(forU1, func(n domain.Notification) bool { return n.Read }))

	forU2, err := repository.GetNotifications("u2")
	req.NoError(err)
	req.Len(forU2, 1)
	req.False(forU2[0].Read)
}

func Test_Duplicate_Notifications_Both_Kept(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewNotificationRepository(db, slog.Default())
	at := time.Now().UTC()
	messageID := uuid.New()
	// same source message, mentioned twice: two records, no dedup
	for i := 0; i < 2; i++ {
		req.NoError(repository.StoreNotification(domain.Notification{
			ID: uuid.New(), UserID: "u1", CandidateID: "cand-1",
			MessageID: messageID, Preview: "ping @JaneDoe @janedoe", CreatedAt: at,
		}))
	}

	fetched, err := repository.GetNotifications("u1")
	req.NoError(err)
	req.Len(fetched, 2)
}
