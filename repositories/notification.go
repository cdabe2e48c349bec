//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"collab-notes/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type INotificationRepository interface {
	StoreNotification(n domain.Notification) error
	GetNotifications(userID string) ([]domain.Notification, error)
	MarkAllRead(userID string) error
}

type NotificationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNotificationRepository(db *badger.DB, log *slog.Logger) NotificationRepository {
	return NotificationRepository{db: db, log: log}
}

type diskNotification struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	CandidateID string `json:"candidate_id"`
	MessageID   string `json:"message_id"`
	Preview     string `json:"preview"`
	At          int64  `json:"at"` // unix nanoseconds
	Read        bool   `json:"read"`
}

// StoreNotification persists a notification under
// "notif:{recipient_id}:{timestamp_padded}:{uuid}". Same key scheme as
// messages: the padded timestamp gives lexicographic time order, the
// UUID disambiguates same-nanosecond arrivals.
func (r NotificationRepository) StoreNotification(n domain.Notification) error {
	key := notificationKey(n.UserID, n.CreatedAt, n.ID)
	bytes, err := json.Marshal(fromNotification(n))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetNotifications returns a recipient's notifications newest-first.
// The iterator runs in reverse from the upper bound of the prefix, so
// no sort is needed afterwards.
func (r NotificationRepository) GetNotifications(userID string) ([]domain.Notification, error) {
	var raw [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("notif:%s:", userID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key, then walk backwards.
		seekKey := append(append([]byte(nil), prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(raw))
	for _, b := range raw {
		n, err := toNotification(b)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkAllRead flips the read flag on every notification of one
// recipient in a single transaction. There is no per-notification
// toggle. Other recipients are untouched.
func (r NotificationRepository) MarkAllRead(userID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("notif:%s:", userID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)

		type pending struct {
			key   []byte
			value []byte
		}
		var updates []pending
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			err := item.Value(func(value []byte) error {
				var dn diskNotification
				if err := json.Unmarshal(value, &dn); err != nil {
					return err
				}
				if dn.Read {
					return nil
				}
				dn.Read = true
				updated, err := json.Marshal(dn)
				if err != nil {
					return err
				}
				updates = append(updates, pending{key: key, value: updated})
				return nil
			})
			if err != nil {
				it.Close()
				return err
			}
		}
		// Writes must wait until the iterator is released.
		it.Close()
		for _, u := range updates {
			if err := txn.Set(u.key, u.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func notificationKey(userID string, at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("notif:%s:%019d:%s", userID, at.UnixNano(), id)
}

func fromNotification(n domain.Notification) diskNotification {
	return diskNotification{
		ID:          n.ID.String(),
		UserID:      n.UserID,
		CandidateID: n.CandidateID,
		MessageID:   n.MessageID.String(),
		Preview:     n.Preview,
		At:          n.CreatedAt.UnixNano(),
		Read:        n.Read,
	}
}

func toNotification(b []byte) (domain.Notification, error) {
	var dn diskNotification
	if err := json.Unmarshal(b, &dn); err != nil {
		return domain.Notification{}, err
	}
	parsedID, err := uuid.Parse(dn.ID)
	if err != nil {
		return domain.Notification{}, err
	}
	parsedMessageID, err := uuid.Parse(dn.MessageID)
	if err != nil {
		return domain.Notification{}, err
	}
	return domain.Notification{
		ID:          parsedID,
		UserID:      dn.UserID,
		CandidateID: dn.CandidateID,
		MessageID:   parsedMessageID,
		Preview:     dn.Preview,
		CreatedAt:   time.Unix(0, dn.At).UTC(),
		Read:        dn.Read,
	}, nil
}
