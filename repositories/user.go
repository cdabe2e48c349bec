//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"collab-notes/domain"
	"collab-notes/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// IUserRepository is the user directory. ListUsers is read fresh on
// every mention scan, so directory changes take effect on the next
// message.
type IUserRepository interface {
	CreateUser(name, email string) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	ListUsers() ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

type diskUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUser persists a new user and the email uniqueness guard in one
// transaction. Keys: "user:{id}" for the record, "useremail:{email}"
// pointing back at the id.
func (u UserRepository) CreateUser(name, email string) (domain.User, error) {
	user := domain.User{ID: uuid.NewString(), Name: name, Email: email}
	data, err := json.Marshal(diskUser{ID: user.ID, Name: user.Name, Email: user.Email})
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte("useremail:" + email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrEmailExists
		}
		if err := txn.Set(emailKey, []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte("user:"+user.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("useremail:" + email))
		if err != nil {
			return errors.ErrUserNotFound
		}
		var id []byte
		if id, err = item.ValueCopy(nil); err != nil {
			return err
		}
		record, err := txn.Get([]byte("user:" + string(id)))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return record.Value(func(val []byte) error {
			var du diskUser
			if err := json.Unmarshal(val, &du); err != nil {
				return err
			}
			user = domain.User(du)
			return nil
		})
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ListUsers scans the whole directory. Small by assumption (one
// recruiting team), so no pagination.
func (u UserRepository) ListUsers() ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte("user:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var du diskUser
				if err := json.Unmarshal(val, &du); err != nil {
					return err
				}
				users = append(users, domain.User(du))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return users, err
}
