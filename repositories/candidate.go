//go:generate go run go.uber.org/mock/mockgen -source=candidate.go -destination=../mocks/mock_candidate_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"collab-notes/domain"
	"collab-notes/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type ICandidateRepository interface {
	CreateCandidate(name, email string) (domain.Candidate, error)
	GetCandidate(id string) (domain.Candidate, error)
	ListCandidates() ([]domain.Candidate, error)
}

type CandidateRepository struct {
	db *badger.DB
}

func NewCandidateRepository(db *badger.DB) CandidateRepository {
	return CandidateRepository{db: db}
}

type diskCandidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c CandidateRepository) CreateCandidate(name, email string) (domain.Candidate, error) {
	candidate := domain.Candidate{ID: uuid.NewString(), Name: name, Email: email}
	data, err := json.Marshal(diskCandidate(candidate))
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("marshal failed: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("cand:"+candidate.ID), data)
	})
	if err != nil {
		return domain.Candidate{}, err
	}
	return candidate, nil
}

func (c CandidateRepository) GetCandidate(id string) (domain.Candidate, error) {
	var candidate domain.Candidate
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("cand:" + id))
		if err != nil {
			return errors.ErrCandidateNotFound
		}
		return item.Value(func(val []byte) error {
			var dc diskCandidate
			if err := json.Unmarshal(val, &dc); err != nil {
				return err
			}
			candidate = domain.Candidate(dc)
			return nil
		})
	})
	if err != nil {
		return domain.Candidate{}, err
	}
	return candidate, nil
}

func (c CandidateRepository) ListCandidates() ([]domain.Candidate, error) {
	var candidates []domain.Candidate
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte("cand:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var dc diskCandidate
				if err := json.Unmarshal(val, &dc); err != nil {
					return err
				}
				candidates = append(candidates, domain.Candidate(dc))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return candidates, err
}
