package services

import (
	"collab-notes/domain"
	"collab-notes/errors"
	"collab-notes/repositories"
	"collab-notes/sanitize"
)

// IDirectoryService manages the user and candidate records the core
// references by id. Stored fields are sanitized; nothing here verifies
// identity beyond an email lookup (auth hardening is out of scope).
type IDirectoryService interface {
	Signup(name, email string) (domain.User, error)
	Login(email string) (domain.User, error)
	ListUsers() ([]domain.User, error)
	CreateCandidate(name, email string) (domain.Candidate, error)
	ListCandidates() ([]domain.Candidate, error)
}

type DirectoryService struct {
	users      repositories.IUserRepository
	candidates repositories.ICandidateRepository
	sanitizer  *sanitize.Sanitizer
}

func NewDirectoryService(users repositories.IUserRepository,
	candidates repositories.ICandidateRepository, sanitizer *sanitize.Sanitizer) *DirectoryService {
	return &DirectoryService{users: users, candidates: candidates, sanitizer: sanitizer}
}

func (s *DirectoryService) Signup(name, email string) (domain.User, error) {
	return s.users.CreateUser(s.sanitizer.Strip(name), s.sanitizer.Strip(email))
}

func (s *DirectoryService) Login(email string) (domain.User, error) {
	user, err := s.users.GetUserByEmail(s.sanitizer.Strip(email))
	if err != nil {
		return domain.User{}, errors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *DirectoryService) ListUsers() ([]domain.User, error) {
	return s.users.ListUsers()
}

func (s *DirectoryService) CreateCandidate(name, email string) (domain.Candidate, error) {
	return s.candidates.CreateCandidate(s.sanitizer.Strip(name), s.sanitizer.Strip(email))
}

func (s *DirectoryService) ListCandidates() ([]domain.Candidate, error) {
	return s.candidates.ListCandidates()
}
