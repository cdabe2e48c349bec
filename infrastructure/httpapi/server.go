// Package httpapi exposes the directory, history, and notification
// endpoints over HTTP. Validation happens here, at the boundary:
// malformed requests are rejected before anything reaches the core.
package httpapi

import (
	"log/slog"

	"collab-notes/domain"
	"collab-notes/errors"
	"collab-notes/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

var validate = validator.New()

type Server struct {
	log       *slog.Logger
	directory services.IDirectoryService
	notes     services.INotesService
}

func NewServer(log *slog.Logger, directory services.IDirectoryService, notes services.INotesService) *Server {
	return &Server{log: log, directory: directory, notes: notes}
}

func (s *Server) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/signup", s.signup)
	api.Post("/login", s.login)
	api.Get("/users", s.listUsers)
	api.Get("/candidates", s.listCandidates)
	api.Post("/candidates", s.createCandidate)
	api.Get("/messages", s.listMessages)
	api.Get("/notifications", s.listNotifications)
	api.Get("/notifications/unread", s.unreadCount)
	api.Post("/notifications/read", s.markAllRead)
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type candidateResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type messageResponse struct {
	ID          string `json:"id"`
	CandidateID string `json:"candidateId"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	Text        string `json:"text"`
}

type notificationResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	CandidateID string `json:"candidateId"`
	MessageID   string `json:"messageId"`
	Preview     string `json:"preview"`
	CreatedAt   int64  `json:"createdAt"` // unix milliseconds
	Read        bool   `json:"read"`
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// signup creates a user. The password field is required by the form but
// not stored; login is an email lookup only (hardening out of scope).
func (s *Server) signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing fields"})
	}
	user, err := s.directory.Signup(req.Name, req.Email)
	if err == errors.ErrEmailExists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "email exists"})
	}
	if err != nil {
		return s.serverError(c, err)
	}
	return c.JSON(fiber.Map{"user": toUserResponse(user)})
}

type loginRequest struct {
	Email string `json:"email" validate:"required"`
}

func (s *Server) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing fields"})
	}
	user, err := s.directory.Login(req.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}
	return c.JSON(fiber.Map{"user": toUserResponse(user)})
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	users, err := s.directory.ListUsers()
	if err != nil {
		return s.serverError(c, err)
	}
	return c.JSON(fiber.Map{"users": lo.Map(users, func(u domain.User, _ int) userResponse {
		return toUserResponse(u)
	})})
}

func (s *Server) listCandidates(c *fiber.Ctx) error {
	candidates, err := s.directory.ListCandidates()
	if err != nil {
		return s.serverError(c, err)
	}
	return c.JSON(fiber.Map{"candidates": lo.Map(candidates, func(cd domain.Candidate, _ int) candidateResponse {
		return candidateResponse(cd)
	})})
}

type createCandidateRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

func (s *Server) createCandidate(c *fiber.Ctx) error {
	var req createCandidateRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing fields"})
	}
	candidate, err := s.directory.CreateCandidate(req.Name, req.Email)
	if err != nil {
		return s.serverError(c, err)
	}
	return c.JSON(fiber.Map{"candidate": candidateResponse(candidate)})
}

// listMessages returns a candidate's thread oldest-first, the backlog a
// client loads before joining the room.
func (s *Server) listMessages(c *fiber.Ctx) error {
	candidateID := c.Query("candidateId")
	if candidateID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "candidateId required"})
	}
	messages, err := s.notes.History(candidateID)
	if err != nil {
		return s.serverError(c, err)
	}
	return c.JSON(fiber.Map{"messages": lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	})})
}

func (s *Server) listNotifications(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId required"})
	}
	notifications, err := s.notes.Notifications(c.Context(), userID)
	if err != nil {
		return s.serverError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": lo.Map(notifications, func(n domain.Notification, _ int) notificationResponse {
		return toNotificationResponse(n)
	})})
}

func (s *Server) unreadCount(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId required"})
	}
	count, err := s.notes.UnreadCount(c.Context(), userID)
	if err != nil {
		return s.serverError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

type markAllReadRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (s *Server) markAllRead(c *fiber.Ctx) error {
	var req markAllReadRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId required"})
	}
	if err := s.notes.MarkAllRead(c.Context(), req.UserID); err != nil {
		return s.serverError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) serverError(c *fiber.Ctx, err error) error {
	s.log.Error("Request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "server error"})
}

func toUserResponse(u domain.User) userResponse {
	return userResponse(u)
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:          m.ID.String(),
		CandidateID: m.CandidateID,
		UserID:      m.UserID,
		UserName:    m.UserName,
		Text:        m.Text,
	}
}

func toNotificationResponse(n domain.Notification) notificationResponse {
	return notificationResponse{
		ID:          n.ID.String(),
		UserID:      n.UserID,
		CandidateID: n.CandidateID,
		MessageID:   n.MessageID.String(),
		Preview:     n.Preview,
		CreatedAt:   n.CreatedAt.UnixMilli(),
		Read:        n.Read,
	}
}
