package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
	"github.com/dmitrijs2005/soncatalog/internal/server/cache"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
	"github.com/dmitrijs2005/soncatalog/internal/server/repositories/repomanager"
)

// ContactInput is a public contact form submission.
type ContactInput struct {
	Name    string `json:"name" form:"name"`
	Company string `json:"company" form:"company"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
}

func (in ContactInput) validate() (ContactInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Company = strings.TrimSpace(in.Company)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)

	if utf8.RuneCountInString(in.Name) < 2 {
		return in, fmt.Errorf("%w: name must be at least 2 characters", common.ErrorValidation)
	}
	if utf8.RuneCountInString(in.Message) < 5 {
		return in, fmt.Errorf("%w: message must be at least 5 characters", common.ErrorValidation)
	}
	if in.Email != "" {
		if a, err := mail.ParseAddress(in.Email); err != nil || a.Address != in.Email {
			return in, fmt.Errorf("%w: invalid email", common.ErrorValidation)
		}
	}
	return in, nil
}

type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Coordinator
	logger      logging.Logger

	list *cache.Query[struct{}, []models.ContactMessage]
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager, c *cache.Coordinator, l logging.Logger) *ContactService {
	s := &ContactService{
		db:          db,
		repomanager: m,
		cache:       c,
		logger:      l.With("module", "contact_service"),
	}

	s.list = cache.NewQuery(c, "messages.list",
		cache.Options{Tags: []string{cache.TagContact, cache.PathTag("/admin/messages")}, TTL: cache.Short},
		func(ctx context.Context, _ struct{}) ([]models.ContactMessage, error) {
			return s.repomanager.Messages(s.db).List(ctx)
		})

	return s
}

// Submit stores a message from the public form.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	m, err := s.repomanager.Messages(s.db).Create(ctx, &models.ContactMessage{
		Name:    in.Name,
		Company: optional(in.Company),
		Email:   optional(in.Email),
		Phone:   optional(in.Phone),
		Message: in.Message,
	})
	if err != nil {
		s.logger.Error(ctx, "store contact message failed", "error", err)
		return nil, common.ErrorInternal
	}

	invalidate(ctx, s.cache, s.logger, contactWriteTags...)
	s.logger.Info(ctx, "contact message received", "message_id", m.ID)
	return m, nil
}

// List returns all messages newest first.
func (s *ContactService) List(ctx context.Context) ([]models.ContactMessage, error) {
	items, err := s.list.Get(ctx, struct{}{})
	if err != nil {
		s.logger.Error(ctx, "list messages failed", "error", err)
		return nil, common.ErrorInternal
	}
	return items, nil
}

// MarkHandled flags one message. Returns common.ErrorNotFound for unknown IDs.
func (s *ContactService) MarkHandled(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	n, err := s.repomanager.Messages(s.db).MarkHandled(ctx, id)
	return s.afterSingleWrite(ctx, "mark message handled", n, err)
}

// Delete removes one message. Returns common.ErrorNotFound for unknown IDs.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	n, err := s.repomanager.Messages(s.db).Delete(ctx, id)
	return s.afterSingleWrite(ctx, "delete message", n, err)
}

// BulkMarkHandled flags every listed message and returns how many changed.
// Unknown and malformed IDs are skipped.
func (s *ContactService) BulkMarkHandled(ctx context.Context, ids []string) (int64, error) {
	n, err := s.repomanager.Messages(s.db).MarkHandled(ctx, filterIDs(ids)...)
	return s.afterBulkWrite(ctx, "bulk mark handled", n, err)
}

// BulkDelete removes every listed message and returns how many were deleted.
func (s *ContactService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	n, err := s.repomanager.Messages(s.db).Delete(ctx, filterIDs(ids)...)
	return s.afterBulkWrite(ctx, "bulk delete", n, err)
}

func (s *ContactService) afterSingleWrite(ctx context.Context, op string, n int64, err error) error {
	if _, err := s.afterBulkWrite(ctx, op, n, err); err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (s *ContactService) afterBulkWrite(ctx context.Context, op string, n int64, err error) (int64, error) {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, err
		}
		s.logger.Error(ctx, op+" failed", "error", err)
		return 0, common.ErrorInternal
	}
	if n > 0 {
		invalidate(ctx, s.cache, s.logger, contactWriteTags...)
	}
	return n, nil
}

func filterIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || !validID(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
