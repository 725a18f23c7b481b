package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wilt/internal/client/client"
	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/dmitrijs2005/wilt/internal/logging"
)

// EntryService works on the logged-in user's journal. Every call that
// changes the collection returns it freshly fetched from the server.
type EntryService interface {
	Fetch(ctx context.Context) ([]models.Entry, error)
	Create(ctx context.Context, draft models.EntryDraft) ([]models.Entry, error)
	Get(ctx context.Context, id int64) (*models.Entry, error)
	Update(ctx context.Context, id int64, draft models.EntryDraft) ([]models.Entry, error)
	Delete(ctx context.Context, id int64) ([]models.Entry, error)
}

type entryService struct {
	client  client.Client
	session Session
	logger  logging.Logger
}

func NewEntryService(client client.Client, session Session, logger logging.Logger) EntryService {
	return &entryService{client: client, session: session, logger: logger}
}

// Fetch returns the server's entry list. Without a stored access token it
// returns ErrNotLoggedIn and sends nothing.
func (s *entryService) Fetch(ctx context.Context) ([]models.Entry, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}

	list, err := s.client.ListEntries(ctx)
	if err != nil {
		return nil, s.fail(ctx, "fetch entries", err)
	}
	return list, nil
}

func (s *entryService) Create(ctx context.Context, draft models.EntryDraft) ([]models.Entry, error) {
	if err := models.Validate(draft); err != nil {
		return nil, err
	}
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}

	e, err := s.client.CreateEntry(ctx, draft)
	if err != nil {
		return nil, s.fail(ctx, "create entry", err)
	}
	s.logger.Debug(ctx, "entry created", "id", e.ID)

	return s.Fetch(ctx)
}

func (s *entryService) Get(ctx context.Context, id int64) (*models.Entry, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}

	e, err := s.client.GetEntry(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get entry", err)
	}
	return e, nil
}

func (s *entryService) Update(ctx context.Context, id int64, draft models.EntryDraft) ([]models.Entry, error) {
	if err := models.Validate(draft); err != nil {
		return nil, err
	}
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}

	if _, err := s.client.UpdateEntry(ctx, id, draft); err != nil {
		return nil, s.fail(ctx, "update entry", err)
	}

	return s.Fetch(ctx)
}

func (s *entryService) Delete(ctx context.Context, id int64) ([]models.Entry, error) {
	if err := s.requireSession(ctx); err != nil {
		return nil, err
	}

	if err := s.client.DeleteEntry(ctx, id); err != nil {
		return nil, s.fail(ctx, "delete entry", err)
	}

	return s.Fetch(ctx)
}

func (s *entryService) requireSession(ctx context.Context) error {
	if s.session.AccessToken(ctx) == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// fail wraps err and, when the server rejected the session, drops the
// stored tokens and credentials along with the client's authorization.
func (s *entryService) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		s.client.ClearAuthorization()
		if ferr := s.session.Forget(ctx); ferr != nil {
			s.logger.Error(ctx, "forget session", "error", ferr)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
