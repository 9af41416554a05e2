package site

import (
	"context"
	"fmt"

	"stockgrid/internal/core/apperror"
	appctx "stockgrid/internal/core/context"
	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/audit"
	"stockgrid/pkg/logger"
)

// Service provides business logic for the StorageSite registry.
type Service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService creates a new Site service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{repo: repo, audit: recorder}
}

// Create validates and persists a new site. Codes are unique.
func (s *Service) Create(ctx context.Context, st *Site) error {
	if err := st.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByCode(ctx, st.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("site", "code", st.Code)
	} else if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check code uniqueness: %w", err)
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return fmt.Errorf("create site: %w", err)
	}

	s.record(ctx, audit.ActionCreate, st)
	logger.Info(ctx, "site created", "id", st.ID, "code", st.Code)
	return nil
}

// Update persists changes to an existing site.
func (s *Service) Update(ctx context.Context, st *Site) error {
	if err := st.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return fmt.Errorf("update site: %w", err)
	}

	s.record(ctx, audit.ActionUpdate, st)
	return nil
}

// GetByID retrieves a single site.
func (s *Service) GetByID(ctx context.Context, siteID id.ID) (*Site, error) {
	return s.repo.GetByID(ctx, siteID)
}

// List retrieves sites with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Site, error) {
	return s.repo.List(ctx, filter)
}

// Deactivate marks a site inactive. Existing stock and history stay put;
// recording further history against the site remains possible.
func (s *Service) Deactivate(ctx context.Context, siteID id.ID) error {
	st, err := s.repo.GetByID(ctx, siteID)
	if err != nil {
		return err
	}
	if !st.Active {
		return nil
	}

	if err := s.repo.SetActive(ctx, siteID, false); err != nil {
		return fmt.Errorf("deactivate site: %w", err)
	}

	s.record(ctx, audit.ActionDeactivate, st)
	logger.Info(ctx, "site deactivated", "id", siteID)
	return nil
}

// Activate flips a site back to active.
func (s *Service) Activate(ctx context.Context, siteID id.ID) error {
	st, err := s.repo.GetByID(ctx, siteID)
	if err != nil {
		return err
	}
	if st.Active {
		return nil
	}

	if err := s.repo.SetActive(ctx, siteID, true); err != nil {
		return fmt.Errorf("activate site: %w", err)
	}

	s.record(ctx, audit.ActionActivate, st)
	return nil
}

func (s *Service) record(ctx context.Context, action audit.Action, st *Site) {
	err := s.audit.Record(ctx, audit.Entry{
		EntityType: "site",
		EntityID:   st.ID,
		Action:     action,
		ActorID:    appctx.GetActorID(ctx),
		Changes:    st,
	})
	if err != nil {
		logger.Warn(ctx, "audit record failed", "entity", "site", "id", st.ID, "error", err)
	}
}
