package item

import (
	"context"
	"fmt"

	"stockgrid/internal/core/apperror"
	appctx "stockgrid/internal/core/context"
	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/audit"
	"stockgrid/pkg/logger"
)

// Service provides business logic for the Item catalog.
type Service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService creates a new Item service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{repo: repo, audit: recorder}
}

// Create validates and persists a new item. Codes are unique.
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByCode(ctx, it.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("item", "code", it.Code)
	} else if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check code uniqueness: %w", err)
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	s.record(ctx, audit.ActionCreate, it)
	logger.Info(ctx, "item created", "id", it.ID, "code", it.Code)
	return nil
}

// Update persists changes to an existing item.
func (s *Service) Update(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	s.record(ctx, audit.ActionUpdate, it)
	return nil
}

// GetByID retrieves a single item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// GetByCode retrieves an item by its reference code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Item, error) {
	return s.repo.GetByCode(ctx, code)
}

// List retrieves items with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Item, error) {
	return s.repo.List(ctx, filter)
}

// Archive marks an item as archived. Archived items reject new movements
// but their history and stock levels remain intact.
func (s *Service) Archive(ctx context.Context, itemID id.ID) error {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if it.Archived {
		return nil
	}

	if err := s.repo.SetArchived(ctx, itemID, true); err != nil {
		return fmt.Errorf("archive item: %w", err)
	}

	s.record(ctx, audit.ActionArchive, it)
	logger.Info(ctx, "item archived", "id", itemID)
	return nil
}

// Restore clears the archived flag.
func (s *Service) Restore(ctx context.Context, itemID id.ID) error {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if !it.Archived {
		return nil
	}

	if err := s.repo.SetArchived(ctx, itemID, false); err != nil {
		return fmt.Errorf("restore item: %w", err)
	}

	s.record(ctx, audit.ActionRestore, it)
	return nil
}

func (s *Service) record(ctx context.Context, action audit.Action, it *Item) {
	err := s.audit.Record(ctx, audit.Entry{
		EntityType: "item",
		EntityID:   it.ID,
		Action:     action,
		ActorID:    appctx.GetActorID(ctx),
		Changes:    it,
	})
	if err != nil {
		logger.Warn(ctx, "audit record failed", "entity", "item", "id", it.ID, "error", err)
	}
}
