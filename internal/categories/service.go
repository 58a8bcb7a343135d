package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
)

type categoryStore interface {
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	FindChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Category, error)
	ChildIDs(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error)
}

// Service exposes category tree management and traversal.
type Service interface {
	Add(ctx context.Context, name string, parentID *uuid.UUID) (*models.Category, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	Children(ctx context.Context, parentID *uuid.UUID) ([]models.Category, error)
	DeepChildren(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

type service struct {
	repo categoryStore
}

// NewService builds a category service backed by the provided store.
func NewService(repo categoryStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

// Add creates a category under the given parent (nil parent = root).
func (s *service) Add(ctx context.Context, name string, parentID *uuid.UUID) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if parentID != nil {
		if _, err := s.repo.FindByID(ctx, *parentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parent category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent category")
		}
	}

	created, err := s.repo.Create(ctx, &models.Category{
		ParentID: parentID,
		Name:     name,
		Status:   true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}

// Rename updates a category's display name.
func (s *service) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename category")
	}
	return nil
}

// Children returns the direct children of a node (nil = roots).
func (s *service) Children(ctx context.Context, parentID *uuid.UUID) ([]models.Category, error) {
	rows, err := s.repo.FindChildren(ctx, parentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

// DeepChildren returns the id of the category plus every descendant,
// walking the parent-pointer tree with an explicit worklist. A node seen
// twice means the parent graph has a cycle, which is corrupt configuration
// and fails hard instead of looping.
func (s *service) DeepChildren(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	visited := map[uuid.UUID]struct{}{id: {}}
	result := []uuid.UUID{id}
	stack := []uuid.UUID{id}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := s.repo.ChildIDs(ctx, current)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load child categories")
		}
		for _, child := range children {
			if _, seen := visited[child]; seen {
				return nil, pkgerrors.New(pkgerrors.CodeInternal, "category tree contains a cycle")
			}
			visited[child] = struct{}{}
			result = append(result, child)
			stack = append(stack, child)
		}
	}

	return result, nil
}
