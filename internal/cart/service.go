package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
	"github.com/harborgoods/storefront-backend/pkg/logger"
	"github.com/harborgoods/storefront-backend/pkg/metrics"
)

type cartStore interface {
	FindLine(ctx context.Context, userID, productID uuid.UUID) (*models.CartLine, error)
	FindAllLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	Insert(ctx context.Context, line *models.CartLine) error
	UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLines(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
	SetSelection(ctx context.Context, userID uuid.UUID, productID *uuid.UUID, checked bool) error
	CountUnselected(ctx context.Context, userID uuid.UUID) (int64, error)
	SumQuantity(ctx context.Context, userID uuid.UUID) (int64, error)
}

type catalogLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart reconciliation and mutation operations. Every
// mutating call returns the freshly reconciled cart so callers never see
// stale state.
type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID, count int) (*CartView, error)
	Update(ctx context.Context, userID, productID uuid.UUID, count int) (*CartView, error)
	Delete(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*CartView, error)
	List(ctx context.Context, userID uuid.UUID) (*CartView, error)
	SelectOrUnselect(ctx context.Context, userID uuid.UUID, productID *uuid.UUID, checked bool) (*CartView, error)
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo      cartStore
	catalog   catalogLookup
	logg      *logger.Logger
	metrics   *metrics.CartMetrics
	imageHost string
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo cartStore, catalog catalogLookup, logg *logger.Logger, cartMetrics *metrics.CartMetrics, imageHost string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		catalog:   catalog,
		logg:      logg,
		metrics:   cartMetrics,
		imageHost: imageHost,
	}, nil
}

// Add inserts a default-checked line for a new product or increments the
// desired quantity of an existing one. Clamping to stock happens at read
// time via reconciliation, not here.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, count int) (*CartView, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}

	line, err := s.repo.FindLine(ctx, userID, productID)
	switch {
	case err == nil:
		if err := s.repo.UpdateQuantity(ctx, line.ID, line.Quantity+count); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart line")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		insert := &models.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  count,
			Checked:   true,
		}
		if err := s.repo.Insert(ctx, insert); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart line")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	return s.aggregate(ctx, userID)
}

// Update replaces the desired quantity of an existing line. A missing line
// is a not-found failure, never a silent no-op.
func (s *service) Update(ctx context.Context, userID, productID uuid.UUID, count int) (*CartView, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}

	line, err := s.repo.FindLine(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}

	if err := s.repo.UpdateQuantity(ctx, line.ID, count); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}

	return s.aggregate(ctx, userID)
}

// Delete removes the user's lines for the given products in one batch.
func (s *service) Delete(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(productIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one product id is required")
	}

	if err := s.repo.DeleteLines(ctx, userID, productIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart lines")
	}

	return s.aggregate(ctx, userID)
}

// List returns the reconciled cart without mutating desired quantities
// beyond self-healing corrections.
func (s *service) List(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.aggregate(ctx, userID)
}

// SelectOrUnselect flips the checked flag for one product, or for the whole
// cart when productID is nil.
func (s *service) SelectOrUnselect(ctx context.Context, userID uuid.UUID, productID *uuid.UUID, checked bool) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if productID != nil && *productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if err := s.repo.SetSelection(ctx, userID, productID, checked); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart selection")
	}

	return s.aggregate(ctx, userID)
}

// Count returns the sum of desired quantities across the user's lines. An
// absent user is an anonymous session: zero, without touching storage.
func (s *service) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, nil
	}

	sum, err := s.repo.SumQuantity(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum cart quantities")
	}
	return sum, nil
}

// aggregate folds the user's lines into a CartView: each line reconciled
// against its live catalog snapshot, selected totals summed with exact
// decimal arithmetic, allSelected answered by the store itself.
func (s *service) aggregate(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	rows, err := s.repo.FindAllLines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart lines")
	}

	lines := make([]ReconciledLine, 0, len(rows))
	total := decimal.Zero
	var healErr error

	for _, row := range rows {
		snapshot, err := s.catalog.FindByID(ctx, row.ProductID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog snapshot")
			}
			snapshot = nil
		}

		line, correct := reconcileLine(row, snapshot)
		if correct {
			s.metrics.IncCorrection("stock_clamp")
			if err := s.repo.UpdateQuantity(ctx, row.ID, line.Quantity); err != nil {
				s.metrics.IncWriteBackFailure()
				healErr = multierr.Append(healErr, fmt.Errorf("line %s: %w", row.ID, err))
			}
		}

		if line.Selected {
			total = total.Add(line.LineTotal)
		}
		lines = append(lines, line)
	}

	// The view already carries the clamped values; a failed write-back only
	// means a future read rediscovers the same correction.
	if healErr != nil {
		s.logg.Error(ctx, "cart self-heal write-back failed", healErr)
	}

	unselected, err := s.repo.CountUnselected(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unselected cart lines")
	}

	return &CartView{
		Lines:       lines,
		CartTotal:   total,
		AllSelected: unselected == 0,
		ImageHost:   s.imageHost,
	}, nil
}
