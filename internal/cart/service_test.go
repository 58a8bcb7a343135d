package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	"github.com/harborgoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
	"github.com/harborgoods/storefront-backend/pkg/logger"
)

type stubStore struct {
	lines []*models.CartLine

	updateErr map[uuid.UUID]error

	findCalls   int
	sumCalls    int
	deleteCalls int
}

func (s *stubStore) FindLine(ctx context.Context, userID, productID uuid.UUID) (*models.CartLine, error) {
	s.findCalls++
	for _, line := range s.lines {
		if line.UserID == userID && line.ProductID == productID {
			copied := *line
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStore) FindAllLines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var rows []models.CartLine
	for _, line := range s.lines {
		if line.UserID == userID {
			rows = append(rows, *line)
		}
	}
	return rows, nil
}

func (s *stubStore) Insert(ctx context.Context, line *models.CartLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	copied := *line
	s.lines = append(s.lines, &copied)
	return nil
}

func (s *stubStore) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	if err := s.updateErr[lineID]; err != nil {
		return err
	}
	for _, line := range s.lines {
		if line.ID == lineID {
			line.Quantity = quantity
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubStore) DeleteLines(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	s.deleteCalls++
	keep := s.lines[:0]
	for _, line := range s.lines {
		matched := false
		if line.UserID == userID {
			for _, id := range productIDs {
				if line.ProductID == id {
					matched = true
					break
				}
			}
		}
		if !matched {
			keep = append(keep, line)
		}
	}
	s.lines = keep
	return nil
}

func (s *stubStore) SetSelection(ctx context.Context, userID uuid.UUID, productID *uuid.UUID, checked bool) error {
	for _, line := range s.lines {
		if line.UserID != userID {
			continue
		}
		if productID != nil && line.ProductID != *productID {
			continue
		}
		line.Checked = checked
	}
	return nil
}

func (s *stubStore) CountUnselected(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, line := range s.lines {
		if line.UserID == userID && !line.Checked {
			count++
		}
	}
	return count, nil
}

func (s *stubStore) SumQuantity(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.sumCalls++
	var sum int64
	for _, line := range s.lines {
		if line.UserID == userID {
			sum += int64(line.Quantity)
		}
	}
	return sum, nil
}

func (s *stubStore) quantityFor(userID, productID uuid.UUID) (int, bool) {
	for _, line := range s.lines {
		if line.UserID == userID && line.ProductID == productID {
			return line.Quantity, true
		}
	}
	return 0, false
}

type stubCatalog map[uuid.UUID]*models.Product

func (c stubCatalog) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := c[id]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, store *stubStore, catalog stubCatalog) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
	svc, err := NewService(store, catalog, logg, nil, "http://img.test.local/")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func newProduct(price string, stock int) *models.Product {
	return &models.Product{
		ID:     uuid.New(),
		Name:   "Widget",
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Status: enums.ProductStatusOnSale,
	}
}

func TestServiceAddInsertsThenIncrements(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	product := newProduct("19.99", 100)
	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{product.ID: product})

	view, err := svc.Add(context.Background(), userID, product.ID, 2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected view after first add: %+v", view.Lines)
	}
	if !view.Lines[0].Selected {
		t.Fatal("new lines must default to selected")
	}

	view, err = svc.Add(context.Background(), userID, product.ID, 3)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("increment must not create a second line, got %d", len(view.Lines))
	}
	if view.Lines[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", view.Lines[0].Quantity)
	}
	if want := decimal.RequireFromString("99.95"); !view.CartTotal.Equal(want) {
		t.Fatalf("cart total = %s, want %s", view.CartTotal, want)
	}
}

func TestServiceAddRequiresIdentifiers(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{})

	_, err := svc.Add(context.Background(), uuid.Nil, uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.findCalls != 0 {
		t.Fatal("validation failures must not touch storage")
	}
}

func TestServiceUpdateMissingLineIsNotFound(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{})

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), 4)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceUpdateReplacesQuantity(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	product := newProduct("5.00", 50)
	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{product.ID: product})

	if _, err := svc.Add(context.Background(), userID, product.ID, 9); err != nil {
		t.Fatalf("Add: %v", err)
	}
	view, err := svc.Update(context.Background(), userID, product.ID, 2)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if view.Lines[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want replaced 2", view.Lines[0].Quantity)
	}
}

func TestServiceAggregateClampsAndWritesBack(t *testing.T) {
	t.Parallel()

	// stock 5, existing desired 3, add 4 more: persisted desire becomes 7,
	// the view clamps to 5 and the write-back lowers the stored row to 5.
	userID := uuid.New()
	product := newProduct("10.00", 5)
	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{product.ID: product})

	if _, err := svc.Add(context.Background(), userID, product.ID, 3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	view, err := svc.Add(context.Background(), userID, product.ID, 4)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	line := view.Lines[0]
	if line.Quantity != 5 {
		t.Fatalf("purchasable quantity = %d, want 5", line.Quantity)
	}
	if line.LimitState != enums.CartLimitExceedsStock {
		t.Fatalf("limit state = %s", line.LimitState)
	}
	if want := decimal.RequireFromString("50.00"); !view.CartTotal.Equal(want) {
		t.Fatalf("cart total = %s, want %s", view.CartTotal, want)
	}

	persisted, ok := store.quantityFor(userID, product.ID)
	if !ok || persisted != 5 {
		t.Fatalf("persisted quantity = %d, want self-healed 5", persisted)
	}
}

func TestServiceAggregateSurvivesWriteBackFailure(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	product := newProduct("10.00", 5)
	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{product.ID: product})

	if err := store.Insert(context.Background(), &models.CartLine{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  9,
		Checked:   true,
	}); err != nil {
		t.Fatalf("seed line: %v", err)
	}

	lineID := store.lines[0].ID
	store.updateErr = map[uuid.UUID]error{lineID: gorm.ErrInvalidTransaction}

	view, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List must not fail when the correction write fails: %v", err)
	}
	if view.Lines[0].Quantity != 5 {
		t.Fatalf("view quantity = %d, want clamped 5", view.Lines[0].Quantity)
	}

	persisted, _ := store.quantityFor(userID, product.ID)
	if persisted != 9 {
		t.Fatalf("persisted quantity = %d, want untouched 9", persisted)
	}
}

func TestServiceAggregateCatalogAbsentZeroesLine(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	vanished := uuid.New()
	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{})

	if err := store.Insert(context.Background(), &models.CartLine{
		UserID:    userID,
		ProductID: vanished,
		Quantity:  4,
		Checked:   true,
	}); err != nil {
		t.Fatalf("seed line: %v", err)
	}

	view, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	line := view.Lines[0]
	if line.Quantity != 0 || !line.LineTotal.IsZero() {
		t.Fatalf("vanished product should zero the line, got %+v", line)
	}

	persisted, _ := store.quantityFor(userID, vanished)
	if persisted != 4 {
		t.Fatalf("persisted quantity = %d, want untouched 4", persisted)
	}
}

func TestServiceDeleteValidatesAndRemovesBatch(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	first := newProduct("1.00", 10)
	second := newProduct("2.00", 10)
	third := newProduct("3.00", 10)
	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{first.ID: first, second.ID: second, third.ID: third})

	for _, product := range []*models.Product{first, second, third} {
		if _, err := svc.Add(context.Background(), userID, product.ID, 1); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	_, err := svc.Delete(context.Background(), userID, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.deleteCalls != 0 {
		t.Fatal("empty id set must perform zero storage calls")
	}

	view, err := svc.Delete(context.Background(), userID, []uuid.UUID{first.ID, third.ID})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].ProductID != second.ID {
		t.Fatalf("expected only the second product to remain, got %+v", view.Lines)
	}
}

func TestServiceSelectionAndAllSelected(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	first := newProduct("1.50", 10)
	second := newProduct("2.50", 10)
	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{first.ID: first, second.ID: second})

	if _, err := svc.Add(context.Background(), userID, first.ID, 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(context.Background(), userID, second.ID, 1); err != nil {
		t.Fatalf("Add: %v", err)
	}

	view, err := svc.SelectOrUnselect(context.Background(), userID, &first.ID, false)
	if err != nil {
		t.Fatalf("SelectOrUnselect: %v", err)
	}
	if view.AllSelected {
		t.Fatal("allSelected must be false with one unchecked line")
	}
	if want := decimal.RequireFromString("2.50"); !view.CartTotal.Equal(want) {
		t.Fatalf("cart total = %s, want selected-only %s", view.CartTotal, want)
	}

	view, err = svc.SelectOrUnselect(context.Background(), userID, nil, true)
	if err != nil {
		t.Fatalf("SelectOrUnselect all: %v", err)
	}
	if !view.AllSelected {
		t.Fatal("allSelected must be true after selecting all")
	}
	if want := decimal.RequireFromString("5.50"); !view.CartTotal.Equal(want) {
		t.Fatalf("cart total = %s, want %s", view.CartTotal, want)
	}
}

func TestServiceListEmptyCartAllSelected(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{})

	view, err := svc.List(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Lines))
	}
	if !view.AllSelected {
		t.Fatal("zero lines means no unselected line exists")
	}
	if !view.CartTotal.IsZero() {
		t.Fatalf("cart total = %s, want 0", view.CartTotal)
	}
}

func TestServiceListIdempotentTotals(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	product := newProduct("19.99", 100)
	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{product.ID: product})

	if _, err := svc.Add(context.Background(), userID, product.ID, 3); err != nil {
		t.Fatalf("Add: %v", err)
	}

	first, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	second, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if first.CartTotal.String() != second.CartTotal.String() {
		t.Fatalf("totals differ across idempotent reads: %s vs %s", first.CartTotal, second.CartTotal)
	}
	if first.CartTotal.String() != "59.97" {
		t.Fatalf("cart total = %s, want exactly 59.97", first.CartTotal)
	}
}

func TestServiceCountNilUserSkipsStorage(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{})

	count, err := svc.Count(context.Background(), uuid.Nil)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
	if store.sumCalls != 0 {
		t.Fatal("anonymous count must not touch storage")
	}
}

func TestServiceCountSumsDesiredQuantity(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	first := newProduct("1.00", 10)
	second := newProduct("1.00", 10)
	store := &stubStore{}
	svc := newTestService(t, store, stubCatalog{first.ID: first, second.ID: second})

	if _, err := svc.Add(context.Background(), userID, first.ID, 5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(context.Background(), userID, second.ID, 3); err != nil {
		t.Fatalf("Add: %v", err)
	}

	count, err := svc.Count(context.Background(), userID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 8 {
		t.Fatalf("count = %d, want 8", count)
	}
}
