package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
)

type stubCategoryStore struct {
	nodes    map[uuid.UUID]*models.Category
	children map[uuid.UUID][]uuid.UUID
}

func newStubCategoryStore() *stubCategoryStore {
	return &stubCategoryStore{
		nodes:    map[uuid.UUID]*models.Category{},
		children: map[uuid.UUID][]uuid.UUID{},
	}
}

func (s *stubCategoryStore) add(parentID *uuid.UUID, name string) *models.Category {
	node := &models.Category{ID: uuid.New(), ParentID: parentID, Name: name, Status: true}
	s.nodes[node.ID] = node
	if parentID != nil {
		s.children[*parentID] = append(s.children[*parentID], node.ID)
	}
	return node
}

func (s *stubCategoryStore) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	category.ID = uuid.New()
	s.nodes[category.ID] = category
	if category.ParentID != nil {
		s.children[*category.ParentID] = append(s.children[*category.ParentID], category.ID)
	}
	return category, nil
}

func (s *stubCategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if node, ok := s.nodes[id]; ok {
		return node, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryStore) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	if node, ok := s.nodes[id]; ok {
		node.Name = name
	}
	return nil
}

func (s *stubCategoryStore) FindChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Category, error) {
	var rows []models.Category
	for _, node := range s.nodes {
		switch {
		case parentID == nil && node.ParentID == nil:
			rows = append(rows, *node)
		case parentID != nil && node.ParentID != nil && *node.ParentID == *parentID:
			rows = append(rows, *node)
		}
	}
	return rows, nil
}

func (s *stubCategoryStore) ChildIDs(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	return s.children[parentID], nil
}

func newTestCategories(t *testing.T, store *stubCategoryStore) Service {
	t.Helper()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceAddValidations(t *testing.T) {
	t.Parallel()

	store := newStubCategoryStore()
	svc := newTestCategories(t, store)

	_, err := svc.Add(context.Background(), "   ", nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := uuid.New()
	_, err = svc.Add(context.Background(), "Electronics", &missing)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceAddAndRename(t *testing.T) {
	t.Parallel()

	store := newStubCategoryStore()
	svc := newTestCategories(t, store)

	root, err := svc.Add(context.Background(), "Electronics", nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if root.ParentID != nil {
		t.Fatal("expected a root category")
	}

	child, err := svc.Add(context.Background(), "Phones", &root.ID)
	if err != nil {
		t.Fatalf("Add child: %v", err)
	}

	if err := svc.Rename(context.Background(), child.ID, "Smartphones"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if store.nodes[child.ID].Name != "Smartphones" {
		t.Fatal("rename not persisted")
	}

	err = svc.Rename(context.Background(), uuid.New(), "Ghost")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceDeepChildrenCollectsSubtree(t *testing.T) {
	t.Parallel()

	store := newStubCategoryStore()
	svc := newTestCategories(t, store)

	root := store.add(nil, "Electronics")
	phones := store.add(&root.ID, "Phones")
	laptops := store.add(&root.ID, "Laptops")
	android := store.add(&phones.ID, "Android")
	store.add(nil, "Furniture") // unrelated root

	got, err := svc.DeepChildren(context.Background(), root.ID)
	if err != nil {
		t.Fatalf("DeepChildren: %v", err)
	}

	want := map[uuid.UUID]struct{}{
		root.ID:    {},
		phones.ID:  {},
		laptops.ID: {},
		android.ID: {},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d ids, want %d", len(got), len(want))
	}
	for _, id := range got {
		if _, ok := want[id]; !ok {
			t.Fatalf("unexpected id %s in subtree", id)
		}
	}
}

func TestServiceDeepChildrenLeafReturnsSelf(t *testing.T) {
	t.Parallel()

	store := newStubCategoryStore()
	svc := newTestCategories(t, store)

	leaf := store.add(nil, "Lonely")
	got, err := svc.DeepChildren(context.Background(), leaf.ID)
	if err != nil {
		t.Fatalf("DeepChildren: %v", err)
	}
	if len(got) != 1 || got[0] != leaf.ID {
		t.Fatalf("got %v, want just the leaf", got)
	}
}

func TestServiceDeepChildrenDetectsCycle(t *testing.T) {
	t.Parallel()

	store := newStubCategoryStore()
	svc := newTestCategories(t, store)

	a := store.add(nil, "A")
	b := store.add(&a.ID, "B")
	// corrupt link: a is also recorded as a child of b
	store.children[b.ID] = append(store.children[b.ID], a.ID)

	_, err := svc.DeepChildren(context.Background(), a.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceDeepChildrenMissingCategory(t *testing.T) {
	t.Parallel()

	store := newStubCategoryStore()
	svc := newTestCategories(t, store)

	_, err := svc.DeepChildren(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}
