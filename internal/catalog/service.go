package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	"github.com/harborgoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
	"github.com/harborgoods/storefront-backend/pkg/pagination"
)

type productStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	ListPortal(ctx context.Context, query PortalQuery) ([]models.Product, int64, error)
}

// Service exposes catalog read paths plus minimal admin management.
type Service interface {
	Detail(ctx context.Context, productID uuid.UUID) (*ProductDetail, error)
	List(ctx context.Context, params ListParams) (*pagination.Page[ProductSummary], error)
	Save(ctx context.Context, input SaveInput) (*ProductDetail, error)
	SetStatus(ctx context.Context, productID uuid.UUID, status enums.ProductStatus) error
}

type service struct {
	repo      productStore
	imageHost string
}

// NewService builds a catalog service backed by the provided store.
func NewService(repo productStore, imageHost string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, imageHost: imageHost}, nil
}

// ProductDetail is the full portal representation of a product.
type ProductDetail struct {
	ID         uuid.UUID           `json:"id"`
	CategoryID uuid.UUID           `json:"category_id"`
	Name       string              `json:"name"`
	Subtitle   *string             `json:"subtitle,omitempty"`
	MainImage  *string             `json:"main_image,omitempty"`
	SubImages  []string            `json:"sub_images"`
	Detail     *string             `json:"detail,omitempty"`
	Price      decimal.Decimal     `json:"price"`
	Stock      int                 `json:"stock"`
	Status     enums.ProductStatus `json:"status"`
	ImageHost  string              `json:"image_host"`
	CreatedAt  time.Time           `json:"created_at"`
}

// ProductSummary is the condensed listing representation.
type ProductSummary struct {
	ID         uuid.UUID       `json:"id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Subtitle   *string         `json:"subtitle,omitempty"`
	MainImage  *string         `json:"main_image,omitempty"`
	Price      decimal.Decimal `json:"price"`
	ImageHost  string          `json:"image_host"`
}

// ListParams configures the public product listing.
type ListParams struct {
	Keyword     string
	CategoryIDs []uuid.UUID
	SortByPrice string
	Page        pagination.Params
}

// SaveInput is the admin create/update payload.
type SaveInput struct {
	ID         *uuid.UUID
	CategoryID uuid.UUID
	Name       string
	Subtitle   *string
	MainImage  *string
	SubImages  []string
	Detail     *string
	Price      decimal.Decimal
	Stock      int
	Status     enums.ProductStatus
}

// Detail returns a product when it exists and is on sale.
func (s *service) Detail(ctx context.Context, productID uuid.UUID) (*ProductDetail, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status != enums.ProductStatusOnSale {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is off sale or removed")
	}

	detail := s.toDetail(product)
	return &detail, nil
}

// List returns the paged public listing.
func (s *service) List(ctx context.Context, params ListParams) (*pagination.Page[ProductSummary], error) {
	switch params.SortByPrice {
	case "", "asc", "desc":
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sort must be asc or desc")
	}

	rows, total, err := s.repo.ListPortal(ctx, PortalQuery{
		Keyword:     params.Keyword,
		CategoryIDs: params.CategoryIDs,
		SortByPrice: params.SortByPrice,
		Params:      params.Page,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductSummary, len(rows))
	for i, row := range rows {
		items[i] = ProductSummary{
			ID:         row.ID,
			CategoryID: row.CategoryID,
			Name:       row.Name,
			Subtitle:   row.Subtitle,
			MainImage:  row.MainImage,
			Price:      row.Price,
			ImageHost:  s.imageHost,
		}
	}

	page := pagination.NewPage(items, params.Page, total)
	return &page, nil
}

// Save creates or updates a product from the admin surface.
func (s *service) Save(ctx context.Context, input SaveInput) (*ProductDetail, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	status := input.Status
	if status == "" {
		status = enums.ProductStatusOnSale
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}

	if input.ID != nil {
		product, err := s.repo.FindByID(ctx, *input.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		product.CategoryID = input.CategoryID
		product.Name = input.Name
		product.Subtitle = input.Subtitle
		product.MainImage = input.MainImage
		product.SubImages = input.SubImages
		product.Detail = input.Detail
		product.Price = input.Price
		product.Stock = input.Stock
		product.Status = status

		saved, err := s.repo.Update(ctx, product)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		detail := s.toDetail(saved)
		return &detail, nil
	}

	created, err := s.repo.Create(ctx, &models.Product{
		CategoryID: input.CategoryID,
		Name:       input.Name,
		Subtitle:   input.Subtitle,
		MainImage:  input.MainImage,
		SubImages:  input.SubImages,
		Detail:     input.Detail,
		Price:      input.Price,
		Stock:      input.Stock,
		Status:     status,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	detail := s.toDetail(created)
	return &detail, nil
}

// SetStatus flips a product's lifecycle status.
func (s *service) SetStatus(ctx context.Context, productID uuid.UUID, status enums.ProductStatus) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	product.Status = status
	if _, err := s.repo.Update(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product status")
	}
	return nil
}

func (s *service) toDetail(product *models.Product) ProductDetail {
	return ProductDetail{
		ID:         product.ID,
		CategoryID: product.CategoryID,
		Name:       product.Name,
		Subtitle:   product.Subtitle,
		MainImage:  product.MainImage,
		SubImages:  product.SubImages,
		Detail:     product.Detail,
		Price:      product.Price,
		Stock:      product.Stock,
		Status:     product.Status,
		ImageHost:  s.imageHost,
		CreatedAt:  product.CreatedAt,
	}
}
