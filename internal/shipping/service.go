package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborgoods/storefront-backend/pkg/db/models"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
	"github.com/harborgoods/storefront-backend/pkg/pagination"
)

// AddressRequest carries the writable fields of a shipping address.
type AddressRequest struct {
	ReceiverName string  `json:"receiver_name" validate:"required"`
	Phone        *string `json:"phone,omitempty"`
	Mobile       string  `json:"mobile" validate:"required"`
	Province     string  `json:"province" validate:"required"`
	City         string  `json:"city" validate:"required"`
	District     *string `json:"district,omitempty"`
	Address      string  `json:"address" validate:"required"`
	Zip          *string `json:"zip,omitempty"`
}

// Service defines the address behavior needed by the controllers.
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, req AddressRequest) (*models.ShippingAddress, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*models.ShippingAddress, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[models.ShippingAddress], error)
	Update(ctx context.Context, userID, addressID uuid.UUID, req AddressRequest) (*models.ShippingAddress, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}

type addressStore interface {
	Create(ctx context.Context, address *models.ShippingAddress) error
	FindByID(ctx context.Context, userID, addressID uuid.UUID) (*models.ShippingAddress, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.ShippingAddress, int64, error)
	Update(ctx context.Context, address *models.ShippingAddress) error
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}

type service struct {
	store addressStore
}

// NewService constructs an address service with the provided store.
func NewService(store addressStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("address store is required")
	}
	return &service{store: store}, nil
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, req AddressRequest) (*models.ShippingAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not resolved")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	address := &models.ShippingAddress{
		ID:           uuid.New(),
		UserID:       userID,
		ReceiverName: strings.TrimSpace(req.ReceiverName),
		Phone:        req.Phone,
		Mobile:       strings.TrimSpace(req.Mobile),
		Province:     strings.TrimSpace(req.Province),
		City:         strings.TrimSpace(req.City),
		District:     req.District,
		Address:      strings.TrimSpace(req.Address),
		Zip:          req.Zip,
	}
	if err := s.store.Create(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	return address, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*models.ShippingAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not resolved")
	}
	address, err := s.store.FindByID(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup address")
	}
	return address, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[models.ShippingAddress], error) {
	if userID == uuid.Nil {
		return pagination.Page[models.ShippingAddress]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not resolved")
	}
	params = params.Normalize()
	rows, total, err := s.store.List(ctx, userID, params)
	if err != nil {
		return pagination.Page[models.ShippingAddress]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	return pagination.NewPage(rows, params, total), nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, req AddressRequest) (*models.ShippingAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not resolved")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	address := &models.ShippingAddress{
		ID:           addressID,
		UserID:       userID,
		ReceiverName: strings.TrimSpace(req.ReceiverName),
		Phone:        req.Phone,
		Mobile:       strings.TrimSpace(req.Mobile),
		Province:     strings.TrimSpace(req.Province),
		City:         strings.TrimSpace(req.City),
		District:     req.District,
		Address:      strings.TrimSpace(req.Address),
		Zip:          req.Zip,
	}
	if err := s.store.Update(ctx, address); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update address")
	}
	return address, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user not resolved")
	}
	if err := s.store.Delete(ctx, userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	return nil
}

func validate(req AddressRequest) error {
	switch {
	case strings.TrimSpace(req.ReceiverName) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "receiver name is required")
	case strings.TrimSpace(req.Mobile) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "mobile is required")
	case strings.TrimSpace(req.Province) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "province is required")
	case strings.TrimSpace(req.City) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	case strings.TrimSpace(req.Address) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
	return nil
}
