package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborgoods/storefront-backend/api/responses"
	"github.com/harborgoods/storefront-backend/api/validators"
	cataloguesvc "github.com/harborgoods/storefront-backend/internal/catalog"
	categoriessvc "github.com/harborgoods/storefront-backend/internal/categories"
	"github.com/harborgoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
	"github.com/harborgoods/storefront-backend/pkg/logger"
)

// ProductList serves the public catalog listing. A category filter expands
// to the whole subtree, so browsing a parent shows its descendants' goods.
func ProductList(svc cataloguesvc.Service, categories categoriessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var categoryIDs []uuid.UUID
		if categoryID != nil {
			if categories != nil {
				categoryIDs, err = categories.DeepChildren(r.Context(), *categoryID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			} else {
				categoryIDs = []uuid.UUID{*categoryID}
			}
		}

		page, err := svc.List(r.Context(), cataloguesvc.ListParams{
			Keyword:     validators.SanitizeString(r.URL.Query().Get("keyword"), 128),
			CategoryIDs: categoryIDs,
			SortByPrice: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sort"))),
			Page:        params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ProductDetail serves a single on-sale product.
func ProductDetail(svc cataloguesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Detail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type saveProductRequest struct {
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Subtitle   *string   `json:"subtitle,omitempty"`
	MainImage  *string   `json:"main_image,omitempty"`
	SubImages  []string  `json:"sub_images,omitempty"`
	Detail     *string   `json:"detail,omitempty"`
	Price      string    `json:"price" validate:"required"`
	Stock      int       `json:"stock" validate:"min=0"`
	Status     string    `json:"status,omitempty"`
}

func (r saveProductRequest) toInput(id *uuid.UUID) (cataloguesvc.SaveInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return cataloguesvc.SaveInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	input := cataloguesvc.SaveInput{
		ID:         id,
		CategoryID: r.CategoryID,
		Name:       r.Name,
		Subtitle:   r.Subtitle,
		MainImage:  r.MainImage,
		SubImages:  r.SubImages,
		Detail:     r.Detail,
		Price:      price,
		Stock:      r.Stock,
	}
	if trimmed := strings.TrimSpace(r.Status); trimmed != "" {
		input.Status = enums.ProductStatus(trimmed)
	}
	return input, nil
}

// ProductCreate is the admin create endpoint.
func ProductCreate(svc cataloguesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload saveProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Save(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// ProductUpdate is the admin update endpoint.
func ProductUpdate(svc cataloguesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload saveProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(&id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Save(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
