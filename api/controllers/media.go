package controllers

import (
	"net/http"

	"github.com/harborgoods/storefront-backend/api/responses"
	mediasvc "github.com/harborgoods/storefront-backend/internal/media"
	"github.com/harborgoods/storefront-backend/pkg/config"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
	"github.com/harborgoods/storefront-backend/pkg/logger"
)

const mediaFormField = "file"

// MediaUpload accepts a multipart image and stores it in the object store.
func MediaUpload(svc mediasvc.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		if uploadCfg.MaxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, uploadCfg.MaxBytes)
		}
		file, header, err := r.FormFile(mediaFormField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file field"))
			return
		}
		defer file.Close()

		result, err := svc.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
