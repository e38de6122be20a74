package handler

import (
	"net/http"

	"github.com/FreakyLetsFail/uni-swipe/internal/service"
	"go.uber.org/zap"
)

// CatalogHandler serves subjects and universities
type CatalogHandler struct {
	catalogService *service.CatalogService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, maxUploadMB int64, logger *zap.Logger) *CatalogHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	return &CatalogHandler{
		catalogService: catalogService,
		maxUploadBytes: maxUploadMB << 20,
		logger:         logger,
	}
}

// ListSubjects godoc
// @Summary List subjects
// @Description All catalog subjects ordered by name
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.SubjectDTO
// @Failure 500 {object} domain.APIError
// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.catalogService.ListSubjects(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to list subjects")
		return
	}
	respondJSON(w, http.StatusOK, subjects)
}

// ListUniversities godoc
// @Summary List universities
// @Description All universities with their subject offerings
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.UniversityDTO
// @Failure 500 {object} domain.APIError
// @Router /universities [get]
func (h *CatalogHandler) ListUniversities(w http.ResponseWriter, r *http.Request) {
	universities, err := h.catalogService.ListUniversities(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to list universities")
		return
	}
	respondJSON(w, http.StatusOK, universities)
}

// GetUniversity godoc
// @Summary Get university
// @Tags Catalog
// @Produce json
// @Param id path int true "University ID"
// @Success 200 {object} domain.UniversityDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /universities/{id} [get]
func (h *CatalogHandler) GetUniversity(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid university ID")
		return
	}

	university, err := h.catalogService.GetUniversity(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to get university")
		return
	}
	respondJSON(w, http.StatusOK, university)
}

// UploadImage godoc
// @Summary Upload a university image
// @Description Stores the image and uses it as the university's card image
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "University ID"
// @Param file formData file true "Image (jpeg, png, webp, gif)"
// @Success 200 {object} domain.ImageUploadResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /admin/universities/{id}/image [post]
func (h *CatalogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid university ID")
		return
	}

	// Leave room for the multipart envelope
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	resp, err := h.catalogService.UploadUniversityImage(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondServiceError(w, h.logger, r, err, "Failed to upload image")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
