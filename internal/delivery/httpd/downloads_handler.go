package httpd

import (
	"io"
	"net/http"
	"strconv"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/pkg/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetDownloads(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Downloads.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if records == nil {
		records = []*models.DownloadRecord{}
	}
	utils.SuccessResponse(w, records)
}

// DownloadFile сохраняет файл бэкенда в хранилище; ?title= подпись в истории
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.Downloads.Download(r.Context(), chi.URLParam(r, "filename"), r.URL.Query().Get("title"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	utils.WriteStatus(w, http.StatusCreated, record)
}

func (h *Handler) GetDownloadContent(w http.ResponseWriter, r *http.Request) {
	body, record, err := h.svc.Downloads.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(record.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(record.Size, 10))
	w.Header().Set("X-Content-SHA256", record.SHA256)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn().Err(err).Str("id", record.ID).Msg("Failed to stream download")
	}
}

func (h *Handler) DeleteDownload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Downloads.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{
		"message": "Download deleted successfully",
	})
}

// GetLibraries: ?search= фильтрует, ?lat=&lon= сортирует по расстоянию
func (h *Handler) GetLibraries(w http.ResponseWriter, r *http.Request) {
	libraries := h.svc.Libraries.All()
	lat, okLat := getFloatQueryParam(r, "lat")
	lon, okLon := getFloatQueryParam(r, "lon")
	if okLat && okLon {
		libraries = h.svc.Libraries.Nearest(lat, lon)
	}

	if term := r.URL.Query().Get("search"); term != "" {
		matched := make(map[int]bool)
		for _, l := range h.svc.Libraries.Search(term) {
			matched[l.ID] = true
		}
		filtered := libraries[:0:0]
		for _, l := range libraries {
			if matched[l.ID] {
				filtered = append(filtered, l)
			}
		}
		libraries = filtered
	}

	if libraries == nil {
		libraries = []models.Library{}
	}
	utils.SuccessResponse(w, libraries)
}
