package httpd

import (
	"io"
	"net/http"
	"strings"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/internal/service"
	"github.com/Guneet-syan/Neural-Breach/pkg/utils"
	"github.com/go-chi/chi/v5"
)

// SearchResources: фильтры страницы поиска как query-параметры бэкенда
func (h *Handler) SearchResources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ResourceFilter{
		Courses:  utils.SplitCSV(q.Get("course")),
		Subjects: utils.SplitCSV(q.Get("subject")),
		Types:    utils.SplitCSV(q.Get("type")),
		Semester: getIntQueryParam(r, "semester", 0),
		Year:     getIntQueryParam(r, "year", 0),
		Search:   q.Get("search"),
		Privacy:  q.Get("privacy"),
	}

	resources, err := h.svc.Explore.Search(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if resources == nil {
		resources = []models.Resource{}
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"query":     filter.Values().Encode(),
		"resources": resources,
	})
}

func (h *Handler) GetMyResources(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MyResources.Load(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}

	resources := h.svc.MyResources.Resources()
	if resources == nil {
		resources = []models.Resource{}
	}
	utils.SuccessResponse(w, resources)
}

func (h *Handler) UpdateMyResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.ResourceUpdate
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	m, err := h.svc.MyResources.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeMutation(w, r, m, func() interface{} { return h.svc.MyResources.Resources() })
}

func (h *Handler) DeleteMyResource(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.MyResources.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeMutation(w, r, m, func() interface{} { return h.svc.MyResources.Resources() })
}

func (h *Handler) UploadResource(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	req := models.UploadRequest{
		FileName:    header.Filename,
		Content:     content,
		Title:       r.FormValue("title"),
		Subject:     r.FormValue("subject"),
		Course:      strings.ToUpper(strings.TrimSpace(r.FormValue("course"))),
		Type:        r.FormValue("type"),
		Privacy:     r.FormValue("privacy"),
		Semester:    r.FormValue("semester"),
		Year:        r.FormValue("year"),
		Description: r.FormValue("description"),
	}

	resp, err := h.svc.Upload.Upload(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	utils.WriteStatus(w, http.StatusCreated, resp)
}
