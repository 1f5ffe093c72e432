package httpd

import (
	"net/http"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/pkg/utils"
)

type teacherSummary struct {
	models.Teacher
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

func (h *Handler) GetTeachers(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ratings.Load(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}

	teachers := h.svc.Ratings.FilterTeachers(r.URL.Query().Get("search"))
	out := make([]teacherSummary, 0, len(teachers))
	for _, t := range teachers {
		avg, n := h.svc.Ratings.Average(t.Name)
		out = append(out, teacherSummary{Teacher: t, Average: avg, Count: n})
	}
	utils.SuccessResponse(w, out)
}

// GetRatings: ?teacher= сужает список до одного преподавателя
func (h *Handler) GetRatings(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ratings.Load(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}

	ratings := h.svc.Ratings.Ratings()
	if teacher := r.URL.Query().Get("teacher"); teacher != "" {
		ratings = h.svc.Ratings.RatingsFor(teacher)
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}
	utils.SuccessResponse(w, ratings)
}

func (h *Handler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	var req models.Rating
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	m, err := h.svc.Ratings.Submit(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeMutation(w, r, m, func() interface{} { return h.svc.Ratings.Ratings() })
}
