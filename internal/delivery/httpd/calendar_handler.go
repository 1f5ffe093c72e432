package httpd

import (
	"net/http"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/pkg/utils"
	"github.com/go-chi/chi/v5"
)

type addEventRequest struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Date  string `json:"date"`
}

// GetCalendar перезагружает календарь; ?month=YYYY-MM ограничивает месяцем
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	var (
		year  int
		month time.Month
	)
	if value := r.URL.Query().Get("month"); value != "" {
		t, err := time.Parse("2006-01", value)
		if err != nil {
			utils.ErrorResponse(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		year, month = t.Year(), t.Month()
	}

	if err := h.svc.Calendar.Load(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}

	events := h.svc.Calendar.Events()
	if year != 0 {
		events = h.svc.Calendar.MonthEvents(year, month)
	}
	if events == nil {
		events = []models.Event{}
	}

	utils.SuccessResponse(w, map[string]interface{}{
		"events": events,
		"exams":  h.svc.Calendar.Exams(),
	})
}

// GetCalendarDay отдаёт события дня из текущего состояния без перезагрузки
func (h *Handler) GetCalendarDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	events := h.svc.Calendar.DayEvents(date)
	if events == nil {
		events = []models.Event{}
	}
	utils.SuccessResponse(w, events)
}

func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req addEventRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	m, err := h.svc.Calendar.AddEvent(r.Context(), req.Title, req.Type, req.Date)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.writeMutation(w, r, m, func() interface{} { return h.svc.Calendar.Events() })
}

func (h *Handler) GetCountdown(w http.ResponseWriter, r *http.Request) {
	displays, exams, err := h.svc.Classes.Countdown(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	type examCountdown struct {
		models.Exam
		Countdown string `json:"countdown"`
	}
	out := make([]examCountdown, 0, len(exams))
	for _, e := range exams {
		display, ok := displays[e.ID]
		if !ok {
			continue
		}
		out = append(out, examCountdown{Exam: e, Countdown: display})
	}

	utils.SuccessResponse(w, out)
}

func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Classes.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	utils.SuccessResponse(w, view)
}
