package httpd

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Guneet-syan/Neural-Breach/internal/optimistic"
	"github.com/Guneet-syan/Neural-Breach/internal/service"
	"github.com/Guneet-syan/Neural-Breach/internal/service/integration"
	"github.com/Guneet-syan/Neural-Breach/internal/session"
	"github.com/Guneet-syan/Neural-Breach/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// WorkerStats: состояние пула фоновых запросов для /health
type WorkerStats interface {
	GetStats() map[string]interface{}
}

// Services: экраны, которые отдаёт локальный сервер
type Services struct {
	Session     *session.Manager
	Calendar    *service.CalendarService
	Classes     *service.ClassService
	Ratings     *service.RatingsService
	Explore     *service.ExploreService
	MyResources *service.MyResourcesService
	Upload      *service.UploadService
	Downloads   *service.DownloadsService
	Libraries   *service.LibrariesService
	Profile     *service.ProfileService
	Workers     WorkerStats
}

type Handler struct {
	svc       Services
	files     http.Handler
	maxUpload int64
	started   time.Time
	logger    zerolog.Logger
}

func NewHandler(svc Services, files http.Handler, maxUpload int64, logger zerolog.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &Handler{
		svc:       svc,
		files:     files,
		maxUpload: maxUpload,
		started:   time.Now(),
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	if h.files != nil {
		router.Get("/files/{filename}", h.files.ServeHTTP)
		router.Head("/files/{filename}", h.files.ServeHTTP)
	}

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/session", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/signup", h.Signup)
			r.Get("/", h.SessionStatus)
			r.Get("/profile", h.GetProfile)
		})

		api.Route("/calendar", func(r chi.Router) {
			r.Get("/", h.GetCalendar)
			r.Get("/day/{date}", h.GetCalendarDay)
			r.Post("/events", h.AddEvent)
		})
		api.Get("/exams/countdown", h.GetCountdown)

		api.Get("/teachers", h.GetTeachers)
		api.Route("/ratings", func(r chi.Router) {
			r.Get("/", h.GetRatings)
			r.Post("/", h.SubmitRating)
		})

		api.Get("/resources", h.SearchResources)
		api.Route("/my-resources", func(r chi.Router) {
			r.Get("/", h.GetMyResources)
			r.Put("/{id}", h.UpdateMyResource)
			r.Delete("/{id}", h.DeleteMyResource)
		})
		api.Post("/uploads", h.UploadResource)

		api.Route("/downloads", func(r chi.Router) {
			r.Get("/", h.GetDownloads)
			r.Post("/{filename}", h.DownloadFile)
			r.Get("/{id}/content", h.GetDownloadContent)
			r.Delete("/{id}", h.DeleteDownload)
		})

		api.Get("/libraries", h.GetLibraries)
		api.Get("/classes/{id}", h.GetClass)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "campushub",
		"logged_in": h.svc.Session != nil && h.svc.Session.LoggedIn(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	}
	if h.svc.Workers != nil {
		response["workers"] = h.svc.Workers.GetStats()
	}
	utils.WriteJSON(w, http.StatusOK, response)
}

// mutationResponse: ответ на оптимистичное изменение: запись уже видна в Items
type mutationResponse struct {
	RecordID string      `json:"record_id"`
	Pending  bool        `json:"pending"`
	Items    interface{} `json:"items"`
}

// writeMutation отвечает 202 сразу, либо дожидается сервера при ?wait=true
func (h *Handler) writeMutation(w http.ResponseWriter, r *http.Request, m *optimistic.Mutation, items func() interface{}) {
	id := m.Placeholder()
	if id == "" {
		id = m.Key()
	}

	if !getBoolQueryParam(r, "wait") {
		utils.WriteStatus(w, http.StatusAccepted, mutationResponse{RecordID: id, Pending: true, Items: items()})
		return
	}

	if err := m.Wait(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}
	utils.WriteStatus(w, http.StatusOK, mutationResponse{RecordID: id, Items: items()})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var se *integration.StatusError

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotLoggedIn), errors.Is(err, service.ErrNoAuthor):
		utils.ErrorResponse(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, optimistic.ErrNotFound):
		utils.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, optimistic.ErrPlaceholder):
		utils.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusNotFound):
		utils.ErrorResponse(w, se.Code, err.Error())
	case errors.As(err, &se), errors.Is(err, integration.ErrNetwork), errors.Is(err, integration.ErrDecode):
		h.logger.Warn().Err(err).Msg("Backend error")
		utils.ErrorResponse(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		utils.ErrorResponse(w, http.StatusGatewayTimeout, "request timed out")
	default:
		h.logger.Error().Err(err).Msg("Service error")
		utils.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getFloatQueryParam(r *http.Request, key string) (float64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func getBoolQueryParam(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
