package httpd

import (
	"net/http"

	"github.com/Guneet-syan/Neural-Breach/internal/models"
	"github.com/Guneet-syan/Neural-Breach/pkg/utils"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.Session.Login(r.Context(), req.Email, req.Password); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.SessionStatus(w, r)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Session.Logout(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"logged_in": false})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.svc.Session.Signup(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	utils.WriteStatus(w, http.StatusCreated, resp)
}

func (h *Handler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"logged_in": h.svc.Session.LoggedIn()}
	if claims, err := h.svc.Session.Claims(); err == nil {
		status["subject"] = claims.Subject
		if !claims.ExpiresAt.IsZero() {
			status["expires_at"] = claims.ExpiresAt
		}
	}
	utils.SuccessResponse(w, status)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Profile.Get(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	utils.SuccessResponse(w, profile)
}
