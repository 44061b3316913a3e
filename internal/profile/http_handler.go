package profile

import (
	"net/http"

	"bookreview/internal/apperror"
	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Me handles GET /v1/me
// @Summary Get own profile
// @Tags profiles
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/me [get]
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.WriteError(w, r, apperror.Unauthorizedf("authentication required"))
		return
	}

	p, err := h.service.Get(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}

// Get handles GET /v1/profiles/{id}
// @Summary Get public profile
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/profiles/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}

// Summary handles GET /v1/profiles/{id}/summary
// @Summary Profile page with books, reviews and counters
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/profiles/{id}/summary [get]
func (h *HTTPHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, sum, nil)
}

// UpdateMe handles PATCH /v1/me/profile
// @Summary Change own display name
// @Tags profiles
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body UpdateCommand true "Profile changes"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /v1/me/profile [patch]
func (h *HTTPHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor := httpx.ActorFrom(r)
	if !actor.Authenticated() {
		httpx.WriteError(w, r, apperror.Unauthorizedf("authentication required"))
		return
	}

	var cmd UpdateCommand
	if err := httpx.DecodeJSON(r, &cmd); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	p, err := h.service.Update(r.Context(), actor, actor.ID, cmd)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}
