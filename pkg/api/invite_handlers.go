package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vizboard/vizboard/pkg/access"
	"github.com/vizboard/vizboard/pkg/httputil"
	"github.com/vizboard/vizboard/pkg/observability"
	"github.com/vizboard/vizboard/pkg/teams"
)

// InviteHandlers handles team invitation HTTP requests
type InviteHandlers struct {
	service teams.Service
	checker *access.Checker
	logger  *observability.Logger
}

// NewInviteHandlers creates a new InviteHandlers
func NewInviteHandlers(service teams.Service, checker *access.Checker, logger *observability.Logger) *InviteHandlers {
	return &InviteHandlers{
		service: service,
		checker: checker,
		logger:  logger,
	}
}

// RegisterRoutes registers invitation routes
func (h *InviteHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/teams/{id}/invites", h.CreateInvite).Methods("POST")
	router.HandleFunc("/teams/{id}/invites", h.ListInvites).Methods("GET")
	router.HandleFunc("/invites/{token}", h.GetInvite).Methods("GET")
	router.HandleFunc("/invites/{token}", h.DeleteInvite).Methods("DELETE")
}

type createInviteRequest struct {
	Email string `json:"email"`
}

// CreateInvite creates a pending invitation; free-tier teams are rejected
func (h *InviteHandlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionCreate, access.ResourceTeamInvite) {
		return
	}

	var req createInviteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if req.Email == "" {
		httputil.WriteValidationError(w, "email is required")
		return
	}

	invite, err := h.service.SaveTeamInvite(r.Context(), teamID, userID, req.Email)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteCreated(w, invite)
}

// ListInvites lists a team's pending invitations
func (h *InviteHandlers) ListInvites(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionRead, access.ResourceTeamInvite) {
		return
	}

	invites, err := h.service.GetTeamInvitesByTeam(r.Context(), teamID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, invites)
}

// GetInvite retrieves an invitation by token. The invitee is authenticated
// but holds no role yet, so no team grant is required.
func (h *InviteHandlers) GetInvite(w http.ResponseWriter, r *http.Request) {
	if _, ok := authedUser(w, r); !ok {
		return
	}

	token, err := httputil.PathString(r, "token")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	invite, err := h.service.GetTeamInvite(r.Context(), token)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, invite)
}

// DeleteInvite revokes an invitation; the caller needs invite deletion rights
// in the invite's team
func (h *InviteHandlers) DeleteInvite(w http.ResponseWriter, r *http.Request) {
	token, err := httputil.PathString(r, "token")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	invite, err := h.service.GetTeamInvite(r.Context(), token)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if !requireGrant(w, r, h.service, h.checker, invite.TeamID, access.ActionDelete, access.ResourceTeamInvite) {
		return
	}

	if err := h.service.DeleteTeamInvite(r.Context(), token); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteNoContent(w)
}
