package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vizboard/vizboard/pkg/access"
	"github.com/vizboard/vizboard/pkg/httputil"
	"github.com/vizboard/vizboard/pkg/observability"
	"github.com/vizboard/vizboard/pkg/teams"
)

// TeamHandlers handles team, membership and plan HTTP requests
type TeamHandlers struct {
	service teams.Service
	checker *access.Checker
	logger  *observability.Logger
}

// NewTeamHandlers creates a new TeamHandlers
func NewTeamHandlers(service teams.Service, checker *access.Checker, logger *observability.Logger) *TeamHandlers {
	return &TeamHandlers{
		service: service,
		checker: checker,
		logger:  logger,
	}
}

// RegisterRoutes registers team routes
func (h *TeamHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/teams", h.CreateTeam).Methods("POST")
	router.HandleFunc("/teams", h.ListTeams).Methods("GET")
	router.HandleFunc("/teams/{id}", h.GetTeam).Methods("GET")
	router.HandleFunc("/teams/{id}", h.UpdateTeam).Methods("PUT")
	router.HandleFunc("/teams/{id}", h.DeleteTeam).Methods("DELETE")

	// Plan
	router.HandleFunc("/teams/{id}/plan", h.GetTeamPlan).Methods("GET")

	// Members and roles
	router.HandleFunc("/teams/{id}/members", h.ListMembers).Methods("GET")
	router.HandleFunc("/teams/{id}/members", h.AddMember).Methods("POST")
	router.HandleFunc("/teams/{id}/members/{user_id}", h.GetMemberRole).Methods("GET")
	router.HandleFunc("/teams/{id}/members/{user_id}", h.UpdateMemberRole).Methods("PUT")
	router.HandleFunc("/teams/{id}/roles", h.ListRoles).Methods("GET")
	router.HandleFunc("/teams/{id}/roles/{role_id}", h.RemoveMember).Methods("DELETE")

	// Membership lookup by email
	router.HandleFunc("/teams/{id}/memberships", h.CheckMembership).Methods("GET")
}

type createTeamRequest struct {
	Name string `json:"name"`
}

// CreateTeam creates a team and makes the caller its owner
func (h *TeamHandlers) CreateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	var req createTeamRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if req.Name == "" {
		httputil.WriteValidationError(w, "team name is required")
		return
	}

	team, err := h.service.CreateTeam(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	// The creator's owner role goes through the quota path; the fresh team
	// has no owner yet so resolution not-found lets it through.
	if _, err := h.service.AddTeamRole(r.Context(), team.ID, userID, teams.RoleOwner); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteCreated(w, team)
}

// ListTeams lists the caller's teams with plan envelopes attached
func (h *TeamHandlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	userTeams, err := h.service.GetUserTeams(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, userTeams)
}

// GetTeam retrieves a team with its resolved plan
func (h *TeamHandlers) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionRead, access.ResourceTeam) {
		return
	}

	team, err := h.service.FindTeamByID(r.Context(), teamID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, team)
}

type updateTeamRequest struct {
	Name string `json:"name"`
}

// UpdateTeam renames a team
func (h *TeamHandlers) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionUpdate, access.ResourceTeam) {
		return
	}

	var req updateTeamRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if req.Name == "" {
		httputil.WriteValidationError(w, "team name is required")
		return
	}

	team, err := h.service.UpdateTeam(r.Context(), teamID, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, team)
}

// DeleteTeam removes a team
func (h *TeamHandlers) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionDelete, access.ResourceTeam) {
		return
	}

	if err := h.service.DeleteTeam(r.Context(), teamID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteNoContent(w)
}

// GetTeamPlan resolves the team's current subscription record
func (h *TeamHandlers) GetTeamPlan(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionRead, access.ResourceTeam) {
		return
	}

	sub, err := h.service.ResolvePlan(r.Context(), teamID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, sub)
}

// ListMembers lists the member user ids of a team
func (h *TeamHandlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionRead, access.ResourceTeamRole) {
		return
	}

	ids, err := h.service.GetTeamMemberIDs(r.Context(), teamID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, map[string][]int64{"user_ids": ids})
}

type addMemberRequest struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// AddMember adds a user to a team, buying a seat when at capacity
func (h *TeamHandlers) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionCreate, access.ResourceTeamRole) {
		return
	}

	var req addMemberRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if req.UserID == 0 || req.Role == "" {
		httputil.WriteValidationError(w, "user_id and role are required")
		return
	}

	role, err := h.service.AddTeamRole(r.Context(), teamID, req.UserID, req.Role)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteCreated(w, role)
}

// GetMemberRole retrieves the role a user holds within a team
func (h *TeamHandlers) GetMemberRole(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	userID, err := httputil.PathInt64(r, "user_id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionRead, access.ResourceTeamRole) {
		return
	}

	role, err := h.service.GetTeamRole(r.Context(), teamID, userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, role)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateMemberRole changes the role a user holds within a team
func (h *TeamHandlers) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	userID, err := httputil.PathInt64(r, "user_id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionUpdate, access.ResourceTeamRole) {
		return
	}

	var req updateRoleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if req.Role == "" {
		httputil.WriteValidationError(w, "role is required")
		return
	}

	role, err := h.service.UpdateTeamRole(r.Context(), teamID, userID, req.Role)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, role)
}

// ListRoles lists all roles of a team
func (h *TeamHandlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionRead, access.ResourceTeamRole) {
		return
	}

	roles, err := h.service.GetAllTeamRoles(r.Context(), teamID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, roles)
}

// RemoveMember removes a role by id, releasing a billed seat when the team
// stays at or above capacity
func (h *TeamHandlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	roleID, err := httputil.PathInt64(r, "role_id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionDelete, access.ResourceTeamRole) {
		return
	}

	if err := h.service.DeleteTeamMember(r.Context(), roleID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteNoContent(w)
}

// CheckMembership reports whether the email's user already belongs to the team
func (h *TeamHandlers) CheckMembership(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.PathInt64(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		httputil.WriteValidationError(w, "email query parameter is required")
		return
	}

	if !requireGrant(w, r, h.service, h.checker, teamID, access.ActionRead, access.ResourceTeamRole) {
		return
	}

	ids, err := h.service.IsUserInTeam(r.Context(), teamID, email)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"team_ids": ids,
		"member":   len(ids) > 0,
	})
}
