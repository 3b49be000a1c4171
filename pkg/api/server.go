package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vizboard/vizboard/pkg/access"
	"github.com/vizboard/vizboard/pkg/contextkeys"
	"github.com/vizboard/vizboard/pkg/httputil"
	"github.com/vizboard/vizboard/pkg/observability"
	"github.com/vizboard/vizboard/pkg/teams"
)

// Server wires the handler groups onto a router
type Server struct {
	service teams.Service
	checker *access.Checker
	logger  *observability.Logger
}

// NewServer creates the API server
func NewServer(service teams.Service, checker *access.Checker, logger *observability.Logger) *Server {
	return &Server{
		service: service,
		checker: checker,
		logger:  logger,
	}
}

// RegisterRoutes registers all API routes on the router
func (s *Server) RegisterRoutes(router *mux.Router) {
	teamHandlers := NewTeamHandlers(s.service, s.checker, s.logger)
	teamHandlers.RegisterRoutes(router)

	inviteHandlers := NewInviteHandlers(s.service, s.checker, s.logger)
	inviteHandlers.RegisterRoutes(router)
}

// authedUser extracts the authenticated user id, writing a 401 when absent
func authedUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := contextkeys.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorizedError(w, "authentication required")
		return 0, false
	}
	return userID, true
}

// requireGrant checks that the authenticated user holds a role in the team
// granting action on resource. Users with no role in the team are denied the
// same way users with an insufficient role are.
func requireGrant(w http.ResponseWriter, r *http.Request, service teams.Service, checker *access.Checker, teamID int64, action access.Action, resource access.Resource) bool {
	userID, ok := authedUser(w, r)
	if !ok {
		return false
	}

	role, err := service.GetTeamRole(r.Context(), teamID, userID)
	if err != nil {
		if errors.Is(err, teams.ErrNotFound) {
			httputil.WriteUnauthorizedError(w, "no role in this team")
			return false
		}
		httputil.WriteInternalError(w, err)
		return false
	}

	if !checker.Can(access.Role(role.Role), action, resource).Granted {
		httputil.WriteUnauthorizedError(w, "insufficient permissions")
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, logger *observability.Logger, err error) {
	switch {
	case errors.Is(err, teams.ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, teams.ErrInviteNotAllowed):
		httputil.WriteErrorMessage(w, http.StatusNotAcceptable, err.Error())
	default:
		logger.WithError(err).Error("request failed")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}
