package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizboard/vizboard/pkg/access"
	"github.com/vizboard/vizboard/pkg/billing"
	"github.com/vizboard/vizboard/pkg/contextkeys"
	"github.com/vizboard/vizboard/pkg/observability"
	"github.com/vizboard/vizboard/pkg/plans"
	"github.com/vizboard/vizboard/pkg/teams"
)

func newTestRouter(service teams.Service) *mux.Router {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	server := NewServer(service, access.NewChecker(), logger)
	router := mux.NewRouter()
	server.RegisterRoutes(router)
	return router
}

// doRequest performs a request as the given user; userID 0 means anonymous
func doRequest(router *mux.Router, method, path string, userID int64, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != 0 {
		req = req.WithContext(contextkeys.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// stubRole makes GetTeamRole return the given role for any caller
func stubRole(role string) func(ctx context.Context, teamID, userID int64) (*teams.TeamRole, error) {
	return func(ctx context.Context, teamID, userID int64) (*teams.TeamRole, error) {
		return &teams.TeamRole{ID: 1, TeamID: teamID, UserID: userID, Role: role, CreatedAt: time.Now()}, nil
	}
}

func TestGetTeam(t *testing.T) {
	t.Run("member can read the team", func(t *testing.T) {
		service := &fakeService{
			getTeamRole: stubRole("member"),
			findTeamByID: func(ctx context.Context, id int64) (*teams.Team, error) {
				return &teams.Team{ID: id, Name: "Analysts", Plan: &plans.Features{Members: 3}}, nil
			},
		}
		rec := doRequest(newTestRouter(service), http.MethodGet, "/teams/3", 10, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Analysts")
	})

	t.Run("anonymous caller gets 401", func(t *testing.T) {
		rec := doRequest(newTestRouter(&fakeService{}), http.MethodGet, "/teams/3", 0, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("caller without a role gets 401", func(t *testing.T) {
		service := &fakeService{
			getTeamRole: func(ctx context.Context, teamID, userID int64) (*teams.TeamRole, error) {
				return nil, fmt.Errorf("role: %w", teams.ErrNotFound)
			},
		}
		rec := doRequest(newTestRouter(service), http.MethodGet, "/teams/3", 10, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing team maps to 404", func(t *testing.T) {
		service := &fakeService{
			getTeamRole: stubRole("member"),
			findTeamByID: func(ctx context.Context, id int64) (*teams.Team, error) {
				return nil, fmt.Errorf("team %d: %w", id, teams.ErrNotFound)
			},
		}
		rec := doRequest(newTestRouter(service), http.MethodGet, "/teams/99", 10, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("billing failure maps to generic 500", func(t *testing.T) {
		service := &fakeService{
			getTeamRole: stubRole("member"),
			findTeamByID: func(ctx context.Context, id int64) (*teams.Team, error) {
				return nil, &billing.UpstreamError{Op: "get_subscription", StatusCode: 502}
			},
		}
		rec := doRequest(newTestRouter(service), http.MethodGet, "/teams/3", 10, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "internal error")
		assert.NotContains(t, rec.Body.String(), "get_subscription", "upstream details must not leak")
	})

	t.Run("non-numeric id maps to 400", func(t *testing.T) {
		rec := doRequest(newTestRouter(&fakeService{}), http.MethodGet, "/teams/abc", 10, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateTeam(t *testing.T) {
	t.Run("creates team and owner role", func(t *testing.T) {
		var ownerTeamID, ownerUserID int64
		var ownerRole string
		service := &fakeService{
			createTeam: func(ctx context.Context, name string) (*teams.Team, error) {
				return &teams.Team{ID: 7, Name: name}, nil
			},
			addTeamRole: func(ctx context.Context, teamID, userID int64, roleName string) (*teams.TeamRole, error) {
				ownerTeamID, ownerUserID, ownerRole = teamID, userID, roleName
				return &teams.TeamRole{ID: 1, TeamID: teamID, UserID: userID, Role: roleName}, nil
			},
		}
		rec := doRequest(newTestRouter(service), http.MethodPost, "/teams", 10, `{"name":"Data Squad"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, int64(7), ownerTeamID)
		assert.Equal(t, int64(10), ownerUserID)
		assert.Equal(t, teams.RoleOwner, ownerRole)
	})

	t.Run("empty name maps to 400", func(t *testing.T) {
		rec := doRequest(newTestRouter(&fakeService{}), http.MethodPost, "/teams", 10, `{"name":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteTeamAuthorization(t *testing.T) {
	deleted := false
	service := &fakeService{
		deleteTeam: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}

	t.Run("admin cannot delete the team", func(t *testing.T) {
		service.getTeamRole = stubRole("admin")
		rec := doRequest(newTestRouter(service), http.MethodDelete, "/teams/3", 10, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, deleted)
	})

	t.Run("owner can delete the team", func(t *testing.T) {
		service.getTeamRole = stubRole("owner")
		rec := doRequest(newTestRouter(service), http.MethodDelete, "/teams/3", 10, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, deleted)
	})
}

func TestAddMember(t *testing.T) {
	t.Run("admin can add a member", func(t *testing.T) {
		service := &fakeService{
			getTeamRole: stubRole("admin"),
			addTeamRole: func(ctx context.Context, teamID, userID int64, roleName string) (*teams.TeamRole, error) {
				return &teams.TeamRole{ID: 9, TeamID: teamID, UserID: userID, Role: roleName}, nil
			},
		}
		rec := doRequest(newTestRouter(service), http.MethodPost, "/teams/3/members", 10,
			`{"user_id":20,"role":"member"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("member cannot add a member", func(t *testing.T) {
		service := &fakeService{getTeamRole: stubRole("member")}
		rec := doRequest(newTestRouter(service), http.MethodPost, "/teams/3/members", 10,
			`{"user_id":20,"role":"member"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields map to 400", func(t *testing.T) {
		service := &fakeService{getTeamRole: stubRole("admin")}
		rec := doRequest(newTestRouter(service), http.MethodPost, "/teams/3/members", 10, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRemoveMember(t *testing.T) {
	t.Run("missing role id maps to 404", func(t *testing.T) {
		service := &fakeService{
			getTeamRole: stubRole("admin"),
			deleteTeamMember: func(ctx context.Context, roleID int64) error {
				return fmt.Errorf("role %d: %w", roleID, teams.ErrNotFound)
			},
		}
		rec := doRequest(newTestRouter(service), http.MethodDelete, "/teams/3/roles/404", 10, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("editor cannot remove members", func(t *testing.T) {
		service := &fakeService{getTeamRole: stubRole("editor")}
		rec := doRequest(newTestRouter(service), http.MethodDelete, "/teams/3/roles/5", 10, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetTeamPlan(t *testing.T) {
	service := &fakeService{
		getTeamRole: stubRole("member"),
		resolvePlan: func(ctx context.Context, teamID int64) (*billing.Subscription, error) {
			return &billing.Subscription{
				TeamID: teamID,
				Plan:   &billing.Plan{Nickname: "pro"},
			}, nil
		},
	}
	rec := doRequest(newTestRouter(service), http.MethodGet, "/teams/3/plan", 10, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pro"`)
}

func TestCheckMembership(t *testing.T) {
	service := &fakeService{
		getTeamRole: stubRole("admin"),
		isUserInTeam: func(ctx context.Context, teamID int64, email string) ([]int64, error) {
			return []int64{teamID}, nil
		},
	}
	rec := doRequest(newTestRouter(service), http.MethodGet,
		"/teams/3/memberships?email=user%40example.com", 10, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"member":true`)
}
