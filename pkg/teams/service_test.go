package teams

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizboard/vizboard/pkg/billing"
	"github.com/vizboard/vizboard/pkg/observability"
	"github.com/vizboard/vizboard/pkg/plans"
)

// fakeGateway is a recording billing gateway for tests
type fakeGateway struct {
	sub       *billing.Subscription
	subErr    error
	updateErr error

	subCalls    []string
	updateCalls []seatUpdate
}

type seatUpdate struct {
	subscriptionID string
	delta          int64
}

func (g *fakeGateway) GetSubscriptionDetails(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	g.subCalls = append(g.subCalls, subscriptionID)
	if g.subErr != nil {
		return nil, g.subErr
	}
	sub := *g.sub
	return &sub, nil
}

func (g *fakeGateway) UpdateMembers(ctx context.Context, subscriptionID string, delta int64) error {
	g.updateCalls = append(g.updateCalls, seatUpdate{subscriptionID: subscriptionID, delta: delta})
	return g.updateErr
}

// fakeCipher wraps values in a reversible marker so tests can assert on both
// forms without real crypto
type fakeCipher struct{}

func (fakeCipher) Encrypt(plaintext string) (string, error) {
	return "enc(" + plaintext + ")", nil
}

func (fakeCipher) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "enc(") || !strings.HasSuffix(ciphertext, ")") {
		return "", fmt.Errorf("not a test ciphertext: %q", ciphertext)
	}
	return strings.TrimSuffix(strings.TrimPrefix(ciphertext, "enc("), ")"), nil
}

func newTestService(t *testing.T, gateway billing.Gateway) (*PostgresService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	svc := NewPostgresService(db, gateway, fakeCipher{}, plans.DefaultCatalog(), logger, nil)
	return svc, mock
}

var roleWithUserColumns = []string{
	"id", "team_id", "user_id", "role", "created_at",
	"id", "name", "email", "subscription_id", "plan",
}

// roleRow builds one findRolesWithUsers result row
func roleRow(id, teamID, userID int64, role, subscriptionID, plan string) []driver.Value {
	return []driver.Value{
		id, teamID, userID, role, time.Now(),
		userID, "User " + role, "enc(user@example.com)",
		nullable(subscriptionID), nullable(plan),
	}
}

func nullable(s string) driver.Value {
	if s == "" {
		return nil
	}
	return s
}

func expectRolesWithUsers(mock sqlmock.Sqlmock, teamID int64, rows ...[]driver.Value) {
	result := sqlmock.NewRows(roleWithUserColumns)
	for _, row := range rows {
		result.AddRow(row...)
	}
	mock.ExpectQuery("FROM team_roles tr").WithArgs(teamID).WillReturnRows(result)
}

func expectUserByID(mock sqlmock.Sqlmock, userID int64, subscriptionID, plan string) {
	mock.ExpectQuery("FROM users WHERE id =").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "subscription_id", "plan"}).
			AddRow(userID, "Owner", "enc(owner@example.com)", nullable(subscriptionID), nullable(plan)))
}

func TestFindRolesWithUsers(t *testing.T) {
	svc, mock := newTestService(t, &fakeGateway{})

	expectRolesWithUsers(mock, 3,
		roleRow(1, 3, 10, RoleOwner, "enc(sub_123)", "pro"),
		roleRow(2, 3, 11, "member", "", ""),
	)

	roles, err := svc.findRolesWithUsers(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, roles, 2)

	require.NotNil(t, roles[0].User)
	assert.Equal(t, "enc(sub_123)", roles[0].User.SubscriptionID)
	assert.Equal(t, "pro", roles[0].User.Plan)

	// NULL subscription columns scan to empty strings
	require.NotNil(t, roles[1].User)
	assert.Empty(t, roles[1].User.SubscriptionID)
	assert.Empty(t, roles[1].User.Plan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTeam(t *testing.T) {
	svc, mock := newTestService(t, &fakeGateway{})

	now := time.Now()
	mock.ExpectQuery("INSERT INTO teams").
		WithArgs("Data Squad").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(int64(7), "Data Squad", now, now))

	team, err := svc.CreateTeam(context.Background(), "Data Squad")
	require.NoError(t, err)
	assert.Equal(t, int64(7), team.ID)
	assert.Equal(t, "Data Squad", team.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTeamByID(t *testing.T) {
	t.Run("attaches plan features from resolved subscription", func(t *testing.T) {
		svc, mock := newTestService(t, &fakeGateway{})

		now := time.Now()
		mock.ExpectQuery("FROM teams WHERE id =").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
				AddRow(int64(3), "Analysts", now, now))

		// owner has a manual pro plan, so resolution never hits billing
		expectRolesWithUsers(mock, 3, roleRow(1, 3, 10, RoleOwner, "", "pro"))
		expectUserByID(mock, 10, "", "pro")

		team, err := svc.FindTeamByID(context.Background(), 3)
		require.NoError(t, err)
		require.NotNil(t, team.Plan)
		assert.Equal(t, 10, team.Plan.Members)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing team returns not found", func(t *testing.T) {
		svc, mock := newTestService(t, &fakeGateway{})

		mock.ExpectQuery("FROM teams WHERE id =").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}))

		_, err := svc.FindTeamByID(context.Background(), 99)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteTeam(t *testing.T) {
	t.Run("deletes existing team", func(t *testing.T) {
		svc, mock := newTestService(t, &fakeGateway{})

		mock.ExpectExec("DELETE FROM teams").
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, svc.DeleteTeam(context.Background(), 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing team returns not found", func(t *testing.T) {
		svc, mock := newTestService(t, &fakeGateway{})

		mock.ExpectExec("DELETE FROM teams").
			WithArgs(int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, svc.DeleteTeam(context.Background(), 99), ErrNotFound)
	})
}

func TestGetUserTeams(t *testing.T) {
	svc, mock := newTestService(t, &fakeGateway{})

	now := time.Now()
	mock.ExpectQuery("FROM teams t").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(int64(3), "Analysts", now, now))

	expectRolesWithUsers(mock, 3, roleRow(1, 3, 10, RoleOwner, "", ""))
	expectUserByID(mock, 10, "", "")

	userTeams, err := svc.GetUserTeams(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, userTeams, 1)
	require.NotNil(t, userTeams[0].Plan)
	assert.Equal(t, 3, userTeams[0].Plan.Members, "free tier seats the community cap")
	assert.NoError(t, mock.ExpectationsWereMet())
}
