package teams

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizboard/vizboard/pkg/billing"
)

func TestReconcileSeats(t *testing.T) {
	t.Run("reports drift between members and billed seats", func(t *testing.T) {
		gateway := &fakeGateway{
			sub: &billing.Subscription{
				ID:   "sub_123",
				Plan: &billing.Plan{Nickname: "starter"},
				Items: billing.Items{Data: []billing.Item{
					{ID: "si_1", Quantity: 6},
				}},
			},
		}
		svc, mock := newTestService(t, gateway)

		mock.ExpectQuery("SELECT id FROM teams").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

		expectRolesWithUsers(mock, 3, roleRow(1, 3, 10, RoleOwner, "enc(sub_123)", ""))
		expectUserByID(mock, 10, "enc(sub_123)", "")

		// the team pays for 6 seats but only 4 members remain
		mock.ExpectQuery("FROM team_roles").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "user_id", "role", "created_at"}).
				AddRow(int64(1), int64(3), int64(10), RoleOwner, time.Now()).
				AddRow(int64(2), int64(3), int64(11), "member", time.Now()).
				AddRow(int64(3), int64(3), int64(12), "member", time.Now()).
				AddRow(int64(4), int64(3), int64(13), "member", time.Now()))

		drifts, err := svc.ReconcileSeats(context.Background())
		require.NoError(t, err)
		require.Len(t, drifts, 1)
		assert.Equal(t, int64(3), drifts[0].TeamID)
		assert.Equal(t, 4, drifts[0].Members)
		assert.Equal(t, 6, drifts[0].BilledSeats)
		assert.Equal(t, -2, drifts[0].Drift)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("community teams are skipped", func(t *testing.T) {
		svc, mock := newTestService(t, &fakeGateway{})

		mock.ExpectQuery("SELECT id FROM teams").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

		expectRolesWithUsers(mock, 3, roleRow(1, 3, 10, RoleOwner, "", ""))
		expectUserByID(mock, 10, "", "")

		drifts, err := svc.ReconcileSeats(context.Background())
		require.NoError(t, err)
		assert.Empty(t, drifts)
	})

	t.Run("unresolvable teams do not fail the run", func(t *testing.T) {
		svc, mock := newTestService(t, &fakeGateway{})

		mock.ExpectQuery("SELECT id FROM teams").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

		// no roles at all
		expectRolesWithUsers(mock, 3)

		drifts, err := svc.ReconcileSeats(context.Background())
		require.NoError(t, err)
		assert.Empty(t, drifts)
	})
}
