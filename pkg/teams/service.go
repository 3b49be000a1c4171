package teams

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vizboard/vizboard/pkg/billing"
	"github.com/vizboard/vizboard/pkg/observability"
	"github.com/vizboard/vizboard/pkg/plans"
	"github.com/vizboard/vizboard/pkg/secrets"
)

// PostgresService implements Service using PostgreSQL
type PostgresService struct {
	db      *sql.DB
	gateway billing.Gateway
	cipher  secrets.Cipher
	catalog plans.Catalog
	logger  *observability.Logger
	metrics *observability.Metrics
}

var _ Service = (*PostgresService)(nil)

// NewPostgresService creates the engine. The cipher is injected, never a
// package singleton. Metrics may be nil.
func NewPostgresService(
	db *sql.DB,
	gateway billing.Gateway,
	cipher secrets.Cipher,
	catalog plans.Catalog,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *PostgresService {
	return &PostgresService{
		db:      db,
		gateway: gateway,
		cipher:  cipher,
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
	}
}

// CreateTeam creates a new team
func (s *PostgresService) CreateTeam(ctx context.Context, name string) (*Team, error) {
	query := `
		INSERT INTO teams (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`
	team := &Team{}
	err := s.db.QueryRowContext(ctx, query, name).
		Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// FindTeamByID loads a team and attaches its resolved plan envelope
func (s *PostgresService) FindTeamByID(ctx context.Context, id int64) (*Team, error) {
	query := `SELECT id, name, created_at, updated_at FROM teams WHERE id = $1`
	team := &Team{}
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	sub, err := s.ResolvePlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Plan != nil {
		if features, ok := s.catalog.Get(sub.Plan.Nickname); ok {
			team.Plan = &features
		}
	}
	return team, nil
}

// UpdateTeam renames a team and returns it with its plan attached
func (s *PostgresService) UpdateTeam(ctx context.Context, id int64, name string) (*Team, error) {
	query := `UPDATE teams SET name = $1, updated_at = NOW() WHERE id = $2`
	result, err := s.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("team %d: %w", id, ErrNotFound)
	}
	return s.FindTeamByID(ctx, id)
}

// DeleteTeam removes a team; roles and invites cascade
func (s *PostgresService) DeleteTeam(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("team %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetUserTeams lists the teams a user belongs to with plan envelopes
// attached. Per-team plan resolutions run concurrently and are joined before
// returning; the first failure cancels the rest.
func (s *PostgresService) GetUserTeams(ctx context.Context, userID int64) ([]*Team, error) {
	query := `
		SELECT t.id, t.name, t.created_at, t.updated_at
		FROM teams t
		JOIN team_roles tr ON tr.team_id = t.id
		WHERE tr.user_id = $1
		ORDER BY t.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var userTeams []*Team
	for rows.Next() {
		team := &Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		userTeams = append(userTeams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	subs := make([]*billing.Subscription, len(userTeams))
	for i, team := range userTeams {
		i, team := i, team
		g.Go(func() error {
			sub, err := s.ResolvePlan(gctx, team.ID)
			if err != nil {
				return err
			}
			subs[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, sub := range subs {
		if sub.Plan == nil {
			continue
		}
		if features, ok := s.catalog.Get(sub.Plan.Nickname); ok {
			userTeams[i].Plan = &features
		}
	}
	return userTeams, nil
}

func (s *PostgresService) countResolution(source string) {
	if s.metrics != nil {
		s.metrics.PlanResolutionsTotal.WithLabelValues(source).Inc()
	}
}
