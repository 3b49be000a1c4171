package teams

import (
	"context"
	"errors"
	"fmt"
)

// SeatDrift describes a mismatch between the members a team actually has and
// the seats its billing subscription is paying for.
type SeatDrift struct {
	TeamID      int64  `json:"team_id"`
	Plan        string `json:"plan"`
	Members     int    `json:"members"`
	BilledSeats int    `json:"billed_seats"`
	Drift       int    `json:"drift"`
}

// ReconcileSeats walks every team with a billing-backed subscription and
// reports where the member count and the billed seat quantity disagree. It
// never writes anything; the report is surfaced through logs and the seat
// drift gauge so an operator can correct the subscription by hand.
//
// Teams that fail plan resolution with ErrNotFound (no roles, no owner) are
// skipped rather than failing the run.
func (s *PostgresService) ReconcileSeats(ctx context.Context) ([]SeatDrift, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM teams ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teamIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teamIDs = append(teamIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	var drifts []SeatDrift
	for _, teamID := range teamIDs {
		drift, err := s.teamSeatDrift(ctx, teamID)
		if errors.Is(err, ErrNotFound) {
			s.logger.WithField("team_id", teamID).
				Debug("skipping team without resolvable plan")
			continue
		}
		if err != nil {
			return drifts, err
		}
		if drift == nil {
			continue
		}

		s.reportDrift(*drift)
		if drift.Drift != 0 {
			drifts = append(drifts, *drift)
			s.logger.WithFields(map[string]interface{}{
				"team_id":      drift.TeamID,
				"plan":         drift.Plan,
				"members":      drift.Members,
				"billed_seats": drift.BilledSeats,
				"drift":        drift.Drift,
			}).Warn("team seat count has drifted from billed quantity")
		}
	}
	return drifts, nil
}

// teamSeatDrift computes the drift for one team, or nil when the team is not
// billing-backed (community and manual plans carry no seat quantity).
func (s *PostgresService) teamSeatDrift(ctx context.Context, teamID int64) (*SeatDrift, error) {
	sub, err := s.ResolvePlan(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if sub.ID == "" || len(sub.Items.Data) == 0 {
		return nil, nil
	}

	roles, err := s.GetAllTeamRoles(ctx, teamID)
	if err != nil {
		return nil, err
	}

	billed := int(sub.Items.Data[0].Quantity)
	drift := &SeatDrift{
		TeamID:      teamID,
		Plan:        sub.Plan.Nickname,
		Members:     len(roles),
		BilledSeats: billed,
		Drift:       len(roles) - billed,
	}
	return drift, nil
}

func (s *PostgresService) reportDrift(drift SeatDrift) {
	if s.metrics != nil {
		s.metrics.SeatDrift.WithLabelValues(fmt.Sprintf("%d", drift.TeamID)).
			Set(float64(drift.Drift))
	}
}
