package teams

import (
	"context"
	"database/sql"
	"fmt"
)

// findUserByID loads the directory view of a user
func (s *PostgresService) findUserByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT id, name, email, subscription_id, plan FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id), fmt.Sprintf("user %d", id))
}

// findUserByEmail looks a user up by their encrypted email
func (s *PostgresService) findUserByEmail(ctx context.Context, encryptedEmail string) (*User, error) {
	query := `SELECT id, name, email, subscription_id, plan FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, encryptedEmail), "user")
}

// FindUserByToken resolves an API token to its user, for the auth middleware
func (s *PostgresService) FindUserByToken(ctx context.Context, token string) (*User, error) {
	query := `SELECT id, name, email, subscription_id, plan FROM users WHERE api_token = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, token), "user")
}

func (s *PostgresService) scanUser(row *sql.Row, what string) (*User, error) {
	user := &User{}
	var subscriptionID, plan sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &subscriptionID, &plan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	if subscriptionID.Valid {
		user.SubscriptionID = subscriptionID.String
	}
	if plan.Valid {
		user.Plan = plan.String
	}
	return user, nil
}
