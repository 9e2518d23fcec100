package implementation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	auth_models "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models/auth"
	interfaces "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Repository/Interfaces"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create user
func (r *PostgresUserRepository) Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error) {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (user_id, username, password, device_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, user.UserID, user.Username,
		user.Password, user.DeviceID, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, interfaces.ErrDuplicateUser
		}
		return nil, err
	}

	return user, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*auth_models.User, error) {
	query := `SELECT user_id, username, password, device_id, created_at FROM users WHERE username = $1`

	var user auth_models.User

	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.UserID, &user.Username,
		&user.Password, &user.DeviceID, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresUserRepository) GetAll(ctx context.Context) ([]auth_models.UserSummary, error) {
	query := `SELECT username, device_id FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]auth_models.UserSummary, 0)
	for rows.Next() {
		var user auth_models.UserSummary

		if err := rows.Scan(&user.Username, &user.DeviceID); err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, rows.Err()
}
