package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opencampus-hq/timereport/internal/database"
	"github.com/opencampus-hq/timereport/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool configuration
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// GetUserByID loads one user record.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, first_name, last_name, email
		FROM users
		WHERE id = $1
	`

	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	u := &models.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetLogEvents returns one user's activity rows in ascending timestamp order.
// The calendar day bucket is derived in SQL from the event timestamp so the
// aggregator never re-derives it.
func (r *PostgresRepository) GetLogEvents(ctx context.Context, userID, start, end int64, allowedTargets []string) ([]models.LogEvent, error) {
	query := `
		SELECT l.id, l.time_created,
		       to_char(to_timestamp(l.time_created) AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		       l.course_id, l.target
		FROM activity_log l
		WHERE l.user_id = $1
		  AND l.time_created BETWEEN $2 AND $3
		  AND l.course_id <> $4
	`
	args := []interface{}{userID, start, end, int64(reservedCourseID)}

	if len(allowedTargets) > 0 {
		query += " AND l.target = ANY($5)"
		args = append(args, allowedTargets)
	}

	query += " ORDER BY l.time_created ASC"

	ctx, cancel := database.ScanContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query log events: %w", err)
	}
	defer rows.Close()

	events := []models.LogEvent{}
	for rows.Next() {
		var e models.LogEvent
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Day, &e.CourseID, &e.Target); err != nil {
			return nil, fmt.Errorf("failed to scan log event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate log events: %w", err)
	}

	return events, nil
}

// GetDistinctTargets lists every distinct target seen in the activity log.
func (r *PostgresRepository) GetDistinctTargets(ctx context.Context) ([]string, error) {
	ctx, cancel := database.QueryContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT DISTINCT target FROM activity_log ORDER BY target`)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	targets := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate targets: %w", err)
	}

	return targets, nil
}

// CreateUser inserts a user record.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, first_name, last_name, email)
		VALUES ($1, $2, $3, $4, $5)
	`

	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.FirstName, user.LastName, user.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// InsertLogEvents bulk-inserts activity rows using the COPY protocol.
func (r *PostgresRepository) InsertLogEvents(ctx context.Context, userID int64, events []models.LogEvent) error {
	rows := make([][]interface{}, 0, len(events))
	for _, e := range events {
		rows = append(rows, []interface{}{userID, e.CourseID, e.Target, e.Timestamp})
	}

	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"activity_log"},
		[]string{"user_id", "course_id", "target", "time_created"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert log events: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}
