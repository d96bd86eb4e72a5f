package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ConnectPostgres opens a pooled connection and pings it.
func ConnectPostgres(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Attempt is one concluded shot as stored in the attempts table.
type Attempt struct {
	ID          int64     `db:"id" json:"id"`
	Player      string    `db:"player" json:"player"`
	Success     bool      `db:"success" json:"success"`
	Reason      string    `db:"reason" json:"reason"`
	LaunchVX    float64   `db:"launch_vx" json:"launchVx"`
	LaunchVY    float64   `db:"launch_vy" json:"launchVy"`
	Strength    float64   `db:"strength" json:"strength"`
	TargetX     float64   `db:"target_x" json:"targetX"`
	TargetY     float64   `db:"target_y" json:"targetY"`
	TargetWidth float64   `db:"target_width" json:"targetWidth"`
	TargetDepth float64   `db:"target_depth" json:"targetDepth"`
	TargetWall  float64   `db:"target_wall" json:"targetWall"`
	FlightTime  float64   `db:"flight_time" json:"flightTime"`
	Streak      int       `db:"streak" json:"streak"`
	Assisted    bool      `db:"assisted" json:"assisted"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// AttemptLog appends attempts to Postgres.
type AttemptLog struct {
	db *sqlx.DB
}

func NewAttemptLog(db *sqlx.DB) *AttemptLog {
	return &AttemptLog{db: db}
}

const insertAttempt = `INSERT INTO attempts
	(player, success, reason, launch_vx, launch_vy, strength,
	 target_x, target_y, target_width, target_depth, target_wall,
	 flight_time, streak, assisted)
	VALUES
	(:player, :success, :reason, :launch_vx, :launch_vy, :strength,
	 :target_x, :target_y, :target_width, :target_depth, :target_wall,
	 :flight_time, :streak, :assisted)`

func (l *AttemptLog) Append(ctx context.Context, a Attempt) error {
	if _, err := l.db.NamedExecContext(ctx, insertAttempt, a); err != nil {
		return fmt.Errorf("insert attempt for %s: %w", a.Player, err)
	}
	return nil
}

// Recent returns the newest attempts of player, newest first.
func (l *AttemptLog) Recent(ctx context.Context, player string, limit int) ([]Attempt, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	attempts := []Attempt{}
	err := l.db.SelectContext(ctx, &attempts, `SELECT id, player, success, reason, launch_vx, launch_vy,
		strength, target_x, target_y, target_width, target_depth, target_wall, flight_time,
		streak, assisted, created_at
		FROM attempts WHERE player = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, player, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts for %s: %w", player, err)
	}
	return attempts, nil
}
