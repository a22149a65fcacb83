package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          BIGSERIAL PRIMARY KEY,
	room_id     TEXT        NOT NULL,
	room_name   TEXT        NOT NULL,
	winner      TEXT        NOT NULL,
	days        INT         NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS game_players (
	game_id   BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	player_id TEXT   NOT NULL,
	username  TEXT   NOT NULL,
	role      TEXT   NOT NULL,
	is_alive  BOOLEAN NOT NULL,
	PRIMARY KEY (game_id, player_id)
);
`

// PostgresStore archives finished games into postgres via a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects and makes sure the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// ArchiveGame writes the game row and its final roster in one transaction.
func (s *PostgresStore) ArchiveGame(ctx context.Context, rec game.GameRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var gameID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO games (room_id, room_name, winner, days, finished_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rec.RoomID, rec.RoomName, string(rec.Winner), rec.Days, rec.FinishedAt,
	).Scan(&gameID)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	for _, p := range rec.Players {
		if _, err := tx.Exec(ctx,
			`INSERT INTO game_players (game_id, player_id, username, role, is_alive)
			 VALUES ($1, $2, $3, $4, $5)`,
			gameID, p.ID, p.Username, string(p.Role), p.IsAlive,
		); err != nil {
			return fmt.Errorf("insert game player: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GamesPlayed counts archived games, optionally scoped to one room.
func (s *PostgresStore) GamesPlayed(ctx context.Context, roomID string) (int, error) {
	query := `SELECT COUNT(*) FROM games`
	args := []any{}
	if roomID != "" {
		query += ` WHERE room_id = $1`
		args = append(args, roomID)
	}
	var n int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}
