package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/tslocum/tavla"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS game (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	started INTEGER NOT NULL,
	ended   INTEGER NOT NULL,
	player1 TEXT NOT NULL,
	player2 TEXT NOT NULL,
	winner  INTEGER NOT NULL,
	replay  TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS player (
	name   TEXT PRIMARY KEY,
	rating INTEGER NOT NULL DEFAULT 150000,
	wins   INTEGER NOT NULL DEFAULT 0,
	losses INTEGER NOT NULL DEFAULT 0
);
`

type sqliteRecorder struct {
	db *sql.DB
}

func openSQLite(path string) (*sqliteRecorder, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite db: %w", err)
	}
	return &sqliteRecorder{db: db}, nil
}

func (r *sqliteRecorder) recordGame(ctx context.Context, g *gameRecord) (int, error) {
	result, err := r.db.ExecContext(ctx, "INSERT INTO game (started, ended, player1, player2, winner, replay) VALUES (?, ?, ?, ?, ?, ?)", g.Started.Unix(), g.Ended.Unix(), g.Player1, g.Player2, int(g.Winner), string(g.Replay))
	if err != nil {
		return 0, fmt.Errorf("failed to record game: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to record game: %w", err)
	}
	return int(id), nil
}

func (r *sqliteRecorder) recordResult(ctx context.Context, winner string, loser string) (int, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	winner, loser = strings.ToLower(winner), strings.ToLower(loser)
	var ratings [2]int
	for i, name := range []string{winner, loser} {
		_, err = tx.ExecContext(ctx, "INSERT OR IGNORE INTO player (name) VALUES (?)", name)
		if err != nil {
			return 0, 0, err
		}
		err = tx.QueryRowContext(ctx, "SELECT rating FROM player WHERE name = ?", name).Scan(&ratings[i])
		if err != nil {
			return 0, 0, err
		}
	}

	winnerRating, loserRating := rate(ratings[0], ratings[1])
	_, err = tx.ExecContext(ctx, "UPDATE player SET rating = ?, wins = wins + 1 WHERE name = ?", winnerRating, winner)
	if err != nil {
		return 0, 0, err
	}
	_, err = tx.ExecContext(ctx, "UPDATE player SET rating = ?, losses = losses + 1 WHERE name = ?", loserRating, loser)
	if err != nil {
		return 0, 0, err
	}
	return winnerRating, loserRating, tx.Commit()
}

func (r *sqliteRecorder) rating(ctx context.Context, name string) (int, error) {
	var rating int
	err := r.db.QueryRowContext(ctx, "SELECT rating FROM player WHERE name = ?", strings.ToLower(name)).Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultRating, nil
	} else if err != nil {
		return 0, err
	}
	return rating, nil
}

func (r *sqliteRecorder) matchInfo(ctx context.Context, id int) (*gameRecord, error) {
	var (
		started, ended int64
		winner         int
		replay         string
	)
	g := &gameRecord{
		ID: id,
	}
	err := r.db.QueryRowContext(ctx, "SELECT started, ended, player1, player2, winner, replay FROM game WHERE id = ? AND replay != ''", id).Scan(&started, &ended, &g.Player1, &g.Player2, &winner, &replay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	g.Started, g.Ended = time.Unix(started, 0), time.Unix(ended, 0)
	g.Winner = tavla.Team(winner)
	g.Replay = []byte(replay)
	return g, nil
}

func (r *sqliteRecorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
