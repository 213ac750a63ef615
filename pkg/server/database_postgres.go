package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"codeberg.org/tslocum/tavla"
	"github.com/jackc/pgx/v5"
)

const postgresSchema = `
CREATE TABLE game (
	id      serial PRIMARY KEY,
	started bigint NOT NULL,
	ended   bigint NOT NULL,
	player1 text NOT NULL,
	player2 text NOT NULL,
	winner  integer NOT NULL,
	replay  text NOT NULL DEFAULT ''
);
CREATE TABLE player (
	name   text PRIMARY KEY,
	rating integer NOT NULL DEFAULT 150000,
	wins   integer NOT NULL DEFAULT 0,
	losses integer NOT NULL DEFAULT 0
);
`

type postgresRecorder struct {
	db   *pgx.Conn
	lock sync.Mutex
}

func openPostgres(dataSource string) (*postgresRecorder, error) {
	ctx := context.Background()
	db, err := pgx.Connect(ctx, dataSource)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	r := &postgresRecorder{
		db: db,
	}
	_, err = db.Exec(ctx, "SELECT 1=1")
	if err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("test postgres connection: %w", err)
	}
	err = r.initDB(ctx)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	return r, nil
}

func (r *postgresRecorder) initDB(ctx context.Context) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var result int
	err = tx.QueryRow(ctx, "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = 'game'").Scan(&result)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	} else if result > 0 {
		return nil // Database has been initialized.
	}

	_, err = tx.Exec(ctx, postgresSchema)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Println("Initialized database schema")
	return tx.Commit(ctx)
}

func (r *postgresRecorder) recordGame(ctx context.Context, g *gameRecord) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var id int
	err := r.db.QueryRow(ctx, "INSERT INTO game (started, ended, player1, player2, winner, replay) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id", g.Started.Unix(), g.Ended.Unix(), g.Player1, g.Player2, int(g.Winner), string(g.Replay)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to record game: %w", err)
	}
	return id, nil
}

func (r *postgresRecorder) recordResult(ctx context.Context, winner string, loser string) (int, int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	winner, loser = strings.ToLower(winner), strings.ToLower(loser)
	var ratings [2]int
	for i, name := range []string{winner, loser} {
		_, err = tx.Exec(ctx, "INSERT INTO player (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
		if err != nil {
			return 0, 0, err
		}
		err = tx.QueryRow(ctx, "SELECT rating FROM player WHERE name = $1", name).Scan(&ratings[i])
		if err != nil {
			return 0, 0, err
		}
	}

	winnerRating, loserRating := rate(ratings[0], ratings[1])
	_, err = tx.Exec(ctx, "UPDATE player SET rating = $1, wins = wins + 1 WHERE name = $2", winnerRating, winner)
	if err != nil {
		return 0, 0, err
	}
	_, err = tx.Exec(ctx, "UPDATE player SET rating = $1, losses = losses + 1 WHERE name = $2", loserRating, loser)
	if err != nil {
		return 0, 0, err
	}
	return winnerRating, loserRating, tx.Commit(ctx)
}

func (r *postgresRecorder) rating(ctx context.Context, name string) (int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var rating int
	err := r.db.QueryRow(ctx, "SELECT rating FROM player WHERE name = $1", strings.ToLower(name)).Scan(&rating)
	if errors.Is(err, pgx.ErrNoRows) {
		return defaultRating, nil
	} else if err != nil {
		return 0, err
	}
	return rating, nil
}

func (r *postgresRecorder) matchInfo(ctx context.Context, id int) (*gameRecord, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var (
		started, ended int64
		winner         int
		replay         string
	)
	g := &gameRecord{
		ID: id,
	}
	err := r.db.QueryRow(ctx, "SELECT started, ended, player1, player2, winner, replay FROM game WHERE id = $1 AND replay != ''", id).Scan(&started, &ended, &g.Player1, &g.Player2, &winner, &replay)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	g.Started, g.Ended = time.Unix(started, 0), time.Unix(ended, 0)
	g.Winner = tavla.Team(winner)
	g.Replay = []byte(replay)
	return g, nil
}

func (r *postgresRecorder) Close() error {
	return r.db.Close(context.Background())
}
