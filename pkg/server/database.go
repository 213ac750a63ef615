package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/tslocum/tavla"
	"github.com/jlouis/glicko2"
)

// defaultRating is the rating of a player who has not finished a game, in
// hundredths of a point.
const defaultRating = 150000

// gameRecord is a finished game as stored in the database.
type gameRecord struct {
	ID      int
	Started time.Time
	Ended   time.Time
	Player1 string
	Player2 string
	Winner  tavla.Team
	Replay  []byte
}

// recorder stores finished games and player ratings.
type recorder interface {
	// recordGame stores a finished game and returns its ID.
	recordGame(ctx context.Context, r *gameRecord) (int, error)
	// recordResult updates the ratings of both players of a finished game
	// and returns their new ratings.
	recordResult(ctx context.Context, winner string, loser string) (winnerRating int, loserRating int, err error)
	// rating returns the rating of the named player.
	rating(ctx context.Context, name string) (int, error)
	// matchInfo returns the game with the given ID, or nil when there is
	// no such game.
	matchInfo(ctx context.Context, id int) (*gameRecord, error)
	Close() error
}

// openRecorder connects to the database described by dataSource. Sources
// starting with postgres:// are served by PostgreSQL and sources starting
// with sqlite:// by SQLite. Without a source nothing is recorded.
func openRecorder(dataSource string) (recorder, error) {
	switch {
	case dataSource == "":
		return nopRecorder{}, nil
	case strings.HasPrefix(dataSource, "postgres://") || strings.HasPrefix(dataSource, "postgresql://"):
		r, err := openPostgres(dataSource)
		if err != nil {
			return nil, err
		}
		return r, nil
	case strings.HasPrefix(dataSource, "sqlite://"):
		r, err := openSQLite(strings.TrimPrefix(dataSource, "sqlite://"))
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported data source: %s", dataSource)
	}
}

type nopRecorder struct{}

func (nopRecorder) recordGame(ctx context.Context, r *gameRecord) (int, error) {
	return 0, nil
}

func (nopRecorder) recordResult(ctx context.Context, winner string, loser string) (int, int, error) {
	return defaultRating, defaultRating, nil
}

func (nopRecorder) rating(ctx context.Context, name string) (int, error) {
	return defaultRating, nil
}

func (nopRecorder) matchInfo(ctx context.Context, id int) (*gameRecord, error) {
	return nil, nil
}

func (nopRecorder) Close() error {
	return nil
}

type ratingPlayer struct {
	r       float64
	rd      float64
	sigma   float64
	outcome float64
}

func (p ratingPlayer) R() float64 {
	return p.r
}

func (p ratingPlayer) RD() float64 {
	return p.rd
}

func (p ratingPlayer) Sigma() float64 {
	return p.sigma
}

func (p ratingPlayer) SJ() float64 {
	return p.outcome
}

// rate returns the new ratings of the winner and loser of a game. Ratings
// are stored in hundredths of a point.
func rate(winner int, loser int) (int, int) {
	rating1, rating2 := float64(winner)/100, float64(loser)/100
	rating1New, _, _ := glicko2.Rank(rating1, 50, 0.06, []glicko2.Opponent{ratingPlayer{rating2, 30, 0.06, 1}}, 0.6)
	rating2New, _, _ := glicko2.Rank(rating2, 50, 0.06, []glicko2.Opponent{ratingPlayer{rating1, 30, 0.06, 0}}, 0.6)
	return int(rating1New * 100), int(rating2New * 100)
}

// rated reports whether a game between the named players affects their
// ratings. Randomly named guests are not rated.
func rated(player1 string, player2 string) bool {
	guest := func(name string) bool {
		return name == "" || strings.HasPrefix(strings.ToLower(name), "guest_")
	}
	return !guest(player1) && !guest(player2) && !strings.EqualFold(player1, player2)
}
