package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/chapas/internal/match"
	"github.com/playmatatu/chapas/internal/session"
)

// MatchRecord is a row of the matches table.
type MatchRecord struct {
	ID         string     `db:"id" json:"id"`
	Role       string     `db:"role" json:"role"`
	Status     string     `db:"status" json:"status"`
	Phase      string     `db:"phase" json:"phase"`
	HomeGoals  int        `db:"home_goals" json:"home_goals"`
	AwayGoals  int        `db:"away_goals" json:"away_goals"`
	LinkLost   bool       `db:"link_lost" json:"link_lost"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// ShotRecord is a row of the match_shots table.
type ShotRecord struct {
	Frame    int64   `db:"frame" json:"frame"`
	Team     int     `db:"team" json:"team"`
	CapIndex int     `db:"cap_index" json:"cap_index"`
	ImpulseX float32 `db:"impulse_x" json:"impulse_x"`
	ImpulseZ float32 `db:"impulse_z" json:"impulse_z"`
	Remote   bool    `db:"remote" json:"remote"`
}

// SQLStore keeps the history of every match in Postgres.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type statement struct {
	query string
	args  []interface{}
}

func (s *SQLStore) MatchStarted(ctx context.Context, info session.Info) {
	if s.db == nil {
		return
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO matches (id, role, status, phase, created_at) VALUES ($1,$2,'playing','first_half',$3)`,
		info.ID, info.Role, info.StartedAt)
	if err != nil {
		log.Printf("[DB] Failed to create match %s: %v", info.ID, err)
	}
}

func (s *SQLStore) Events(ctx context.Context, info session.Info, events []match.Event) {
	if s.db == nil {
		return
	}
	for _, st := range statements(info.ID, events) {
		if _, err := s.db.ExecContext(ctx, st.query, st.args...); err != nil {
			log.Printf("[DB] Failed to record events for match %s: %v", info.ID, err)
		}
	}
}

// Snapshot is a no-op: frames live in Redis only.
func (s *SQLStore) Snapshot(context.Context, session.Info, match.Snapshot) {}

// statements maps the events worth keeping to SQL.
func statements(matchID string, events []match.Event) []statement {
	var out []statement
	for _, e := range events {
		switch e.Kind {
		case match.EventShot:
			out = append(out, statement{
				`INSERT INTO match_shots (match_id, frame, team, cap_index, impulse_x, impulse_z, remote) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				[]interface{}{matchID, int64(e.Frame), int(e.Team), e.CapIndex, e.Impulse[0], e.Impulse[2], e.Remote},
			})
		case match.EventGoal:
			out = append(out, statement{
				`UPDATE matches SET home_goals = $2, away_goals = $3 WHERE id = $1`,
				[]interface{}{matchID, e.Goals[match.Home], e.Goals[match.Away]},
			})
		case match.EventHalfEnd:
			out = append(out, statement{
				`UPDATE matches SET phase = $2 WHERE id = $1`,
				[]interface{}{matchID, e.Phase},
			})
		case match.EventConnectionLost:
			out = append(out, statement{
				`UPDATE matches SET link_lost = TRUE WHERE id = $1`,
				[]interface{}{matchID},
			})
		case match.EventLeave:
			out = append(out, statement{
				`UPDATE matches SET status = 'finished', phase = 'ended', home_goals = $2, away_goals = $3, finished_at = NOW() WHERE id = $1`,
				[]interface{}{matchID, e.Goals[match.Home], e.Goals[match.Away]},
			})
		}
	}
	return out
}

// Match loads one match row.
func (s *SQLStore) Match(ctx context.Context, matchID string) (*MatchRecord, error) {
	if s.db == nil {
		return nil, ErrNotFound
	}
	var rec MatchRecord
	err := s.db.GetContext(ctx, &rec, `SELECT id, role, status, phase, home_goals, away_goals, link_lost, created_at, finished_at FROM matches WHERE id = $1`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load match: %w", err)
	}
	return &rec, nil
}

// Shots lists the shots of a match in play order.
func (s *SQLStore) Shots(ctx context.Context, matchID string) ([]ShotRecord, error) {
	if s.db == nil {
		return nil, ErrNotFound
	}
	shots := []ShotRecord{}
	err := s.db.SelectContext(ctx, &shots, `SELECT frame, team, cap_index, impulse_x, impulse_z, remote FROM match_shots WHERE match_id = $1 ORDER BY id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("load shots: %w", err)
	}
	return shots, nil
}
