package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playmatatu/chapas/internal/match"
	"github.com/playmatatu/chapas/internal/session"
	"github.com/redis/go-redis/v9"
)

// EventsChannel carries every match event as JSON for other processes.
const EventsChannel = "match_events"

const stateTTL = time.Hour

var ErrNotFound = errors.New("not found")

// EventMessage is what gets published on EventsChannel.
type EventMessage struct {
	MatchID string        `json:"match_id"`
	Events  []match.Event `json:"events"`
}

// RedisStore keeps the latest frame of each match in Redis and publishes
// its events.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func stateKey(matchID string) string { return "match:" + matchID + ":state" }
func infoKey(matchID string) string  { return "match:" + matchID + ":info" }

func (s *RedisStore) MatchStarted(ctx context.Context, info session.Info) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(info)
	if err != nil {
		log.Printf("[REDIS] Failed to marshal info for match %s: %v", info.ID, err)
		return
	}
	if err := s.rdb.SetEx(ctx, infoKey(info.ID), data, stateTTL).Err(); err != nil {
		log.Printf("[REDIS] Failed to save info for match %s: %v", info.ID, err)
	}
}

func (s *RedisStore) Events(ctx context.Context, info session.Info, events []match.Event) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(EventMessage{MatchID: info.ID, Events: events})
	if err != nil {
		log.Printf("[REDIS] Failed to marshal events for match %s: %v", info.ID, err)
		return
	}
	if err := s.rdb.Publish(ctx, EventsChannel, data).Err(); err != nil {
		log.Printf("[REDIS] Failed to publish events for match %s: %v", info.ID, err)
	}
}

func (s *RedisStore) Snapshot(ctx context.Context, info session.Info, snap match.Snapshot) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[REDIS] Failed to marshal snapshot for match %s: %v", info.ID, err)
		return
	}
	if err := s.rdb.SetEx(ctx, stateKey(info.ID), data, stateTTL).Err(); err != nil {
		log.Printf("[REDIS] Failed to save snapshot for match %s: %v", info.ID, err)
	}
}

// LatestSnapshot loads the last saved frame of a match.
func (s *RedisStore) LatestSnapshot(ctx context.Context, matchID string) (*match.Snapshot, error) {
	if s.rdb == nil {
		return nil, ErrNotFound
	}
	data, err := s.rdb.Get(ctx, stateKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap match.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
