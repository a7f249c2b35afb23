package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"worklog-backend/internal/domain/worklog"
)

// Snapshot is a short-TTL read cache in front of LoadAll. It only serves
// listing; mutating flows never consult it for row location and must call
// Invalidate before returning.
type Snapshot struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewSnapshot(rdb *redis.Client, sheetID string, ttl time.Duration) *Snapshot {
	return &Snapshot{rdb: rdb, key: "worklog:snapshot:" + sheetID, ttl: ttl}
}

func (s *Snapshot) Get(ctx context.Context) ([]worklog.Record, bool) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("snapshot cache read failed; falling through to sheet")
		}
		return nil, false
	}
	var recs []worklog.Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, false
	}
	return recs, true
}

func (s *Snapshot) Set(ctx context.Context, recs []worklog.Record) {
	raw, err := json.Marshal(recs)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		log.WithError(err).Warn("snapshot cache write failed")
	}
}

func (s *Snapshot) Invalidate(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}
