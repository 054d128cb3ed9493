package connections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrProfileNotFound is returned for lookups of unknown profile ids.
var ErrProfileNotFound = errors.New("connection profile not found")

const (
	profileKeyPrefix = "connprofile:"
	profileIndexKey  = "connprofiles"
)

// ProfileStore persists connection profiles in Redis as JSON, indexed by
// a set of ids so List stays a two-round-trip operation.
type ProfileStore struct {
	client *redis.Client
}

// NewProfileStore wraps an existing Redis client.
func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

func profileKey(id uuid.UUID) string {
	return profileKeyPrefix + id.String()
}

// Save upserts a profile.
func (s *ProfileStore) Save(ctx context.Context, p Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, profileKey(p.ID), payload, 0)
	pipe.SAdd(ctx, profileIndexKey, p.ID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Get fetches one profile by id.
func (s *ProfileStore) Get(ctx context.Context, id uuid.UUID) (Profile, error) {
	payload, err := s.client.Get(ctx, profileKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(payload, &p); err != nil {
		return Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}

// List returns every saved profile. Index entries whose payload has
// vanished are skipped rather than failing the whole listing.
func (s *ProfileStore) List(ctx context.Context) ([]Profile, error) {
	ids, err := s.client.SMembers(ctx, profileIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles := make([]Profile, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		p, err := s.Get(ctx, id)
		if errors.Is(err, ErrProfileNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Delete removes a profile and its index entry.
func (s *ProfileStore) Delete(ctx context.Context, id uuid.UUID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, profileKey(id))
	pipe.SRem(ctx, profileIndexKey, id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
