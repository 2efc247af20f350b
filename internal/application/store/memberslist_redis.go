package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LeonVreling/oms-statutory/internal/application/models"
	"github.com/LeonVreling/oms-statutory/pkg/domain"
	"github.com/LeonVreling/oms-statutory/pkg/platform/sentinel"
)

// memberslistTTL bounds staleness of externally pushed rosters; the supplier
// re-pushes well within this window.
const memberslistTTL = 24 * time.Hour

// RedisMembersList implements MembersListStore on Redis. Rosters are pushed
// by the external body-management system and read-only here, so a shared
// cache with TTL is the natural fit.
type RedisMembersList struct {
	client *redis.Client
}

func NewRedisMembersList(client *redis.Client) *RedisMembersList {
	return &RedisMembersList{client: client}
}

func key(bodyID domain.BodyID) string {
	return "statutory:memberslist:" + bodyID.String()
}

func (s *RedisMembersList) FindByBody(ctx context.Context, bodyID domain.BodyID) (*models.MembersList, error) {
	raw, err := s.client.Get(ctx, key(bodyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get members list: %w", err)
	}
	var list models.MembersList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode members list: %w", err)
	}
	return &list, nil
}

func (s *RedisMembersList) Put(ctx context.Context, list *models.MembersList) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode members list: %w", err)
	}
	if err := s.client.Set(ctx, key(list.BodyID), raw, memberslistTTL).Err(); err != nil {
		return fmt.Errorf("set members list: %w", err)
	}
	return nil
}
