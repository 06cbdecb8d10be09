package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"harmony-match/internal/domain"
)

// WeightsStore persiste los pesos personalizados por usuario. Un usuario
// sin pesos guardados recibe los globales de fábrica.
type WeightsStore interface {
	Get(ctx context.Context, userID string) (*domain.PersonalizedWeights, error)
	Save(ctx context.Context, weights *domain.PersonalizedWeights) error
}

/*
========================
 Implementación en memoria
========================
*/

type memoryWeightsStore struct {
	mu    sync.Mutex
	items map[string]*domain.PersonalizedWeights
}

func NewMemoryWeightsStore() WeightsStore {
	return &memoryWeightsStore{items: make(map[string]*domain.PersonalizedWeights)}
}

func (s *memoryWeightsStore) Get(_ context.Context, userID string) (*domain.PersonalizedWeights, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.items[userID]; ok {
		out := &domain.PersonalizedWeights{UserID: w.UserID, Weights: make(map[string]float64, len(w.Weights))}
		for k, v := range w.Weights {
			out.Weights[k] = v
		}
		return out, nil
	}
	return domain.NewPersonalizedWeights(userID), nil
}

func (s *memoryWeightsStore) Save(_ context.Context, weights *domain.PersonalizedWeights) error {
	if weights == nil || strings.TrimSpace(weights.UserID) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := &domain.PersonalizedWeights{UserID: weights.UserID, Weights: make(map[string]float64, len(weights.Weights))}
	for k, v := range weights.Weights {
		cp.Weights[k] = v
	}
	s.items[weights.UserID] = cp
	return nil
}

/*
========================
 Implementación Redis
========================
*/

type redisWeightsStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisWeightsStore crea un store respaldado en Redis con TTL de
// refresco. ttl <= 0 desactiva la expiración.
func NewRedisWeightsStore(client *redis.Client, ttl time.Duration) WeightsStore {
	if client == nil {
		return nil
	}
	return &redisWeightsStore{client: client, ttl: ttl, prefix: "harmony:weights:"}
}

func (s *redisWeightsStore) Get(ctx context.Context, userID string) (*domain.PersonalizedWeights, error) {
	key := s.prefix + strings.TrimSpace(userID)
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return domain.NewPersonalizedWeights(userID), nil
	}
	if err != nil {
		return nil, err
	}
	var w domain.PersonalizedWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Weights == nil {
		return domain.NewPersonalizedWeights(userID), nil
	}
	return &w, nil
}

func (s *redisWeightsStore) Save(ctx context.Context, weights *domain.PersonalizedWeights) error {
	if weights == nil || strings.TrimSpace(weights.UserID) == "" {
		return nil
	}
	data, err := json.Marshal(weights)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+weights.UserID, data, s.ttl).Err()
}
