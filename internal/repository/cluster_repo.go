package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgClusterRepository persiste la membresía de clusters. Satisface
// service.ClusterMembership; el upsert por user_id da de baja implícita
// la asignación anterior.
type PgClusterRepository struct {
	pool *pgxpool.Pool
}

func NewPgClusterRepository(pool *pgxpool.Pool) *PgClusterRepository {
	return &PgClusterRepository{pool: pool}
}

func (r *PgClusterRepository) Assign(ctx context.Context, userID, clusterID string) error {
	const query = `
		INSERT INTO cluster_members (user_id, cluster_id, assigned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET
			cluster_id = EXCLUDED.cluster_id,
			assigned_at = EXCLUDED.assigned_at
	`
	_, err := r.pool.Exec(ctx, query, userID, clusterID, time.Now().UTC())
	return err
}

func (r *PgClusterRepository) ClusterOf(ctx context.Context, userID string) (string, error) {
	const query = `
		SELECT cluster_id FROM cluster_members WHERE user_id = $1
	`
	var clusterID string
	err := r.pool.QueryRow(ctx, query, userID).Scan(&clusterID)
	return clusterID, err
}

func (r *PgClusterRepository) MembersOf(ctx context.Context, clusterID string) ([]string, error) {
	const query = `
		SELECT user_id FROM cluster_members WHERE cluster_id = $1
	`
	rows, err := r.pool.Query(ctx, query, clusterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

/*
========================
 Implementación en memoria
========================
*/

type MemoryClusterRepository struct {
	mu     sync.Mutex
	byUser map[string]string
}

func NewMemoryClusterRepository() *MemoryClusterRepository {
	return &MemoryClusterRepository{byUser: make(map[string]string)}
}

func (r *MemoryClusterRepository) Assign(_ context.Context, userID, clusterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = clusterID
	return nil
}

func (r *MemoryClusterRepository) ClusterOf(_ context.Context, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUser[userID], nil
}

func (r *MemoryClusterRepository) MembersOf(_ context.Context, clusterID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var members []string
	for user, cluster := range r.byUser {
		if cluster == clusterID {
			members = append(members, user)
		}
	}
	return members, nil
}
