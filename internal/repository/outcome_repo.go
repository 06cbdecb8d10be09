package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"harmony-match/internal/domain"
)

// OutcomeRepository persiste los resultados de matches presentados y
// permite detectar likes recíprocos.
type OutcomeRepository interface {
	Create(ctx context.Context, outcome domain.MatchOutcome) error
	HasLiked(ctx context.Context, viewerID, candidateID string) (bool, error)
}

/*
========================
 Implementación Postgres
========================
*/

type PgOutcomeRepository struct {
	pool *pgxpool.Pool
}

func NewPgOutcomeRepository(pool *pgxpool.Pool) *PgOutcomeRepository {
	return &PgOutcomeRepository{pool: pool}
}

func (r *PgOutcomeRepository) Create(ctx context.Context, outcome domain.MatchOutcome) error {
	const query = `
		INSERT INTO match_outcomes (id, viewer_id, candidate_id, liked, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		outcome.ID,
		outcome.ViewerID,
		outcome.CandidateID,
		outcome.Liked,
		outcome.CreatedAt,
	)
	return err
}

// HasLiked responde si viewer dio like a candidate en algún momento.
func (r *PgOutcomeRepository) HasLiked(ctx context.Context, viewerID, candidateID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM match_outcomes
			WHERE viewer_id = $1 AND candidate_id = $2 AND liked
		)
	`
	var liked bool
	err := r.pool.QueryRow(ctx, query, viewerID, candidateID).Scan(&liked)
	return liked, err
}

/*
========================
 Implementación en memoria
========================
*/

type MemoryOutcomeRepository struct {
	mu       sync.Mutex
	outcomes []domain.MatchOutcome
}

func NewMemoryOutcomeRepository() *MemoryOutcomeRepository {
	return &MemoryOutcomeRepository{}
}

func (r *MemoryOutcomeRepository) Create(_ context.Context, outcome domain.MatchOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
	return nil
}

func (r *MemoryOutcomeRepository) HasLiked(_ context.Context, viewerID, candidateID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.outcomes {
		if o.ViewerID == viewerID && o.CandidateID == candidateID && o.Liked {
			return true, nil
		}
	}
	return false, nil
}
