package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"harmony-match/internal/domain"
)

// VectorRepository persiste vectores de personalidad y su historial. El
// contrato de round-trip es la codificación compacta del dominio; la
// columna pgvector existe para búsqueda aproximada de candidatos.
type VectorRepository interface {
	Get(ctx context.Context, userID string) (*domain.PersonalityVector, error)
	Save(ctx context.Context, userID string, v *domain.PersonalityVector) error
	AppendHistory(ctx context.Context, userID string, records []domain.UpdateRecord) error
	SearchSimilar(ctx context.Context, v *domain.PersonalityVector, limit int) ([]domain.Candidate, error)
}

/*
========================
 Codificación de fuentes
========================
*/

var sourceToByte = map[string]byte{
	domain.SourceUnset:            0,
	domain.SourceConversation:     1,
	domain.SourceFeedback:         2,
	domain.SourceProfileInference: 3,
	domain.SourceCrossValidation:  4,
}

var byteToSource = map[byte]string{
	0: domain.SourceUnset,
	1: domain.SourceConversation,
	2: domain.SourceFeedback,
	3: domain.SourceProfileInference,
	4: domain.SourceCrossValidation,
}

func encodeSources(sources []string) []byte {
	out := make([]byte, len(sources))
	for i, s := range sources {
		out[i] = sourceToByte[s]
	}
	return out
}

func decodeSources(data []byte, into []string) {
	for i, b := range data {
		if i >= len(into) {
			return
		}
		src, ok := byteToSource[b]
		if !ok {
			src = domain.SourceUnset
		}
		into[i] = src
	}
}

/*
========================
 Implementación Postgres
========================
*/

type PgVectorRepository struct {
	pool *pgxpool.Pool
}

func NewPgVectorRepository(pool *pgxpool.Pool) *PgVectorRepository {
	return &PgVectorRepository{pool: pool}
}

func (r *PgVectorRepository) Get(ctx context.Context, userID string) (*domain.PersonalityVector, error) {
	const query = `
		SELECT values_compact, confidence_compact, sources_compact, update_count, last_updated
		FROM personality_vectors
		WHERE user_id = $1
	`

	var valuesCompact, confidenceCompact, sourcesCompact []byte
	var updateCount int
	var lastUpdated time.Time

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&valuesCompact,
		&confidenceCompact,
		&sourcesCompact,
		&updateCount,
		&lastUpdated,
	)
	if err != nil {
		return nil, err
	}

	v, err := domain.Decode(valuesCompact)
	if err != nil {
		return nil, fmt.Errorf("decode vector for %s: %w", userID, err)
	}
	if err := v.DecodeConfidence(confidenceCompact); err != nil {
		return nil, fmt.Errorf("decode confidence for %s: %w", userID, err)
	}
	decodeSources(sourcesCompact, v.Source)
	v.UpdateCount = updateCount
	v.LastUpdated = lastUpdated
	return v, nil
}

func (r *PgVectorRepository) Save(ctx context.Context, userID string, v *domain.PersonalityVector) error {
	const query = `
		INSERT INTO personality_vectors (user_id, embedding, values_compact, confidence_compact, sources_compact, update_count, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			values_compact = EXCLUDED.values_compact,
			confidence_compact = EXCLUDED.confidence_compact,
			sources_compact = EXCLUDED.sources_compact,
			update_count = EXCLUDED.update_count,
			last_updated = EXCLUDED.last_updated
	`

	embedding := make([]float32, len(v.Values))
	for i, val := range v.Values {
		embedding[i] = float32(val)
	}

	_, err := r.pool.Exec(ctx, query,
		userID,
		pgvector.NewVector(embedding),
		v.Encode(),
		v.EncodeConfidence(),
		encodeSources(v.Source),
		v.UpdateCount,
		v.LastUpdated,
	)
	return err
}

func (r *PgVectorRepository) AppendHistory(ctx context.Context, userID string, records []domain.UpdateRecord) error {
	const query = `
		INSERT INTO vector_history (user_id, dimension, old_value, new_value, source, evidence_summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, rec := range records {
		if _, err := r.pool.Exec(ctx, query,
			userID,
			rec.Dimension,
			rec.OldValue,
			rec.NewValue,
			rec.Source,
			rec.EvidenceSummary,
			rec.Timestamp,
		); err != nil {
			return fmt.Errorf("append history for %s: %w", userID, err)
		}
	}
	return nil
}

// SearchSimilar devuelve los vectores más cercanos por distancia coseno
// usando el índice pgvector. Es pre-selección: el scorer decide después.
func (r *PgVectorRepository) SearchSimilar(ctx context.Context, v *domain.PersonalityVector, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT user_id, values_compact, confidence_compact, update_count, last_updated
		FROM personality_vectors
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	embedding := make([]float32, len(v.Values))
	for i, val := range v.Values {
		embedding[i] = float32(val)
	}

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var userID string
		var valuesCompact, confidenceCompact []byte
		var updateCount int
		var lastUpdated time.Time

		if err := rows.Scan(&userID, &valuesCompact, &confidenceCompact, &updateCount, &lastUpdated); err != nil {
			return nil, err
		}
		vec, err := domain.Decode(valuesCompact)
		if err != nil {
			return nil, fmt.Errorf("decode candidate %s: %w", userID, err)
		}
		if err := vec.DecodeConfidence(confidenceCompact); err != nil {
			return nil, fmt.Errorf("decode candidate confidence %s: %w", userID, err)
		}
		vec.UpdateCount = updateCount
		vec.LastUpdated = lastUpdated
		out = append(out, domain.Candidate{ID: userID, Vector: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

/*
========================
 Implementación en memoria
========================
*/

// MemoryVectorRepository respalda tests y el CLI local. Guarda clones para
// que el llamador no comparta estado con el store.
type MemoryVectorRepository struct {
	mu      sync.RWMutex
	vectors map[string]*domain.PersonalityVector
	history map[string][]domain.UpdateRecord
}

func NewMemoryVectorRepository() *MemoryVectorRepository {
	return &MemoryVectorRepository{
		vectors: make(map[string]*domain.PersonalityVector),
		history: make(map[string][]domain.UpdateRecord),
	}
}

func (r *MemoryVectorRepository) Get(_ context.Context, userID string) (*domain.PersonalityVector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vectors[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return v.Clone(), nil
}

func (r *MemoryVectorRepository) Save(_ context.Context, userID string, v *domain.PersonalityVector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vectors[userID] = v.Clone()
	return nil
}

func (r *MemoryVectorRepository) AppendHistory(_ context.Context, userID string, records []domain.UpdateRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[userID] = append(r.history[userID], records...)
	return nil
}

func (r *MemoryVectorRepository) SearchSimilar(_ context.Context, v *domain.PersonalityVector, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make([]domain.Candidate, 0, len(r.vectors))
	for id, vec := range r.vectors {
		candidates = append(candidates, domain.Candidate{ID: id, Vector: vec.Clone()})
	}
	// Orden por similitud coseno descendente, sin índice: suficiente para
	// tests y la herramienta local.
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if v.CosineSimilarity(candidates[j].Vector) > v.CosineSimilarity(candidates[i].Vector) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			}
		}
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
