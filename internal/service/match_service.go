package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"harmony-match/internal/domain"
	"harmony-match/internal/email"
	"harmony-match/internal/repository"
)

// MatchService arma el ranking de candidatos y procesa resultados de
// matches presentados.
type MatchService struct {
	vectors  repository.VectorRepository
	outcomes repository.OutcomeRepository
	users    repository.UserRepository
	scorer   *CompatibilityScorer
	clusters *ClusterAssigner
	notifier email.Sender
	logger   *zap.Logger
}

func NewMatchService(
	vectors repository.VectorRepository,
	outcomes repository.OutcomeRepository,
	users repository.UserRepository,
	scorer *CompatibilityScorer,
	clusters *ClusterAssigner,
	notifier email.Sender,
	logger *zap.Logger,
) *MatchService {
	return &MatchService{
		vectors:  vectors,
		outcomes: outcomes,
		users:    users,
		scorer:   scorer,
		clusters: clusters,
		notifier: notifier,
		logger:   logger,
	}
}

// RankCandidates puntúa al espectador contra cada candidato en paralelo
// y devuelve el ranking descendente por overall. No hay dependencia de
// orden entre scorings: fan-out por goroutine y fan-in ordenado.
func (s *MatchService) RankCandidates(ctx context.Context, viewerID string, viewer *domain.PersonalityVector, candidates []domain.Candidate) []domain.RankedCandidate {
	if len(candidates) == 0 {
		return nil
	}

	// Pre-filtro por clusters compatibles: optimización, nunca el único
	// determinante. Si el filtro vacía la lista se puntúa la lista
	// completa.
	filtered := s.filterByCluster(viewer, candidates)
	if len(filtered) == 0 {
		filtered = candidates
	}

	ranked := make([]domain.RankedCandidate, len(filtered))
	var wg sync.WaitGroup
	for i, cand := range filtered {
		wg.Add(1)
		go func(i int, cand domain.Candidate) {
			defer wg.Done()
			ranked[i] = domain.RankedCandidate{
				ID:     cand.ID,
				Result: s.scorer.ScoreFor(ctx, viewer, cand.Vector, viewerID),
			}
		}(i, cand)
	}
	wg.Wait()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.Overall > ranked[j].Result.Overall
	})
	return ranked
}

// DiscoverCandidates arma la lista de candidatos desde el índice de
// vecinos aproximados y la rankea para el espectador.
func (s *MatchService) DiscoverCandidates(ctx context.Context, viewerID string, viewer *domain.PersonalityVector, limit int) ([]domain.RankedCandidate, error) {
	candidates, err := s.vectors.SearchSimilar(ctx, viewer, limit)
	if err != nil {
		return nil, fmt.Errorf("search candidates for %s: %w", viewerID, err)
	}
	// El propio espectador puede venir en el resultado ANN.
	filtered := candidates[:0]
	for _, c := range candidates {
		if c.ID != viewerID {
			filtered = append(filtered, c)
		}
	}
	return s.RankCandidates(ctx, viewerID, viewer, filtered), nil
}

func (s *MatchService) filterByCluster(viewer *domain.PersonalityVector, candidates []domain.Candidate) []domain.Candidate {
	if s.clusters == nil {
		return candidates
	}
	viewerCluster, _ := s.clusters.Assign(viewer)
	compatible := make(map[string]struct{})
	for _, id := range s.clusters.CompatibleClusters(viewerCluster) {
		compatible[id] = struct{}{}
	}

	var out []domain.Candidate
	for _, cand := range candidates {
		candCluster, _ := s.clusters.Assign(cand.Vector)
		if _, ok := compatible[candCluster]; ok {
			out = append(out, cand)
		}
	}
	return out
}

// RecordOutcome registra el like/dislike de un match presentado, ajusta
// los pesos personalizados del espectador y detecta likes recíprocos.
// Devuelve true si el resultado produjo un match mutuo.
func (s *MatchService) RecordOutcome(ctx context.Context, viewerID, candidateID string, liked bool) (bool, error) {
	outcome := domain.MatchOutcome{
		ID:          uuid.NewString(),
		ViewerID:    viewerID,
		CandidateID: candidateID,
		Liked:       liked,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.outcomes.Create(ctx, outcome); err != nil {
		return false, fmt.Errorf("record outcome: %w", err)
	}

	// Aprendizaje de pesos: se re-puntúa el par para obtener los factores
	// que explican este resultado.
	viewerVec, err := s.vectors.Get(ctx, viewerID)
	if err == nil {
		candVec, errCand := s.vectors.Get(ctx, candidateID)
		if errCand == nil {
			result := s.scorer.ScoreFor(ctx, viewerVec, candVec, viewerID)
			if _, errLearn := s.scorer.LearnFromOutcome(ctx, viewerID, result, liked); errLearn != nil {
				s.logger.Warn("weight learning failed", zap.String("user_id", viewerID), zap.Error(errLearn))
			}
		}
	}

	if !liked {
		return false, nil
	}

	reciprocal, err := s.outcomes.HasLiked(ctx, candidateID, viewerID)
	if err != nil {
		s.logger.Warn("reciprocal like lookup failed",
			zap.String("viewer_id", viewerID),
			zap.String("candidate_id", candidateID),
			zap.Error(err))
		return false, nil
	}
	if !reciprocal {
		return false, nil
	}

	s.logger.Info("mutual match",
		zap.String("viewer_id", viewerID),
		zap.String("candidate_id", candidateID))
	s.notifyMutualMatch(ctx, viewerID, candidateID)
	return true, nil
}

// notifyMutualMatch avisa por correo a ambas partes. Mejor esfuerzo: un
// sender deshabilitado o un fallo de SMTP no afectan el flujo.
func (s *MatchService) notifyMutualMatch(ctx context.Context, viewerID, candidateID string) {
	if s.notifier == nil || s.users == nil {
		return
	}
	for _, pair := range [][2]string{{viewerID, candidateID}, {candidateID, viewerID}} {
		user, err := s.users.GetByID(ctx, pair[0])
		if err != nil || user.Email == "" {
			continue
		}
		subject := "You have a new match"
		body := fmt.Sprintf("Good news %s: you and another member liked each other. Open the app to start the conversation.", user.DisplayName)
		if err := s.notifier.Send(ctx, user.Email, subject, body); err != nil {
			s.logger.Warn("match notification failed", zap.String("user_id", pair[0]), zap.Error(err))
		}
	}
}
