package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"harmony-match/internal/domain"
	"harmony-match/internal/repository"
)

// TextKind distingue el origen del texto que entra al pipeline.
const (
	TextKindStatement = "STATEMENT"
	TextKindFeedback  = "FEEDBACK"
)

// ProfileService orquesta el pipeline de actualización de perfil:
// extraer -> reconciliar -> validar consistencia -> reconciliar (una sola
// pasada extra). Toda mutación del vector de un usuario se serializa por
// id; lecturas de otros usuarios nunca bloquean.
type ProfileService struct {
	vectors    repository.VectorRepository
	extractor  *FeedbackExtractor
	reconciler *UpdateReconciler
	validator  *ConsistencyValidator
	clusters   *ClusterAssigner
	logger     *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewProfileService(
	vectors repository.VectorRepository,
	extractor *FeedbackExtractor,
	reconciler *UpdateReconciler,
	validator *ConsistencyValidator,
	clusters *ClusterAssigner,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		vectors:    vectors,
		extractor:  extractor,
		reconciler: reconciler,
		validator:  validator,
		clusters:   clusters,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// userLock devuelve el mutex del usuario, creándolo si no existe. Los
// vectores son independientes entre usuarios: no hay locking cruzado.
func (s *ProfileService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// GetOrCreateVector devuelve el vector del usuario, o uno neutral (0.5,
// confianza 0) si todavía no existe. La ausencia de perfil nunca es un
// error para el flujo de cara al usuario.
func (s *ProfileService) GetOrCreateVector(ctx context.Context, userID string) (*domain.PersonalityVector, error) {
	v, err := s.vectors.Get(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewPersonalityVector(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vector for %s: %w", userID, err)
	}
	return v, nil
}

// ExtractAndApply procesa un texto del usuario y aplica los ajustes
// resultantes a su vector. Llamadas repetidas con el mismo texto generan
// entradas de historial duplicadas pero de magnitud acotada: una
// afirmación repetida es evidencia que refuerza, no un duplicado a
// dedupe. Devuelve el resultado de extracción (con su bandera de baja
// confianza) y los registros aplicados.
func (s *ProfileService) ExtractAndApply(ctx context.Context, userID, text, kind string) (domain.ExtractionResult, []domain.UpdateRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.ExtractionResult{}, nil, fmt.Errorf("extract and apply: empty user id")
	}

	var extraction domain.ExtractionResult
	if kind == TextKindFeedback {
		extraction = s.extractor.ExtractFromMatchFeedback(text)
	} else {
		extraction = s.extractor.ExtractFromStatement(text)
	}

	if len(extraction.Proposals) == 0 {
		// Resultado bien formado y vacío: el colaborador de chat decide
		// si repregunta; acá no hay nada que escribir.
		return extraction, nil, nil
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	vector, err := s.GetOrCreateVector(ctx, userID)
	if err != nil {
		return extraction, nil, err
	}

	records := s.reconciler.Apply(vector, extraction.Proposals)

	// Pasada correctiva única: las correcciones del validador vuelven por
	// el reconciliador pero no se re-validan, garantizando terminación.
	corrections := s.validator.Validate(vector)
	if len(corrections) > 0 {
		records = append(records, s.reconciler.Apply(vector, corrections)...)
	}

	if err := s.vectors.Save(ctx, userID, vector); err != nil {
		return extraction, records, fmt.Errorf("save vector for %s: %w", userID, err)
	}
	if err := s.vectors.AppendHistory(ctx, userID, records); err != nil {
		return extraction, records, fmt.Errorf("persist history for %s: %w", userID, err)
	}

	if s.clusters != nil {
		if _, err := s.clusters.AssignAndTrack(ctx, userID, vector); err != nil {
			// La asignación de cluster es una optimización de búsqueda,
			// no corrección: un fallo no invalida la actualización.
			s.logger.Warn("cluster reassignment failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	s.logger.Info("profile updated",
		zap.String("user_id", userID),
		zap.String("kind", kind),
		zap.Int("proposals", len(extraction.Proposals)),
		zap.Int("writes", len(records)),
		zap.Bool("low_confidence", extraction.LowConfidence))

	return extraction, records, nil
}
