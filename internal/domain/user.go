package domain

import "time"

// User es la cuenta mínima que necesita la capa HTTP. El motor de
// compatibilidad solo conoce ids; el resto es plomería de autenticación.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MatchOutcome es el evento de resultado de un match presentado.
type MatchOutcome struct {
	ID          string    `json:"id"`
	ViewerID    string    `json:"viewer_id"`
	CandidateID string    `json:"candidate_id"`
	Liked       bool      `json:"liked"`
	CreatedAt   time.Time `json:"created_at"`
}

// Candidate es el par {id, vector} que entrega el colaborador de búsqueda
// ya filtrado por geografía/básicos. El núcleo solo requiere esto.
type Candidate struct {
	ID     string             `json:"id"`
	Vector *PersonalityVector `json:"-"`
}

// RankedCandidate es un candidato ya puntuado por el scorer.
type RankedCandidate struct {
	ID     string              `json:"id"`
	Result CompatibilityResult `json:"result"`
}
