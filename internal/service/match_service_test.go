package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"harmony-match/internal/domain"
	"harmony-match/internal/repository"
)

type mockUserRepo struct {
	users map[string]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

type mockSender struct {
	sent []string
}

func (m *mockSender) Send(_ context.Context, toEmail, _ string, _ string) error {
	m.sent = append(m.sent, toEmail)
	return nil
}

type matchFixture struct {
	svc      *MatchService
	vectors  *repository.MemoryVectorRepository
	users    *mockUserRepo
	notifier *mockSender
	weights  WeightsStore
}

func newMatchFixture(withClusters bool) *matchFixture {
	logger := zap.NewNop()
	vectors := repository.NewMemoryVectorRepository()
	outcomes := repository.NewMemoryOutcomeRepository()
	users := newMockUserRepo()
	notifier := &mockSender{}
	weights := NewMemoryWeightsStore()
	scorer := NewCompatibilityScorer(weights, 0.05, logger)

	var clusters *ClusterAssigner
	if withClusters {
		clusters = NewClusterAssigner(repository.NewMemoryClusterRepository(), logger)
	}

	return &matchFixture{
		svc:      NewMatchService(vectors, outcomes, users, scorer, clusters, notifier, logger),
		vectors:  vectors,
		users:    users,
		notifier: notifier,
		weights:  weights,
	}
}

func clashingVector() *domain.PersonalityVector {
	v := domain.NewPersonalityVector()
	for _, category := range []string{domain.CategoryValues, domain.CategoryCommunication, domain.CategoryLifestyle} {
		r, _ := domain.RangeOf(category)
		for i := r.Start; i < r.End; i++ {
			v.Values[i] = 0.98
		}
	}
	return v
}

func TestRankCandidatesOrdersByHarmony(t *testing.T) {
	f := newMatchFixture(false)
	viewer := domain.NewPersonalityVector()

	ranked := f.svc.RankCandidates(context.Background(), "viewer", viewer, []domain.Candidate{
		{ID: "clash", Vector: clashingVector()},
		{ID: "twin", Vector: viewer.Clone()},
	})

	if len(ranked) != 2 {
		t.Fatalf("expected two ranked candidates, got %d", len(ranked))
	}
	if ranked[0].ID != "twin" {
		t.Fatalf("expected the twin first, got %s", ranked[0].ID)
	}
	if ranked[0].Result.Overall <= ranked[1].Result.Overall {
		t.Fatalf("ranking is not descending: %f then %f", ranked[0].Result.Overall, ranked[1].Result.Overall)
	}
}

func TestRankCandidatesEmptyInput(t *testing.T) {
	f := newMatchFixture(false)
	if ranked := f.svc.RankCandidates(context.Background(), "viewer", domain.NewPersonalityVector(), nil); ranked != nil {
		t.Fatalf("expected nil for empty input, got %d", len(ranked))
	}
}

func TestRankCandidatesClusterFilterNeverEmpties(t *testing.T) {
	f := newMatchFixture(true)
	viewer := domain.NewPersonalityVector()

	// Un único candidato: o pasa el pre-filtro o dispara el fallback a la
	// lista completa; en ningún caso el resultado queda vacío.
	ranked := f.svc.RankCandidates(context.Background(), "viewer", viewer, []domain.Candidate{
		{ID: "only", Vector: clashingVector()},
	})
	if len(ranked) != 1 {
		t.Fatalf("cluster pre-filter must never drop every candidate, got %d", len(ranked))
	}
}

func TestDiscoverCandidatesExcludesViewer(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(false)

	viewer := domain.NewPersonalityVector()
	if err := f.vectors.Save(ctx, "viewer", viewer); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := f.vectors.Save(ctx, "other", domain.NewPersonalityVector()); err != nil {
		t.Fatalf("save: %v", err)
	}

	ranked, err := f.svc.DiscoverCandidates(ctx, "viewer", viewer, 10)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	for _, c := range ranked {
		if c.ID == "viewer" {
			t.Fatal("viewer must not appear in their own candidate list")
		}
	}
	if len(ranked) != 1 {
		t.Fatalf("expected one candidate, got %d", len(ranked))
	}
}

func TestRecordOutcomeDetectsMutualMatch(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(false)

	_ = f.users.Create(ctx, domain.User{ID: "alice", Email: "alice@example.com", DisplayName: "Alice"})
	_ = f.users.Create(ctx, domain.User{ID: "bob", Email: "bob@example.com", DisplayName: "Bob"})

	mutual, err := f.svc.RecordOutcome(ctx, "alice", "bob", true)
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if mutual {
		t.Fatal("one-sided like must not be a mutual match")
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("no notifications before the match is mutual, got %d", len(f.notifier.sent))
	}

	mutual, err = f.svc.RecordOutcome(ctx, "bob", "alice", true)
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if !mutual {
		t.Fatal("reciprocal like must produce a mutual match")
	}
	if len(f.notifier.sent) != 2 {
		t.Fatalf("both parties must be notified, got %d sends", len(f.notifier.sent))
	}
}

func TestRecordOutcomeDislikeNeverMatches(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(false)

	if _, err := f.svc.RecordOutcome(ctx, "alice", "bob", true); err != nil {
		t.Fatalf("record: %v", err)
	}
	mutual, err := f.svc.RecordOutcome(ctx, "bob", "alice", false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if mutual {
		t.Fatal("a dislike must never close a match")
	}
}

func TestRecordOutcomeLearnsWeights(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(false)

	viewer := domain.NewPersonalityVector()
	if err := f.vectors.Save(ctx, "alice", viewer); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := f.vectors.Save(ctx, "bob", domain.NewPersonalityVector()); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := f.svc.RecordOutcome(ctx, "alice", "bob", true); err != nil {
		t.Fatalf("record: %v", err)
	}

	learned, err := f.weights.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get weights: %v", err)
	}
	defaults := domain.DefaultWeights()
	changed := false
	for cat, w := range learned.Weights {
		if w != defaults[cat] {
			changed = true
		}
	}
	if !changed {
		t.Fatal("a recorded outcome with known vectors must adjust the viewer's weights")
	}
}

func TestRecordOutcomeWithoutVectorsStillRecords(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(false)

	// Sin vectores guardados el aprendizaje se omite, el resultado igual
	// queda registrado.
	if _, err := f.svc.RecordOutcome(ctx, "alice", "bob", true); err != nil {
		t.Fatalf("record: %v", err)
	}
	mutual, err := f.svc.RecordOutcome(ctx, "bob", "alice", true)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !mutual {
		t.Fatal("mutual detection must not depend on stored vectors")
	}
}
