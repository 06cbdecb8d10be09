package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"harmony-match/internal/domain"
)

type mockMembership struct {
	assigned map[string]string
	err      error
}

func newMockMembership() *mockMembership {
	return &mockMembership{assigned: make(map[string]string)}
}

func (m *mockMembership) Assign(_ context.Context, userID, clusterID string) error {
	if m.err != nil {
		return m.err
	}
	m.assigned[userID] = clusterID
	return nil
}

func (m *mockMembership) ClusterOf(_ context.Context, userID string) (string, error) {
	return m.assigned[userID], nil
}

func (m *mockMembership) MembersOf(_ context.Context, clusterID string) ([]string, error) {
	var out []string
	for id, c := range m.assigned {
		if c == clusterID {
			out = append(out, id)
		}
	}
	return out, nil
}

func TestAssignPicksNearestArchetype(t *testing.T) {
	a := NewClusterAssigner(newMockMembership(), zap.NewNop())

	// Un vector clavado en el centroide del analista debe asignarse ahí.
	vec := domain.NewPersonalityVector()
	for category, value := range map[string]float64{
		domain.CategoryCognitiveStyle: 0.80,
		domain.CategoryCoreTraits:     0.45,
		domain.CategoryCommunication:  0.55,
	} {
		r, err := domain.RangeOf(category)
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		for i := r.Start; i < r.End; i++ {
			vec.Values[i] = value
		}
	}

	clusterID, sim := a.Assign(vec)
	if clusterID != "analyst" {
		t.Fatalf("expected analyst, got %s (similarity %f)", clusterID, sim)
	}
	if sim <= 0.99 {
		t.Fatalf("exact centroid must be near-perfect similarity, got %f", sim)
	}
}

func TestAssignNeutralVectorStillLands(t *testing.T) {
	a := NewClusterAssigner(newMockMembership(), zap.NewNop())
	clusterID, sim := a.Assign(domain.NewPersonalityVector())

	known := false
	for _, c := range a.Archetypes() {
		if c.ID == clusterID {
			known = true
		}
	}
	if !known {
		t.Fatalf("assigned unknown cluster %s", clusterID)
	}
	if sim <= 0 {
		t.Fatalf("expected positive similarity, got %f", sim)
	}
}

func TestAssignAndTrackUpdatesMembership(t *testing.T) {
	membership := newMockMembership()
	a := NewClusterAssigner(membership, zap.NewNop())

	clusterID, err := a.AssignAndTrack(context.Background(), "user-1", domain.NewPersonalityVector())
	if err != nil {
		t.Fatalf("assign and track: %v", err)
	}
	if membership.assigned["user-1"] != clusterID {
		t.Fatalf("membership not updated: %v", membership.assigned)
	}
}

func TestAssignAndTrackPropagatesStoreError(t *testing.T) {
	membership := newMockMembership()
	membership.err = errors.New("store down")
	a := NewClusterAssigner(membership, zap.NewNop())

	if _, err := a.AssignAndTrack(context.Background(), "user-1", domain.NewPersonalityVector()); err == nil {
		t.Fatal("expected error from the membership store")
	}
}

func TestCompatibleClustersIncludesSelf(t *testing.T) {
	a := NewClusterAssigner(newMockMembership(), zap.NewNop())

	for _, c := range a.Archetypes() {
		compatible := a.CompatibleClusters(c.ID)
		if len(compatible) == 0 {
			t.Fatalf("cluster %s has no compatible set", c.ID)
		}
		if compatible[0] != c.ID {
			t.Fatalf("cluster %s: compatible set must include itself first, got %v", c.ID, compatible)
		}
	}

	if got := a.CompatibleClusters("nope"); got != nil {
		t.Fatalf("unknown cluster must return nil, got %v", got)
	}
}

func TestArchetypeCompatibilityReferencesAreValid(t *testing.T) {
	a := NewClusterAssigner(newMockMembership(), zap.NewNop())
	ids := make(map[string]struct{})
	for _, c := range a.Archetypes() {
		ids[c.ID] = struct{}{}
	}
	if len(ids) != 8 {
		t.Fatalf("expected 8 archetypes, got %d", len(ids))
	}
	for _, c := range a.Archetypes() {
		for _, other := range c.CompatibleClusterIDs {
			if _, ok := ids[other]; !ok {
				t.Fatalf("cluster %s references unknown cluster %s", c.ID, other)
			}
			if other == c.ID {
				t.Fatalf("cluster %s lists itself in its adjacency", c.ID)
			}
		}
	}
}
