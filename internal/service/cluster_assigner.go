package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"harmony-match/internal/domain"
)

/*
========================
 Arquetipos
========================
*/

// archetypeSpec define un centroide por sesgos de categoría sobre el
// prior neutral 0.5. Es configuración psicológica de bootstrap, no
// algoritmo: los ocho perfiles y su adyacencia son estáticos.
type archetypeSpec struct {
	id         string
	name       string
	biases     map[string]float64
	compatible []string
}

var archetypeSpecs = []archetypeSpec{
	{
		id: "explorer", name: "The Explorer",
		biases: map[string]float64{
			domain.CategoryCoreTraits:     0.65,
			domain.CategoryCognitiveStyle: 0.70,
			domain.CategoryLifestyle:      0.70,
			domain.CategoryInterests:      0.75,
		},
		compatible: []string{"adventurer", "dreamer", "anchor"},
	},
	{
		id: "builder", name: "The Builder",
		biases: map[string]float64{
			domain.CategoryCoreTraits:   0.60,
			domain.CategoryValues:       0.70,
			domain.CategoryLifestyle:    0.55,
			domain.CategoryRelationship: 0.65,
		},
		compatible: []string{"nurturer", "anchor", "harmonizer"},
	},
	{
		id: "harmonizer", name: "The Harmonizer",
		biases: map[string]float64{
			domain.CategoryCommunication:  0.70,
			domain.CategoryEmotionalIntel: 0.75,
			domain.CategoryRelationship:   0.60,
		},
		compatible: []string{"builder", "nurturer", "dreamer"},
	},
	{
		id: "analyst", name: "The Analyst",
		biases: map[string]float64{
			domain.CategoryCognitiveStyle: 0.80,
			domain.CategoryCoreTraits:     0.45,
			domain.CategoryCommunication:  0.55,
		},
		compatible: []string{"explorer", "dreamer", "anchor"},
	},
	{
		id: "nurturer", name: "The Nurturer",
		biases: map[string]float64{
			domain.CategoryEmotionalIntel: 0.80,
			domain.CategoryValues:         0.70,
			domain.CategoryRelationship:   0.70,
		},
		compatible: []string{"builder", "harmonizer", "adventurer"},
	},
	{
		id: "adventurer", name: "The Adventurer",
		biases: map[string]float64{
			domain.CategoryCoreTraits: 0.70,
			domain.CategoryLifestyle:  0.80,
			domain.CategoryInterests:  0.70,
		},
		compatible: []string{"explorer", "nurturer", "dreamer"},
	},
	{
		id: "dreamer", name: "The Dreamer",
		biases: map[string]float64{
			domain.CategoryCognitiveStyle: 0.65,
			domain.CategoryInterests:      0.65,
			domain.CategoryEmotionalIntel: 0.65,
			domain.CategoryCoreTraits:     0.55,
		},
		compatible: []string{"explorer", "harmonizer", "analyst", "adventurer"},
	},
	{
		id: "anchor", name: "The Anchor",
		biases: map[string]float64{
			domain.CategoryValues:       0.65,
			domain.CategoryRelationship: 0.75,
			domain.CategoryLifestyle:    0.45,
		},
		compatible: []string{"explorer", "builder", "analyst"},
	},
}

func buildArchetypes() []domain.ArchetypeCluster {
	out := make([]domain.ArchetypeCluster, 0, len(archetypeSpecs))
	for _, spec := range archetypeSpecs {
		centroid := domain.NewPersonalityVector()
		for category, value := range spec.biases {
			r, err := domain.RangeOf(category)
			if err != nil {
				panic(fmt.Sprintf("archetype %s: %v", spec.id, err))
			}
			for i := r.Start; i < r.End; i++ {
				centroid.Values[i] = value
			}
		}
		out = append(out, domain.ArchetypeCluster{
			ID:                   spec.id,
			Name:                 spec.name,
			Centroid:             centroid,
			CompatibleClusterIDs: spec.compatible,
		})
	}
	return out
}

/*
========================
 Asignación
========================
*/

// ClusterMembership registra a qué cluster pertenece cada usuario. Estado
// explícito inyectado, no un mapa global del proceso.
type ClusterMembership interface {
	Assign(ctx context.Context, userID, clusterID string) error
	ClusterOf(ctx context.Context, userID string) (string, error)
	MembersOf(ctx context.Context, clusterID string) ([]string, error)
}

// ClusterAssigner asigna vectores al arquetipo más cercano por similitud
// coseno. Solo pre-filtra candidatos: nunca decide compatibilidad por sí
// solo.
type ClusterAssigner struct {
	archetypes []domain.ArchetypeCluster
	membership ClusterMembership
	logger     *zap.Logger
}

func NewClusterAssigner(membership ClusterMembership, logger *zap.Logger) *ClusterAssigner {
	return &ClusterAssigner{
		archetypes: buildArchetypes(),
		membership: membership,
		logger:     logger,
	}
}

// Assign devuelve el id del arquetipo más cercano y su similitud. Función
// pura: no toca la membresía.
func (a *ClusterAssigner) Assign(vector *domain.PersonalityVector) (string, float64) {
	bestID := a.archetypes[0].ID
	bestSim := -1.0
	for _, c := range a.archetypes {
		sim := vector.CosineSimilarity(c.Centroid)
		if sim > bestSim {
			bestSim = sim
			bestID = c.ID
		}
	}
	return bestID, bestSim
}

// AssignAndTrack asigna y actualiza la membresía del usuario (alta en el
// cluster nuevo, baja implícita del anterior).
func (a *ClusterAssigner) AssignAndTrack(ctx context.Context, userID string, vector *domain.PersonalityVector) (string, error) {
	clusterID, sim := a.Assign(vector)
	if a.membership != nil {
		if err := a.membership.Assign(ctx, userID, clusterID); err != nil {
			return "", fmt.Errorf("assign cluster %s to %s: %w", clusterID, userID, err)
		}
	}
	if a.logger != nil {
		a.logger.Debug("cluster assigned",
			zap.String("user_id", userID),
			zap.String("cluster_id", clusterID),
			zap.Float64("similarity", sim))
	}
	return clusterID, nil
}

// CompatibleClusters devuelve los clusters compatibles con el dado,
// incluyéndolo a sí mismo. Un id desconocido devuelve vacío.
func (a *ClusterAssigner) CompatibleClusters(clusterID string) []string {
	for _, c := range a.archetypes {
		if c.ID == clusterID {
			out := make([]string, 0, len(c.CompatibleClusterIDs)+1)
			out = append(out, c.ID)
			out = append(out, c.CompatibleClusterIDs...)
			return out
		}
	}
	return nil
}

// Archetypes expone la tabla estática (solo lectura).
func (a *ClusterAssigner) Archetypes() []domain.ArchetypeCluster {
	return a.archetypes
}
