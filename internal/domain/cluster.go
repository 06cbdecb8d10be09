package domain

// ArchetypeCluster es uno de los perfiles centroides fijos usados para
// pre-filtrar candidatos antes del scoring por pares. La membresía es lo
// único mutable; centroides y adyacencia son configuración estática.
type ArchetypeCluster struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Centroid             *PersonalityVector `json:"-"`
	CompatibleClusterIDs []string           `json:"compatible_cluster_ids"`
}

// ClusterAssignment registra a qué cluster pertenece un usuario.
type ClusterAssignment struct {
	UserID     string  `json:"user_id"`
	ClusterID  string  `json:"cluster_id"`
	Similarity float64 `json:"similarity"`
}
