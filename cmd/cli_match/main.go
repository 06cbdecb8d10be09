package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"harmony-match/internal/domain"
	"harmony-match/internal/repository"
	"harmony-match/internal/service"
)

// Sandbox local del motor de armonía: todo en memoria, sin Postgres ni
// Redis. Útil para calibrar patrones y pesos antes de tocar producción.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	logger := zap.NewExample()
	defer logger.Sync()

	vectorRepo := repository.NewMemoryVectorRepository()
	outcomeRepo := repository.NewMemoryOutcomeRepository()
	clusterRepo := repository.NewMemoryClusterRepository()
	weightsStore := service.NewMemoryWeightsStore()

	extractor := service.NewFeedbackExtractor(service.DefaultPatternTable(), logger)
	reconciler := service.NewUpdateReconciler(logger)
	validator := service.NewConsistencyValidator(logger)
	clusterAssigner := service.NewClusterAssigner(clusterRepo, logger)
	scorer := service.NewCompatibilityScorer(weightsStore, 0.05, logger)

	profileSvc := service.NewProfileService(vectorRepo, extractor, reconciler, validator, clusterAssigner, logger)
	matchSvc := service.NewMatchService(vectorRepo, outcomeRepo, nil, scorer, clusterAssigner, nil, logger)

	users := map[string]string{}
	current := ensureLocalUser(reader, users)

	for {
		fmt.Printf("\n--- Usuario actual: %s ---\n", users[current])
		fmt.Println("[1] Ingresar afirmacion sobre mi")
		fmt.Println("[2] Ingresar feedback sobre un match")
		fmt.Println("[3] Ver resumen de mi perfil")
		fmt.Println("[4] Puntuar contra otro usuario")
		fmt.Println("[5] Registrar like/dislike")
		fmt.Println("[6] Ver candidatos rankeados")
		fmt.Println("[7] Cambiar de usuario")
		fmt.Println("[8] Salir")
		fmt.Print("Selecciona una opcion: ")

		line, _ := reader.ReadString('\n')
		switch strings.TrimSpace(line) {
		case "1":
			submitTextFlow(ctx, reader, profileSvc, current, service.TextKindStatement)
		case "2":
			submitTextFlow(ctx, reader, profileSvc, current, service.TextKindFeedback)
		case "3":
			showProfileFlow(ctx, profileSvc, clusterAssigner, current)
		case "4":
			scoreFlow(ctx, reader, profileSvc, scorer, users, current)
		case "5":
			outcomeFlow(ctx, reader, matchSvc, users, current)
		case "6":
			discoverFlow(ctx, profileSvc, matchSvc, users, current)
		case "7":
			current = ensureLocalUser(reader, users)
		case "8":
			os.Exit(0)
		default:
			fmt.Println("Opcion invalida.")
		}
	}
}

func ensureLocalUser(reader *bufio.Reader, users map[string]string) string {
	if len(users) > 0 {
		fmt.Println("Usuarios existentes:")
		names := make([]string, 0, len(users))
		for id := range users {
			names = append(names, id)
		}
		sort.Slice(names, func(i, j int) bool { return users[names[i]] < users[names[j]] })
		for i, id := range names {
			fmt.Printf("[%d] %s\n", i+1, users[id])
		}
		fmt.Println("[N] Crear nuevo usuario")
		fmt.Print("Selecciona un usuario: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		if !strings.EqualFold(choice, "N") {
			for i, id := range names {
				if choice == fmt.Sprintf("%d", i+1) {
					return id
				}
			}
			fmt.Println("Seleccion invalida, creando usuario nuevo.")
		}
	}

	fmt.Print("Nombre del usuario: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		name = "anon"
	}
	id := uuid.NewString()
	users[id] = name
	fmt.Printf("Usuario %s creado (ID: %s)\n", name, id)
	return id
}

func submitTextFlow(ctx context.Context, reader *bufio.Reader, profileSvc *service.ProfileService, userID, kind string) {
	fmt.Print("Texto > ")
	text, err := reader.ReadString('\n')
	if err != nil {
		fmt.Printf("error leyendo input: %v\n", err)
		return
	}

	extraction, records, err := profileSvc.ExtractAndApply(ctx, userID, strings.TrimSpace(text), kind)
	if err != nil {
		fmt.Printf("error aplicando texto: %v\n", err)
		return
	}
	if extraction.LowConfidence {
		fmt.Println("Señal debil: el texto no alcanzo para inferir nada.")
	}
	fmt.Printf("Propuestas: %d, escrituras: %d\n", len(extraction.Proposals), len(records))
	for _, rec := range records {
		fmt.Printf("  %s: %.3f -> %.3f (%s)\n",
			domain.FacetNameOf(rec.Dimension), rec.OldValue, rec.NewValue, rec.Source)
	}
}

func showProfileFlow(ctx context.Context, profileSvc *service.ProfileService, clusters *service.ClusterAssigner, userID string) {
	vector, err := profileSvc.GetOrCreateVector(ctx, userID)
	if err != nil {
		fmt.Printf("error cargando perfil: %v\n", err)
		return
	}

	fmt.Printf("Actualizaciones acumuladas: %d\n", vector.UpdateCount)
	for _, category := range domain.Categories() {
		r, err := domain.RangeOf(category)
		if err != nil {
			continue
		}
		var sumVal, sumConf float64
		for i := r.Start; i < r.End; i++ {
			sumVal += vector.Values[i]
			sumConf += vector.Confidence[i]
		}
		n := float64(r.Len())
		fmt.Printf("  %-22s valor medio %.3f  confianza media %.2f\n", category, sumVal/n, sumConf/n)
	}

	clusterID, similarity := clusters.Assign(vector)
	fmt.Printf("Arquetipo: %s (similitud %.3f)\n", clusterID, similarity)
}

func scoreFlow(ctx context.Context, reader *bufio.Reader, profileSvc *service.ProfileService, scorer *service.CompatibilityScorer, users map[string]string, viewerID string) {
	otherID := pickOtherUser(reader, users, viewerID)
	if otherID == "" {
		return
	}

	viewer, err := profileSvc.GetOrCreateVector(ctx, viewerID)
	if err != nil {
		fmt.Printf("error cargando perfil: %v\n", err)
		return
	}
	other, err := profileSvc.GetOrCreateVector(ctx, otherID)
	if err != nil {
		fmt.Printf("error cargando perfil: %v\n", err)
		return
	}

	result := scorer.ScoreFor(ctx, viewer, other, viewerID)
	fmt.Printf("Overall %.3f [%s]  atraccion %.3f  repulsion %.3f  confianza %.2f\n",
		result.Overall, result.Band, result.AttractionForce, result.RepulsionForce, result.Confidence)
	for _, factor := range result.Factors {
		fmt.Printf("  %-24s %+0.3f  %s\n", factor.Category, factor.SignedImpact, factor.Description)
	}
}

func outcomeFlow(ctx context.Context, reader *bufio.Reader, matchSvc *service.MatchService, users map[string]string, viewerID string) {
	otherID := pickOtherUser(reader, users, viewerID)
	if otherID == "" {
		return
	}
	fmt.Print("Like? [s/n]: ")
	line, _ := reader.ReadString('\n')
	liked := strings.EqualFold(strings.TrimSpace(line), "s")

	mutual, err := matchSvc.RecordOutcome(ctx, viewerID, otherID, liked)
	if err != nil {
		fmt.Printf("error registrando resultado: %v\n", err)
		return
	}
	if mutual {
		fmt.Println("Match mutuo!")
	} else {
		fmt.Println("Resultado registrado.")
	}
}

func discoverFlow(ctx context.Context, profileSvc *service.ProfileService, matchSvc *service.MatchService, users map[string]string, viewerID string) {
	viewer, err := profileSvc.GetOrCreateVector(ctx, viewerID)
	if err != nil {
		fmt.Printf("error cargando perfil: %v\n", err)
		return
	}

	ranked, err := matchSvc.DiscoverCandidates(ctx, viewerID, viewer, 20)
	if err != nil {
		fmt.Printf("error buscando candidatos: %v\n", err)
		return
	}
	if len(ranked) == 0 {
		fmt.Println("No hay candidatos todavia: los otros usuarios necesitan perfil.")
		return
	}
	for i, cand := range ranked {
		name := users[cand.ID]
		if name == "" {
			name = cand.ID
		}
		fmt.Printf("[%d] %-12s overall %.3f [%s]\n", i+1, name, cand.Result.Overall, cand.Result.Band)
	}
}

func pickOtherUser(reader *bufio.Reader, users map[string]string, viewerID string) string {
	var others []string
	for id := range users {
		if id != viewerID {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		fmt.Println("No hay otros usuarios: crea uno con la opcion de cambiar usuario.")
		return ""
	}
	sort.Slice(others, func(i, j int) bool { return users[others[i]] < users[others[j]] })

	fmt.Println("Otros usuarios:")
	for i, id := range others {
		fmt.Printf("[%d] %s\n", i+1, users[id])
	}
	fmt.Print("Selecciona un usuario: ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)
	for i, id := range others {
		if choice == fmt.Sprintf("%d", i+1) {
			return id
		}
	}
	fmt.Println("Seleccion invalida.")
	return ""
}
