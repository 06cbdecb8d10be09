package service

import (
	"encoding/json"
	"fmt"
	"os"

	"harmony-match/internal/domain"
)

/*
========================
 Tabla de patrones
========================
*/

// PatternEntry asocia keywords y frases a una faceta del esquema.
// Direction es la interpretación de una mención afirmativa; la extracción
// puede invertirla por negación o por marcadores de exceso.
// La tabla es configuración, no lógica: puede reemplazarse por un JSON
// externo sin redeploy (PATTERN_TABLE_PATH).
type PatternEntry struct {
	Facet     string   `json:"facet"`
	Direction string   `json:"direction"`
	Keywords  []string `json:"keywords"`
	Phrases   []string `json:"phrases,omitempty"`
}

// defaultPatternTable cubre las facetas con señal conversacional más
// frecuente. Facetas opuestas se expresan como entradas separadas sobre la
// misma dimensión (p.ej. "calm" baja anxiety, "anxious" la sube); los
// conflictos dentro de un mismo mensaje los resuelve el reconciliador.
var defaultPatternTable = []PatternEntry{
	// Core traits: openness
	{Facet: "imagination", Direction: domain.DirectionIncrease,
		Keywords: []string{"imaginative", "creative", "dreamer", "daydream"},
		Phrases:  []string{"vivid imagination", "head in the clouds"}},
	{Facet: "artistic_interest", Direction: domain.DirectionIncrease,
		Keywords: []string{"art", "artistic", "museums", "painting", "poetry", "aesthetic"},
		Phrases:  []string{"love of art", "appreciate beauty"}},
	{Facet: "adventurousness", Direction: domain.DirectionIncrease,
		Keywords: []string{"adventurous", "adventure", "spontaneous", "daring", "explore"},
		Phrases:  []string{"try new things", "out of the comfort zone", "up for anything"}},
	{Facet: "adventurousness", Direction: domain.DirectionDecrease,
		Keywords: []string{"routine", "predictable", "cautious", "homebody"},
		Phrases:  []string{"stick to what i know", "creature of habit"}},
	{Facet: "intellect", Direction: domain.DirectionIncrease,
		Keywords: []string{"intellectual", "philosophical", "deep", "smart", "curious"},
		Phrases:  []string{"deep conversations", "love to learn", "big ideas"}},

	// Core traits: conscientiousness
	{Facet: "orderliness", Direction: domain.DirectionIncrease,
		Keywords: []string{"organized", "tidy", "neat", "structured", "methodical"},
		Phrases:  []string{"everything in its place", "likes things organized"}},
	{Facet: "orderliness", Direction: domain.DirectionDecrease,
		Keywords: []string{"messy", "chaotic", "disorganized", "cluttered"},
		Phrases:  []string{"bit of a mess"}},
	{Facet: "dutifulness", Direction: domain.DirectionIncrease,
		Keywords: []string{"reliable", "dependable", "responsible", "trustworthy", "consistent"},
		Phrases:  []string{"keeps their word", "follows through", "can count on"}},
	{Facet: "achievement_striving", Direction: domain.DirectionIncrease,
		Keywords: []string{"ambitious", "driven", "goal", "career", "hardworking", "motivated"},
		Phrases:  []string{"works hard", "career oriented", "sets goals"}},
	{Facet: "self_discipline", Direction: domain.DirectionIncrease,
		Keywords: []string{"disciplined", "focused", "committed", "persistent"},
		Phrases:  []string{"sticks with it", "gets things done"}},
	{Facet: "cautiousness", Direction: domain.DirectionDecrease,
		Keywords: []string{"impulsive", "reckless", "rash"},
		Phrases:  []string{"acts without thinking"}},

	// Core traits: extraversion
	{Facet: "warmth", Direction: domain.DirectionIncrease,
		Keywords: []string{"warm", "friendly", "affectionate", "welcoming", "kind"},
		Phrases:  []string{"makes people feel at home", "warm person"}},
	{Facet: "gregariousness", Direction: domain.DirectionIncrease,
		Keywords: []string{"outgoing", "social", "sociable", "extroverted", "people"},
		Phrases:  []string{"life of the party", "loves being around people", "social butterfly"}},
	{Facet: "gregariousness", Direction: domain.DirectionDecrease,
		Keywords: []string{"introverted", "shy", "reserved", "quiet", "loner"},
		Phrases:  []string{"keeps to themselves", "prefers small groups", "stay at home"}},
	{Facet: "assertiveness", Direction: domain.DirectionIncrease,
		Keywords: []string{"assertive", "confident", "leader", "decisive", "opinionated"},
		Phrases:  []string{"takes charge", "speaks their mind", "stands up for"}},
	{Facet: "activity_level", Direction: domain.DirectionIncrease,
		Keywords: []string{"energetic", "active", "busy", "dynamic", "hyper", "restless"},
		Phrases:  []string{"always on the go", "full of energy", "never sits still"}},
	{Facet: "activity_level", Direction: domain.DirectionDecrease,
		Keywords: []string{"relaxed", "chill", "laid-back", "slow", "mellow"},
		Phrases:  []string{"takes it easy", "slow pace", "laid back"}},
	{Facet: "excitement_seeking", Direction: domain.DirectionIncrease,
		Keywords: []string{"thrill", "adrenaline", "wild", "intense", "party"},
		Phrases:  []string{"thrill seeker", "lives for excitement", "party animal"}},
	{Facet: "cheerfulness", Direction: domain.DirectionIncrease,
		Keywords: []string{"cheerful", "happy", "positive", "upbeat", "optimistic", "smiling"},
		Phrases:  []string{"always smiling", "good vibes", "glass half full"}},
	{Facet: "cheerfulness", Direction: domain.DirectionDecrease,
		Keywords: []string{"gloomy", "negative", "pessimistic", "grumpy"},
		Phrases:  []string{"brings the mood down"}},

	// Core traits: agreeableness
	{Facet: "trust", Direction: domain.DirectionIncrease,
		Keywords: []string{"trusting", "open", "believing"},
		Phrases:  []string{"gives people the benefit of the doubt"}},
	{Facet: "trust", Direction: domain.DirectionDecrease,
		Keywords: []string{"suspicious", "distrustful", "guarded", "cynical"},
		Phrases:  []string{"hard to open up"}},
	{Facet: "honesty", Direction: domain.DirectionIncrease,
		Keywords: []string{"honest", "sincere", "genuine", "authentic", "direct"},
		Phrases:  []string{"tells it like it is", "true to themselves"}},
	{Facet: "altruism", Direction: domain.DirectionIncrease,
		Keywords: []string{"generous", "giving", "helpful", "selfless", "caring"},
		Phrases:  []string{"puts others first", "always helping"}},
	{Facet: "cooperation", Direction: domain.DirectionIncrease,
		Keywords: []string{"cooperative", "flexible", "accommodating", "easygoing"},
		Phrases:  []string{"easy to get along with", "meets halfway"}},
	{Facet: "cooperation", Direction: domain.DirectionDecrease,
		Keywords: []string{"stubborn", "argumentative", "confrontational", "combative"},
		Phrases:  []string{"always has to win", "picks fights"}},
	{Facet: "modesty", Direction: domain.DirectionDecrease,
		Keywords: []string{"arrogant", "cocky", "bragging", "show-off", "vain"},
		Phrases:  []string{"full of themselves", "talks about themselves"}},
	{Facet: "sympathy", Direction: domain.DirectionIncrease,
		Keywords: []string{"compassionate", "sympathetic", "tender", "gentle"},
		Phrases:  []string{"feels for others", "soft heart"}},

	// Core traits: neuroticism
	{Facet: "anxiety", Direction: domain.DirectionIncrease,
		Keywords: []string{"anxious", "nervous", "worried", "stressed", "tense"},
		Phrases:  []string{"worries a lot", "on edge"}},
	{Facet: "anxiety", Direction: domain.DirectionDecrease,
		Keywords: []string{"calm", "serene", "composed", "unflappable", "grounded"},
		Phrases:  []string{"keeps their cool", "nothing fazes them", "takes things in stride"}},
	{Facet: "anger", Direction: domain.DirectionIncrease,
		Keywords: []string{"angry", "temper", "irritable", "hostile", "rage"},
		Phrases:  []string{"short fuse", "loses their temper", "flies off the handle"}},
	{Facet: "depression", Direction: domain.DirectionIncrease,
		Keywords: []string{"sad", "down", "moody", "melancholy"},
		Phrases:  []string{"down a lot", "mood swings"}},
	{Facet: "vulnerability", Direction: domain.DirectionDecrease,
		Keywords: []string{"resilient", "strong", "tough", "stable"},
		Phrases:  []string{"handles pressure", "bounces back"}},

	// Cognitive style
	{Facet: "analytical_thinking", Direction: domain.DirectionIncrease,
		Keywords: []string{"analytical", "logical", "rational", "practical", "pragmatic"},
		Phrases:  []string{"thinks things through", "weighs the options"}},
	{Facet: "intuition", Direction: domain.DirectionIncrease,
		Keywords: []string{"intuitive", "gut", "instinct"},
		Phrases:  []string{"goes with their gut", "reads people well"}},
	{Facet: "creativity", Direction: domain.DirectionIncrease,
		Keywords: []string{"inventive", "original", "innovative", "crafty"},
		Phrases:  []string{"thinks outside the box", "comes up with ideas"}},
	{Facet: "planning", Direction: domain.DirectionIncrease,
		Keywords: []string{"planner", "plans", "scheduled", "punctual"},
		Phrases:  []string{"plans ahead", "likes a plan", "sticks to the schedule"}},
	{Facet: "spontaneity", Direction: domain.DirectionIncrease,
		Keywords: []string{"improvise", "unplanned", "whim"},
		Phrases:  []string{"on a whim", "goes with the flow", "last minute plans"}},
	{Facet: "curiosity", Direction: domain.DirectionIncrease,
		Keywords: []string{"questions", "learning", "wonder"},
		Phrases:  []string{"asks a lot of questions", "wants to know everything"}},

	// Values
	{Facet: "family_orientation", Direction: domain.DirectionIncrease,
		Keywords: []string{"family", "kids", "children", "parents"},
		Phrases:  []string{"family comes first", "wants kids", "close to their family"}},
	{Facet: "ambition", Direction: domain.DirectionIncrease,
		Keywords: []string{"success", "achiever", "wealth", "entrepreneurial"},
		Phrases:  []string{"wants to get ahead", "big dreams"}},
	{Facet: "tradition", Direction: domain.DirectionIncrease,
		Keywords: []string{"traditional", "conservative", "old-fashioned", "customs"},
		Phrases:  []string{"old school", "respects tradition"}},
	{Facet: "tradition", Direction: domain.DirectionDecrease,
		Keywords: []string{"progressive", "unconventional", "modern", "liberal"},
		Phrases:  []string{"breaks the mold"}},
	{Facet: "spirituality", Direction: domain.DirectionIncrease,
		Keywords: []string{"spiritual", "religious", "faith", "mindful", "meditation"},
		Phrases:  []string{"believes in something bigger"}},
	{Facet: "integrity", Direction: domain.DirectionIncrease,
		Keywords: []string{"principled", "ethical", "moral", "fair"},
		Phrases:  []string{"does the right thing", "strong principles"}},
	{Facet: "loyalty", Direction: domain.DirectionIncrease,
		Keywords: []string{"loyal", "faithful", "devoted", "committed"},
		Phrases:  []string{"stands by", "ride or die", "never lets you down"}},
	{Facet: "independence", Direction: domain.DirectionIncrease,
		Keywords: []string{"independent", "self-sufficient", "autonomous", "freedom"},
		Phrases:  []string{"own person", "needs their space", "does their own thing"}},
	{Facet: "generosity", Direction: domain.DirectionIncrease,
		Keywords: []string{"charitable", "volunteers", "donates"},
		Phrases:  []string{"gives back", "shares what they have"}},

	// Communication style
	{Facet: "directness", Direction: domain.DirectionIncrease,
		Keywords: []string{"blunt", "straightforward", "frank", "upfront"},
		Phrases:  []string{"says what they mean", "no sugar coating", "straight to the point"}},
	{Facet: "expressiveness", Direction: domain.DirectionIncrease,
		Keywords: []string{"expressive", "talkative", "chatty", "animated", "communicative"},
		Phrases:  []string{"wears their heart on their sleeve", "talks about feelings"}},
	{Facet: "expressiveness", Direction: domain.DirectionDecrease,
		Keywords: []string{"closed", "distant", "cold", "withdrawn"},
		Phrases:  []string{"hard to read", "bottles things up", "never opens up"}},
	{Facet: "active_listening", Direction: domain.DirectionIncrease,
		Keywords: []string{"listener", "attentive", "present"},
		Phrases:  []string{"good listener", "really listens", "pays attention"}},
	{Facet: "humor", Direction: domain.DirectionIncrease,
		Keywords: []string{"funny", "witty", "hilarious", "playful", "jokes", "sarcastic"},
		Phrases:  []string{"sense of humor", "makes me laugh", "doesn't take themselves too seriously"}},
	{Facet: "conflict_avoidance", Direction: domain.DirectionIncrease,
		Keywords: []string{"peacemaker", "diplomatic", "tactful"},
		Phrases:  []string{"avoids drama", "keeps the peace", "hates conflict"}},
	{Facet: "verbal_affection", Direction: domain.DirectionIncrease,
		Keywords: []string{"sweet", "compliments", "romantic", "tender"},
		Phrases:  []string{"says sweet things", "tells me how they feel"}},

	// Relationship style
	{Facet: "attachment_security", Direction: domain.DirectionIncrease,
		Keywords: []string{"secure", "steady", "consistent"},
		Phrases:  []string{"emotionally available", "knows what they want"}},
	{Facet: "attachment_security", Direction: domain.DirectionDecrease,
		Keywords: []string{"clingy", "needy", "avoidant", "insecure"},
		Phrases:  []string{"hot and cold", "fear of commitment", "mixed signals"}},
	{Facet: "commitment", Direction: domain.DirectionIncrease,
		Keywords: []string{"serious", "long-term", "settle", "marriage"},
		Phrases:  []string{"looking for something serious", "settle down", "the real thing"}},
	{Facet: "commitment", Direction: domain.DirectionDecrease,
		Keywords: []string{"casual", "fling", "noncommittal"},
		Phrases:  []string{"nothing serious", "keeping it casual", "not looking for anything"}},
	{Facet: "jealousy", Direction: domain.DirectionIncrease,
		Keywords: []string{"jealous", "possessive", "controlling"},
		Phrases:  []string{"checks my phone", "doesn't like me going out"}},
	{Facet: "autonomy_need", Direction: domain.DirectionIncrease,
		Keywords: []string{"space", "alone", "independence"},
		Phrases:  []string{"needs time alone", "values their space"}},
	{Facet: "romanticism", Direction: domain.DirectionIncrease,
		Keywords: []string{"romance", "flowers", "dates", "passionate"},
		Phrases:  []string{"hopeless romantic", "little gestures", "plans surprises"}},
	{Facet: "partner_trust", Direction: domain.DirectionIncrease,
		Keywords: []string{"transparent"},
		Phrases:  []string{"nothing to hide", "always honest with me"}},

	// Lifestyle
	{Facet: "social_life", Direction: domain.DirectionIncrease,
		Keywords: []string{"friends", "gatherings", "hosting", "parties"},
		Phrases:  []string{"big friend group", "always out", "loves hosting"}},
	{Facet: "nightlife", Direction: domain.DirectionIncrease,
		Keywords: []string{"clubbing", "bars", "drinking", "nightlife"},
		Phrases:  []string{"out every weekend", "night owl"}},
	{Facet: "nightlife", Direction: domain.DirectionDecrease,
		Keywords: []string{"homebody", "quiet-nights"},
		Phrases:  []string{"early to bed", "nights in", "quiet evenings"}},
	{Facet: "healthy_living", Direction: domain.DirectionIncrease,
		Keywords: []string{"healthy", "vegetarian", "vegan", "nutrition", "wellness"},
		Phrases:  []string{"eats well", "takes care of themselves"}},
	{Facet: "fitness", Direction: domain.DirectionIncrease,
		Keywords: []string{"gym", "fit", "workout", "running", "athletic", "yoga"},
		Phrases:  []string{"works out", "stays in shape", "goes to the gym"}},
	{Facet: "work_life_balance", Direction: domain.DirectionDecrease,
		Keywords: []string{"workaholic", "overtime"},
		Phrases:  []string{"married to their job", "always working", "never has time"}},
	{Facet: "punctuality", Direction: domain.DirectionIncrease,
		Keywords: []string{"punctual", "on-time"},
		Phrases:  []string{"always on time", "never late"}},
	{Facet: "punctuality", Direction: domain.DirectionDecrease,
		Keywords: []string{"late", "unpunctual"},
		Phrases:  []string{"always late", "keeps me waiting"}},
	{Facet: "tidiness", Direction: domain.DirectionIncrease,
		Keywords: []string{"clean", "spotless"},
		Phrases:  []string{"keeps their place clean"}},
	{Facet: "travel_appetite", Direction: domain.DirectionIncrease,
		Keywords: []string{"wanderlust", "backpacking", "trips"},
		Phrases:  []string{"loves to travel", "always planning a trip"}},

	// Interests
	{Facet: "sports", Direction: domain.DirectionIncrease,
		Keywords: []string{"soccer", "football", "basketball", "tennis", "sports"},
		Phrases:  []string{"plays sports", "watches the game"}},
	{Facet: "arts", Direction: domain.DirectionIncrease,
		Keywords: []string{"theater", "galleries", "photography", "design"},
		Phrases:  []string{"into the arts"}},
	{Facet: "music", Direction: domain.DirectionIncrease,
		Keywords: []string{"music", "concerts", "guitar", "singing", "vinyl"},
		Phrases:  []string{"live music", "plays an instrument"}},
	{Facet: "reading", Direction: domain.DirectionIncrease,
		Keywords: []string{"books", "reading", "novels", "bookworm"},
		Phrases:  []string{"loves to read", "always has a book"}},
	{Facet: "travel", Direction: domain.DirectionIncrease,
		Keywords: []string{"travel", "abroad", "countries", "cultures"},
		Phrases:  []string{"seen the world", "travel the world"}},
	{Facet: "cooking", Direction: domain.DirectionIncrease,
		Keywords: []string{"cooking", "baking", "foodie", "recipes"},
		Phrases:  []string{"loves to cook", "great cook"}},
	{Facet: "gaming", Direction: domain.DirectionIncrease,
		Keywords: []string{"gaming", "videogames", "gamer"},
		Phrases:  []string{"plays video games"}},
	{Facet: "outdoors", Direction: domain.DirectionIncrease,
		Keywords: []string{"hiking", "camping", "nature", "mountains", "beach"},
		Phrases:  []string{"loves the outdoors", "outdoor person"}},
	{Facet: "animals", Direction: domain.DirectionIncrease,
		Keywords: []string{"dogs", "cats", "pets", "animals"},
		Phrases:  []string{"animal lover", "loves dogs"}},
	{Facet: "technology", Direction: domain.DirectionIncrease,
		Keywords: []string{"tech", "gadgets", "coding", "computers"},
		Phrases:  []string{"into tech"}},

	// Emotional intelligence
	{Facet: "empathy", Direction: domain.DirectionIncrease,
		Keywords: []string{"empathetic", "understanding", "considerate", "thoughtful"},
		Phrases:  []string{"puts themselves in your shoes", "gets how i feel"}},
	{Facet: "self_awareness", Direction: domain.DirectionIncrease,
		Keywords: []string{"self-aware", "reflective", "introspective", "mature"},
		Phrases:  []string{"knows themselves", "owns their mistakes"}},
	{Facet: "emotional_control", Direction: domain.DirectionIncrease,
		Keywords: []string{"even-tempered", "patient", "measured"},
		Phrases:  []string{"doesn't overreact", "stays level headed"}},
	{Facet: "emotional_control", Direction: domain.DirectionDecrease,
		Keywords: []string{"dramatic", "volatile", "explosive", "reactive"},
		Phrases:  []string{"makes a scene", "blows things out of proportion"}},
	{Facet: "emotional_expression", Direction: domain.DirectionIncrease,
		Keywords: []string{"vulnerable", "feelings", "emotional"},
		Phrases:  []string{"shares their feelings", "in touch with their emotions"}},
	{Facet: "supportiveness", Direction: domain.DirectionIncrease,
		Keywords: []string{"supportive", "encouraging", "uplifting"},
		Phrases:  []string{"has my back", "cheers me on", "there for me"}},
	{Facet: "patience", Direction: domain.DirectionIncrease,
		Keywords: []string{"patient", "tolerant", "forgiving"},
		Phrases:  []string{"never rushes me", "takes their time"}},
	{Facet: "patience", Direction: domain.DirectionDecrease,
		Keywords: []string{"impatient", "pushy", "demanding"},
		Phrases:  []string{"always in a hurry", "can't wait for anything"}},
}

/*
========================
 Modificadores
========================
*/

// Marcadores de negación. Escaneo global grueso a propósito: sin parsing
// de dependencias (comportamiento heredado; puede fallar en oraciones
// complejas).
var negationMarkers = []string{
	"not", "never", "no", "isnt", "wasnt", "dont", "doesnt", "didnt",
	"cant", "wont", "hardly", "barely", "lacks", "without",
}

// Marcadores de exceso: en feedback sobre un candidato, "too X" invierte
// la dirección (demasiado X baja la preferencia por X).
var excessMarkers = []string{"too", "overly", "excessively", "obsessively"}

// Modificadores de intensidad sobre strength.
var (
	intensityHigh = []string{"very", "extremely", "way", "incredibly", "super", "insanely", "totally"}
	intensityMed  = []string{"really", "quite", "pretty", "fairly"}
	intensityLow  = []string{"bit", "slightly", "somewhat", "little", "kinda", "sorta"}
)

// Modificadores de certeza sobre confidence.
var (
	certaintyUp   = []string{"definitely", "absolutely", "certainly", "clearly", "obviously"}
	certaintyDown = []string{"maybe", "perhaps", "possibly", "guess", "think", "seems"}
)

/*
========================
 Carga externa
========================
*/

// LoadPatternTable lee una tabla de patrones desde un JSON externo y la
// valida contra el esquema. Facetas desconocidas fallan rápido: la tabla
// es configuración y un typo debe detectarse al arranque, no en runtime.
func LoadPatternTable(path string) ([]PatternEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern table: %w", err)
	}
	var entries []PatternEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse pattern table: %w", err)
	}
	if err := validatePatternTable(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DefaultPatternTable devuelve una copia de la tabla embebida.
func DefaultPatternTable() []PatternEntry {
	out := make([]PatternEntry, len(defaultPatternTable))
	copy(out, defaultPatternTable)
	return out
}

func validatePatternTable(entries []PatternEntry) error {
	for _, e := range entries {
		if _, err := domain.DimensionOf(e.Facet); err != nil {
			return fmt.Errorf("pattern table: %w", err)
		}
		switch e.Direction {
		case domain.DirectionIncrease, domain.DirectionDecrease, domain.DirectionMaintain:
		default:
			return fmt.Errorf("pattern table: invalid direction %q for facet %s", e.Direction, e.Facet)
		}
	}
	return nil
}
