package modes

import (
	"fmt"
	"strings"

	"github.com/user/brainassist/internal/types"
)

var (
	learningPrompts = []string{
		"Résous cette intégrale : $\\int x^2 dx$.",
		"Explique le théorème de Pythagore.",
		"Analyse ce poème de Baudelaire.",
		"Calcule le déterminant de cette matrice.",
	}
	deepResearchPrompts = []string{
		"Analyse ce fichier PDF de cours.",
		"Génère des QCM basés sur mon cours.",
		"Résume les points clés pour l'examen.",
		"Extrais les définitions importantes.",
	}
	supportPrompts = []string{
		"Je me sens dépassé par la charge de travail.",
		"J'ai peur d'échouer à mon examen.",
		"J'ai besoin de motivation.",
		"Technique de respiration pour le stress.",
	}
	musicPrompts = []string{
		"Playlist 'Deep Focus' (Pas de paroles).",
		"Boost d'énergie pour le matin.",
		"Ambiance Lo-Fi pour réviser tard.",
		"Découverte Jazz / Soul.",
	}
	organizationPrompts = []string{
		"Optimise ma journée de demain.",
		"Trie mes tâches par priorité.",
		"Trouve un créneau pour mes révisions.",
		"Méthode Pomodoro : comment l'appliquer ?",
	}
	analyticsPrompts = []string{
		"Génère mon rapport de performance hebdomadaire.",
		"Quelles sont mes faiblesses actuelles ?",
		"Suis-je en risque de surmenage ?",
		"Crée un plan de rattrapage pour les Maths.",
	}
	polyglotPrompts = []string{
		"Traduis ce texte en anglais académique.",
		"Explique la règle du Present Perfect.",
		"Comment dit-on 'bonjour' en Japonais ?",
		"Corrige les fautes de ce paragraphe en Espagnol.",
	}
	gamesPrompts = []string{
		"Lance un Quiz sur l'Histoire de France.",
		"Jeu : Vrai ou Faux en Biologie.",
		"Test de vocabulaire Anglais (Niveau B2).",
		"Énigme logique pour m'échauffer le cerveau.",
	}
	chatPDFPrompts = []string{
		"Dépose un document pour obtenir un résumé.",
		"Analyse ce fichier et sors les points clés.",
		"Explique les concepts complexes de ce document.",
		"Génère un quiz basé sur ce fichier.",
	}
	notesPrompts = []string{
		"Aide-moi à structurer ce plan de cours.",
		"Corrige l'orthographe de mes notes.",
		"Ajoute une introduction à ce chapitre.",
		"Transforme ces points en paragraphes rédigés.",
	}
)

// OptimizeContext names the domain the prompt optimizer should target.
func OptimizeContext(mode types.ChatMode) string {
	switch mode {
	case types.ModeSupport:
		return "emotional support and psychological well-being"
	case types.ModeMusic:
		return "music curation and audio vibes"
	case types.ModeOrganization:
		return "productivity, time-management and logistics"
	case types.ModeDeepResearch:
		return "document analysis, summarization and extraction of key concepts"
	case types.ModeAnalytics:
		return "data analysis, performance tracking and study insights"
	case types.ModePolyglot:
		return "translation, linguistics, grammar correction and language learning"
	case types.ModeGames:
		return "educational games, quizzes, trivia and memory challenges"
	case types.ModeChatPDF:
		return "document analysis, summarizing PDFs, extracting key points from files"
	case types.ModeNotes:
		return "text editing, note-taking, summarizing and content structuring"
	default:
		return "academic and educational inquiries"
	}
}

// StarterPrompt builds the opening message stored with a saved project.
func StarterPrompt(mode types.ChatMode, title, description string) string {
	switch mode {
	case types.ModeMusic:
		return fmt.Sprintf("Je souhaite lancer un projet musical intitulé : \"%s\".\nContexte et Vibe souhaitée : %s", title, description)
	case types.ModeDeepResearch:
		return fmt.Sprintf("Projet de recherche : \"%s\".\nObjectifs : %s\nJe vais fournir des documents. Aide-moi à les structurer et les analyser.", title, description)
	case types.ModePolyglot:
		return fmt.Sprintf("Projet linguistique : \"%s\".\nLangue cible et objectifs : %s", title, description)
	case types.ModeGames:
		return fmt.Sprintf("Je veux créer un parcours de jeu éducatif : \"%s\".\nThème et type de jeux : %s", title, description)
	case types.ModeChatPDF:
		return fmt.Sprintf("Projet ChatPDF : \"%s\".\nJe vais uploader des fichiers. Fais une analyse complète. Contexte: %s", title, description)
	default:
		return fmt.Sprintf("Je lance un nouveau projet d'étude/travail sur le thème : \"%s\".\nDescription et Objectifs : %s", title, description)
	}
}

// Generation option defaults. A default value adds nothing to the prompt.
const (
	DefaultLevel  = "Adaptatif"
	DefaultFormat = "Auto"
	DefaultTone   = "Pédagogique"
)

var (
	Levels  = []string{DefaultLevel, "Collège", "Lycée", "Université", "Débutant", "Expert"}
	Formats = []string{DefaultFormat, "Cours complet", "Fiche de révision", "QCM / Quiz", "Exercices", "Plan détaillé", "Tableau comparatif"}
	Tones   = []string{DefaultTone, "Direct & Concis", "Socratique", "Ludique", "Académique"}
)

// Options tunes the level, format and tone of a single answer.
type Options struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
	Tone   string `json:"tone,omitempty"`
}

// Apply appends the generation instructions to text. Empty or default
// values are skipped; text is returned trimmed when nothing applies.
func (o Options) Apply(text string) string {
	text = strings.TrimSpace(text)
	var params []string
	if o.Level != "" && o.Level != DefaultLevel {
		params = append(params, "Niveau Cible: "+o.Level)
	}
	if o.Format != "" && o.Format != DefaultFormat {
		params = append(params, "Format de Réponse: "+o.Format)
	}
	if o.Tone != "" && o.Tone != DefaultTone {
		params = append(params, "Ton/Style: "+o.Tone)
	}
	if len(params) == 0 {
		return text
	}
	return text + "\n\n[INSTRUCTIONS DE GÉNÉRATION: " + strings.Join(params, " | ") + "]"
}

// Avatars lists the selectable profile avatars.
var Avatars = []string{"student", "academic", "modern", "creative", "tech", "calm", "energy", "smart", "friendly"}

func ValidAvatar(id string) bool {
	for _, a := range Avatars {
		if a == id {
			return true
		}
	}
	return false
}

var recommended = []types.RecommendedPrompt{
	{ID: "feynman", Title: "La Technique Feynman", Category: "Etude",
		Description: "Pour comprendre un concept complexe en profondeur.",
		Content:     "Explique [Concept] comme si j'avais 12 ans. Utilise des analogies simples, évite le jargon et assure-toi que je comprenne les principes fondamentaux.",
		Tags:        []string{"Pédagogie", "Simplification"}},
	{ID: "socratic", Title: "Le Mentor Socratique", Category: "Etude",
		Description: "Pour apprendre en réfléchissant par soi-même.",
		Content:     "Agis comme un professeur socratique. Je veux apprendre [Sujet]. Ne me donne pas les réponses directement, mais pose-moi une série de questions pour guider mon raisonnement.",
		Tags:        []string{"Réflexion", "Interactif"}},
	{ID: "quiz_maker", Title: "Générateur de Quiz", Category: "Etude",
		Description: "Crée un test pour vérifier tes connaissances.",
		Content:     "Crée un quiz de 5 questions à choix multiples (QCM) sur [Sujet] avec un niveau de difficulté progressif. Ne donne pas les réponses tout de suite. Attends que je réponde.",
		Tags:        []string{"Révision", "Test"}},
	{ID: "summarizer", Title: "Synthèse Structurée", Category: "Rédaction",
		Description: "Pour résumer rapidement un cours ou un texte.",
		Content:     "Résume ce texte en extrayant : 1) L'idée principale, 2) Les 3 arguments clés, 3) Les définitions importantes, 4) Une conclusion en une phrase.",
		Tags:        []string{"Résumé", "Synthèse"}},
	{ID: "critic", Title: "L'Avocat du Diable", Category: "Rédaction",
		Description: "Pour renforcer ses arguments dans une dissertation.",
		Content:     "Je vais te présenter ma thèse sur [Sujet]. Critique mes arguments, trouve les failles logiques et propose des contre-arguments solides.",
		Tags:        []string{"Débat", "Argumentation"}},
	{ID: "code_tutor", Title: "Le Senior Dev Tutor", Category: "Code",
		Description: "Pour comprendre et optimiser son code.",
		Content:     "Agis comme un développeur Senior. Analyse ce code : 1) Explique ce qu'il fait pas à pas. 2) Trouve les bugs potentiels. 3) Propose une version optimisée avec des commentaires.",
		Tags:        []string{"Programmation", "Optimisation"}},
	{ID: "bug_fixer", Title: "Le Débugueur", Category: "Code",
		Description: "Trouve l'erreur et explique la solution.",
		Content:     "J'ai une erreur [Message d'erreur] avec ce code. Trouve la cause racine du problème, explique pourquoi cela arrive et donne-moi le code corrigé.",
		Tags:        []string{"Debug", "Fix"}},
	{ID: "planner", Title: "Plan d'Action 80/20", Category: "Productivité",
		Description: "Pour réviser efficacement avec peu de temps.",
		Content:     "J'ai un examen de [Matière] dans 2 jours. Applique le principe de Pareto (80/20). Crée-moi un plan de révision intensif centré sur les 20% des concepts qui rapportent 80% des points.",
		Tags:        []string{"Planning", "Urgence"}},
	{ID: "pomodoro", Title: "Séance Pomodoro", Category: "Productivité",
		Description: "Structure ta session de travail.",
		Content:     "J'ai 2 heures devant moi. Crée un planning basé sur la méthode Pomodoro (25min travail / 5min pause) pour accomplir la tâche suivante : [Tâche].",
		Tags:        []string{"Gestion du temps", "Focus"}},
	{ID: "lang_partner", Title: "Le Correspondant Virtuel", Category: "Langues",
		Description: "Pratique une langue étrangère en discutant.",
		Content:     "Agis comme un locuteur natif [Langue]. Nous allons avoir une conversation sur [Sujet]. Corrige mes erreurs grammaticales à la fin de chaque réponse.",
		Tags:        []string{"Conversation", "Pratique"}},
	{ID: "interview_sim", Title: "Simulateur d'Entretien", Category: "Carrière",
		Description: "Prépare-toi pour un stage ou un job.",
		Content:     "Je postule pour un poste de [Poste]. Fais-moi passer un entretien d'embauche simulé. Pose-moi une question à la fois, puis donne-moi un feedback constructif.",
		Tags:        []string{"Entretien", "Job"}},
}

// Recommended returns a copy of the built-in prompt library.
func Recommended() []types.RecommendedPrompt {
	out := make([]types.RecommendedPrompt, len(recommended))
	for i, p := range recommended {
		p.Tags = append([]string(nil), p.Tags...)
		out[i] = p
	}
	return out
}
