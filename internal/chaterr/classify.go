// Package chaterr classifies model and transport failures into the
// user-facing error taxonomy.
package chaterr

import (
	"context"
	"errors"
	"strings"
)

type Kind int

const (
	Unknown Kind = iota
	Configuration
	ModelUnavailable
	Network
	RateLimited
	ServerOverload
	InvalidRequest
	SafetyBlocked
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration_error"
	case ModelUnavailable:
		return "model_unavailable"
	case Network:
		return "network_error"
	case RateLimited:
		return "rate_limited"
	case ServerOverload:
		return "server_overload"
	case InvalidRequest:
		return "invalid_request"
	case SafetyBlocked:
		return "safety_blocked"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ErrMissingCredential is returned when no API key is configured. Its text
// matches the Configuration rule.
var ErrMissingCredential = errors.New("api_key is missing: set GEMINI_API_KEY or API_KEY")

// Info is the classification of one error.
type Info struct {
	Kind      Kind   `json:"kind"`
	Text      string `json:"text"`
	Retryable bool   `json:"retryable"`
}

type rule struct {
	kind      Kind
	needles   []string
	text      string
	retryable bool
}

// Checked top to bottom; the first rule with a matching needle wins.
var rules = []rule{
	{Configuration, []string{"api_key", "apikey", "403"},
		"Clé API manquante ou invalide. Veuillez vérifier votre configuration système.", false},
	{ModelUnavailable, []string{"404", "not found"},
		"Le modèle d'IA demandé est introuvable. Cela peut arriver si le modèle est en preview ou déprécié.", false},
	{Network, []string{"fetch failed", "networkerror", "failed to fetch", "network request failed",
		"connection refused", "connection reset", "no such host"},
		"Problème de connexion internet détecté. Veuillez vérifier votre réseau.", true},
	{RateLimited, []string{"429", "quota", "exhausted", "too many requests"},
		"Le serveur est très sollicité (Quota dépassé). Veuillez patienter quelques instants avant de réessayer.", true},
	{ServerOverload, []string{"500", "503", "internal server error", "service unavailable", "overloaded"},
		"Les serveurs de l'IA sont temporairement surchargés. Veuillez réessayer dans une minute.", true},
	{InvalidRequest, []string{"400", "invalid argument", "bad request"},
		"La requête est invalide (fichier trop lourd, format non supporté ou prompt vide).", false},
	{SafetyBlocked, []string{"safety", "blocked", "harmful", "finish reason"},
		"La réponse a été interrompue ou bloquée par les filtres de sécurité. Essayez de reformuler votre demande de manière plus académique.", false},
	{Cancelled, []string{"abort", "user aborted", "context canceled"},
		"Génération interrompue.", true},
}

const maxRawLen = 150

// Classify maps err onto the taxonomy by case-insensitive substring match.
func Classify(err error) Info {
	if err == nil {
		return Info{Kind: Unknown, Text: "Erreur inconnue.", Retryable: true}
	}
	if errors.Is(err, context.Canceled) {
		return Info{Kind: Cancelled, Text: "Génération interrompue.", Retryable: true}
	}

	msg := strings.ToLower(err.Error())
	for _, r := range rules {
		for _, needle := range r.needles {
			if strings.Contains(msg, needle) {
				return Info{Kind: r.kind, Text: r.text, Retryable: r.retryable}
			}
		}
	}

	raw := msg
	if len(raw) > maxRawLen {
		raw = truncate(raw, maxRawLen)
	}
	return Info{
		Kind:      Unknown,
		Text:      "Une erreur inattendue est survenue : " + raw + "...",
		Retryable: true,
	}
}

// IsCancelled reports whether err is a user-initiated abort.
func IsCancelled(err error) bool {
	return err != nil && Classify(err).Kind == Cancelled
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
