// Package modes holds the static configuration of the ten assistant modes.
package modes

import (
	"fmt"
	"strings"

	"github.com/user/brainassist/internal/types"
)

const (
	ModelPro   = "gemini-3-pro-preview"
	ModelFlash = "gemini-2.5-flash"
)

// Profile is the per-mode configuration bundle. Profiles are never mutated.
type Profile struct {
	Mode             types.ChatMode `json:"mode"`
	Instruction      string         `json:"instruction"`
	Model            string         `json:"model"`
	Temperature      float32        `json:"temperature"`
	TopK             float32        `json:"top_k"`
	Label            string         `json:"label"`
	Icon             string         `json:"icon"`
	Color            string         `json:"color"`
	SuggestedPrompts []string       `json:"suggested_prompts"`
}

var order = []types.ChatMode{
	types.ModeLearning,
	types.ModeSupport,
	types.ModeMusic,
	types.ModeOrganization,
	types.ModeDeepResearch,
	types.ModeAnalytics,
	types.ModePolyglot,
	types.ModeGames,
	types.ModeChatPDF,
	types.ModeNotes,
}

var registry = map[types.ChatMode]Profile{
	types.ModeLearning: {
		Instruction: learningInstruction, Model: ModelPro, Temperature: 0.3, TopK: 35,
		Label: "BrainAssist", Icon: "BookOpen", Color: "blue",
		SuggestedPrompts: learningPrompts,
	},
	types.ModeSupport: {
		Instruction: supportInstruction, Model: ModelFlash, Temperature: 0.7, TopK: 40,
		Label: "Soutien", Icon: "HeartHandshake", Color: "emerald",
		SuggestedPrompts: supportPrompts,
	},
	types.ModeMusic: {
		Instruction: musicInstruction, Model: ModelFlash, Temperature: 0.9, TopK: 60,
		Label: "Musique", Icon: "Music", Color: "fuchsia",
		SuggestedPrompts: musicPrompts,
	},
	types.ModeOrganization: {
		Instruction: organizationInstruction, Model: ModelPro, Temperature: 0.1, TopK: 10,
		Label: "Planning", Icon: "CalendarClock", Color: "indigo",
		SuggestedPrompts: organizationPrompts,
	},
	types.ModeDeepResearch: {
		Instruction: deepResearchInstruction, Model: ModelPro, Temperature: 0.1, TopK: 10,
		Label: "Recherche", Icon: "ScanSearch", Color: "violet",
		SuggestedPrompts: deepResearchPrompts,
	},
	types.ModeAnalytics: {
		Instruction: analyticsInstruction, Model: ModelPro, Temperature: 0.1, TopK: 10,
		Label: "Analytics", Icon: "BarChart3", Color: "sky",
		SuggestedPrompts: analyticsPrompts,
	},
	types.ModePolyglot: {
		Instruction: polyglotInstruction, Model: ModelPro, Temperature: 0.3, TopK: 20,
		Label: "Polyglot", Icon: "Languages", Color: "cyan",
		SuggestedPrompts: polyglotPrompts,
	},
	types.ModeGames: {
		Instruction: gamesInstruction, Model: ModelFlash, Temperature: 0.8, TopK: 50,
		Label: "Jeux", Icon: "Gamepad2", Color: "amber",
		SuggestedPrompts: gamesPrompts,
	},
	types.ModeChatPDF: {
		Instruction: chatPDFInstruction, Model: ModelPro, Temperature: 0.2, TopK: 20,
		Label: "ChatPDF", Icon: "FileText", Color: "rose",
		SuggestedPrompts: chatPDFPrompts,
	},
	types.ModeNotes: {
		Instruction: notesInstruction, Model: ModelPro, Temperature: 0.3, TopK: 20,
		Label: "Notes", Icon: "FileEdit", Color: "yellow",
		SuggestedPrompts: notesPrompts,
	},
}

// Resolve returns the profile for mode. An unknown mode is a programming
// error and panics; use Parse for untrusted input.
func Resolve(mode types.ChatMode) Profile {
	p, ok := registry[mode]
	if !ok {
		panic(fmt.Sprintf("modes: unknown chat mode %q", string(mode)))
	}
	p.Mode = mode
	p.SuggestedPrompts = append([]string(nil), p.SuggestedPrompts...)
	return p
}

// Parse validates a user-supplied mode tag.
func Parse(s string) (types.ChatMode, error) {
	mode := types.ChatMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[mode]; !ok {
		return "", fmt.Errorf("unknown mode %q (want one of %s)", s, strings.Join(Names(), ", "))
	}
	return mode, nil
}

// All returns the modes in display order.
func All() []types.ChatMode {
	return append([]types.ChatMode(nil), order...)
}

func Names() []string {
	names := make([]string, len(order))
	for i, m := range order {
		names[i] = string(m)
	}
	return names
}
