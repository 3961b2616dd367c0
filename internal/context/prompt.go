package context

import (
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

// OptimizePrompt is the meta-prompt that rewrites a draft into a better
// prompt. Fields: .Domain, .Input
const OptimizePrompt = `
ACT AS AN EXPERT PROMPT ENGINEER.
Your goal is to rewrite the user's raw input into a "Perfect Prompt" that will yield the best possible result from a Large Language Model specialized in {{.Domain}}.

ORIGINAL INPUT: "{{.Input}}"

OPTIMIZATION RULES:
1.  **Clarify Intent:** Make the goal explicit.
2.  **Add Structure:** Request a specific format (e.g., "Use bullet points", "Step-by-step").
3.  **Add Context:** If the input is vague, add logical assumptions or ask the model to cover basics.
4.  **Language Preservation:** Keep the output in the SAME language as the input (French or English).
5.  **Output:** Return ONLY the rewritten prompt text.
`

// TagPrompt asks for 3 to 5 keywords as a JSON array. Fields: .Text
const TagPrompt = `
ANALYSE LE TEXTE SUIVANT ET EXTRAIS 3 À 5 MOTS-CLÉS (TAGS) PERTINENTS.

TEXTE:
"{{.Text}}"

RÈGLES:
1. Retourne UNIQUEMENT un tableau JSON de chaînes de caractères.
2. Pas de Markdown, pas d'explication.
3. Exemple de sortie : ["Histoire", "Napoléon", "Guerre"]
`

// ImproveCodePrompt is sent as a regular chat turn. Fields: .Lang, .Code
const ImproveCodePrompt = "Review and improve this {{.Lang}} code:\n```{{.Lang}}\n{{.Code}}\n```"

// TagSample is how much of a note is sent for tagging.
const TagSample = 1000

var (
	optimizeTmpl = template.Must(template.New("optimize").Parse(OptimizePrompt))
	tagTmpl      = template.Must(template.New("tags").Parse(TagPrompt))
	improveTmpl  = template.Must(template.New("improve").Parse(ImproveCodePrompt))
)

// RenderOptimize fills the optimize meta-prompt.
func RenderOptimize(domain, input string) (string, error) {
	return execute(optimizeTmpl, map[string]string{"Domain": domain, "Input": input})
}

// RenderTags fills the tagging prompt with at most TagSample characters.
func RenderTags(text string) (string, error) {
	return execute(tagTmpl, map[string]string{"Text": truncateRunes(text, TagSample)})
}

// RenderImproveCode fills the code review request.
func RenderImproveCode(code, lang string) (string, error) {
	return execute(improveTmpl, map[string]string{"Lang": lang, "Code": code})
}

func execute(t *template.Template, data map[string]string) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", t.Name(), err)
	}
	return sb.String(), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
