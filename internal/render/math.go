package render

import (
	"fmt"
	"regexp"
	"strings"
)

// MathPlaceholder stands in for math while no engine is available.
const MathPlaceholder = "[math]"

// MathEngine typesets LaTeX for a given output. Ready reports whether the
// engine is loaded; until then formatters print MathPlaceholder.
type MathEngine interface {
	Ready() bool
	Render(src string, display bool) (string, error)
}

// mathOutput degrades gracefully: no engine gives the placeholder, an
// engine error gives the raw source.
func mathOutput(e MathEngine, src string, display bool) string {
	if e == nil || !e.Ready() {
		return MathPlaceholder
	}
	out, err := e.Render(src, display)
	if err != nil {
		return src
	}
	return out
}

// UnicodeMath approximates LaTeX with Unicode symbols for terminals. It
// handles the notation school answers actually use: operators, Greek
// letters, fractions, roots and single-character super/subscripts.
type UnicodeMath struct{}

func (UnicodeMath) Ready() bool { return true }

var (
	fracRe = regexp.MustCompile(`\\frac\{([^{}]*)\}\{([^{}]*)\}`)
	sqrtRe = regexp.MustCompile(`\\sqrt\{([^{}]*)\}`)
	supRe  = regexp.MustCompile(`\^(\{[^{}]*\}|.)`)
	subRe  = regexp.MustCompile(`_(\{[^{}]*\}|.)`)
	cmdRe  = regexp.MustCompile(`\\[a-zA-Z]+`)
)

var symbols = map[string]string{
	`\times`: "×", `\cdot`: "·", `\div`: "÷", `\pm`: "±", `\mp`: "∓",
	`\leq`: "≤", `\le`: "≤", `\geq`: "≥", `\ge`: "≥", `\neq`: "≠", `\approx`: "≈",
	`\infty`: "∞", `\to`: "→", `\rightarrow`: "→", `\Rightarrow`: "⇒", `\leftarrow`: "←",
	`\sum`: "∑", `\prod`: "∏", `\int`: "∫", `\partial`: "∂", `\nabla`: "∇",
	`\in`: "∈", `\notin`: "∉", `\subset`: "⊂", `\cup`: "∪", `\cap`: "∩", `\emptyset`: "∅",
	`\forall`: "∀", `\exists`: "∃", `\degree`: "°", `\circ`: "∘",
	`\alpha`: "α", `\beta`: "β", `\gamma`: "γ", `\delta`: "δ", `\epsilon`: "ε",
	`\theta`: "θ", `\lambda`: "λ", `\mu`: "μ", `\pi`: "π", `\rho`: "ρ",
	`\sigma`: "σ", `\tau`: "τ", `\phi`: "φ", `\omega`: "ω",
	`\Delta`: "Δ", `\Sigma`: "Σ", `\Omega`: "Ω", `\Pi`: "Π",
	`\left`: "", `\right`: "", `\quad`: " ", `\,`: " ",
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾', 'n': 'ⁿ', 'i': 'ⁱ', 'x': 'ˣ',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎', 'n': 'ₙ', 'i': 'ᵢ', 'x': 'ₓ',
}

// Render returns an error on unbalanced braces so the caller shows the
// source instead.
func (UnicodeMath) Render(src string, _ bool) (string, error) {
	if strings.Count(src, "{") != strings.Count(src, "}") {
		return "", fmt.Errorf("unbalanced braces in %q", src)
	}
	out := fracRe.ReplaceAllString(src, "($1)/($2)")
	out = sqrtRe.ReplaceAllString(out, "√($1)")
	out = supRe.ReplaceAllStringFunc(out, func(m string) string { return script(m[1:], superscripts, "^") })
	out = subRe.ReplaceAllStringFunc(out, func(m string) string { return script(m[1:], subscripts, "_") })
	out = cmdRe.ReplaceAllStringFunc(out, func(cmd string) string {
		if s, ok := symbols[cmd]; ok {
			return s
		}
		return strings.TrimPrefix(cmd, `\`)
	})
	out = strings.NewReplacer("{", "", "}", "", `\,`, " ").Replace(out)
	return strings.Join(strings.Fields(out), " "), nil
}

// script maps every rune of arg through table, or keeps the caret form
// when some rune has no small variant.
func script(arg string, table map[rune]rune, marker string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(arg, "{"), "}")
	var sb strings.Builder
	for _, r := range body {
		small, ok := table[r]
		if !ok {
			return marker + arg
		}
		sb.WriteRune(small)
	}
	return sb.String()
}
