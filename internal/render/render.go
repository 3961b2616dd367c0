// Package render turns a model reply into a small block tree: code blocks,
// headings, list items and paragraphs made of styled inline runs.
package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/user/brainassist/internal/types"
)

type BlockKind string

const (
	Paragraph BlockKind = "paragraph"
	Heading   BlockKind = "heading"
	Bullet    BlockKind = "bullet"
	Ordered   BlockKind = "ordered"
	Code      BlockKind = "code"
	Spacer    BlockKind = "spacer"
)

type InlineKind string

const (
	Text       InlineKind = "text"
	InlineCode InlineKind = "code"
	Math       InlineKind = "math"
	MathBlock  InlineKind = "math_block"
	Bold       InlineKind = "bold"
	Italic     InlineKind = "italic"
)

// Inline is one styled run of text. For Math and MathBlock, Text is the
// LaTeX source.
type Inline struct {
	Kind InlineKind `json:"kind"`
	Text string     `json:"text"`
}

// Block is one line-level element.
type Block struct {
	Kind    BlockKind `json:"kind"`
	Level   int       `json:"level,omitempty"`
	Number  int       `json:"number,omitempty"`
	Lang    string    `json:"lang,omitempty"`
	Code    string    `json:"code,omitempty"`
	Inlines []Inline  `json:"inlines,omitempty"`
}

var (
	fenceRe     = regexp.MustCompile("(?s)```(\\w+)?\\s*(.*?)```")
	blockMathRe = regexp.MustCompile(`(?s)\$\$.*?\$\$`)
	codeSpanRe  = regexp.MustCompile("`[^`]+`")
	mathRe      = regexp.MustCompile(`\$[^\n$]+\$`)
	boldRe      = regexp.MustCompile(`\*\*.*?\*\*`)
	italicRe    = regexp.MustCompile(`\*[^*]+\*`)
	headingRe   = regexp.MustCompile(`^#+`)
	orderedRe   = regexp.MustCompile(`^(\d+)\.\s+(.*)`)
)

// Render parses text. It never fails; unknown syntax is plain text.
func Render(text string) []Block {
	return render(text, true)
}

// RenderMessage renders m. Lines starting with '#' become headings only in
// model replies; users typing '#' get a paragraph.
func RenderMessage(m types.Message) []Block {
	return render(m.Text, m.Role != types.RoleUser)
}

func render(text string, headings bool) []Block {
	var blocks []Block
	last := 0
	for _, loc := range fenceRe.FindAllStringSubmatchIndex(text, -1) {
		blocks = append(blocks, renderLines(text[last:loc[0]], headings)...)
		lang := ""
		if loc[2] >= 0 {
			lang = text[loc[2]:loc[3]]
		}
		code := text[loc[4]:loc[5]]
		if lang == "" {
			lang = DetectLanguage(code)
		}
		blocks = append(blocks, Block{Kind: Code, Lang: lang, Code: code})
		last = loc[1]
	}
	return append(blocks, renderLines(text[last:], headings)...)
}

func renderLines(part string, headings bool) []Block {
	if part == "" {
		return nil
	}
	lines := strings.Split(part, "\n")
	out := make([]Block, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			out = append(out, Block{Kind: Spacer})

		case headings && strings.HasPrefix(trimmed, "#"):
			level := len(headingRe.FindString(trimmed))
			content := strings.TrimLeft(trimmed[level:], " \t")
			out = append(out, Block{Kind: Heading, Level: min(level, 3), Inlines: Inlines(content)})

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			out = append(out, Block{Kind: Bullet, Inlines: Inlines(trimmed[2:])})

		default:
			if m := orderedRe.FindStringSubmatch(trimmed); m != nil {
				n, _ := strconv.Atoi(m[1])
				out = append(out, Block{Kind: Ordered, Number: n, Inlines: Inlines(m[2])})
				continue
			}
			out = append(out, Block{Kind: Paragraph, Inlines: Inlines(line)})
		}
	}
	return out
}

// Inlines splits one line into runs. Precedence, outermost first: display
// math, inline code, inline math, bold, italic.
func Inlines(s string) []Inline {
	var out []Inline
	for _, p := range splitKeep(blockMathRe, s) {
		if p.match {
			src := strings.TrimSpace(p.text[2 : len(p.text)-2])
			out = append(out, Inline{Kind: MathBlock, Text: rewriteMath(src)})
			continue
		}
		out = append(out, codeRuns(p.text)...)
	}
	return out
}

func codeRuns(s string) []Inline {
	var out []Inline
	for _, p := range splitKeep(codeSpanRe, s) {
		if p.match {
			out = append(out, Inline{Kind: InlineCode, Text: p.text[1 : len(p.text)-1]})
			continue
		}
		for _, q := range splitKeep(mathRe, p.text) {
			if q.match {
				out = append(out, Inline{Kind: Math, Text: rewriteMath(q.text[1 : len(q.text)-1])})
				continue
			}
			out = append(out, emphasisRuns(q.text)...)
		}
	}
	return out
}

func emphasisRuns(s string) []Inline {
	var out []Inline
	for _, p := range splitKeep(boldRe, s) {
		if p.match {
			out = append(out, Inline{Kind: Bold, Text: p.text[2 : len(p.text)-2]})
			continue
		}
		for _, q := range splitKeep(italicRe, p.text) {
			if q.match {
				out = append(out, Inline{Kind: Italic, Text: q.text[1 : len(q.text)-1]})
				continue
			}
			out = append(out, Inline{Kind: Text, Text: q.text})
		}
	}
	return out
}

// rewriteMath turns bare '*' into an explicit multiplication sign.
func rewriteMath(src string) string {
	return strings.ReplaceAll(src, "*", ` \times `)
}

type piece struct {
	text  string
	match bool
}

// splitKeep splits s around re, keeping the matches. Empty pieces are dropped.
func splitKeep(re *regexp.Regexp, s string) []piece {
	var out []piece
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			out = append(out, piece{text: s[last:loc[0]]})
		}
		out = append(out, piece{text: s[loc[0]:loc[1]], match: true})
		last = loc[1]
	}
	if last < len(s) {
		out = append(out, piece{text: s[last:]})
	}
	return out
}

// CodeBlocks filters blocks down to code blocks, in order.
func CodeBlocks(blocks []Block) []Block {
	var out []Block
	for _, b := range blocks {
		if b.Kind == Code {
			out = append(out, b)
		}
	}
	return out
}
