package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/brainassist/internal/modes"
)

const defaultCodeStyle = "monokai"

// Terminal formats blocks as ANSI text for the chat REPL.
type Terminal struct {
	Theme modes.Theme
	Math  MathEngine
	// Style is the chroma style name for code; empty means monokai.
	Style string
	// Width caps code block width; zero means no cap.
	Width int
}

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	italicStyle = lipgloss.NewStyle().Italic(true)
	codeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f472b6")).Background(lipgloss.Color("#1f2937"))
	mathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a5b4fc"))
	lineNoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	badgeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9ca3af"))
)

func (t Terminal) Format(blocks []Block) string {
	accent := lipgloss.NewStyle().Foreground(t.Theme.Accent)
	var sb strings.Builder
	for _, b := range blocks {
		switch b.Kind {
		case Spacer:
			sb.WriteString("\n")
		case Heading:
			st := accent.Bold(true)
			if b.Level == 1 {
				st = st.Underline(true)
			}
			sb.WriteString(st.Render(t.inlines(b.Inlines)) + "\n")
		case Bullet:
			sb.WriteString("  " + accent.Render("•") + " " + t.inlines(b.Inlines) + "\n")
		case Ordered:
			sb.WriteString("  " + accent.Render(fmt.Sprintf("%d.", b.Number)) + " " + t.inlines(b.Inlines) + "\n")
		case Code:
			sb.WriteString(t.codeBlock(b) + "\n")
		default:
			sb.WriteString(t.inlines(b.Inlines) + "\n")
		}
	}
	return sb.String()
}

func (t Terminal) inlines(runs []Inline) string {
	var sb strings.Builder
	for _, r := range runs {
		switch r.Kind {
		case Bold:
			sb.WriteString(boldStyle.Render(r.Text))
		case Italic:
			sb.WriteString(italicStyle.Render(r.Text))
		case InlineCode:
			sb.WriteString(codeStyle.Render(r.Text))
		case Math:
			sb.WriteString(mathStyle.Render(mathOutput(t.Math, r.Text, false)))
		case MathBlock:
			sb.WriteString("\n    " + mathStyle.Render(mathOutput(t.Math, r.Text, true)) + "\n")
		default:
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}

func (t Terminal) codeBlock(b Block) string {
	label := strings.ToUpper(b.Lang)
	if label == "" {
		label = "TEXT"
	}
	code := strings.TrimRight(b.Code, "\n")
	lines := strings.Split(highlight(code, b.Lang, t.Style), "\n")
	width := len(fmt.Sprint(len(lines)))

	var body strings.Builder
	body.WriteString(badgeStyle.Render(label))
	for i, line := range lines {
		body.WriteString("\n" + lineNoStyle.Render(fmt.Sprintf("%*d │ ", width, i+1)) + line)
	}

	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Theme.Accent).Padding(0, 1)
	if t.Width > 0 {
		border = border.MaxWidth(t.Width)
	}
	return border.Render(body.String())
}

// highlight returns code unchanged when chroma cannot tokenise it.
func highlight(code, lang, styleName string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	if styleName == "" {
		styleName = defaultCodeStyle
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, it); err != nil {
		return code
	}
	return buf.String()
}
