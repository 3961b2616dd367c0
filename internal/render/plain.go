package render

import (
	"strconv"
	"strings"
)

// Plain formats blocks as unstyled text, one line per block. Code blocks
// are written back as fences so the output renders to the same tree.
type Plain struct {
	Math MathEngine
}

func (p Plain) Format(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case Spacer:
			lines = append(lines, "")
		case Heading:
			lines = append(lines, strings.Repeat("#", b.Level)+" "+p.inlines(b.Inlines))
		case Bullet:
			lines = append(lines, "- "+p.inlines(b.Inlines))
		case Ordered:
			lines = append(lines, strconv.Itoa(b.Number)+". "+p.inlines(b.Inlines))
		case Code:
			lines = append(lines, "```"+b.Lang+"\n"+strings.TrimRight(b.Code, "\n")+"\n```")
		default:
			lines = append(lines, p.inlines(b.Inlines))
		}
	}
	return strings.Join(lines, "\n")
}

func (p Plain) inlines(runs []Inline) string {
	var sb strings.Builder
	for _, r := range runs {
		switch r.Kind {
		case Math, MathBlock:
			sb.WriteString(mathOutput(p.Math, r.Text, r.Kind == MathBlock))
		default:
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}
