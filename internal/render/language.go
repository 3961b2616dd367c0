package render

import (
	"encoding/json"
	"regexp"
	"strings"
)

type languageRule struct {
	lang  string
	match func(c string) bool
}

func anyOf(c string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(c, s) {
			return true
		}
	}
	return false
}

var (
	pyDefRe     = regexp.MustCompile(`^def\s+`)
	pyImportRe  = regexp.MustCompile(`^import\s+`)
	pyPrintRe   = regexp.MustCompile(`print\s*\(`)
	exportFnRe  = regexp.MustCompile(`export\s+default\s+function`)
	jsxTagRe    = regexp.MustCompile(`<\w+>`)
	tsKeywordRe = regexp.MustCompile(`const\s+|let\s+|var\s+|console\.log\(|function\s+|=>`)
	sqlRe       = regexp.MustCompile(`(?i)SELECT\s+.+\s+FROM\s+`)
)

// Checked in order; the first match wins.
var languageRules = []languageRule{
	{"html", func(c string) bool {
		return strings.HasPrefix(c, "<") && anyOf(c, "</", "/>", "<!DOCTYPE")
	}},
	{"python", func(c string) bool {
		return pyDefRe.MatchString(c) || pyImportRe.MatchString(c) ||
			(pyPrintRe.MatchString(c) && !strings.Contains(c, ";"))
	}},
	{"tsx", func(c string) bool {
		return anyOf(c, "import React", "className=") || exportFnRe.MatchString(c) || jsxTagRe.MatchString(c)
	}},
	{"typescript", tsKeywordRe.MatchString},
	{"css", func(c string) bool {
		return strings.Contains(c, "{") && strings.Contains(c, "}") && strings.Contains(c, ":") &&
			strings.Contains(c, ";") && anyOf(c, "px", "rem", "@media")
	}},
	{"sql", sqlRe.MatchString},
	{"cpp", func(c string) bool {
		return strings.Contains(c, "#include") && anyOf(c, "<stdio.h>", "<iostream>")
	}},
	{"java", func(c string) bool {
		return strings.Contains(c, "public class") && strings.Contains(c, "static void main")
	}},
	{"json", func(c string) bool {
		obj := strings.HasPrefix(c, "{") && strings.HasSuffix(c, "}")
		arr := strings.HasPrefix(c, "[") && strings.HasSuffix(c, "]")
		return (obj || arr) && json.Valid([]byte(c))
	}},
	{"bash", func(c string) bool {
		return strings.HasPrefix(c, "#!/bin/bash") || anyOf(c, "echo ", "sudo ", "npm install", "pip install")
	}},
}

// DetectLanguage guesses the language of an untagged code block. It is a
// heuristic: "" means no guess.
func DetectLanguage(code string) string {
	c := strings.TrimSpace(code)
	if c == "" {
		return ""
	}
	for _, r := range languageRules {
		if r.match(c) {
			return r.lang
		}
	}
	return ""
}
