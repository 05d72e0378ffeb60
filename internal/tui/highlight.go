package tui

import (
	"regexp"
	"strings"
)

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenKeyword
	tokenString
	tokenNumber
	tokenComment
)

type token struct {
	kind tokenKind
	text string
}

// Alternation order matters: at a given offset a comment wins over
// everything and a quoted string wins over the words inside it.
var tokenPattern = regexp.MustCompile(
	`#.*$` +
		`|"[^"]*"|'[^']*'` +
		`|\b\d+(?:\.\d*)?\b` +
		`|\b(?:input|print|if|else|elif|for|while|in|and|or|not|is|greater|less|than|equal|to)\b`,
)

// tokenize splits one line of editor text into styled runs.
func tokenize(line string) []token {
	var out []token
	last := 0
	for _, loc := range tokenPattern.FindAllStringIndex(line, -1) {
		if loc[0] > last {
			out = append(out, token{tokenText, line[last:loc[0]]})
		}
		out = append(out, token{classify(line[loc[0]:loc[1]]), line[loc[0]:loc[1]]})
		last = loc[1]
	}
	if last < len(line) {
		out = append(out, token{tokenText, line[last:]})
	}
	return out
}

func classify(s string) tokenKind {
	switch {
	case strings.HasPrefix(s, "#"):
		return tokenComment
	case strings.HasPrefix(s, `"`), strings.HasPrefix(s, "'"):
		return tokenString
	case s[0] >= '0' && s[0] <= '9':
		return tokenNumber
	default:
		return tokenKeyword
	}
}

// Highlight renders editor text with keyword, string, number and comment
// colors, line by line.
func Highlight(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		var sb strings.Builder
		for _, t := range tokenize(line) {
			switch t.kind {
			case tokenKeyword:
				sb.WriteString(Keyword.Render(t.text))
			case tokenString:
				sb.WriteString(String.Render(t.text))
			case tokenNumber:
				sb.WriteString(Number.Render(t.text))
			case tokenComment:
				sb.WriteString(Comment.Render(t.text))
			default:
				sb.WriteString(t.text)
			}
		}
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n")
}
