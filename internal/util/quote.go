package util

import "strings"

// QuotePowerShell returns s as a PowerShell single-quoted string literal.
// PowerShell treats the typographic single quotes as quote characters too,
// so every one of them is doubled.
func QuotePowerShell(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'', '\u2018', '\u2019', '\u201a', '\u201b':
			sb.WriteRune(r)
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
