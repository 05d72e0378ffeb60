// Package util holds small text helpers shared by the command line and the
// editor.
package util

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "..."

// Truncate shortens s to maxWidth terminal columns, ending with "..." when
// cut. Escape sequences and wide characters are measured correctly, so
// styled text can be passed in.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= len(ellipsis) {
		return ellipsis
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, ellipsis)
}

// TruncatePath shortens a file path to maxWidth columns by dropping leading
// directories, so the file name stays visible: "/home/me/projects/demo.nl"
// becomes ".../projects/demo.nl". A bare name that is still too long falls
// back to Truncate.
func TruncatePath(path string, maxWidth int) string {
	if lipgloss.Width(path) <= maxWidth {
		return path
	}
	sep := string(filepath.Separator)
	parts := strings.Split(filepath.Clean(path), sep)

	tail := parts[len(parts)-1]
	if lipgloss.Width(ellipsis+sep+tail) > maxWidth {
		return Truncate(tail, maxWidth)
	}
	for i := len(parts) - 2; i > 0; i-- {
		candidate := parts[i] + sep + tail
		if lipgloss.Width(ellipsis+sep+candidate) > maxWidth {
			break
		}
		tail = candidate
	}
	return ellipsis + sep + tail
}
