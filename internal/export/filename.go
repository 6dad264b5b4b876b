package export

import (
	"fmt"
	"strings"
)

// SceneFileName builds the external image filename for a scene:
// Scene_<1-based index>_<slug(title)>.png. Every generator and the packaging
// step share this convention; the consuming editor links media by it, so it
// must never diverge between exporters.
func SceneFileName(index1 int, title string) string {
	return fmt.Sprintf("Scene_%d_%s.png", index1, slug(title))
}

// slug replaces every character outside [A-Za-z0-9] with an underscore.
func slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// collapseNewlines flattens multi-line text into a single line.
func collapseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

// truncateRunes caps a string at n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
