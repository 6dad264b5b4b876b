package export

import (
	"fmt"
	"strings"

	"github.com/storyreel/storyreel-agent/internal/sequence"
	"github.com/storyreel/storyreel-agent/internal/timecode"
)

// SubtitleStartOffset shifts every caption by one hour so the first caption
// never sits at absolute zero, which some editors mishandle on import.
const SubtitleStartOffset = 3600.0

// GenerateSRT renders one caption per scene. Caption text falls back through
// dialogue, then description, then empty; newlines are collapsed to spaces.
func GenerateSRT(seq *sequence.Sequence) string {
	var b strings.Builder
	var cursor float64

	for i, sc := range seq.Scenes {
		start := timecode.SecondsToSRTTime(cursor, SubtitleStartOffset)
		end := timecode.SecondsToSRTTime(cursor+sc.Duration, SubtitleStartOffset)

		text := sc.Dialogue
		if text == "" {
			text = sc.Description
		}

		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, start, end, collapseNewlines(text))
		cursor += sc.Duration
	}

	return b.String()
}
