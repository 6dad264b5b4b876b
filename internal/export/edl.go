package export

import (
	"fmt"
	"strings"

	"github.com/storyreel/storyreel-agent/internal/sequence"
	"github.com/storyreel/storyreel-agent/internal/timecode"
)

const edlCommentLimit = 80

// GenerateEDL renders the sequence as a CMX3600 edit decision list. Source
// timecodes start at zero for every still; record timecodes accumulate a
// running frame offset that never resets, so entries are gapless and
// non-overlapping by construction. An empty sequence yields a valid
// header-only EDL.
func GenerateEDL(seq *sequence.Sequence, title string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "TITLE: %s\n", truncateRunes(strings.ToUpper(title), 50))
	b.WriteString("FCM: NON-DROP FRAME\n\n")

	offset := 0
	for i, sc := range seq.Scenes {
		durFrames := timecode.DurationToFrames(sc.Duration, seq.FPS)

		srcIn := "00:00:00:00"
		srcOut := timecode.FramesToTimecode(durFrames, seq.FPS)
		recIn := timecode.FramesToTimecode(offset, seq.FPS)
		recOut := timecode.FramesToTimecode(offset+durFrames, seq.FPS)

		fmt.Fprintf(&b, "%03d  AX       V     C        %s %s %s %s\n", i+1, srcIn, srcOut, recIn, recOut)
		fmt.Fprintf(&b, "* FROM CLIP NAME: %s\n", SceneFileName(i+1, sc.Title))
		if sc.Description != "" {
			fmt.Fprintf(&b, "* COMMENT: %s\n", truncateRunes(collapseNewlines(sc.Description), edlCommentLimit))
		}
		b.WriteString("\n")

		offset += durFrames
	}

	return b.String()
}
