package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/storyreel/storyreel-agent/internal/sequence"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// GenerateFCPXML renders the sequence as an FCPXML 1.9 timeline. Clip offsets
// are cumulative prior durations in seconds, laid back-to-back in edit order.
// Asset paths are relative (./images/<filename>) on purpose: the consuming
// editor is expected to prompt for relinking.
func GenerateFCPXML(seq *sequence.Sequence, projectName string) string {
	formatName := fmt.Sprintf("FFVideoFormat%dx%dp%d", seq.Width, seq.Height, seq.FPS)
	frameDuration := fmt.Sprintf("1/%ds", seq.FPS)

	var resources strings.Builder
	var clips strings.Builder
	var cursor float64

	for i, sc := range seq.Scenes {
		filename := SceneFileName(i+1, sc.Title)
		resID := fmt.Sprintf("r%d", i+2)
		duration := formatSeconds(sc.Duration)

		fmt.Fprintf(&resources,
			"\n        <asset id=%q name=%q uid=%q src=\"./images/%s\" start=\"0s\" duration=%q hasVideo=\"1\" format=\"r1\"/>",
			resID, filename, resID, filename, duration)

		fmt.Fprintf(&clips,
			"\n                    <asset-clip name=%q ref=%q offset=%q start=\"0s\" duration=%q lane=\"0\" format=\"r1\">\n                        <note>%s</note>\n                    </asset-clip>",
			xmlEscaper.Replace(sc.Title), resID, formatSeconds(cursor), duration, xmlEscaper.Replace(sc.Description))

		cursor += sc.Duration
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<!DOCTYPE fcpxml>\n")
	b.WriteString("<fcpxml version=\"1.9\">\n")
	b.WriteString("    <resources>\n")
	fmt.Fprintf(&b,
		"        <format id=\"r1\" name=%q frameDuration=%q width=\"%d\" height=\"%d\" colorSpace=\"1-1-1 (Rec. 709)\"/>",
		formatName, frameDuration, seq.Width, seq.Height)
	b.WriteString(resources.String())
	b.WriteString("\n    </resources>\n")
	b.WriteString("    <library>\n")
	fmt.Fprintf(&b, "        <event name=%q>\n", xmlEscaper.Replace(projectName+" Export"))
	fmt.Fprintf(&b, "            <project name=%q>\n", xmlEscaper.Replace(projectName))
	fmt.Fprintf(&b,
		"                <sequence format=\"r1\" duration=%q tcStart=\"0s\" tcFormat=\"NDF\" audioLayout=\"stereo\" audioRate=\"48k\">\n",
		formatSeconds(seq.TotalDuration()))
	b.WriteString("                    <spine>")
	b.WriteString(clips.String())
	b.WriteString("\n                    </spine>\n")
	b.WriteString("                </sequence>\n")
	b.WriteString("            </project>\n")
	b.WriteString("        </event>\n")
	b.WriteString("    </library>\n")
	b.WriteString("</fcpxml>\n")
	return b.String()
}

// formatSeconds renders a rational second count in FCPXML notation without
// trailing zeros ("4s", "2.5s").
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}
