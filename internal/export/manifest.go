package export

import (
	"encoding/json"
	"fmt"

	"github.com/storyreel/storyreel-agent/internal/sequence"
	"github.com/storyreel/storyreel-agent/internal/timecode"
)

// PlaceholderFileName is the stand-in clip used for scenes that have no
// rendered image yet. The automation script still places these scenes so the
// timeline keeps its full duration.
const PlaceholderFileName = "Placeholder_Black.png"

// ManifestEntry is the canonical per-scene record embedded in the automation
// script and written to project.json by the packaging step. Both seconds and
// frames are precomputed here so the consuming editor never re-derives
// timing.
type ManifestEntry struct {
	Filename       string  `json:"filename"`
	Name           string  `json:"name"`
	DurationSec    float64 `json:"durationSec"`
	DurationFrames int     `json:"durationFrames"`
	Description    string  `json:"description"`
	Dialogue       string  `json:"dialogue"`
	IsPlaceholder  bool    `json:"isPlaceholder"`
}

// BuildManifest derives the manifest from a sequence snapshot. Scenes with no
// image become placeholder entries rather than being dropped.
func BuildManifest(seq *sequence.Sequence) []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(seq.Scenes))
	for i, sc := range seq.Scenes {
		entry := ManifestEntry{
			Filename:       SceneFileName(i+1, sc.Title),
			Name:           sc.Title,
			DurationSec:    sc.Duration,
			DurationFrames: timecode.DurationToFrames(sc.Duration, seq.FPS),
			Description:    sc.Description,
			Dialogue:       sc.Dialogue,
		}
		if sc.Image == "" {
			entry.Filename = PlaceholderFileName
			entry.IsPlaceholder = true
		}
		entries = append(entries, entry)
	}
	return entries
}

// EncodeManifest is the single serialization point for the manifest. Every
// generator that embeds or ships it goes through here so the encoding can
// never drift between exporters.
func EncodeManifest(entries []ManifestEntry) (string, error) {
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	return string(data), nil
}
