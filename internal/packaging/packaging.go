// Package packaging bundles a project into a single importable archive:
// rendered frames, every timeline format, the Resolve automation script, and
// a manifest, laid out so the script's adjacent-directory lookup works after
// a plain unzip.
package packaging

import (
	"archive/zip"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/storyreel/storyreel-agent/internal/export"
	"github.com/storyreel/storyreel-agent/internal/sequence"
)

// placeholderPNG is a 1x1 black PNG shipped for scenes with no rendered
// frame.
const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

const readme = `STORYBOARD EXPORT PACKAGE
=========================

Contents:
  images/              rendered frames, one per scene
  timeline.edl         CMX3600 edit decision list
  timeline.fcpxml      Final Cut Pro / FCPXML 1.9 timeline
  import_timeline.py   DaVinci Resolve console automation script
  subtitles.srt        dialogue captions (1 hour start offset)
  project.json         scene manifest with precomputed timings

DaVinci Resolve (recommended):
  1. Unzip this package. Keep import_timeline.py next to the images folder.
  2. Open Resolve with a project loaded.
  3. Workspace -> Console -> Py3, then drag import_timeline.py into the
     console window.

Other editors:
  Import timeline.edl or timeline.fcpxml and relink media to the images
  folder when prompted.
`

// Packager writes project archives.
type Packager struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Packager {
	return &Packager{logger: logger}
}

// WritePackage streams the archive for a sequence snapshot to w. Scenes
// without a frame get the shared placeholder image so the automation script
// and the manifest stay aligned.
func (p *Packager) WritePackage(w io.Writer, seq *sequence.Sequence, projectName string) error {
	zw := zip.NewWriter(w)

	for i, sc := range seq.Scenes {
		if sc.Image == "" {
			continue
		}
		data, err := decodeDataURL(sc.Image)
		if err != nil {
			p.logger.Warn("skipping undecodable scene image", "scene_id", sc.ID, "error", err)
			continue
		}
		name := "images/" + export.SceneFileName(i+1, sc.Title)
		if err := writeEntry(zw, name, data); err != nil {
			return err
		}
	}

	placeholder, err := base64.StdEncoding.DecodeString(placeholderPNG)
	if err != nil {
		return fmt.Errorf("decode placeholder: %w", err)
	}
	if err := writeEntry(zw, "images/"+export.PlaceholderFileName, placeholder); err != nil {
		return err
	}

	if err := writeEntry(zw, "timeline.edl", []byte(export.GenerateEDL(seq, projectName))); err != nil {
		return err
	}
	if err := writeEntry(zw, "timeline.fcpxml", []byte(export.GenerateFCPXML(seq, projectName))); err != nil {
		return err
	}

	script, err := export.GenerateResolveScript(seq, projectName)
	if err != nil {
		return fmt.Errorf("generate automation script: %w", err)
	}
	if err := writeEntry(zw, "import_timeline.py", []byte(script)); err != nil {
		return err
	}

	if err := writeEntry(zw, "subtitles.srt", []byte(export.GenerateSRT(seq))); err != nil {
		return err
	}

	manifest, err := export.EncodeManifest(export.BuildManifest(seq))
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeEntry(zw, "project.json", []byte(manifest)); err != nil {
		return err
	}

	if err := writeEntry(zw, "README_IMPORT.txt", []byte(readme)); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize package: %w", err)
	}

	p.logger.Info("package written",
		"project", projectName,
		"scenes", len(seq.Scenes),
	)
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// decodeDataURL extracts the payload from a base64 data URL. Raw base64
// without a header is accepted too.
func decodeDataURL(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		payload = s[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return data, nil
}
