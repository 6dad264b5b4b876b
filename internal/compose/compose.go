// Package compose builds generation requests from sequence state. It is where
// continuity policy lives: each scene after the first is rendered against its
// predecessor, either by locking onto the previous frame's pixels or, when no
// frame exists yet, by narrating the previous shot in text.
package compose

import (
	"errors"
	"fmt"

	"github.com/storyreel/storyreel-agent/internal/assets"
	"github.com/storyreel/storyreel-agent/internal/genai"
	"github.com/storyreel/storyreel-agent/internal/sequence"
)

var (
	ErrSceneNotFound = errors.New("scene not found")
	ErrNoPrompt      = errors.New("scene has no description to render")
)

const continuityLock = "[CONTINUITY LOCK: Strict visual continuity with previous frame. Same lighting, environment, and film stock. New Action: %s]"

// Compose builds the generation request for one scene. The previous scene's
// rendered frame, when present, becomes the first reference image and the
// prompt is wrapped in a continuity lock; a previous scene with only a
// description contributes textual context instead. The scene's shot type,
// when set, is appended after the continuity composition. Assigned asset
// images follow the continuity reference in assignment order; ids that no
// longer resolve are skipped.
func Compose(seq *sequence.Sequence, sceneID string, resolver assets.Resolver, model string) (genai.Request, error) {
	sc := seq.Scene(sceneID)
	if sc == nil {
		return genai.Request{}, ErrSceneNotFound
	}
	if sc.Description == "" {
		return genai.Request{}, ErrNoPrompt
	}

	prompt := sc.Description
	var refs []string

	if idx := seq.IndexOf(sceneID); idx > 0 {
		prev := seq.Scenes[idx-1]
		switch {
		case prev.Image != "":
			prompt = fmt.Sprintf(continuityLock, sc.Description)
			refs = append(refs, prev.Image)
		case prev.Description != "":
			prompt = fmt.Sprintf("(Sequence Context: Following a shot of %s). %s", prev.Description, sc.Description)
		}
	}

	if sc.ShotType != "" {
		prompt += ", " + sc.ShotType
	}

	if resolver != nil {
		for _, id := range sc.AssignedAssetIDs {
			a := resolver.Resolve(id)
			if a == nil || a.Image == "" {
				continue
			}
			refs = append(refs, a.Image)
		}
	}

	ratio := sc.AspectRatio
	if ratio == "" {
		ratio = seq.AspectRatio()
	}

	return genai.Request{
		Prompt:          prompt,
		ReferenceImages: refs,
		AspectRatio:     ratio,
		Model:           model,
	}, nil
}
