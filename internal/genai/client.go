package genai

import "context"

// Request carries everything the image backend needs to render one frame.
// ReferenceImages are data URLs in priority order: the continuity frame first
// when present, then assigned asset images.
type Request struct {
	Prompt          string   `json:"prompt"`
	ReferenceImages []string `json:"reference_images,omitempty"`
	AspectRatio     string   `json:"aspect_ratio,omitempty"`
	Model           string   `json:"model,omitempty"`
}

// Client generates still images. Implementations must be safe for concurrent
// use; the studio fires renders for different scenes in parallel.
type Client interface {
	// GenerateImage returns the rendered frame as a data URL.
	GenerateImage(ctx context.Context, req Request) (string, error)
}
