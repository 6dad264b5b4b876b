package genai

import (
	"context"
	"log/slog"
)

// stubImage is a 1x1 black PNG, the same placeholder the packager ships for
// unrendered scenes.
const stubImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// StubClient answers every request with a fixed placeholder frame. Used when
// no API key is configured and in tests.
type StubClient struct {
	logger *slog.Logger
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

func (c *StubClient) GenerateImage(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.logger.Info("genai stub: returning placeholder frame",
		"model", req.Model,
		"reference_count", len(req.ReferenceImages),
	)
	return stubImage, nil
}
