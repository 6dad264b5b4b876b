package studio

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/storyreel/storyreel-agent/internal/assets"
	"github.com/storyreel/storyreel-agent/internal/compose"
	"github.com/storyreel/storyreel-agent/internal/genai"
	"github.com/storyreel/storyreel-agent/internal/sequence"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testModels() Models {
	return Models{Standard: "frame-gen-1", Pro: "frame-gen-1-pro"}
}

// memoryRepo is an in-memory store.Repository for tests.
type memoryRepo struct {
	mu     sync.Mutex
	seq    *sequence.Sequence
	assets *assets.Set
	config map[string]string
	saves  int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{config: make(map[string]string)}
}

func (r *memoryRepo) LoadSequence(ctx context.Context) (*sequence.Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq == nil {
		return nil, nil
	}
	return r.seq.Clone(), nil
}

func (r *memoryRepo) SaveSequence(ctx context.Context, seq *sequence.Sequence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq = seq.Clone()
	r.saves++
	return nil
}

func (r *memoryRepo) LoadAssets(ctx context.Context) (*assets.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.assets == nil {
		return nil, nil
	}
	return r.assets.Clone(), nil
}

func (r *memoryRepo) SaveAssets(ctx context.Context, set *assets.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets = set.Clone()
	return nil
}

func (r *memoryRepo) GetConfig(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config[key], nil
}

func (r *memoryRepo) SetConfig(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config[key] = value
	return nil
}

// gateClient blocks GenerateImage until released, to exercise in-flight
// renders.
type gateClient struct {
	started  chan string
	release  chan struct{}
	image    string
	requests []genai.Request
	mu       sync.Mutex
}

func newGateClient(image string) *gateClient {
	return &gateClient{
		started: make(chan string, 8),
		release: make(chan struct{}),
		image:   image,
	}
}

func (c *gateClient) GenerateImage(ctx context.Context, req genai.Request) (string, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	c.started <- req.Prompt
	select {
	case <-c.release:
		return c.image, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newTestStudio(t *testing.T) (*Studio, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	return New(repo, genai.NewStubClient(testLogger()), testModels(), testLogger()), repo
}

func TestAddScenePersists(t *testing.T) {
	s, repo := newTestStudio(t)
	ctx := context.Background()

	sc := s.AddScene(ctx)
	if sc.ID == "" {
		t.Fatal("expected a scene id")
	}
	if repo.seq == nil || len(repo.seq.Scenes) != 1 {
		t.Error("scene not persisted")
	}

	// Mutating the returned clone must not leak into studio state.
	sc.Title = "tampered"
	if s.Snapshot().Scenes[0].Title == "tampered" {
		t.Error("AddScene should return a copy")
	}
}

func TestUpdateScene(t *testing.T) {
	s, _ := newTestStudio(t)
	ctx := context.Background()

	sc := s.AddScene(ctx)
	title := "Opening"
	dur := 2.5
	got, err := s.UpdateScene(ctx, sc.ID, SceneUpdate{Title: &title, Duration: &dur})
	if err != nil {
		t.Fatalf("UpdateScene: %v", err)
	}
	if got.Title != "Opening" || got.Duration != 2.5 {
		t.Errorf("update not applied: %+v", got)
	}

	if _, err := s.UpdateScene(ctx, "missing", SceneUpdate{Title: &title}); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("err = %v, want ErrSceneNotFound", err)
	}
}

func TestUpdateSceneClampsDuration(t *testing.T) {
	s, _ := newTestStudio(t)
	ctx := context.Background()

	sc := s.AddScene(ctx)
	dur := 0.1
	got, err := s.UpdateScene(ctx, sc.ID, SceneUpdate{Duration: &dur})
	if err != nil {
		t.Fatalf("UpdateScene: %v", err)
	}
	if got.Duration != sequence.MinDuration {
		t.Errorf("duration = %v, want clamp to %v", got.Duration, sequence.MinDuration)
	}
}

func TestRemoveSceneAndSnapshotIsolation(t *testing.T) {
	s, _ := newTestStudio(t)
	ctx := context.Background()

	sc := s.AddScene(ctx)
	snap := s.Snapshot()

	if err := s.RemoveScene(ctx, sc.ID); err != nil {
		t.Fatalf("RemoveScene: %v", err)
	}
	if len(snap.Scenes) != 1 {
		t.Error("earlier snapshot should be unaffected by later edits")
	}
	if len(s.Snapshot().Scenes) != 0 {
		t.Error("scene should be gone from new snapshots")
	}
	if err := s.RemoveScene(ctx, sc.ID); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("err = %v, want ErrSceneNotFound", err)
	}
}

func TestSetFormatCascadesToAssets(t *testing.T) {
	s, _ := newTestStudio(t)
	ctx := context.Background()

	if _, err := s.AddAsset(ctx, assets.TypeCharacter, "Mira"); err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	if err := s.SetFormat(ctx, 24, 1080, 1920); err != nil {
		t.Fatalf("SetFormat: %v", err)
	}
	for _, a := range s.Assets().All() {
		if a.AspectRatio != sequence.RatioPortrait {
			t.Errorf("asset ratio = %q, want %q", a.AspectRatio, sequence.RatioPortrait)
		}
	}
}

func TestRenderSceneAppliesFrame(t *testing.T) {
	repo := newMemoryRepo()
	s := New(repo, genai.NewStubClient(testLogger()), testModels(), testLogger())
	ctx := context.Background()

	sc := s.AddScene(ctx)
	desc := "A quiet kitchen"
	if _, err := s.UpdateScene(ctx, sc.ID, SceneUpdate{Description: &desc}); err != nil {
		t.Fatalf("UpdateScene: %v", err)
	}

	if err := s.RenderScene(ctx, sc.ID); err != nil {
		t.Fatalf("RenderScene: %v", err)
	}
	got := s.Snapshot().Scenes[0]
	if got.Image == "" {
		t.Error("render should set the scene image")
	}
	if len(got.ImageHistory) == 0 {
		t.Error("render should record image history")
	}
}

func TestRenderSceneRequiresPrompt(t *testing.T) {
	s, _ := newTestStudio(t)
	ctx := context.Background()

	sc := s.AddScene(ctx)
	if err := s.RenderScene(ctx, sc.ID); !errors.Is(err, compose.ErrNoPrompt) {
		t.Errorf("err = %v, want ErrNoPrompt", err)
	}
	if err := s.RenderScene(ctx, "missing"); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("err = %v, want ErrSceneNotFound", err)
	}
}

func TestRenderSceneBusy(t *testing.T) {
	repo := newMemoryRepo()
	gate := newGateClient("data:image/png;base64,NEW")
	s := New(repo, gate, testModels(), testLogger())
	ctx := context.Background()

	sc := s.AddScene(ctx)
	desc := "A quiet kitchen"
	s.UpdateScene(ctx, sc.ID, SceneUpdate{Description: &desc})

	done := make(chan error, 1)
	go func() { done <- s.RenderScene(ctx, sc.ID) }()

	<-gate.started
	if !s.Rendering(sc.ID) {
		t.Error("Rendering should report the in-flight scene")
	}
	if err := s.RenderScene(ctx, sc.ID); !errors.Is(err, ErrSceneBusy) {
		t.Errorf("second render err = %v, want ErrSceneBusy", err)
	}

	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	if s.Rendering(sc.ID) {
		t.Error("Rendering should clear after completion")
	}
}

func TestRenderSceneDiscardsResultForDeletedScene(t *testing.T) {
	repo := newMemoryRepo()
	gate := newGateClient("data:image/png;base64,NEW")
	s := New(repo, gate, testModels(), testLogger())
	ctx := context.Background()

	sc := s.AddScene(ctx)
	desc := "A quiet kitchen"
	s.UpdateScene(ctx, sc.ID, SceneUpdate{Description: &desc})

	done := make(chan error, 1)
	go func() { done <- s.RenderScene(ctx, sc.ID) }()

	<-gate.started
	if err := s.RemoveScene(ctx, sc.ID); err != nil {
		t.Fatalf("RemoveScene: %v", err)
	}
	close(gate.release)

	if err := <-done; err != nil {
		t.Fatalf("render should still complete cleanly: %v", err)
	}
	if len(s.Snapshot().Scenes) != 0 {
		t.Error("deleted scene must not be resurrected by a late render")
	}
}

func TestRenderSceneUsesContinuity(t *testing.T) {
	repo := newMemoryRepo()
	gate := newGateClient("data:image/png;base64,NEW")
	s := New(repo, gate, testModels(), testLogger())
	ctx := context.Background()

	first := s.AddScene(ctx)
	descA := "Establishing shot"
	s.UpdateScene(ctx, first.ID, SceneUpdate{Description: &descA})
	s.SetSceneImage(ctx, first.ID, "data:image/png;base64,PREV")

	second := s.AddScene(ctx)
	descB := "She enters"
	s.UpdateScene(ctx, second.ID, SceneUpdate{Description: &descB})

	done := make(chan error, 1)
	go func() { done <- s.RenderScene(ctx, second.ID) }()
	<-gate.started
	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("RenderScene: %v", err)
	}

	gate.mu.Lock()
	defer gate.mu.Unlock()
	if len(gate.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(gate.requests))
	}
	req := gate.requests[0]
	if len(req.ReferenceImages) != 1 || req.ReferenceImages[0] != "data:image/png;base64,PREV" {
		t.Errorf("previous frame should anchor the render, got %v", req.ReferenceImages)
	}
}

func TestRenderSceneHighQualityUsesProModel(t *testing.T) {
	repo := newMemoryRepo()
	gate := newGateClient("data:image/png;base64,NEW")
	s := New(repo, gate, testModels(), testLogger())
	ctx := context.Background()

	standard := s.AddScene(ctx)
	descA := "A quiet kitchen"
	s.UpdateScene(ctx, standard.ID, SceneUpdate{Description: &descA})

	pro := s.AddScene(ctx)
	descB := "Hero close-up"
	quality := sequence.QualityHigh
	s.UpdateScene(ctx, pro.ID, SceneUpdate{Description: &descB, Quality: &quality})

	for _, id := range []string{standard.ID, pro.ID} {
		done := make(chan error, 1)
		go func() { done <- s.RenderScene(ctx, id) }()
		<-gate.started
		gate.release <- struct{}{}
		if err := <-done; err != nil {
			t.Fatalf("RenderScene(%s): %v", id, err)
		}
	}

	gate.mu.Lock()
	defer gate.mu.Unlock()
	if len(gate.requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(gate.requests))
	}
	if gate.requests[0].Model != "frame-gen-1" {
		t.Errorf("standard scene model = %q, want %q", gate.requests[0].Model, "frame-gen-1")
	}
	if gate.requests[1].Model != "frame-gen-1-pro" {
		t.Errorf("high quality scene model = %q, want %q", gate.requests[1].Model, "frame-gen-1-pro")
	}
}

func TestLoadRestoresState(t *testing.T) {
	repo := newMemoryRepo()
	first := New(repo, genai.NewStubClient(testLogger()), testModels(), testLogger())
	ctx := context.Background()

	sc := first.AddScene(ctx)
	first.AddAsset(ctx, assets.TypeLocation, "Warehouse")

	second := New(repo, genai.NewStubClient(testLogger()), testModels(), testLogger())
	if err := second.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := second.Snapshot(); len(got.Scenes) != 1 || got.Scenes[0].ID != sc.ID {
		t.Errorf("sequence not restored: %+v", got)
	}
	if second.Assets().Len() != 1 {
		t.Error("assets not restored")
	}
}

func TestRenderSceneContextCancelled(t *testing.T) {
	repo := newMemoryRepo()
	gate := newGateClient("data:image/png;base64,NEW")
	s := New(repo, gate, testModels(), testLogger())

	sc := s.AddScene(context.Background())
	desc := "A quiet kitchen"
	s.UpdateScene(context.Background(), sc.ID, SceneUpdate{Description: &desc})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RenderScene(ctx, sc.ID) }()
	<-gate.started
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected error after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("render did not return after cancellation")
	}
	if s.Snapshot().Scenes[0].Image != "" {
		t.Error("cancelled render must not set an image")
	}
}
