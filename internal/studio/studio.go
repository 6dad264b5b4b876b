// Package studio is the single writer for project state. All mutations to the
// sequence and asset set flow through here under one lock; exports and reads
// are served from deep-copied snapshots, so generators never observe a
// half-applied edit.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/storyreel/storyreel-agent/internal/assets"
	"github.com/storyreel/storyreel-agent/internal/compose"
	"github.com/storyreel/storyreel-agent/internal/genai"
	"github.com/storyreel/storyreel-agent/internal/sequence"
	"github.com/storyreel/storyreel-agent/internal/store"
)

var (
	ErrSceneNotFound = errors.New("scene not found")
	ErrAssetNotFound = errors.New("asset not found")
	ErrSceneBusy     = errors.New("scene render already in progress")
)

// Models names the generation model per render quality. Scenes marked high
// quality render with Pro; everything else uses Standard. An empty Pro falls
// back to Standard.
type Models struct {
	Standard string
	Pro      string
}

type Studio struct {
	mu         sync.Mutex
	seq        *sequence.Sequence
	assets     *assets.Set
	processing map[string]bool

	repo   store.Repository
	gen    genai.Client
	models Models
	logger *slog.Logger
}

func New(repo store.Repository, gen genai.Client, models Models, logger *slog.Logger) *Studio {
	return &Studio{
		seq:        sequence.New("Untitled Project"),
		assets:     assets.NewSet(),
		processing: make(map[string]bool),
		repo:       repo,
		gen:        gen,
		models:     models,
		logger:     logger,
	}
}

// Load replaces in-memory state with what the repository holds. A fresh
// database keeps the default empty project.
func (s *Studio) Load(ctx context.Context) error {
	seq, err := s.repo.LoadSequence(ctx)
	if err != nil {
		return fmt.Errorf("load sequence: %w", err)
	}
	set, err := s.repo.LoadAssets(ctx)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != nil {
		s.seq = seq
	}
	if set != nil {
		s.assets = set
	}
	s.logger.Info("project loaded",
		"scenes", len(s.seq.Scenes),
		"assets", s.assets.Len(),
	)
	return nil
}

// Snapshot returns a deep copy of the sequence for reads and exports.
func (s *Studio) Snapshot() *sequence.Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Clone()
}

// Assets returns a deep copy of the asset set.
func (s *Studio) Assets() *assets.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets.Clone()
}

// persist writes current state through to storage. Persistence failures are
// logged, not returned: the in-memory edit already happened and the user
// should not see their change rejected because a save lagged.
func (s *Studio) persist(ctx context.Context) {
	if err := s.repo.SaveSequence(ctx, s.seq); err != nil {
		s.logger.Error("failed to persist sequence", "error", err)
	}
	if err := s.repo.SaveAssets(ctx, s.assets); err != nil {
		s.logger.Error("failed to persist assets", "error", err)
	}
}

// AddScene appends a scene with defaults and selects it.
func (s *Studio) AddScene(ctx context.Context) *sequence.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.seq.Append()
	s.logger.Info("scene added", "scene_id", sc.ID, "position", len(s.seq.Scenes)-1)
	s.persist(ctx)
	return sc.Clone()
}

// SceneUpdate carries the mutable scene fields; nil pointers leave the field
// untouched.
type SceneUpdate struct {
	Title            *string
	Description      *string
	Duration         *float64
	ShotType         *string
	Quality          *string
	Dialogue         *string
	SpeechPrompt     *string
	MusicMood        *string
	AssignedAssetIDs *[]string
}

func (s *Studio) UpdateScene(ctx context.Context, id string, upd SceneUpdate) (*sequence.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := s.seq.Scene(id)
	if sc == nil {
		return nil, ErrSceneNotFound
	}

	if upd.Title != nil {
		sc.Title = *upd.Title
	}
	if upd.Description != nil {
		sc.Description = *upd.Description
	}
	if upd.Duration != nil {
		s.seq.ResizeDuration(id, *upd.Duration)
	}
	if upd.ShotType != nil {
		sc.ShotType = *upd.ShotType
	}
	if upd.Quality != nil {
		sc.Quality = *upd.Quality
	}
	if upd.Dialogue != nil {
		sc.Dialogue = *upd.Dialogue
	}
	if upd.SpeechPrompt != nil {
		sc.SpeechPrompt = *upd.SpeechPrompt
	}
	if upd.MusicMood != nil {
		sc.MusicMood = *upd.MusicMood
	}
	if upd.AssignedAssetIDs != nil {
		sc.AssignedAssetIDs = append([]string(nil), (*upd.AssignedAssetIDs)...)
	}

	s.persist(ctx)
	return sc.Clone(), nil
}

func (s *Studio) RemoveScene(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.Remove(id) {
		return ErrSceneNotFound
	}
	s.logger.Info("scene removed", "scene_id", id)
	s.persist(ctx)
	return nil
}

func (s *Studio) ReorderScene(ctx context.Context, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.Reorder(from, to) {
		return fmt.Errorf("reorder out of range: %d -> %d", from, to)
	}
	s.persist(ctx)
	return nil
}

// SetSceneImage records a user-supplied frame, preserving prior frames in the
// scene's history.
func (s *Studio) SetSceneImage(ctx context.Context, id, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.SetImage(id, image) {
		return ErrSceneNotFound
	}
	s.persist(ctx)
	return nil
}

// SetFormat updates the project format and cascades the resulting aspect
// ratio to every scene and asset.
func (s *Studio) SetFormat(ctx context.Context, fps, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.seq.SetFormat(fps, width, height); err != nil {
		return err
	}
	s.assets.SetAspectRatio(s.seq.AspectRatio())
	s.logger.Info("format changed", "fps", fps, "width", width, "height", height)
	s.persist(ctx)
	return nil
}

func (s *Studio) RenameProject(ctx context.Context, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.Name = name
	s.persist(ctx)
}

func (s *Studio) AddAsset(ctx context.Context, typ, name string) (*assets.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.assets.Add(typ, name)
	if err != nil {
		return nil, err
	}
	a.AspectRatio = s.seq.AspectRatio()
	s.persist(ctx)
	return a.Clone(), nil
}

// AssetUpdate carries the mutable asset fields; nil pointers leave the field
// untouched.
type AssetUpdate struct {
	Name        *string
	Description *string
	TriggerWord *string
	Image       *string
}

func (s *Studio) UpdateAsset(ctx context.Context, id string, upd AssetUpdate) (*assets.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.assets.Resolve(id)
	if a == nil {
		return nil, ErrAssetNotFound
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	if upd.TriggerWord != nil {
		a.TriggerWord = *upd.TriggerWord
	}
	if upd.Image != nil {
		a.Image = *upd.Image
	}
	s.persist(ctx)
	return a.Clone(), nil
}

// RemoveAsset deletes the asset. Scene assignments keep the id; composition
// skips ids that no longer resolve.
func (s *Studio) RemoveAsset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.assets.Remove(id) {
		return ErrAssetNotFound
	}
	s.persist(ctx)
	return nil
}

// RenderScene composes the generation request under the lock, calls the
// backend without it, then applies the result only if the scene still exists.
// A second render for the same scene while one is in flight fails with
// ErrSceneBusy.
func (s *Studio) RenderScene(ctx context.Context, id string) error {
	s.mu.Lock()
	sc := s.seq.Scene(id)
	if sc == nil {
		s.mu.Unlock()
		return ErrSceneNotFound
	}
	if s.processing[id] {
		s.mu.Unlock()
		return ErrSceneBusy
	}
	model := s.models.Standard
	if sc.Quality == sequence.QualityHigh && s.models.Pro != "" {
		model = s.models.Pro
	}
	req, err := compose.Compose(s.seq, id, s.assets, model)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.processing[id] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.processing, id)
		s.mu.Unlock()
	}()

	s.logger.Info("rendering scene", "scene_id", id, "model", req.Model, "reference_count", len(req.ReferenceImages))

	img, err := s.gen.GenerateImage(ctx, req)
	if err != nil {
		s.logger.Error("scene render failed", "scene_id", id, "error", err)
		return fmt.Errorf("render scene %s: %w", id, err)
	}

	s.applyRendered(ctx, id, img)
	return nil
}

// applyRendered commits a finished frame. The scene may have been deleted
// while the backend worked; in that case the frame is discarded.
func (s *Studio) applyRendered(ctx context.Context, id, img string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.SetImage(id, img) {
		s.logger.Info("discarding render for deleted scene", "scene_id", id)
		return
	}
	s.logger.Info("scene rendered", "scene_id", id)
	s.persist(ctx)
}

// Rendering reports whether a render is in flight for the scene.
func (s *Studio) Rendering(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing[id]
}
