// Package sequence holds the storyboard sequence model: an ordered list of
// scenes plus sequence-level frame settings. Order is significant, it is the
// edit order every exporter reproduces. The model itself is not safe for
// concurrent use; the studio serializes access to it.
package sequence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// MinDuration is the floor every scene duration is clamped to.
	MinDuration = 0.5
	// DefaultDuration is assigned to newly created scenes.
	DefaultDuration = 4.0

	DefaultFPS    = 24
	DefaultWidth  = 1920
	DefaultHeight = 1080

	RatioLandscape = "16:9"
	RatioPortrait  = "9:16"

	QualityStandard = "standard"
	QualityHigh     = "high"
)

// Scene is the atomic storyboard unit. ID is assigned at creation and stable
// for the scene's lifetime. ImageHistory is append-only, oldest first; Image
// is always a member of ImageHistory once any image has been assigned.
type Scene struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Duration         float64   `json:"duration"`
	Image            string    `json:"image,omitempty"`
	ImageHistory     []string  `json:"image_history,omitempty"`
	ShotType         string    `json:"shot_type,omitempty"`
	AspectRatio      string    `json:"aspect_ratio,omitempty"`
	Quality          string    `json:"quality,omitempty"`
	Dialogue         string    `json:"dialogue,omitempty"`
	SpeechPrompt     string    `json:"speech_prompt,omitempty"`
	MusicMood        string    `json:"music_mood,omitempty"`
	AssignedAssetIDs []string  `json:"assigned_asset_ids,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	c := *s
	c.ImageHistory = append([]string(nil), s.ImageHistory...)
	c.AssignedAssetIDs = append([]string(nil), s.AssignedAssetIDs...)
	return &c
}

// Sequence is the ordered timeline of scenes plus shared frame settings.
// Height > Width denotes a portrait sequence.
type Sequence struct {
	Name     string   `json:"name"`
	FPS      int      `json:"fps"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Scenes   []*Scene `json:"scenes"`
	ActiveID string   `json:"active_id,omitempty"`
}

// New returns an empty sequence with default settings.
func New(name string) *Sequence {
	return &Sequence{
		Name:   name,
		FPS:    DefaultFPS,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// AspectRatio derives the sequence orientation from its frame dimensions.
func (q *Sequence) AspectRatio() string {
	if q.Height > q.Width {
		return RatioPortrait
	}
	return RatioLandscape
}

// Scene returns the scene with the given id, or nil.
func (q *Sequence) Scene(id string) *Scene {
	for _, s := range q.Scenes {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// IndexOf returns the position of the scene in edit order, or -1.
func (q *Sequence) IndexOf(id string) int {
	for i, s := range q.Scenes {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Active returns the currently selected scene, or nil.
func (q *Sequence) Active() *Scene {
	if q.ActiveID == "" {
		return nil
	}
	return q.Scene(q.ActiveID)
}

// TotalDuration is the ordered sum of all scene durations in seconds.
func (q *Sequence) TotalDuration() float64 {
	var total float64
	for _, s := range q.Scenes {
		total += s.Duration
	}
	return total
}

// Append creates a new scene with defaults at the end of the sequence and
// selects it.
func (q *Sequence) Append() *Scene {
	s := &Scene{
		ID:          uuid.NewString(),
		Title:       fmt.Sprintf("Scene %d", len(q.Scenes)+1),
		Duration:    DefaultDuration,
		Quality:     QualityStandard,
		AspectRatio: q.AspectRatio(),
		CreatedAt:   time.Now(),
	}
	q.Scenes = append(q.Scenes, s)
	q.ActiveID = s.ID
	return s
}

// Remove deletes the scene from the edit order. Removing the active scene
// moves the selection to the previous scene, else the next, else none.
// Sibling scenes are never touched. Unknown ids are a no-op; stale ids can
// arrive from racing UI events.
func (q *Sequence) Remove(id string) bool {
	idx := q.IndexOf(id)
	if idx < 0 {
		return false
	}

	if q.ActiveID == id {
		switch {
		case idx > 0:
			q.ActiveID = q.Scenes[idx-1].ID
		case idx+1 < len(q.Scenes):
			q.ActiveID = q.Scenes[idx+1].ID
		default:
			q.ActiveID = ""
		}
	}

	q.Scenes = append(q.Scenes[:idx], q.Scenes[idx+1:]...)
	return true
}

// Reorder moves the scene at from to position to. Only position changes;
// scene contents are preserved. Out-of-range indices are a no-op.
func (q *Sequence) Reorder(from, to int) bool {
	if from < 0 || from >= len(q.Scenes) || to < 0 || to >= len(q.Scenes) || from == to {
		return false
	}

	moved := q.Scenes[from]
	q.Scenes = append(q.Scenes[:from], q.Scenes[from+1:]...)

	rest := append([]*Scene(nil), q.Scenes[to:]...)
	q.Scenes = append(q.Scenes[:to], moved)
	q.Scenes = append(q.Scenes, rest...)
	return true
}

// ResizeDuration sets the scene duration, clamped to the MinDuration floor.
func (q *Sequence) ResizeDuration(id string, seconds float64) bool {
	s := q.Scene(id)
	if s == nil {
		return false
	}
	if seconds < MinDuration {
		seconds = MinDuration
	}
	s.Duration = seconds
	return true
}

// SetImage makes img the scene's current image, pushing the prior current
// image onto ImageHistory first when history has not been seeded yet.
func (q *Sequence) SetImage(id, img string) bool {
	s := q.Scene(id)
	if s == nil || img == "" {
		return false
	}
	if len(s.ImageHistory) == 0 && s.Image != "" {
		s.ImageHistory = append(s.ImageHistory, s.Image)
	}
	s.ImageHistory = append(s.ImageHistory, img)
	s.Image = img
	return true
}

// SetFormat applies new sequence settings and cascades the derived aspect
// ratio to every scene. The cascade is all-or-nothing: either every scene
// carries the new orientation or the settings are rejected.
func (q *Sequence) SetFormat(fps, width, height int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("frame dimensions must be positive, got %dx%d", width, height)
	}

	q.FPS = fps
	q.Width = width
	q.Height = height

	ratio := q.AspectRatio()
	for _, s := range q.Scenes {
		s.AspectRatio = ratio
	}
	return nil
}

// Clone returns a deep copy, used as a consistent snapshot by exporters.
func (q *Sequence) Clone() *Sequence {
	c := &Sequence{
		Name:     q.Name,
		FPS:      q.FPS,
		Width:    q.Width,
		Height:   q.Height,
		ActiveID: q.ActiveID,
	}
	c.Scenes = make([]*Scene, len(q.Scenes))
	for i, s := range q.Scenes {
		c.Scenes[i] = s.Clone()
	}
	return c
}
