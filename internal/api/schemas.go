package api

import (
	"time"

	"github.com/storyreel/storyreel-agent/internal/assets"
	"github.com/storyreel/storyreel-agent/internal/sequence"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type SequenceResponse struct {
	Name          string          `json:"name"`
	FPS           int             `json:"fps"`
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	AspectRatio   string          `json:"aspect_ratio"`
	TotalDuration float64         `json:"total_duration"`
	ActiveSceneID string          `json:"active_scene_id,omitempty"`
	Scenes        []SceneResponse `json:"scenes"`
}

type SceneResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Duration         float64  `json:"duration"`
	HasImage         bool     `json:"has_image"`
	HistoryDepth     int      `json:"history_depth"`
	ShotType         string   `json:"shot_type,omitempty"`
	AspectRatio      string   `json:"aspect_ratio,omitempty"`
	Quality          string   `json:"quality,omitempty"`
	Dialogue         string   `json:"dialogue,omitempty"`
	SpeechPrompt     string   `json:"speech_prompt,omitempty"`
	MusicMood        string   `json:"music_mood,omitempty"`
	AssignedAssetIDs []string `json:"assigned_asset_ids,omitempty"`
	Rendering        bool     `json:"rendering"`
	CreatedAt        string   `json:"created_at"`
}

type SettingsRequest struct {
	Name   *string `json:"name,omitempty"`
	FPS    *int    `json:"fps,omitempty"`
	Width  *int    `json:"width,omitempty"`
	Height *int    `json:"height,omitempty"`
}

type SceneUpdateRequest struct {
	Title            *string   `json:"title,omitempty"`
	Description      *string   `json:"description,omitempty"`
	Duration         *float64  `json:"duration,omitempty"`
	ShotType         *string   `json:"shot_type,omitempty"`
	Quality          *string   `json:"quality,omitempty"`
	Dialogue         *string   `json:"dialogue,omitempty"`
	SpeechPrompt     *string   `json:"speech_prompt,omitempty"`
	MusicMood        *string   `json:"music_mood,omitempty"`
	AssignedAssetIDs *[]string `json:"assigned_asset_ids,omitempty"`
}

type ReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type SceneImageRequest struct {
	Image string `json:"image"`
}

type RenderResponse struct {
	SceneID string `json:"scene_id"`
	Status  string `json:"status"`
}

type AddAssetRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type AssetUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	TriggerWord *string `json:"trigger_word,omitempty"`
	Image       *string `json:"image,omitempty"`
}

type AssetResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TriggerWord string `json:"trigger_word,omitempty"`
	HasImage    bool   `json:"has_image"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type AssetsResponse struct {
	Assets []AssetResponse `json:"assets"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SceneToResponse(sc *sequence.Scene, rendering bool) SceneResponse {
	return SceneResponse{
		ID:               sc.ID,
		Title:            sc.Title,
		Description:      sc.Description,
		Duration:         sc.Duration,
		HasImage:         sc.Image != "",
		HistoryDepth:     len(sc.ImageHistory),
		ShotType:         sc.ShotType,
		AspectRatio:      sc.AspectRatio,
		Quality:          sc.Quality,
		Dialogue:         sc.Dialogue,
		SpeechPrompt:     sc.SpeechPrompt,
		MusicMood:        sc.MusicMood,
		AssignedAssetIDs: sc.AssignedAssetIDs,
		Rendering:        rendering,
		CreatedAt:        sc.CreatedAt.Format(time.RFC3339),
	}
}

func AssetToResponse(a *assets.Asset) AssetResponse {
	return AssetResponse{
		ID:          a.ID,
		Type:        a.Type,
		Name:        a.Name,
		Description: a.Description,
		TriggerWord: a.TriggerWord,
		HasImage:    a.Image != "",
		AspectRatio: a.AspectRatio,
	}
}
