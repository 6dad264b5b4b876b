package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/storyreel/storyreel-agent/internal/compose"
	"github.com/storyreel/storyreel-agent/internal/config"
	"github.com/storyreel/storyreel-agent/internal/studio"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/sequence", getSequenceHandler(cfg))
		r.Put("/sequence/settings", updateSettingsHandler(cfg))

		r.Post("/scenes", addSceneHandler(cfg))
		r.Post("/scenes/reorder", reorderScenesHandler(cfg))
		r.Patch("/scenes/{id}", updateSceneHandler(cfg))
		r.Delete("/scenes/{id}", deleteSceneHandler(cfg))
		r.Post("/scenes/{id}/image", setSceneImageHandler(cfg))
		r.Get("/scenes/{id}/image", getSceneImageHandler(cfg))
		r.Post("/scenes/{id}/render", renderSceneHandler(cfg))

		r.Get("/assets", listAssetsHandler(cfg))
		r.Post("/assets", addAssetHandler(cfg))
		r.Patch("/assets/{id}", updateAssetHandler(cfg))
		r.Delete("/assets/{id}", deleteAssetHandler(cfg))

		r.Get("/export/edl", exportEDLHandler(cfg))
		r.Get("/export/fcpxml", exportFCPXMLHandler(cfg))
		r.Get("/export/srt", exportSRTHandler(cfg))
		r.Get("/export/script", exportScriptHandler(cfg))
		r.Get("/export/package", exportPackageHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func getSequenceHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq := cfg.Studio.Snapshot()

		resp := SequenceResponse{
			Name:          seq.Name,
			FPS:           seq.FPS,
			Width:         seq.Width,
			Height:        seq.Height,
			AspectRatio:   seq.AspectRatio(),
			TotalDuration: seq.TotalDuration(),
			ActiveSceneID: seq.ActiveID,
			Scenes:        make([]SceneResponse, len(seq.Scenes)),
		}
		for i, sc := range seq.Scenes {
			resp.Scenes[i] = SceneToResponse(sc, cfg.Studio.Rendering(sc.ID))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func updateSettingsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.Name != nil {
			cfg.Studio.RenameProject(r.Context(), *req.Name)
		}

		if req.FPS != nil || req.Width != nil || req.Height != nil {
			seq := cfg.Studio.Snapshot()
			fps, width, height := seq.FPS, seq.Width, seq.Height
			if req.FPS != nil {
				fps = *req.FPS
			}
			if req.Width != nil {
				width = *req.Width
			}
			if req.Height != nil {
				height = *req.Height
			}
			if err := cfg.Studio.SetFormat(r.Context(), fps, width, height); err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
		}

		getSequenceHandler(cfg)(w, r)
	}
}

func addSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := cfg.Studio.AddScene(r.Context())
		WriteJSON(w, http.StatusCreated, SceneToResponse(sc, false))
	}
}

func updateSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req SceneUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sc, err := cfg.Studio.UpdateScene(r.Context(), id, studio.SceneUpdate{
			Title:            req.Title,
			Description:      req.Description,
			Duration:         req.Duration,
			ShotType:         req.ShotType,
			Quality:          req.Quality,
			Dialogue:         req.Dialogue,
			SpeechPrompt:     req.SpeechPrompt,
			MusicMood:        req.MusicMood,
			AssignedAssetIDs: req.AssignedAssetIDs,
		})
		if errors.Is(err, studio.ErrSceneNotFound) {
			WriteError(w, http.StatusNotFound, "scene not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, SceneToResponse(sc, cfg.Studio.Rendering(id)))
	}
}

func deleteSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := cfg.Studio.RemoveScene(r.Context(), id)
		if errors.Is(err, studio.ErrSceneNotFound) {
			WriteError(w, http.StatusNotFound, "scene not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func reorderScenesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := cfg.Studio.ReorderScene(r.Context(), req.From, req.To); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		getSequenceHandler(cfg)(w, r)
	}
}

func setSceneImageHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req SceneImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Image == "" {
			WriteError(w, http.StatusBadRequest, "image is required", "BAD_REQUEST")
			return
		}

		err := cfg.Studio.SetSceneImage(r.Context(), id, req.Image)
		if errors.Is(err, studio.ErrSceneNotFound) {
			WriteError(w, http.StatusNotFound, "scene not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func getSceneImageHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		seq := cfg.Studio.Snapshot()
		sc := seq.Scene(id)
		if sc == nil {
			WriteError(w, http.StatusNotFound, "scene not found", "NOT_FOUND")
			return
		}
		if sc.Image == "" {
			WriteError(w, http.StatusNotFound, "scene has no image", "NOT_FOUND")
			return
		}

		mediaType, data, err := decodeDataURL(sc.Image)
		if err != nil {
			cfg.Logger.Error("failed to decode scene image", "scene_id", id, "error", err)
			WriteError(w, http.StatusInternalServerError, "stored image is not decodable", "INTERNAL_ERROR")
			return
		}

		w.Header().Set("Content-Type", mediaType)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func renderSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		// Validate up front so the caller gets a real status code; the
		// render itself runs detached from the request.
		seq := cfg.Studio.Snapshot()
		sc := seq.Scene(id)
		if sc == nil {
			WriteError(w, http.StatusNotFound, "scene not found", "NOT_FOUND")
			return
		}
		if sc.Description == "" {
			WriteError(w, http.StatusBadRequest, "scene has no description to render", "BAD_REQUEST")
			return
		}
		if cfg.Studio.Rendering(id) {
			WriteError(w, http.StatusConflict, "scene render already in progress", "SCENE_BUSY")
			return
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := cfg.Studio.RenderScene(ctx, id); err != nil &&
				!errors.Is(err, studio.ErrSceneBusy) && !errors.Is(err, compose.ErrNoPrompt) {
				cfg.Logger.Error("background render failed", "scene_id", id, "error", err)
			}
		}()

		WriteJSON(w, http.StatusAccepted, RenderResponse{SceneID: id, Status: "rendering"})
	}
}

func listAssetsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := cfg.Studio.Assets().All()
		resp := AssetsResponse{Assets: make([]AssetResponse, len(all))}
		for i, a := range all {
			resp.Assets[i] = AssetToResponse(a)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func addAssetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddAssetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		a, err := cfg.Studio.AddAsset(r.Context(), req.Type, req.Name)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusCreated, AssetToResponse(a))
	}
}

func updateAssetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req AssetUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		a, err := cfg.Studio.UpdateAsset(r.Context(), id, studio.AssetUpdate{
			Name:        req.Name,
			Description: req.Description,
			TriggerWord: req.TriggerWord,
			Image:       req.Image,
		})
		if errors.Is(err, studio.ErrAssetNotFound) {
			WriteError(w, http.StatusNotFound, "asset not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, AssetToResponse(a))
	}
}

func deleteAssetHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := cfg.Studio.RemoveAsset(r.Context(), id)
		if errors.Is(err, studio.ErrAssetNotFound) {
			WriteError(w, http.StatusNotFound, "asset not found", "NOT_FOUND")
			return
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// decodeDataURL splits a data URL into its media type and payload bytes.
func decodeDataURL(s string) (string, []byte, error) {
	mediaType := "application/octet-stream"
	payload := s
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return "", nil, errors.New("malformed data url")
		}
		header := s[len("data:"):idx]
		payload = s[idx+1:]
		if mt := strings.TrimSuffix(header, ";base64"); mt != "" {
			mediaType = mt
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return mediaType, data, nil
}
