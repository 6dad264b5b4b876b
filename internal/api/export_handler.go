package api

import (
	"fmt"
	"net/http"

	"github.com/storyreel/storyreel-agent/internal/export"
)

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq := cfg.Studio.Snapshot()
		serveText(w, "application/x-edl", seq.Name+".edl", export.GenerateEDL(seq, seq.Name))
	}
}

func exportFCPXMLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq := cfg.Studio.Snapshot()
		serveText(w, "application/xml", seq.Name+".fcpxml", export.GenerateFCPXML(seq, seq.Name))
	}
}

func exportSRTHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq := cfg.Studio.Snapshot()
		serveText(w, "application/x-subrip", seq.Name+".srt", export.GenerateSRT(seq))
	}
}

func exportScriptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq := cfg.Studio.Snapshot()
		script, err := export.GenerateResolveScript(seq, seq.Name)
		if err != nil {
			cfg.Logger.Error("failed to generate automation script", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to generate script", "INTERNAL_ERROR")
			return
		}
		serveText(w, "text/x-python", "import_timeline.py", script)
	}
}

func exportPackageHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq := cfg.Studio.Snapshot()

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", seq.Name+"_package.zip"))
		w.WriteHeader(http.StatusOK)

		if err := cfg.Packager.WritePackage(w, seq, seq.Name); err != nil {
			// Headers are already out; all we can do is log.
			cfg.Logger.Error("failed to stream package", "error", err)
		}
	}
}

func serveText(w http.ResponseWriter, contentType, filename, body string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
