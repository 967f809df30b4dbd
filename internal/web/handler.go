package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"fourcut-ai/internal/gallery"
	"fourcut-ai/internal/gemini"
	"fourcut-ai/internal/prompt"
	"fourcut-ai/internal/shots"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxUploadBytes = 25 << 20

// Runner is the batch entrypoint. Implemented by shots.Orchestrator.
type Runner interface {
	Run(ctx context.Context, refs []gemini.ImageInput, scenes []shots.Scene, build, fallback shots.PromptBuilder) shots.BatchResult
}

type Options struct {
	Runner         Runner
	Gallery        *gallery.Store
	Logger         *slog.Logger
	MaxSelfies     int
	RequestTimeout time.Duration
}

type Handler struct {
	runner         Runner
	gallery        *gallery.Store
	logger         *slog.Logger
	maxSelfies     int
	requestTimeout time.Duration
	tmpl           *template.Template
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxSelfies := opts.MaxSelfies
	if maxSelfies < 1 {
		maxSelfies = 4
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 180 * time.Second
	}

	return &Handler{
		runner:         opts.Runner,
		gallery:        opts.Gallery,
		logger:         logger,
		maxSelfies:     maxSelfies,
		requestTimeout: requestTimeout,
		tmpl:           template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handleIndex)
	for _, c := range prompt.Characters() {
		mux.HandleFunc("/"+c.Key, h.characterPage(c))
	}
	mux.HandleFunc("/generate", h.handleGenerate)
	mux.Handle("/static/", http.StripPrefix("/static/",
		http.FileServer(http.Dir(h.gallery.Dir()))))
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, "index.html", map[string]any{
		"Characters": prompt.Characters(),
	})
}

func (h *Handler) characterPage(c prompt.Character) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, "character.html", map[string]any{
			"Character": c,
			"ShotCount": len(c.Scenes),
		})
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	character, ok := prompt.CharacterByKey(strings.TrimSpace(r.FormValue("character_type")))
	if !ok {
		http.Error(w, "unknown character", http.StatusBadRequest)
		return
	}
	exact := parseBool(r.FormValue("exact_character"))

	files := r.MultipartForm.File["selfies"]
	if len(files) == 0 {
		http.Error(w, "upload at least one selfie", http.StatusBadRequest)
		return
	}
	if len(files) > h.maxSelfies {
		files = files[:h.maxSelfies]
	}

	// Uploads are spooled to disk for the duration of the batch and removed
	// unconditionally when the request ends, success or failure.
	var tempPaths []string
	defer func() { h.gallery.Remove(tempPaths) }()

	refs, tempPaths, err := h.spoolUploads(files)
	if err != nil {
		h.logger.Error("upload spool failed", "err", err)
		http.Error(w, "failed to read uploads", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	build, fallback := prompt.Builders(character, exact)
	result := h.runner.Run(ctx, refs, character.Scenes, build, fallback)

	urls := make([]string, 0, len(result.Artifacts))
	for _, a := range result.Artifacts {
		u, err := h.gallery.SaveArtifact(a.Data, a.MimeType)
		if err != nil {
			h.logger.Error("save artifact failed", "scene", a.SceneLabel, "err", err)
			result.Failures = append(result.Failures, shots.Failure{
				SceneLabel: a.SceneLabel,
				Message:    "failed to store generated image",
			})
			continue
		}
		urls = append(urls, u)
	}

	h.render(w, "result.html", map[string]any{
		"Character": character,
		"URLs":      urls,
		"Failures":  result.Failures,
	})
}

func (h *Handler) spoolUploads(files []*multipart.FileHeader) ([]gemini.ImageInput, []string, error) {
	var refs []gemini.ImageInput
	var paths []string

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, paths, err
		}

		path, err := h.gallery.SaveUpload(f)
		f.Close()
		if err != nil {
			return nil, paths, err
		}
		paths = append(paths, path)

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, paths, err
		}

		refs = append(refs, gemini.ImageInput{
			Data:     data,
			MimeType: detectMime(fh.Header.Get("Content-Type"), data),
		})
	}
	return refs, paths, nil
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render failed", "template", name, "err", err)
	}
}

func detectMime(header string, data []byte) string {
	mimeType := strings.TrimSpace(header)
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "image/jpeg"
	}
	return mimeType
}

func parseBool(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}
