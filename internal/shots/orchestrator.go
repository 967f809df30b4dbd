package shots

import (
	"context"
	"io"
	"log/slog"
	"time"

	"fourcut-ai/internal/gemini"
)

type Options struct {
	Generator Generator
	Pacer     *Pacer
	Logger    *slog.Logger
}

// Orchestrator runs a fixed scene list against the generator, one scene at a
// time, and never lets a single scene's failure abort the batch.
type Orchestrator struct {
	call   *caller
	logger *slog.Logger
}

func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pacer := opts.Pacer
	if pacer == nil {
		pacer = NewPacer()
	}

	return &Orchestrator{
		call:   newCaller(opts.Generator, pacer, logger),
		logger: logger,
	}
}

// Run executes the scenes in order. For each scene the primary prompt gets
// one call plus at most one quota retry; a non-quota failure gets a single
// fallback-prompt call when a fallback builder is configured. Quota failures
// are recorded as-is so the batch stops burning requests on that scene.
// Every scene lands in exactly one of Artifacts or Failures.
func (o *Orchestrator) Run(ctx context.Context, refs []gemini.ImageInput, scenes []Scene, build PromptBuilder, fallback PromptBuilder) BatchResult {
	var result BatchResult
	batchStart := time.Now()

	for _, scene := range scenes {
		prompt := build(scene, len(refs))

		data, mimeType, used, err := o.call.invoke(ctx, refs, prompt, batchStart, maxAttempts)
		if err != nil {
			// The fallback shares the scene's two-call budget: a primary
			// that already burned both attempts gets no third call.
			if gemini.IsQuota(err) || fallback == nil || used >= maxAttempts {
				o.logger.Warn("shot failed", "scene", scene.Label, "err", err)
				result.Failures = append(result.Failures, Failure{SceneLabel: scene.Label, Message: err.Error()})
				continue
			}

			o.logger.Info("shot failed, trying fallback prompt", "scene", scene.Label, "err", err)
			data, mimeType, _, err = o.call.invoke(ctx, refs, fallback(scene, len(refs)), batchStart, maxAttempts-used)
			if err != nil {
				o.logger.Warn("fallback shot failed", "scene", scene.Label, "err", err)
				result.Failures = append(result.Failures, Failure{SceneLabel: scene.Label, Message: err.Error()})
				continue
			}
		}

		result.Artifacts = append(result.Artifacts, Artifact{
			SceneLabel: scene.Label,
			Data:       data,
			MimeType:   mimeType,
		})
	}

	o.logger.Info("batch finished",
		"scenes", len(scenes),
		"artifacts", len(result.Artifacts),
		"failures", len(result.Failures),
		"dur_ms", time.Since(batchStart).Milliseconds())

	return result
}
