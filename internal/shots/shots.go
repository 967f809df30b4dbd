package shots

import (
	"context"
	"time"

	"fourcut-ai/internal/gemini"
)

// Scene is one entry of a fixed shot list: a short label shown to the user
// and the scene fragment that goes into the prompt.
type Scene struct {
	Label       string
	Description string
}

// Artifact is one produced image, tagged with the scene it belongs to.
type Artifact struct {
	SceneLabel string
	Data       []byte
	MimeType   string
}

// Failure records why a scene produced no image.
type Failure struct {
	SceneLabel string
	Message    string
}

// BatchResult is the outcome of one batch. Every scene contributes to
// exactly one of the two slices.
type BatchResult struct {
	Artifacts []Artifact
	Failures  []Failure
}

// Generator is the external image service. Implemented by gemini.Client.
type Generator interface {
	Generate(ctx context.Context, refs []gemini.ImageInput, prompt string) (data []byte, mimeType string, err error)
}

// PromptBuilder composes the prompt for one scene given how many reference
// images accompany it.
type PromptBuilder func(scene Scene, numRefs int) string

const (
	// minInterval is the minimum spacing between consecutive generator
	// calls, shared process-wide.
	minInterval = 5 * time.Second

	// maxPacerWait caps how long a single caller blocks on spacing so one
	// slow batch cannot stall another request's shot indefinitely.
	maxPacerWait = 3 * time.Second

	// maxAttempts bounds generator calls per shot: one primary call plus
	// one quota retry.
	maxAttempts = 2

	// maxRetryDelay caps the backoff suggested by a quota error.
	maxRetryDelay = 6 * time.Second

	// batchDeadline bounds the whole batch's waiting: if a retry delay
	// would push past it, the shot fails immediately instead.
	batchDeadline = 35 * time.Second
)
