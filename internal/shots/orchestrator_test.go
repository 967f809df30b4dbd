package shots

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fourcut-ai/internal/gemini"
)

type fakeGenerator struct {
	prompts []string
	errs    []error
}

func (g *fakeGenerator) Generate(ctx context.Context, refs []gemini.ImageInput, prompt string) ([]byte, string, error) {
	call := len(g.prompts)
	g.prompts = append(g.prompts, prompt)

	if call < len(g.errs) && g.errs[call] != nil {
		return nil, "", g.errs[call]
	}
	return []byte("img"), "image/png", nil
}

func quotaErr() error {
	return &gemini.APIError{
		StatusCode: 429,
		Status:     "429 Too Many Requests",
		Body:       `{"error":{"status":"RESOURCE_EXHAUSTED","details":[{"retryDelay":"4s"}]}}`,
	}
}

func testOrchestrator(gen Generator) *Orchestrator {
	o := New(Options{Generator: gen, Pacer: newPacer(0, 0)})
	o.call.sleep = func(context.Context, time.Duration) {}
	return o
}

func fourScenes() []Scene {
	return []Scene{
		{Label: "one", Description: "first"},
		{Label: "two", Description: "second"},
		{Label: "three", Description: "third"},
		{Label: "four", Description: "fourth"},
	}
}

func labelPrompt(scene Scene, numRefs int) string {
	return "primary " + scene.Label
}

func TestRun_AllSucceed(t *testing.T) {
	gen := &fakeGenerator{}
	o := testOrchestrator(gen)

	refs := []gemini.ImageInput{{Data: []byte("ref"), MimeType: "image/jpeg"}}
	result := o.Run(context.Background(), refs, fourScenes(), labelPrompt, nil)

	if len(result.Artifacts) != 4 || len(result.Failures) != 0 {
		t.Fatalf("got %d artifacts, %d failures; want 4, 0", len(result.Artifacts), len(result.Failures))
	}
	if len(gen.prompts) != 4 {
		t.Fatalf("got %d generator calls, want 4", len(gen.prompts))
	}
	if result.Artifacts[0].SceneLabel != "one" || result.Artifacts[3].SceneLabel != "four" {
		t.Fatalf("artifacts out of scene order: %+v", result.Artifacts)
	}
}

func TestRun_QuotaFailureSkipsFallbackAndContinues(t *testing.T) {
	// Scene two hits quota on both the primary call and its retry.
	gen := &fakeGenerator{errs: []error{nil, quotaErr(), quotaErr()}}
	o := testOrchestrator(gen)

	fallback := func(scene Scene, numRefs int) string { return "fallback " + scene.Label }
	result := o.Run(context.Background(), nil, fourScenes(), labelPrompt, fallback)

	if len(result.Artifacts) != 3 || len(result.Failures) != 1 {
		t.Fatalf("got %d artifacts, %d failures; want 3, 1", len(result.Artifacts), len(result.Failures))
	}
	if result.Failures[0].SceneLabel != "two" {
		t.Fatalf("failure recorded for %q, want scene two", result.Failures[0].SceneLabel)
	}
	// 1 + (1 primary + 1 quota retry) + 1 + 1; quota never triggers the fallback prompt.
	if len(gen.prompts) != 5 {
		t.Fatalf("got %d generator calls, want 5", len(gen.prompts))
	}
	for _, p := range gen.prompts {
		if strings.HasPrefix(p, "fallback") {
			t.Fatalf("fallback prompt used on a quota failure: %q", p)
		}
	}
}

func TestRun_FallbackRecoversNonQuotaFailure(t *testing.T) {
	// Scene three is rejected once; the look-alike variant succeeds.
	gen := &fakeGenerator{errs: []error{nil, nil, errors.New("blocked by content policy")}}
	o := testOrchestrator(gen)

	fallback := func(scene Scene, numRefs int) string { return "fallback " + scene.Label }
	result := o.Run(context.Background(), nil, fourScenes(), labelPrompt, fallback)

	if len(result.Artifacts) != 4 || len(result.Failures) != 0 {
		t.Fatalf("got %d artifacts, %d failures; want 4, 0", len(result.Artifacts), len(result.Failures))
	}
	if len(gen.prompts) != 5 {
		t.Fatalf("got %d generator calls, want 5", len(gen.prompts))
	}
	if gen.prompts[3] != "fallback three" {
		t.Fatalf("fourth call used prompt %q, want the fallback for scene three", gen.prompts[3])
	}
}

func TestRun_NoFallbackRecordsOriginalError(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("no image in response")}}
	o := testOrchestrator(gen)

	result := o.Run(context.Background(), nil, fourScenes()[:1], labelPrompt, nil)

	if len(result.Artifacts) != 0 || len(result.Failures) != 1 {
		t.Fatalf("got %d artifacts, %d failures; want 0, 1", len(result.Artifacts), len(result.Failures))
	}
	if !strings.Contains(result.Failures[0].Message, "no image") {
		t.Fatalf("failure message %q does not carry the original error", result.Failures[0].Message)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("got %d generator calls, want 1 (non-quota errors are not retried)", len(gen.prompts))
	}
}

func TestRun_AtMostTwoCallsPerScene(t *testing.T) {
	// One scene, a fallback configured, and every failure mix that could
	// tempt a third call. The two-call ceiling must hold for all of them.
	policy := errors.New("blocked by content policy")

	cases := []struct {
		name string
		errs []error
	}{
		{"all quota", []error{quotaErr(), quotaErr()}},
		{"quota then policy", []error{quotaErr(), policy}},
		{"policy then quota", []error{policy, quotaErr()}},
		{"policy then policy", []error{policy, policy}},
		{"quota then success", []error{quotaErr(), nil}},
		{"policy then success", []error{policy, nil}},
	}

	fallback := func(scene Scene, numRefs int) string { return "fallback " + scene.Label }
	scenes := fourScenes()[:1]

	for _, tc := range cases {
		gen := &fakeGenerator{errs: tc.errs}
		o := testOrchestrator(gen)

		result := o.Run(context.Background(), nil, scenes, labelPrompt, fallback)

		if got := len(result.Artifacts) + len(result.Failures); got != 1 {
			t.Fatalf("%s: artifacts+failures = %d, want 1", tc.name, got)
		}
		if len(gen.prompts) > 2 {
			t.Fatalf("%s: %d generator calls for one scene, want at most 2 (%q)",
				tc.name, len(gen.prompts), gen.prompts)
		}
	}
}

func TestRun_NoFallbackAfterQuotaRetryBurnsBudget(t *testing.T) {
	// Primary hits quota, the retry is rejected for policy: both calls are
	// spent, so the fallback prompt must not fire and the retry's error is
	// what gets recorded.
	gen := &fakeGenerator{errs: []error{quotaErr(), errors.New("blocked by content policy")}}
	o := testOrchestrator(gen)

	fallback := func(scene Scene, numRefs int) string { return "fallback " + scene.Label }
	result := o.Run(context.Background(), nil, fourScenes()[:1], labelPrompt, fallback)

	if len(gen.prompts) != 2 {
		t.Fatalf("got %d generator calls, want 2", len(gen.prompts))
	}
	for _, p := range gen.prompts {
		if strings.HasPrefix(p, "fallback") {
			t.Fatalf("fallback prompt fired after the budget was spent: %q", gen.prompts)
		}
	}
	if len(result.Failures) != 1 || !strings.Contains(result.Failures[0].Message, "content policy") {
		t.Fatalf("failures = %+v, want the retry's policy error recorded", result.Failures)
	}
}

func TestInvoke_QuotaRetryHonorsDelayHint(t *testing.T) {
	gen := &fakeGenerator{errs: []error{quotaErr()}}
	o := testOrchestrator(gen)

	var slept time.Duration
	o.call.sleep = func(_ context.Context, d time.Duration) { slept += d }

	data, _, used, err := o.call.invoke(context.Background(), nil, "p", time.Now(), maxAttempts)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected image data from the retry")
	}
	if len(gen.prompts) != 2 || used != 2 {
		t.Fatalf("got %d calls (%d reported), want 2", len(gen.prompts), used)
	}
	// The error suggested 4s; jitter adds [200ms, 800ms).
	if slept < 4*time.Second+200*time.Millisecond || slept >= 4*time.Second+800*time.Millisecond {
		t.Fatalf("slept %v, want 4s plus jitter", slept)
	}
}

func TestInvoke_DeadlineBlocksRetry(t *testing.T) {
	gen := &fakeGenerator{errs: []error{quotaErr(), quotaErr()}}
	o := testOrchestrator(gen)

	slept := false
	o.call.sleep = func(context.Context, time.Duration) { slept = true }

	// 34s into the batch; waiting another 4s would bust the 35s deadline.
	batchStart := time.Now().Add(-34 * time.Second)
	_, _, used, err := o.call.invoke(context.Background(), nil, "p", batchStart, maxAttempts)

	if err == nil {
		t.Fatalf("expected the quota error to propagate")
	}
	if len(gen.prompts) != 1 || used != 1 {
		t.Fatalf("got %d calls (%d reported), want 1 (fast-fail instead of retry)", len(gen.prompts), used)
	}
	if slept {
		t.Fatalf("caller slept even though the deadline was too close")
	}
}

func TestInvoke_CapsOversizedDelayHint(t *testing.T) {
	big := &gemini.APIError{
		StatusCode: 429,
		Status:     "429 Too Many Requests",
		Body:       `{"error":{"status":"RESOURCE_EXHAUSTED","details":[{"retryDelay":"120s"}]}}`,
	}
	gen := &fakeGenerator{errs: []error{big}}
	o := testOrchestrator(gen)

	var slept time.Duration
	o.call.sleep = func(_ context.Context, d time.Duration) { slept += d }

	if _, _, _, err := o.call.invoke(context.Background(), nil, "p", time.Now(), maxAttempts); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if slept >= maxRetryDelay+800*time.Millisecond {
		t.Fatalf("slept %v, want delay capped at %v plus jitter", slept, maxRetryDelay)
	}
}
