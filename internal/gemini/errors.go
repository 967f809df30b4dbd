package gemini

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx answer from the generateContent endpoint. The raw
// body is kept because quota rejections carry their retry hint there.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API %s: %s", e.Status, e.Body)
}

// IsQuota reports whether err looks like an upstream rate/quota rejection.
// Matches the markers the API actually emits: HTTP 429, the
// RESOURCE_EXHAUSTED status, or rate-limit wording in the body.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}

	s := err.Error()
	if strings.Contains(s, "RESOURCE_EXHAUSTED") || strings.Contains(s, "429") {
		return true
	}

	// "rate" alone would also match the request URL (":generateContent").
	lower := strings.ToLower(s)
	return strings.Contains(lower, "rate limit") || strings.Contains(lower, "ratelimit")
}

var retryDelayRegex = regexp.MustCompile(`"retryDelay"\s*:\s*"(\d+)s"`)

// RetryDelay extracts the retryDelay hint a quota error embeds in its body,
// if any.
func RetryDelay(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}

	m := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(m) != 2 {
		return 0, false
	}

	seconds, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}
