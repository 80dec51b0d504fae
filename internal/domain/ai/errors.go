package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrUpstream indicates the AI provider call itself failed (non-2xx,
// timeout, or empty completion). Not retried in-process; the user
// resubmits.
var ErrUpstream = errors.New("ai upstream failure")
