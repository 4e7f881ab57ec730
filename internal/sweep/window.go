package sweep

import "time"

// window tracks one class's throttle state and attempt pacing.
//
// throttledUntil only moves forward, except for the explicit clear after a
// successful attempt (activity proves the class is not throttled right now).
type window struct {
	throttledUntil time.Time
	lastAttemptAt  time.Time
}

func (w *window) markAttempted(now time.Time) {
	w.lastAttemptAt = now
}

// markThrottled records a rate-limit signal. resetAt zero means the API gave
// no reset instant; fall back to now+fallback.
func (w *window) markThrottled(now, resetAt time.Time, fallback time.Duration) {
	until := resetAt
	if until.IsZero() {
		until = now.Add(fallback)
	}
	if until.After(w.throttledUntil) {
		w.throttledUntil = until
	}
}

func (w *window) clearThrottle() {
	w.throttledUntil = time.Time{}
}

// eligible reports whether an attempt may be made at now, honoring both the
// throttle window and the minimum inter-attempt spacing.
func (w *window) eligible(now time.Time, spacing time.Duration) bool {
	if now.Before(w.throttledUntil) {
		return false
	}
	if !w.lastAttemptAt.IsZero() && now.Sub(w.lastAttemptAt) < spacing {
		return false
	}
	return true
}

// nextEligibleAt returns the earliest instant at which eligible() becomes
// true, assuming no further state changes. Returns now when already eligible.
func (w *window) nextEligibleAt(now time.Time, spacing time.Duration) time.Time {
	at := now
	if w.throttledUntil.After(at) {
		at = w.throttledUntil
	}
	if !w.lastAttemptAt.IsZero() {
		if spaced := w.lastAttemptAt.Add(spacing); spaced.After(at) {
			at = spaced
		}
	}
	return at
}
