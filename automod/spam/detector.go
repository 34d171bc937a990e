package spam

import (
	"strings"
	"sync"
	"time"

	"modbot/model"
)

// cleanupInterval bounds how often a user's window is pruned; expiry is
// otherwise checked lazily during Check.
const cleanupInterval = 5 * time.Minute

type observation struct {
	raw        string
	normalized string
	observedAt time.Time
	ref        model.MessageRef
}

type userWindow struct {
	mu            sync.Mutex
	observations  []observation
	lastCleanupAt time.Time
}

// Detector keeps a bounded, in-memory message history per (guild, user)
// and flags near-duplicate flooding. All state is lost on restart; spam
// detection is best-effort.
type Detector struct {
	mu      sync.RWMutex
	windows map[string]*userWindow
	clock   model.Clock
}

// CheckResult is the outcome of one spam check.
type CheckResult struct {
	IsSpam       bool
	MatchedRefs  []model.MessageRef
	SimilarCount int
}

// Stats describes the detector's process-wide memory footprint.
type Stats struct {
	Windows          int
	Users            int
	BufferedMessages int
}

func NewDetector(clock model.Clock) *Detector {
	return &Detector{
		windows: make(map[string]*userWindow),
		clock:   clock,
	}
}

func windowKey(guildID, userID string) string {
	return guildID + ":" + userID
}

func (d *Detector) getWindow(guildID, userID string, create bool) *userWindow {
	key := windowKey(guildID, userID)

	d.mu.RLock()
	w := d.windows[key]
	d.mu.RUnlock()
	if w != nil || !create {
		return w
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if w = d.windows[key]; w == nil {
		w = &userWindow{lastCleanupAt: d.clock.Now()}
		d.windows[key] = w
	}
	return w
}

// Track appends a message observation to the user's window, creating the
// window if absent.
func (d *Detector) Track(guildID, userID string, ref model.MessageRef, rawContent string) {
	w := d.getWindow(guildID, userID, true)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.observations = append(w.observations, observation{
		raw:        rawContent,
		normalized: Normalize(rawContent),
		observedAt: d.clock.Now(),
		ref:        ref,
	})
}

// Check compares a candidate message against the user's recent history.
// The candidate itself counts as the "+1": spam is flagged once at least
// MessageThreshold-1 prior messages meet the similarity threshold.
func (d *Detector) Check(guildID, userID, candidateText string, cfg model.SpamFilterConfig) CheckResult {
	w := d.getWindow(guildID, userID, false)
	if w == nil {
		return CheckResult{}
	}

	now := d.clock.Now()
	windowStart := now.Add(-time.Duration(cfg.TimeWindowSeconds) * time.Second)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Amortized cleanup: prune at most once per cleanupInterval per user.
	if now.Sub(w.lastCleanupAt) > cleanupInterval {
		kept := w.observations[:0]
		for _, obs := range w.observations {
			if obs.observedAt.After(windowStart) {
				kept = append(kept, obs)
			}
		}
		w.observations = kept
		w.lastCleanupAt = now
	}

	var recent []observation
	for _, obs := range w.observations {
		if obs.observedAt.After(windowStart) {
			recent = append(recent, obs)
		}
	}

	// Not enough history to ever reach the threshold.
	if len(recent) < cfg.MessageThreshold-1 {
		return CheckResult{}
	}

	normalized := Normalize(candidateText)
	var matched []model.MessageRef
	for _, obs := range recent {
		if Similarity(normalized, obs.normalized) >= cfg.SimilarityThreshold {
			matched = append(matched, obs.ref)
		}
	}

	return CheckResult{
		IsSpam:       len(matched) >= cfg.MessageThreshold-1,
		MatchedRefs:  matched,
		SimilarCount: len(matched) + 1,
	}
}

// Clear discards a user's window, used after an enforcement action so the
// same history cannot immediately re-trigger.
func (d *Detector) Clear(guildID, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.windows, windowKey(guildID, userID))
}

// GetStats reports the detector's current memory usage for operational
// visibility.
func (d *Detector) GetStats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := Stats{Windows: len(d.windows)}
	users := make(map[string]struct{})
	for key, w := range d.windows {
		if i := strings.IndexByte(key, ':'); i >= 0 {
			users[key[i+1:]] = struct{}{}
		}
		w.mu.Lock()
		stats.BufferedMessages += len(w.observations)
		w.mu.Unlock()
	}
	stats.Users = len(users)
	return stats
}
