package monitor

import (
	"context"
	"time"

	"github.com/firstservice/askbank/database"
	"github.com/firstservice/askbank/model"
)

// DefaultWindowSize is the number of recent audit entries sampled when no
// policy is configured. Counting over a bounded recent sample is a
// sampling policy, not a guarantee over all history.
const DefaultWindowSize = 20

// DefaultThreshold is the query count an owner must exceed within the
// sampled window to be flagged.
const DefaultThreshold = 10

// WindowPolicy selects the sample of audit entries over which per-owner
// query counts are evaluated.
type WindowPolicy interface {
	Sample(ctx context.Context, audit database.AuditDBHandlerFunctions) ([]*model.AuditEntry, error)
}

// LastN samples the N most recent audit entries.
type LastN struct {
	N int
}

func (p LastN) Sample(ctx context.Context, audit database.AuditDBHandlerFunctions) ([]*model.AuditEntry, error) {
	n := p.N
	if n <= 0 {
		n = DefaultWindowSize
	}
	return audit.SelectRecentEntries(n)
}

// TrailingInterval samples all audit entries within a trailing time window.
type TrailingInterval struct {
	Interval time.Duration
}

func (p TrailingInterval) Sample(ctx context.Context, audit database.AuditDBHandlerFunctions) ([]*model.AuditEntry, error) {
	return audit.SelectEntriesSince(time.Now().Add(-p.Interval))
}

// FindAnomalies counts entries per owner in the given sample and returns
// only owners whose count strictly exceeds the threshold. An owner with
// exactly threshold entries is not flagged.
func FindAnomalies(entries []*model.AuditEntry, threshold int) map[int]int {
	counts := make(map[int]int)
	for _, entry := range entries {
		counts[entry.OwnerID]++
	}

	anomalies := make(map[int]int)
	for ownerID, count := range counts {
		if count > threshold {
			anomalies[ownerID] = count
		}
	}

	return anomalies
}

// Monitor reads recent audit entries and flags owners with excess query
// volume. It only ever reads the log.
type Monitor struct {
	audit     database.AuditDBHandlerFunctions
	policy    WindowPolicy
	threshold int
}

// NewMonitor creates a monitor with the given window policy and threshold.
// A nil policy defaults to LastN over DefaultWindowSize entries; a
// non-positive threshold defaults to DefaultThreshold.
func NewMonitor(audit database.AuditDBHandlerFunctions, policy WindowPolicy, threshold int) *Monitor {
	if policy == nil {
		policy = LastN{N: DefaultWindowSize}
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Monitor{
		audit:     audit,
		policy:    policy,
		threshold: threshold,
	}
}

// Check samples the audit log using the configured window policy and
// returns the owners whose query count in the sample exceeds the
// threshold, with their counts.
func (m *Monitor) Check(ctx context.Context) (map[int]int, error) {
	entries, err := m.policy.Sample(ctx, m.audit)
	if err != nil {
		return nil, err
	}
	return FindAnomalies(entries, m.threshold), nil
}
