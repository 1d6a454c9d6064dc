package server

import (
	"context"
	"time"

	"github.com/vanshika/txinsights/internal/graph"
	"github.com/vanshika/txinsights/internal/store"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// GraphHealthService verifies graph connectivity as part of health checks.
// A nil client means the graph is not in use and always passes.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}

// SnapshotSource exposes the snapshot currently served.
type SnapshotSource interface {
	Current() *store.Snapshot
}

type snapshotStatus struct {
	Records    int     `json:"records"`
	Source     string  `json:"source,omitempty"`
	LoadedAt   string  `json:"loadedAt,omitempty"`
	AgeSeconds float64 `json:"ageSeconds"`
}

func describeSnapshot(snap *store.Snapshot, now time.Time) snapshotStatus {
	status := snapshotStatus{
		Records: snap.Len(),
		Source:  snap.Source(),
	}
	if loaded := snap.LoadedAt(); !loaded.IsZero() {
		status.LoadedAt = loaded.UTC().Format(time.RFC3339)
		status.AgeSeconds = now.Sub(loaded).Seconds()
	}
	return status
}
