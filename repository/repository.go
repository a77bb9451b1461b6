// Package repository persists startup signals, uploaded documents, chunk
// vectors and analysis jobs, in Postgres or on local disk.
package repository

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when no record exists for the key
var ErrNotFound = errors.New("record not found")

// SignalKind names one persisted map of startup signals
type SignalKind string

const (
	KindStartups             SignalKind = "startups"
	KindClaims               SignalKind = "claims"
	KindAnalysis             SignalKind = "analysis"
	KindFounderVerifications SignalKind = "founderVerifications"
	KindTeamInfo             SignalKind = "teamInfo"
	KindProductTech          SignalKind = "productTech"
	KindMarketOpportunity    SignalKind = "marketOpportunity"
)

// SignalKinds lists every kind in a stable order
var SignalKinds = []SignalKind{
	KindStartups,
	KindClaims,
	KindAnalysis,
	KindFounderVerifications,
	KindTeamInfo,
	KindProductTech,
	KindMarketOpportunity,
}

// SignalStore is a key-value map per kind, keyed by startup id. Save
// overwrites the whole value; the last write wins.
type SignalStore interface {
	Save(ctx context.Context, kind SignalKind, startupID string, value interface{}) error
	Load(ctx context.Context, kind SignalKind, startupID string, dest interface{}) error
	LoadAll(ctx context.Context, kind SignalKind) (map[string]json.RawMessage, error)
}
