// Package engine turns raw ETF, position and dividend records into the derived
// portfolio views. Every function is pure: the same inputs always produce the same
// outputs, and a bad record is skipped and reported instead of failing the call.
package engine

import (
	"cmp"
	"encoding/json"
	"errors"
	"slices"

	"github.com/samber/lo"

	"github.com/etflens/etflens/internal/domain"
)

// Catalog is an immutable set of ETFs keyed by id.
type Catalog struct {
	byID map[int64]domain.ETF
}

// NewCatalog indexes etfs by id. When ids collide the later record wins.
func NewCatalog(etfs []domain.ETF) Catalog {
	return Catalog{byID: lo.KeyBy(etfs, func(e domain.ETF) int64 { return e.ID })}
}

// Lookup resolves an ETF by id.
func (c Catalog) Lookup(id int64) (domain.ETF, bool) {
	e, ok := c.byID[id]
	return e, ok
}

func (c Catalog) Len() int { return len(c.byID) }

// ETFs returns the catalog sorted by ticker.
func (c Catalog) ETFs() []domain.ETF {
	etfs := lo.Values(c.byID)
	slices.SortFunc(etfs, func(a, b domain.ETF) int {
		return cmp.Or(cmp.Compare(a.Ticker, b.Ticker), cmp.Compare(a.ID, b.ID))
	})
	return etfs
}

// SkippedRecord describes one input record excluded from a computation.
type SkippedRecord struct {
	Kind   domain.RecordKind `json:"kind"`
	ID     int64             `json:"id"`
	ETFID  int64             `json:"etf_id"`
	Reason string            `json:"reason"`
	Err    error             `json:"-"`
}

// Diagnostics collects the records a computation had to skip.
type Diagnostics struct {
	Skipped []SkippedRecord
}

func (d *Diagnostics) skip(kind domain.RecordKind, id, etfID int64, err error) {
	d.Skipped = append(d.Skipped, SkippedRecord{Kind: kind, ID: id, ETFID: etfID, Reason: err.Error(), Err: err})
}

// Count is the number of skipped records.
func (d Diagnostics) Count() int { return len(d.Skipped) }

// IDs returns the ids of skipped records of the given kind, in input order.
func (d Diagnostics) IDs(kind domain.RecordKind) []int64 {
	return lo.FilterMap(d.Skipped, func(s SkippedRecord, _ int) (int64, bool) {
		return s.ID, s.Kind == kind
	})
}

// Err joins the errors of all skipped records, or returns nil when nothing was skipped.
func (d Diagnostics) Err() error {
	return errors.Join(lo.Map(d.Skipped, func(s SkippedRecord, _ int) error { return s.Err })...)
}

func (d Diagnostics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SkippedCount int             `json:"skipped_count"`
		Skipped      []SkippedRecord `json:"skipped"`
	}{
		SkippedCount: len(d.Skipped),
		Skipped:      lo.Ternary(d.Skipped == nil, []SkippedRecord{}, d.Skipped),
	})
}
