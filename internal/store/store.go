// Package store persists ETFs, positions and dividends in PostgreSQL.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("record not found")

func optionalDecimal(nd decimal.NullDecimal) mo.Option[decimal.Decimal] {
	return lo.Ternary(nd.Valid, mo.Some(nd.Decimal), mo.None[decimal.Decimal]())
}

func nullDecimal(o mo.Option[decimal.Decimal]) decimal.NullDecimal {
	d, ok := o.Get()
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

func decodeHoldings(raw []byte) (mo.Option[[]domain.Holding], error) {
	if raw == nil {
		return mo.None[[]domain.Holding](), nil
	}
	var holdings []domain.Holding
	if err := json.Unmarshal(raw, &holdings); err != nil {
		return mo.None[[]domain.Holding](), fmt.Errorf("decoding top holdings: %w", err)
	}
	return mo.Some(holdings), nil
}

func encodeHoldings(o mo.Option[[]domain.Holding]) ([]byte, error) {
	holdings, ok := o.Get()
	if !ok {
		return nil, nil
	}
	data, err := json.Marshal(holdings)
	if err != nil {
		return nil, fmt.Errorf("encoding top holdings: %w", err)
	}
	return data, nil
}

func dateOf(t time.Time) domain.Date { return domain.DateOf(t.UTC()) }
