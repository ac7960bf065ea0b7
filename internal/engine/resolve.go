package engine

import (
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

// valuedPosition is a validated position paired with its fund and market value.
type valuedPosition struct {
	position domain.Position
	etf      domain.ETF
	value    decimal.Decimal
}

// resolvePositions joins positions to the catalog, skipping records that are
// malformed or reference an unknown fund.
func resolvePositions(positions []domain.Position, catalog Catalog) ([]valuedPosition, Diagnostics) {
	var diag Diagnostics
	resolved := make([]valuedPosition, 0, len(positions))

	for _, p := range positions {
		if err := validatePosition(p); err != nil {
			diag.skip(domain.RecordPosition, p.ID, p.ETFID, err)
			continue
		}
		etf, ok := catalog.Lookup(p.ETFID)
		if !ok {
			diag.skip(domain.RecordPosition, p.ID, p.ETFID, &domain.MissingReferenceError{Kind: domain.RecordPosition, RecordID: p.ID, ETFID: p.ETFID})
			continue
		}
		if err := validatePricedETF(p.ID, etf); err != nil {
			diag.skip(domain.RecordPosition, p.ID, p.ETFID, err)
			continue
		}
		resolved = append(resolved, valuedPosition{
			position: p,
			etf:      etf,
			value:    p.Shares.Mul(etf.CurrentPrice),
		})
	}

	return resolved, diag
}
