package engine

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/etflens/etflens/internal/domain"
)

// RankETFs orders funds by the return over horizon, best first, breaking ties by
// ticker. A positive limit truncates the result.
func RankETFs(etfs []domain.ETF, horizon domain.ReturnHorizon, limit int) ([]domain.ETFRanking, error) {
	if _, err := domain.ParseReturnHorizon(string(horizon)); err != nil {
		return nil, err
	}

	rankings := lo.Map(etfs, func(e domain.ETF, _ int) domain.ETFRanking {
		value, _ := e.Return(horizon)
		return domain.ETFRanking{
			Ticker:        e.Ticker,
			Name:          e.Name,
			ReturnValue:   value,
			DividendYield: e.DividendYield,
		}
	})

	slices.SortStableFunc(rankings, func(a, b domain.ETFRanking) int {
		return cmp.Or(b.ReturnValue.Cmp(a.ReturnValue), cmp.Compare(a.Ticker, b.Ticker))
	})

	if limit > 0 && limit < len(rankings) {
		rankings = rankings[:limit]
	}
	return rankings, nil
}
