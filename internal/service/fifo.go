package service

import (
	"math"
	"sort"
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/model"
)

// Matching tolerances. Quantities within quantityTolerance of each other
// are treated as equal, absorbing float drift from fractional shares.
const (
	quantityTolerance = 0.0001
	priceTolerance    = 0.01
)

// lot is one open purchase in the FIFO queue. Consuming part of a lot
// produces a replacement lot with the remaining shares and the unconsumed
// share of the purchase fee; lots are never mutated in place.
type lot struct {
	quantity  float64
	unitPrice float64
	fees      float64
}

// detectRoundTrips identifies same-day sell/buy pairs that cancel each
// other out: equal quantity within quantityTolerance and equal price
// within priceTolerance. These are inter-account transfers recorded as a
// sale plus a repurchase, not economic disposals, so both legs are
// excluded from FIFO matching. Each transaction pairs at most once.
func detectRoundTrips(transactions []model.Transaction) map[string]bool {
	byDate := make(map[string][]model.Transaction)
	for _, t := range transactions {
		key := t.Date.Format("2006-01-02")
		byDate[key] = append(byDate[key], t)
	}

	excluded := make(map[string]bool)
	for _, sameDay := range byDate {
		for _, sell := range sameDay {
			if sell.Type != model.TransactionSell || excluded[sell.ID] {
				continue
			}
			for _, buy := range sameDay {
				if buy.Type != model.TransactionBuy || excluded[buy.ID] {
					continue
				}
				if math.Abs(sell.Quantity-buy.Quantity) <= quantityTolerance &&
					math.Abs(sell.PricePerShare-buy.PricePerShare) <= priceTolerance {
					excluded[sell.ID] = true
					excluded[buy.ID] = true
					break
				}
			}
		}
	}
	return excluded
}

// fifoRealizedSales computes the realized gain of every SELL in one
// holding's transactions by consuming purchase lots oldest-first.
// Round-trip pairs are removed before matching and leave the lot queue
// untouched. A sale that outruns the open lots is matched as far as the
// lots allow; the shortfall is reported as UnmatchedQuantity with the cost
// basis covering only the matched shares.
//
// The cost basis of a consumed lot includes its full purchase fee; a
// partially consumed lot contributes its fee pro rata. Proceeds are net of
// the sale fee.
func fifoRealizedSales(transactions []model.Transaction) []model.RealizedSale {
	ordered := make([]model.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	excluded := detectRoundTrips(ordered)

	var lots []lot
	var sales []model.RealizedSale
	for _, t := range ordered {
		if excluded[t.ID] {
			continue
		}

		switch t.Type {
		case model.TransactionBuy:
			lots = append(lots, lot{quantity: t.Quantity, unitPrice: t.PricePerShare, fees: t.Fees})

		case model.TransactionSell:
			remaining := t.Quantity
			costBasis := 0.0
			for remaining > quantityTolerance && len(lots) > 0 {
				front := lots[0]
				if front.quantity <= remaining+quantityTolerance {
					costBasis += front.quantity*front.unitPrice + front.fees
					remaining -= front.quantity
					lots = lots[1:]
					continue
				}
				consumed := remaining / front.quantity
				costBasis += remaining*front.unitPrice + front.fees*consumed
				lots[0] = lot{
					quantity:  front.quantity - remaining,
					unitPrice: front.unitPrice,
					fees:      front.fees * (1 - consumed),
				}
				remaining = 0
			}
			if remaining <= quantityTolerance {
				remaining = 0
			}

			sales = append(sales, model.RealizedSale{
				TransactionID:     t.ID,
				HoldingID:         t.HoldingID,
				Symbol:            t.Symbol,
				Date:              t.Date,
				Quantity:          t.Quantity,
				Proceeds:          t.Quantity*t.PricePerShare - t.Fees,
				CostBasis:         costBasis,
				AvgCostPerShare:   costBasis / t.Quantity,
				RealizedGain:      t.Quantity*t.PricePerShare - t.Fees - costBasis,
				UnmatchedQuantity: remaining,
			})
		}
	}
	return sales
}

// PositionState is one reconstructed position: total shares held and the
// average-cost pool backing them as of some date.
type PositionState struct {
	Quantity  float64
	CostBasis float64
}

// AvgCost returns the average cost per share of the position.
func (p PositionState) AvgCost() float64 {
	if p.Quantity <= 0 {
		return 0
	}
	return p.CostBasis / p.Quantity
}

// PortfolioStateAt replays transactions in chronological order and
// returns the open positions by symbol as they stood at end of day on the
// target date. Buys grow the cost pool by quantity times price; fees are
// not part of the pool. Sells shrink it at the position's average cost,
// leaving the average unchanged. Positions at or below quantityTolerance
// are dropped.
//
// This is deliberately average-cost, not FIFO: reconstruction feeds
// valuation, where only total cost matters, while realized gains need
// per-lot attribution.
func PortfolioStateAt(transactions []model.Transaction, targetDate time.Time) map[string]PositionState {
	ordered := make([]model.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	cutoff := targetDate.UTC().Truncate(24 * time.Hour)
	state := make(map[string]PositionState)
	for _, t := range ordered {
		if t.Date.UTC().Truncate(24 * time.Hour).After(cutoff) {
			break
		}

		pos := state[t.Symbol]
		switch t.Type {
		case model.TransactionBuy:
			pos.Quantity += t.Quantity
			pos.CostBasis += t.Quantity * t.PricePerShare
		case model.TransactionSell:
			avg := pos.AvgCost()
			pos.Quantity -= t.Quantity
			if pos.Quantity > 0 {
				pos.CostBasis -= t.Quantity * avg
			} else {
				pos.Quantity = 0
				pos.CostBasis = 0
			}
		default:
			continue
		}
		state[t.Symbol] = pos
	}

	for symbol, pos := range state {
		if pos.Quantity <= quantityTolerance {
			delete(state, symbol)
		}
	}
	return state
}
