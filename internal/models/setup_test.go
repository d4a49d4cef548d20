package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseSetup() TradeSetup {
	return TradeSetup{
		Ticker:      "BBCA",
		Capital:     10_000_000,
		EntryPrice:  1000,
		StopLoss:    950,
		TakeProfit:  1100,
		RiskPercent: 2,
		BuyFeePct:   0.0015,
		SellFeePct:  0.0025,
	}
}

func TestTradeSetup_RRR(t *testing.T) {
	s := baseSetup()

	// Risk 50 per share, reward 100 per share.
	assert.Equal(t, 50.0, s.RiskPerShare())
	assert.Equal(t, 100.0, s.RewardPerShare())
	assert.Equal(t, 2.0, s.RRR())
}

func TestTradeSetup_RRR_StopAboveEntry(t *testing.T) {
	s := baseSetup()
	s.StopLoss = 1000

	assert.Equal(t, 0.0, s.RRR())

	s.StopLoss = 1050
	assert.Equal(t, 0.0, s.RRR())
}

func TestTradeSetup_MaxLots_RiskBound(t *testing.T) {
	s := baseSetup()

	// Risk budget: 2% of 10M = 200_000; / 50 risk per share = 4000 shares = 40 lots.
	// Capital allows 10M/1.0015/1000 = 9985 shares = 99 lots, so risk binds.
	assert.Equal(t, 40, s.MaxLots())
}

func TestTradeSetup_MaxLots_CapitalBound(t *testing.T) {
	s := baseSetup()
	s.RiskPercent = 100 // risk budget no longer binds

	// 10M / 1.0015 / 1000 = 9985.02 shares -> 9985 -> 99 lots.
	assert.Equal(t, 99, s.MaxLots())

	// The fee-inclusive cost of those lots must fit in capital, and one more
	// lot must not.
	lots := s.MaxLots()
	assert.LessOrEqual(t, s.TotalBuyCost(lots), s.Capital)
	assert.Greater(t, s.TotalBuyCost(lots+1), s.Capital)
}

func TestTradeSetup_MaxLots_InvalidStop(t *testing.T) {
	s := baseSetup()
	s.StopLoss = 1000

	assert.Equal(t, 0, s.MaxLots())
}

func TestTradeSetup_Costs(t *testing.T) {
	s := baseSetup()

	// 5 lots = 500 shares at 1000.
	assert.Equal(t, 500_000.0, s.PositionValue(5))
	assert.InDelta(t, 750.0, s.BuyFee(5), 1e-9)
	assert.InDelta(t, 500_750.0, s.TotalBuyCost(5), 1e-9)
}

func TestTradeSetup_PotentialProfitAndLoss(t *testing.T) {
	s := baseSetup()

	// 1 lot = 100 shares.
	// Profit: 100*100 gross - 1100*100*0.0025 fee = 10_000 - 275 = 9725.
	assert.InDelta(t, 9725.0, s.PotentialProfit(1), 1e-9)

	// Loss: 50*100 gross + 950*100*0.0025 fee = 5_000 + 237.5 = 5237.5.
	assert.InDelta(t, 5237.5, s.PotentialLoss(1), 1e-9)
}
