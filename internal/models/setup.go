package models

// TradeSetup captures a planned trade with its sizing parameters. All sizing
// math is derived from it; lots are quantized to LotSize and never negative.
type TradeSetup struct {
	Ticker      string
	Capital     float64
	EntryPrice  float64
	StopLoss    float64
	TakeProfit  float64
	RiskPercent float64
	BuyFeePct   float64
	SellFeePct  float64
}

// RiskPerShare is the loss per share if the stop is hit.
func (s TradeSetup) RiskPerShare() float64 {
	return s.EntryPrice - s.StopLoss
}

// RewardPerShare is the gain per share if the target is hit.
func (s TradeSetup) RewardPerShare() float64 {
	return s.TakeProfit - s.EntryPrice
}

// MaxRiskAmount is the capital fraction the trader is willing to lose.
func (s TradeSetup) MaxRiskAmount() float64 {
	return s.Capital * (s.RiskPercent / 100)
}

// RRR is the risk-to-reward ratio; 0 when the stop is at or above entry.
func (s TradeSetup) RRR() float64 {
	if s.RiskPerShare() <= 0 {
		return 0
	}
	return s.RewardPerShare() / s.RiskPerShare()
}

// MaxLots returns the largest lot count allowed by both the risk budget and
// the fee-inclusive capital constraint.
func (s TradeSetup) MaxLots() int {
	if s.RiskPerShare() <= 0 {
		return 0
	}

	maxSharesByRisk := s.MaxRiskAmount() / s.RiskPerShare()
	maxLotsByRisk := int(maxSharesByRisk) / LotSize

	// Capital constraint: lots*LotSize*entry*(1+fee) <= capital.
	maxValueWithFee := s.Capital / (1 + s.BuyFeePct)
	maxSharesByCapital := maxValueWithFee / s.EntryPrice
	maxLotsByCapital := int(maxSharesByCapital) / LotSize

	lots := maxLotsByRisk
	if maxLotsByCapital < lots {
		lots = maxLotsByCapital
	}
	if lots < 0 {
		lots = 0
	}
	return lots
}

// PositionValue is the gross value of the position before fees.
func (s TradeSetup) PositionValue(lots int) float64 {
	return s.EntryPrice * float64(lots*LotSize)
}

// BuyFee is the entry fee for the given lot count.
func (s TradeSetup) BuyFee(lots int) float64 {
	return s.PositionValue(lots) * s.BuyFeePct
}

// TotalBuyCost is the fee-inclusive cost of entry.
func (s TradeSetup) TotalBuyCost(lots int) float64 {
	return s.PositionValue(lots) + s.BuyFee(lots)
}

// PotentialProfit is the net gain at the take-profit level after the sell fee.
func (s TradeSetup) PotentialProfit(lots int) float64 {
	shares := float64(lots * LotSize)
	gross := s.RewardPerShare() * shares
	sellFee := s.TakeProfit * shares * s.SellFeePct
	return gross - sellFee
}

// PotentialLoss is the net loss at the stop-loss level including the sell fee.
func (s TradeSetup) PotentialLoss(lots int) float64 {
	shares := float64(lots * LotSize)
	gross := s.RiskPerShare() * shares
	sellFee := s.StopLoss * shares * s.SellFeePct
	return gross + sellFee
}
