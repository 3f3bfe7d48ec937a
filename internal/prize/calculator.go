package prize

import (
	"tlb/config"
	"tlb/internal/model"
)

// TopRanks is how many leading ranks share the prize pool.
const TopRanks = 10

// DefaultPercentages is the fixed paytable over the top ten ranks; the slots
// sum to 100.
var DefaultPercentages = []float64{40, 22, 14, 6, 5, 4, 3, 2, 2, 2}

// Calculator turns aggregate revenue into a per-rank payout table. Compute is
// a pure function of its input: payouts are audited against recorded revenue,
// so identical revenue must always yield identical figures.
type Calculator struct {
	AdminFeeRate       float64
	GuaranteeThreshold float64
	GuaranteePerWinner float64
	Percentages        []float64
}

func NewCalculator(config config.PrizeConfig) *Calculator {
	return &Calculator{
		AdminFeeRate:       config.AdminFeeRate,
		GuaranteeThreshold: config.GuaranteeThreshold,
		GuaranteePerWinner: config.GuaranteePerWinner,
		Percentages:        DefaultPercentages,
	}
}

// Compute derives the distribution. When revenue falls short of the guarantee
// threshold, a flat per-winner bonus is added to every top payout and funded
// out of the admin fee, never out of player revenue.
func (c *Calculator) Compute(totalRevenue float64) model.PrizeDistribution {
	adminFee := totalRevenue * c.AdminFeeRate
	basePool := totalRevenue - adminFee

	guaranteeNeeded := totalRevenue < c.GuaranteeThreshold
	guaranteeCost := 0.0
	if guaranteeNeeded {
		guaranteeCost = c.GuaranteePerWinner * float64(len(c.Percentages))
	}

	payouts := make([]float64, len(c.Percentages))
	for i, pct := range c.Percentages {
		payouts[i] = basePool * pct / 100
		if guaranteeNeeded {
			payouts[i] += c.GuaranteePerWinner
		}
	}

	return model.PrizeDistribution{
		TotalRevenue: totalRevenue,
		BasePool:     basePool,
		AdminFee: model.AdminFee{
			Amount:        adminFee,
			Percentage:    c.AdminFeeRate * 100,
			GuaranteeCost: guaranteeCost,
			NetResult:     adminFee - guaranteeCost,
		},
		GuaranteeApplied: guaranteeNeeded,
		Percentages:      append([]float64(nil), c.Percentages...),
		Payouts:          payouts,
	}
}

// PayoutForRank returns the amount for a 1-based rank, zero beyond the table.
func PayoutForRank(dist model.PrizeDistribution, rank int) float64 {
	if rank < 1 || rank > len(dist.Payouts) {
		return 0
	}
	return dist.Payouts[rank-1]
}
