// Package plans holds the fixed tier catalog and fiat to native-token pricing.
package plans

import (
	"fmt"
	"math"
	"metastor/internal/models"
)

const (
	MiB uint64 = 1 << 20
	GiB uint64 = 1 << 30
)

type Plan struct {
	Tier              models.Tier `json:"tier"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	MonthlyPriceUSD   float64     `json:"monthlyPriceUSD"`
	YearlyPriceUSD    float64     `json:"yearlyPriceUSD"`
	StorageLimitBytes uint64      `json:"storageLimit,string"`
	Features          []string    `json:"features"`
	Popular           bool        `json:"popular,omitempty"`
}

// Price returns the fiat price of the plan for a billing period.
func (p Plan) Price(period models.Period) float64 {
	if period == models.PeriodYearly {
		return p.YearlyPriceUSD
	}
	return p.MonthlyPriceUSD
}

// catalog is ordered by strictly increasing storage limit.
var catalog = []Plan{
	{
		Tier:              models.TierFree,
		Name:              "Free",
		Description:       "Perfect for getting started",
		StorageLimitBytes: 100 * MiB,
		Features:          []string{"100MB Storage", "Basic IPFS Storage", "File Upload & Download", "Community Support"},
	},
	{
		Tier:              models.TierBasic,
		Name:              "Basic",
		Description:       "Great for personal use",
		MonthlyPriceUSD:   5,
		YearlyPriceUSD:    50,
		StorageLimitBytes: 1 * GiB,
		Features:          []string{"1GB Storage", "Fast IPFS Storage", "File Upload & Download", "Email Support", "File Sharing"},
	},
	{
		Tier:              models.TierPro,
		Name:              "Pro",
		Description:       "Perfect for professionals",
		MonthlyPriceUSD:   15,
		YearlyPriceUSD:    150,
		StorageLimitBytes: 5 * GiB,
		Features: []string{"5GB Storage", "Premium IPFS Storage", "Advanced File Management", "Priority Support",
			"File Sharing & Collaboration", "Analytics Dashboard"},
		Popular: true,
	},
	{
		Tier:              models.TierEnterprise,
		Name:              "Enterprise",
		Description:       "For large organizations",
		MonthlyPriceUSD:   50,
		YearlyPriceUSD:    500,
		StorageLimitBytes: 100 * GiB,
		Features: []string{"100GB Storage", "Enterprise IPFS Storage", "Advanced File Management", "24/7 Priority Support",
			"Team Collaboration", "Advanced Analytics", "Custom Integrations", "SLA Guarantee"},
	},
}

// All returns a copy of the catalog.
func All() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// GetPlan returns the plan for tier, falling back to the free plan.
func GetPlan(tier models.Tier) Plan {
	for _, p := range catalog {
		if p.Tier == tier {
			return p
		}
	}
	return catalog[0]
}

// PriceInNativeToken converts a fiat amount to native tokens at oraclePrice
// fiat per token, rounded to 4 decimal places.
func PriceInNativeToken(fiatAmount, oraclePrice float64) (float64, error) {
	if fiatAmount < 0 {
		return 0, fmt.Errorf("negative fiat amount %v", fiatAmount)
	}
	if fiatAmount == 0 {
		return 0, nil
	}
	if oraclePrice <= 0 || math.IsNaN(oraclePrice) || math.IsInf(oraclePrice, 0) {
		return 0, fmt.Errorf("invalid oracle price %v", oraclePrice)
	}
	return math.Round(fiatAmount/oraclePrice*1e4) / 1e4, nil
}

// FormatBytes renders a size using binary units, e.g. "1.5 GB".
func FormatBytes(n uint64) string {
	if n == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	value := float64(n)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%.0f %s", value, units[i])
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}
