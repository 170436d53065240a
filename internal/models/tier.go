package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Tier is the closed set of subscription levels.
type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

var Tiers = []Tier{TierFree, TierBasic, TierPro, TierEnterprise}

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFree, TierBasic, TierPro, TierEnterprise:
		return Tier(s), nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// Paid reports whether the tier can be quoted.
func (t Tier) Paid() bool {
	return t == TierBasic || t == TierPro || t == TierEnterprise
}

func (t Tier) String() string {
	return string(t)
}

// Scan lets pgx read the tier column straight into the enum.
func (t *Tier) Scan(src any) error {
	s, err := scanText(src)
	if err != nil {
		return fmt.Errorf("tier: %w", err)
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t *Tier) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Period is the billing period of a subscription.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodMonthly, PeriodYearly:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

func (p Period) String() string {
	return string(p)
}

func (p *Period) Scan(src any) error {
	s, err := scanText(src)
	if err != nil {
		return fmt.Errorf("period: %w", err)
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p *Period) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// End returns the end of a period that starts at start. Calendar months and
// years are added, so Jan 31 + 1 month normalizes past February.
func (p Period) End(start time.Time) time.Time {
	if p == PeriodYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

func scanText(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unsupported source %T", src)
}
