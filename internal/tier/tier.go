// Package tier maps an account's lifetime trade count to its fee and
// rate-limit schedule.
package tier

// Tier is an account's standing at the venue.
type Tier uint8

const (
	Basic Tier = iota
	Silver
	Gold
	Platinum
)

// Trade-count thresholds for each tier.
const (
	SilverTrades   = 10
	GoldTrades     = 50
	PlatinumTrades = 200
)

// WindowSeconds is the sliding rate-limit window shared by all tiers.
const WindowSeconds = 60

// Classify returns the tier earned by a lifetime trade count.
func Classify(trades uint32) Tier {
	switch {
	case trades >= PlatinumTrades:
		return Platinum
	case trades >= GoldTrades:
		return Gold
	case trades >= SilverTrades:
		return Silver
	default:
		return Basic
	}
}

// FeeBps returns the swap fee in basis points for this tier.
func (t Tier) FeeBps() uint32 {
	switch t {
	case Platinum:
		return 10
	case Gold:
		return 20
	case Silver:
		return 25
	default:
		return 30
	}
}

// SwapLimit returns the number of swaps allowed per window.
func (t Tier) SwapLimit() uint32 {
	switch t {
	case Platinum:
		return 50
	case Gold:
		return 30
	case Silver:
		return 20
	default:
		return 10
	}
}

// LPLimit returns the number of liquidity operations allowed per window.
func (t Tier) LPLimit() uint32 {
	switch t {
	case Platinum:
		return 25
	case Gold:
		return 15
	case Silver:
		return 10
	default:
		return 5
	}
}

func (t Tier) String() string {
	switch t {
	case Platinum:
		return "platinum"
	case Gold:
		return "gold"
	case Silver:
		return "silver"
	default:
		return "basic"
	}
}
