package contracts

import "strings"

// Moat is a qualitative competitive-advantage tag
type Moat string

const (
	MoatNone             Moat = "NONE"
	MoatSwitchingCosts   Moat = "SWITCHING_COSTS"
	MoatNetworkEffects   Moat = "NETWORK_EFFECTS"
	MoatIntangibleAssets Moat = "INTANGIBLE_ASSETS"
	MoatCostAdvantage    Moat = "COST_ADVANTAGE"
	MoatEfficientScale   Moat = "EFFICIENT_SCALE"
)

var moatDescriptions = map[Moat]string{
	MoatNone:             "No identifiable moat",
	MoatSwitchingCosts:   "Customers face high costs to switch",
	MoatNetworkEffects:   "Product gains value as usage grows",
	MoatIntangibleAssets: "Brands, patents or licences",
	MoatCostAdvantage:    "Structurally lower production cost",
	MoatEfficientScale:   "Market only supports a few players",
}

// Description returns a human readable explanation of the moat
func (m Moat) Description() string {
	if d, ok := moatDescriptions[m]; ok {
		return d
	}
	return string(m)
}

// ParseMoat parses a moat tag, accepting upper/lower case and dashes
func ParseMoat(s string) (Moat, bool) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	m := Moat(norm)
	if _, ok := moatDescriptions[m]; ok {
		return m, true
	}
	return MoatNone, false
}
