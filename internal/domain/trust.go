package domain

// TrustLevel is the provenance classification driving the final multiplicative
// modifier (§4.5, GLOSSARY). Values are ordered: Platinum > Gold > Bronze > Legacy.
type TrustLevel string

const (
	TrustPlatinum TrustLevel = "Platinum"
	TrustGold     TrustLevel = "Gold"
	TrustBronze   TrustLevel = "Bronze"
	TrustLegacy   TrustLevel = "Legacy"
)

// Weight returns the multiplicative trust modifier used in the final score
// formula F = 100 * HM * trust(A,B) (§4.3).
func (t TrustLevel) Weight() float64 {
	switch t {
	case TrustPlatinum:
		return 1.0
	case TrustGold:
		return 0.5
	case TrustBronze:
		return 0.3
	case TrustLegacy:
		return 0.1
	default:
		return 0.1
	}
}

// rank orders trust levels from lowest (0) to highest (3) for Min/tie-breaking.
func (t TrustLevel) rank() int {
	switch t {
	case TrustLegacy:
		return 0
	case TrustBronze:
		return 1
	case TrustGold:
		return 2
	case TrustPlatinum:
		return 3
	default:
		return 0
	}
}

// MinTrust returns the lower of two trust levels, per §4.3:
// trust(A,B) = min(trust_source(A), trust_source(B)).
func MinTrust(a, b TrustLevel) TrustLevel {
	if a.rank() <= b.rank() {
		return a
	}
	return b
}

// HigherTrust reports whether a outranks b, used by the tie-break comparator (§4.3d).
func HigherTrust(a, b TrustLevel) bool {
	return a.rank() > b.rank()
}
