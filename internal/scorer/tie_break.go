package scorer

import (
	"math"
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
)

// Scored is one fully-computed ordered-pair result, ready for the final
// deterministic sort (§5) and the Fairness Filter. ScoreAB/ScoreBA/
// HarmonicMean are on the internal [0,1] scale the scoring formulas use;
// the cycle orchestrator multiplies by 100 when building the persisted
// MatchSuggestion, whose fields are documented on a 0-100 scale (§3).
type Scored struct {
	TargetProfileID     string
	CandidateProfileID  string
	ScoreAB             float64
	ScoreBA             float64
	HarmonicMean        float64
	ScaleSymmetryScore  float64
	Trust               domain.TrustLevel
	Reason              string
	CandidateLastActive *time.Time
}

// Less implements the total order §5 and §4.3(d) require: decreasing final
// score F, then the tie-break chain (higher trust, then higher reciprocal
// symmetry, then more recent candidate activity, then lexicographic
// candidate id) so two runs over identical inputs sort byte-identically.
func Less(a, b Scored) bool {
	fa, fb := finalScore(a), finalScore(b)
	if fa != fb {
		return fa > fb
	}
	if domain.HigherTrust(a.Trust, b.Trust) || domain.HigherTrust(b.Trust, a.Trust) {
		return domain.HigherTrust(a.Trust, b.Trust)
	}
	sa := math.Abs(a.ScoreAB - a.ScoreBA)
	sb := math.Abs(b.ScoreAB - b.ScoreBA)
	if sa != sb {
		return sa < sb
	}
	la, lb := lastActiveOrZero(a.CandidateLastActive), lastActiveOrZero(b.CandidateLastActive)
	if !la.Equal(lb) {
		return la.After(lb)
	}
	return a.CandidateProfileID < b.CandidateProfileID
}

func finalScore(s Scored) float64 {
	return 100 * s.HarmonicMean * s.Trust.Weight()
}

func lastActiveOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Harmonic implements §4.3's reciprocal combination: 0 if either side is 0,
// else the harmonic mean of the two directional scores.
func Harmonic(sab, sba float64) float64 {
	if sab+sba == 0 {
		return 0
	}
	return 2 * sab * sba / (sab + sba)
}
