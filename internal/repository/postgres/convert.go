package postgres

import (
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
)

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func preferenceSetFrom(values []string) domain.PreferenceSet {
	prefs := make([]domain.MatchPreference, 0, len(values))
	for _, v := range values {
		prefs = append(prefs, domain.MatchPreference(v))
	}
	return domain.NewPreferenceSet(prefs...)
}

func preferencesToStrings(s domain.PreferenceSet) []string {
	values := s.Slice()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func antiPersonaSetFrom(values []string) domain.AntiPersonaSet {
	personas := make([]domain.AntiPersona, 0, len(values))
	for _, v := range values {
		personas = append(personas, domain.AntiPersona(v))
	}
	return domain.NewAntiPersonaSet(personas...)
}

func antiPersonasToStrings(s domain.AntiPersonaSet) []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, string(p))
	}
	return out
}
