package domain

// MatchPreference is a relationship preference a profile can select. Storage
// moved from a single enum to a set of enums (§9 Design Notes); model it as a
// set from day one so legacy single-value rows become a singleton set on read.
type MatchPreference string

const (
	PreferencePeerBundle          MatchPreference = "Peer_Bundle"
	PreferenceReferralUpstream    MatchPreference = "Referral_Upstream"
	PreferenceReferralDownstream  MatchPreference = "Referral_Downstream"
	PreferenceServiceProvider     MatchPreference = "Service_Provider"
)

// AntiPersona is a class of profile a user opts out of being matched with.
type AntiPersona string

const (
	AntiPersonaNoBeginners        AntiPersona = "no_beginners"
	AntiPersonaNoServiceProviders AntiPersona = "no_service_providers"
	AntiPersonaNoCompetitors      AntiPersona = "no_competitors"
)

// PreferenceSet is a small set of MatchPreference values with convenience
// predicates used throughout the scorer.
type PreferenceSet map[MatchPreference]struct{}

// NewPreferenceSet builds a set from a variadic list, deduplicating.
func NewPreferenceSet(values ...MatchPreference) PreferenceSet {
	s := make(PreferenceSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s PreferenceSet) Has(p MatchPreference) bool {
	_, ok := s[p]
	return ok
}

func (s PreferenceSet) Slice() []MatchPreference {
	out := make([]MatchPreference, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	return out
}

// IsServiceProviderOnly reports whether Service_Provider is the *only*
// selection, per §9 Open Question (b): scale_modifier is disabled only in
// that case, never merely because Service_Provider is present.
func (s PreferenceSet) IsServiceProviderOnly() bool {
	return len(s) == 1 && s.Has(PreferenceServiceProvider)
}

// IsEmpty reports whether no preference was selected. Callers default to
// {Peer_Bundle} in this case (§4.2).
func (s PreferenceSet) IsEmpty() bool {
	return len(s) == 0
}

// AntiPersonaSet is a small set of AntiPersona values.
type AntiPersonaSet map[AntiPersona]struct{}

func NewAntiPersonaSet(values ...AntiPersona) AntiPersonaSet {
	s := make(AntiPersonaSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s AntiPersonaSet) Has(p AntiPersona) bool {
	_, ok := s[p]
	return ok
}
