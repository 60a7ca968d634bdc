package domain

import "errors"

// Sentinel errors returned by repositories and use cases. Callers compare
// with errors.Is, following the teacher's package-level error convention.
var (
	ErrProfileNotFound      = errors.New("domain: profile not found")
	ErrProfileAlreadyExists = errors.New("domain: profile already exists")
	ErrIntakeNotFound       = errors.New("domain: intake not found")
	ErrSuggestionNotFound   = errors.New("domain: match suggestion not found")
	ErrCannotMatchSelf      = errors.New("domain: a profile cannot match itself")
	ErrAmbiguousResolution  = errors.New("domain: ambiguous tier-2 resolution candidates")
)
