package fpe

import "github.com/vaultedge/fpe/internal/subtle"

// Process-wide constants shared by every driver, re-exported from the
// internal subtle package per spec.md §9's Constants record.
const (
	MinRadix = subtle.MinRadix
	MaxRadix = subtle.MaxRadix
	MaxLen   = subtle.MaxLen

	// MaxFF1TweakLen is the maxTlen the tinkfpe package passes to NewFF1,
	// well under the 2^32-1 the construction nominally allows. It is not a
	// hard cap: NewFF1 accepts any maxTweakLen, and tinkfpe raises it to
	// the caller's tweak length when the tweak is longer.
	MaxFF1TweakLen = 1 << 20
)
