// Package address classifies Bitcoin address strings.
//
// Classification is pure and total: any input string maps to exactly one
// [Variant], with no I/O and no side effects. Re-classifying the same
// string always yields the same result.
//
// The variant set is a closed enum. Callers that dispatch on it should
// switch over all four values so new variants surface as compile-time
// gaps rather than silent fallthroughs.
package address

import "strings"

// Variant identifies the encoding family of a Bitcoin address.
type Variant int

const (
	// VariantInvalid marks strings that are not a recognized address.
	VariantInvalid Variant = iota
	// VariantLegacy covers base58 P2PKH ('1'-prefixed) and P2SH ('3'-prefixed) addresses.
	VariantLegacy
	// VariantSegwitV0 covers bech32 'bc1'-prefixed v0 witness addresses.
	VariantSegwitV0
	// VariantTaproot covers bech32m 'bc1p'-prefixed v1 witness addresses.
	// Taproot is syntactically valid but unsupported by the upstream ledger
	// API; fetch paths must refuse it before spending any request budget.
	VariantTaproot
)

// String returns a human-readable variant name.
func (v Variant) String() string {
	switch v {
	case VariantLegacy:
		return "legacy"
	case VariantSegwitV0:
		return "segwit"
	case VariantTaproot:
		return "taproot"
	default:
		return "invalid"
	}
}

// Valid reports whether the variant is syntactically valid.
func (v Variant) Valid() bool { return v != VariantInvalid }

// Supported reports whether the upstream ledger API can serve this variant.
// Taproot parses but is refused before any fetch.
func (v Variant) Supported() bool {
	return v == VariantLegacy || v == VariantSegwitV0
}

// Overall length bounds applied before any variant-specific rule.
const (
	minLen = 26
	maxLen = 100
)

// base58Alphabet is the legacy address charset. It excludes the visually
// ambiguous characters 0, O, I and l.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// bech32Alphabet is the charset for the data part of segwit and taproot
// addresses. It excludes 1, b, i and o.
const bech32Alphabet = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Classify determines the encoding variant of addr.
//
// The rules are applied in a fixed order so classification is
// deterministic: length bounds first, then legacy base58, then the
// bech32 families (taproot before segwit, since both share the bc1
// prefix).
func Classify(addr string) Variant {
	if len(addr) < minLen || len(addr) > maxLen {
		return VariantInvalid
	}

	if addr[0] == '1' || addr[0] == '3' {
		if len(addr) <= 35 && allIn(addr, base58Alphabet) {
			return VariantLegacy
		}
		return VariantInvalid
	}

	lower := strings.ToLower(addr)
	if strings.HasPrefix(lower, "bc1p") {
		data := lower[len("bc1p"):]
		if len(data) == 58 && allIn(data, bech32Alphabet) {
			return VariantTaproot
		}
		return VariantInvalid
	}
	if strings.HasPrefix(lower, "bc1") {
		data := lower[len("bc1"):]
		if len(data) >= 39 && len(data) <= 59 && allIn(data, bech32Alphabet) {
			return VariantSegwitV0
		}
		return VariantInvalid
	}

	return VariantInvalid
}

func allIn(s, alphabet string) bool {
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(alphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
