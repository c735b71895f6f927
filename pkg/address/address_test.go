package address

import (
	"strings"
	"testing"
)

const (
	p2pkhAddr   = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	p2shAddr    = "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy"
	segwitAddr  = "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"
	p2wshAddr   = "bc1qrp33g0q5c5txsp9arysrx4k6zdkfs4nce4xj0gdcccefvpysxf3qccfmv3"
	taprootAddr = "bc1p5d7rjq7g6rdk2yhzks9smlaqtedr4dekq08ge8ztwac72sfr9rusxg3297"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want Variant
	}{
		{"P2PKH", p2pkhAddr, VariantLegacy},
		{"P2SH", p2shAddr, VariantLegacy},
		{"SegwitV0", segwitAddr, VariantSegwitV0},
		{"SegwitV0Long", p2wshAddr, VariantSegwitV0},
		{"SegwitUppercasePrefix", "BC1" + strings.ToUpper(segwitAddr[3:]), VariantSegwitV0},
		{"Taproot", taprootAddr, VariantTaproot},
		{"Empty", "", VariantInvalid},
		{"TooShort", "1BvBMSEYstWet", VariantInvalid},
		{"TooLong", "bc1q" + strings.Repeat("q", 100), VariantInvalid},
		{"LegacyWithZero", "1A1zP1eP5QGefi2DMPTfTL5SLmv7Divf0a", VariantInvalid},
		{"LegacyWithUppercaseO", "3J98t1WpEZ73CNmQviecrnyiWrnqRhWOLy", VariantInvalid},
		{"LegacyTooLong", "1" + strings.Repeat("z", 40), VariantInvalid},
		{"SegwitDataTooShort", "bc1qqqqqqqqqqqqqqqqqqqqqqqqqqq", VariantInvalid},
		{"SegwitBadCharset", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdb", VariantInvalid},
		{"TaprootWrongDataLength", "bc1pqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq", VariantInvalid},
		{"UnknownPrefix", "2NBFNJTktNa7GZusGbDbGKRZTxdK9VVez3n", VariantInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.addr); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

// Classification must be deterministic: repeated calls agree.
func TestClassify_Idempotent(t *testing.T) {
	inputs := []string{p2pkhAddr, p2shAddr, segwitAddr, taprootAddr, "", "garbage"}
	for _, in := range inputs {
		first := Classify(in)
		for i := 0; i < 3; i++ {
			if got := Classify(in); got != first {
				t.Fatalf("Classify(%q) not deterministic: %v then %v", in, first, got)
			}
		}
	}
}

func TestVariant_Supported(t *testing.T) {
	tests := []struct {
		v    Variant
		want bool
	}{
		{VariantLegacy, true},
		{VariantSegwitV0, true},
		{VariantTaproot, false},
		{VariantInvalid, false},
	}

	for _, tt := range tests {
		if got := tt.v.Supported(); got != tt.want {
			t.Errorf("%v.Supported() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestVariant_String(t *testing.T) {
	if VariantTaproot.String() != "taproot" || VariantInvalid.String() != "invalid" {
		t.Error("unexpected variant names")
	}
	if !VariantTaproot.Valid() || VariantInvalid.Valid() {
		t.Error("unexpected validity flags")
	}
}
