package cidr

import (
	"testing"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/errors"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
)

func init() {
	log.DisableLogs()
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{
			name: "cidr passthrough is byte identical",
			raw:  []string{"2.60.0.0/14", "010.1.1.1/8", "not-validated/99"},
			want: []string{"2.60.0.0/14", "010.1.1.1/8", "not-validated/99"},
		},
		{
			name: "single host range",
			raw:  []string{"1.1.1.1-1.1.1.1"},
			want: []string{"1.1.1.1/32"},
		},
		{
			name: "aligned range",
			raw:  []string{"10.0.0.0-10.0.0.7"},
			want: []string{"10.0.0.0/29"},
		},
		{
			name: "unparsable range is dropped",
			raw:  []string{"abc-def"},
			want: []string{},
		},
		{
			name: "three part range is dropped",
			raw:  []string{"1.1.1.1-2.2.2.2-3.3.3.3"},
			want: []string{},
		},
		{
			name: "entry without separator is ignored",
			raw:  []string{"1.1.1.1", ""},
			want: []string{},
		},
		{
			name: "range expansion keeps entry position",
			raw:  []string{"5.0.0.0/16", "10.0.0.1-10.0.0.4", "6.0.0.0/16"},
			want: []string{"5.0.0.0/16", "10.0.0.1/32", "10.0.0.2/31", "10.0.0.4/32", "6.0.0.0/16"},
		},
		{
			name: "ipv6 range is dropped",
			raw:  []string{"::1-::2"},
			want: []string{},
		},
		{
			name: "reversed range is dropped",
			raw:  []string{"10.0.0.9-10.0.0.1", "7.0.0.0/8"},
			want: []string{"7.0.0.0/8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if !equalStrings(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeWithStats(t *testing.T) {
	res := NormalizeWithStats([]string{
		"2.60.0.0/14",
		"10.0.0.0-10.0.0.7",
		"abc-def",
		"1.1.1.1-2.2.2.2-3.3.3.3",
		"plain",
	})

	if res.PassedThrough != 1 {
		t.Errorf("PassedThrough = %d, want 1", res.PassedThrough)
	}
	if res.RangesExpanded != 1 {
		t.Errorf("RangesExpanded = %d, want 1", res.RangesExpanded)
	}
	if res.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", res.Dropped)
	}
	if res.Ignored != 1 {
		t.Errorf("Ignored = %d, want 1", res.Ignored)
	}
	if !equalStrings(res.CIDRs, []string{"2.60.0.0/14", "10.0.0.0/29"}) {
		t.Errorf("CIDRs = %v", res.CIDRs)
	}
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		text     string
		kind     EntryKind
		badArity bool
	}{
		{"1.2.3.0/24", KindCIDR, false},
		{"1.2.3.0/24-x", KindCIDR, false},
		{"1.2.3.0-1.2.3.255", KindRange, false},
		{"1.2.3.0-", KindMalformed, false},
		{"1.1.1.1 - 1.1.1.5", KindMalformed, false},
		{" 1.1.1.1-1.1.1.5", KindMalformed, false},
		{"a-b-c", KindMalformed, true},
		{"1.2.3.4", KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			entry := ParseEntry(tt.text)
			if entry.Kind != tt.kind {
				t.Fatalf("Kind = %v, want %v", entry.Kind, tt.kind)
			}
			if entry.BadArity != tt.badArity {
				t.Errorf("BadArity = %v, want %v", entry.BadArity, tt.badArity)
			}
			if entry.Kind == KindMalformed {
				if entry.Err == nil || entry.Err.Code != errors.ErrCodeParse {
					t.Errorf("expected parse error, got %v", entry.Err)
				}
				if !errors.IsRecoverable(entry.Err) {
					t.Errorf("malformed entries must be recoverable")
				}
			}
		})
	}
}

func TestRangeToCIDRs(t *testing.T) {
	got, err := RangeToCIDRs("10.0.0.0", "10.0.0.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalStrings(got, []string{"10.0.0.0/29"}) {
		t.Errorf("RangeToCIDRs() = %v", got)
	}

	if _, err := RangeToCIDRs("abc", "10.0.0.7"); errors.CodeOf(err) != errors.ErrCodeParse {
		t.Errorf("expected parse error, got %v", err)
	}
	if _, err := RangeToCIDRs("10.0.0.0", "def"); errors.CodeOf(err) != errors.ErrCodeParse {
		t.Errorf("expected parse error, got %v", err)
	}
}
