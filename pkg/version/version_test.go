// SPDX-License-Identifier: MPL-2.0

package version

import "testing"

func ptr(s string) *string { return &s }

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want Ordering
	}{
		{"equal full", "1.2.3", "1.2.3", Equal},
		{"missing components default to zero", "1", "1.0.0", Equal},
		{"minor differs", "1.2", "1.10", Less},
		{"patch differs", "1.2.4", "1.2.3", Greater},
		{"numeric not lexical", "10.0.0", "9.0.0", Greater},
		{"leading zeros parse numerically", "01.2", "1.2.0", Equal},
		{"both unparseable", "beta", "alpha", Greater},
		{"one side unparseable falls back to whole string", "10.0.0", "9-rc", Less},
		{"prerelease suffix is unparseable", "1.0.0-rc1", "1.0.0", Greater},
		{"four components unparseable", "1.0.0.0", "1.0.0", Greater},
		{"empty string unparseable", "", "0", Less},
		{"empty component unparseable", "1..2", "1.0.2", Less},
		{"sign unparseable", "+1", "1", Less},
		{"negative unparseable", "-1", "1", Less},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{{"1.0", "2.0"}, {"1.0.0", "x"}, {"2", "10"}, {"a", "b"}}
	for _, p := range pairs {
		if Compare(p[0], p[1]) != -Compare(p[1], p[0]) {
			t.Errorf("Compare not antisymmetric for %q, %q", p[0], p[1])
		}
	}
}

func TestInRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    string
		r    Range
		want bool
	}{
		{"inside", "1.5.0", Range{Min: ptr("1.0.0"), Max: ptr("1.9.9")}, true},
		{"above max", "2.0.0", Range{Min: ptr("1.0.0"), Max: ptr("1.9.9")}, false},
		{"below min", "0.9", Range{Min: ptr("1.0.0")}, false},
		{"min inclusive", "1.0.0", Range{Min: ptr("1")}, true},
		{"max inclusive", "1.9.9", Range{Max: ptr("1.9.9")}, true},
		{"unbounded", "anything", Range{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := InRange(tt.v, tt.r); got != tt.want {
				t.Errorf("InRange(%q, %s) = %v, want %v", tt.v, tt.r, got, tt.want)
			}
		})
	}
}

func TestRangeString(t *testing.T) {
	t.Parallel()

	if got := (Range{Min: ptr("1.0")}).String(); got != "[1.0, *]" {
		t.Errorf("String() = %q", got)
	}
	if !(Range{}).Unbounded() {
		t.Error("empty range should be unbounded")
	}
}
