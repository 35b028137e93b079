package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmountTruncates(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCents int64
		wantErr   bool
	}{
		{name: "plain two decimals", input: "29.99", wantCents: 2999},
		{name: "third decimal truncated down", input: "29.999", wantCents: 2999},
		{name: "truncation never rounds up", input: "1000.555", wantCents: 100055},
		{name: "integer amount", input: "42", wantCents: 4200},
		{name: "single decimal", input: "0.5", wantCents: 50},
		{name: "many decimals", input: "12.349999", wantCents: 1234},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "sub-cent truncates to zero", input: "0.004", wantErr: true},
		{name: "negative rejected", input: "-5.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.input)
			if err != nil {
				t.Fatalf("bad fixture %q: %v", tt.input, err)
			}
			m, err := ParseAmount(d)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%s) = %d, want error", tt.input, m.Cents)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%s): %v", tt.input, err)
			}
			if m.Cents != tt.wantCents {
				t.Errorf("ParseAmount(%s) = %d cents, want %d", tt.input, m.Cents, tt.wantCents)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 2999}).String(); got != "29.99" {
		t.Errorf("String() = %q, want %q", got, "29.99")
	}
	if got := (Money{Cents: 50}).String(); got != "0.50" {
		t.Errorf("String() = %q, want %q", got, "0.50")
	}
}

func TestMoneyMarshalJSON(t *testing.T) {
	b, err := (Money{Cents: 100055}).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `"1000.55"` {
		t.Errorf("MarshalJSON = %s, want %q", b, `"1000.55"`)
	}
}
