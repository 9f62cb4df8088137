package core_test

import (
	"testing"

	"invoizo/internal/core"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "Zero"},
		{"7", "Seven"},
		{"15", "Fifteen"},
		{"40", "Forty"},
		{"99", "Ninety Nine"},
		{"100", "One Hundred"},
		{"1500", "One Thousand Five Hundred"},
		{"100000", "One Lakh"},
		{"250075", "Two Lakh Fifty Thousand Seventy Five"},
		{"12345678", "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight"},
		{"10.50", "Ten and Fifty Paise"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := core.AmountInWords(amt(tt.in)); got != tt.want {
				t.Errorf("AmountInWords(%s): want %q, got %q", tt.in, tt.want, got)
			}
		})
	}

	if got := core.RupeesInWords(amt("1000")); got != "One Thousand Rupees Only" {
		t.Errorf("RupeesInWords: got %q", got)
	}
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1000", "1,000"},
		{"100000", "1,00,000"},
		{"1234567.5", "12,34,567.5"},
		{"-2500", "-2,500"},
	}
	for _, tt := range tests {
		if got := core.FormatINR(amt(tt.in)); got != tt.want {
			t.Errorf("FormatINR(%s): want %q, got %q", tt.in, tt.want, got)
		}
	}
}
