package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	onesWords = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teenWords = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tensWords = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// AmountInWords spells the rupee part of a in the Indian system (Crore,
// Lakh, Thousand, Hundred). Paise, when present, follow as "and N Paise".
func AmountInWords(a Amount) string {
	d := a.Abs().Round(2)
	rupees := d.IntPart()
	paise := d.Sub(decimal.NewFromInt(rupees)).Mul(decimal.NewFromInt(100)).IntPart()

	words := integerWords(rupees)
	if words == "" {
		words = "Zero"
	}
	if paise > 0 {
		words += " and " + integerWords(paise) + " Paise"
	}
	if a.IsNegative() {
		words = "Minus " + words
	}
	return words
}

// RupeesInWords is the printed form: "<words> Rupees Only".
func RupeesInWords(a Amount) string {
	return AmountInWords(a) + " Rupees Only"
}

func integerWords(n int64) string {
	var parts []string
	if n >= 10000000 {
		parts = append(parts, integerWords(n/10000000), "Crore")
		n %= 10000000
	}
	if n >= 100000 {
		parts = append(parts, belowThousand(n/100000), "Lakh")
		n %= 100000
	}
	if n >= 1000 {
		parts = append(parts, belowThousand(n/1000), "Thousand")
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, belowThousand(n))
	}
	return strings.Join(parts, " ")
}

func belowThousand(n int64) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, onesWords[n/100], "Hundred")
		n %= 100
	}
	switch {
	case n >= 20:
		parts = append(parts, tensWords[n/10])
		if n%10 > 0 {
			parts = append(parts, onesWords[n%10])
		}
	case n >= 10:
		parts = append(parts, teenWords[n-10])
	case n > 0:
		parts = append(parts, onesWords[n])
	}
	return strings.Join(parts, " ")
}

// FormatINR renders a with Indian digit grouping (12,34,567.5). Trailing
// zero decimals are dropped, matching en-IN locale output.
func FormatINR(a Amount) string {
	s := a.Abs().Round(2).String()
	intPart, frac, _ := strings.Cut(s, ".")

	var grouped string
	if len(intPart) <= 3 {
		grouped = intPart
	} else {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		grouped = strings.Join(groups, ",") + "," + tail
	}
	if frac != "" {
		grouped += "." + frac
	}
	if a.IsNegative() {
		grouped = "-" + grouped
	}
	return grouped
}
