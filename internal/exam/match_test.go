package exam

import "testing"

func TestMatchFillIn(t *testing.T) {
	tests := []struct {
		name          string
		answer        string
		pattern       string
		caseSensitive bool
		want          bool
	}{
		{name: "exact", answer: "mitochondria", pattern: "mitochondria", want: true},
		{name: "case folded", answer: "Mitochondria", pattern: "mitochondria", want: true},
		{name: "case sensitive miss", answer: "Mitochondria", pattern: "mitochondria", caseSensitive: true, want: false},
		{name: "case sensitive hit", answer: "mitochondria", pattern: "mitochondria", caseSensitive: true, want: true},
		{name: "alternative first", answer: "color", pattern: "color|colour", want: true},
		{name: "alternative second", answer: "colour", pattern: "color|colour", want: true},
		{name: "alternative miss", answer: "couleur", pattern: "color|colour", want: false},
		{name: "wildcard middle", answer: "a long tail", pattern: "a * tail", want: true},
		{name: "wildcard needs text", answer: "a  tail", pattern: "a * tail", want: false},
		{name: "wildcard suffix", answer: "anything goes", pattern: "anything*", want: true},
		{name: "regex chars quoted", answer: "2+2", pattern: "2+2", want: true},
		{name: "regex chars no match", answer: "22", pattern: "2+2", want: false},
		{name: "no partial match", answer: "mitochondrial", pattern: "mitochondria", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchFillIn(tc.answer, tc.pattern, tc.caseSensitive); got != tc.want {
				t.Fatalf("matchFillIn(%q, %q, %v) = %v want %v",
					tc.answer, tc.pattern, tc.caseSensitive, got, tc.want)
			}
		})
	}
}

func TestMatchNumeric(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		pattern string
		want    bool
	}{
		{name: "exact integer", answer: "4", pattern: "4", want: true},
		{name: "float equal", answer: "4.0", pattern: "4", want: true},
		{name: "not a number", answer: "four", pattern: "4", want: false},
		{name: "comma decimal answer", answer: "3,14", pattern: "3.14", want: true},
		{name: "comma decimal pattern", answer: "3.14", pattern: "3,14", want: true},
		{name: "range inside", answer: "5", pattern: "1|10", want: true},
		{name: "range edge low", answer: "1", pattern: "1|10", want: true},
		{name: "range edge high", answer: "10", pattern: "1|10", want: true},
		{name: "range outside", answer: "11", pattern: "1|10", want: false},
		{name: "range reversed bounds", answer: "5", pattern: "10|1", want: true},
		{name: "garbage pattern", answer: "5", pattern: "abc", want: false},
		{name: "whitespace tolerated", answer: " 4 ", pattern: "4", want: true},
		{name: "negative value", answer: "-2.5", pattern: "-3|-2", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchNumeric(tc.answer, tc.pattern); got != tc.want {
				t.Fatalf("matchNumeric(%q, %q) = %v want %v", tc.answer, tc.pattern, got, tc.want)
			}
		})
	}
}
