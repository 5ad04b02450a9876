package textnorm

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Ｈｂ．", "Hb."},
		{"１２．５", "12.5"},
		{"（＋）", "(+)"},
		{"０１４　［尿沈渣］", "014 [尿沈渣]"},
		{"ｶﾘｳﾑ", "カリウム"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.input); got != tt.expected {
			t.Errorf("Fold(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestSquash(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  a   b  ", "a b"},
		{"a\tb\r\n", "a b"},
		{"a\x00\x1fb", "a b"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Squash(tt.input); got != tt.expected {
			t.Errorf("Squash(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"001  Hb.    10.1",
		"　ＡＳＴ（ＧＯＴ）　　４５　Ｈ",
		"ｶﾘｳﾑ\t\t3.1 L",
		"\x01\x02 odd spacing　here ",
		"",
		"付加コメント",
	}

	for _, s := range inputs {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestBlankKeepsRuns(t *testing.T) {
	got := Blank("Hb.\x00\x00  10.1\t")
	expected := "Hb.    10.1\t"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Ｈｂ．", "hb."},
		{"  AST (GOT) ", "ast (got)"},
		{"ヘモグロビン", "ヘモグロビン"},
	}

	for _, tt := range tests {
		if got := Name(tt.input); got != tt.expected {
			t.Errorf("Name(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hb.", "hb"},
		{"ＡＳＴ（ＧＯＴ）", "astgot"},
		{"Neut/μL", "neutl"},
		{"血清 カリウム", "血清 カリウム"},
		{"  K  ", "k"},
	}

	for _, tt := range tests {
		if got := Key(tt.input); got != tt.expected {
			t.Errorf("Key(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}
