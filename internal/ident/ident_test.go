package ident

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"https://arxiv.org/abs/2301.07041v2", "2301.07041"},
		{"http://arxiv.org/abs/1706.03762", "1706.03762"},
		{"https://arxiv.org/abs/1706.03762v5/", "1706.03762"},
		{"https://arxiv.org/pdf/2301.07041v1.pdf", "2301.07041"},
		{"https://arxiv.org/abs/2301.07041?context=cs.CL", "2301.07041"},
		{"https://arxiv.org/abs/2301.07041v3#section2", "2301.07041"},
		{"2301.07041", "2301.07041"},
		{"2301.07041v2", "2301.07041"},
		{"arXiv:2301.07041v1", "2301.07041"},
		{"  2301.07041  ", "2301.07041"},
		// No stable form: fall back to the raw input, never empty.
		{"https://example.com/papers/attention", "https://example.com/papers/attention"},
		{"not a url", "not a url"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Canonical(tt.input); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalVersionSuffixesEqual(t *testing.T) {
	pairs := [][2]string{
		{"http://arxiv.org/abs/2301.07041v1", "http://arxiv.org/abs/2301.07041v2"},
		{"2401.12345v1", "2401.12345v9"},
		{"https://arxiv.org/abs/1706.03762", "https://arxiv.org/abs/1706.03762v5"},
		{"arXiv:2301.07041", "https://arxiv.org/pdf/2301.07041v3.pdf"},
	}
	for _, p := range pairs {
		a, b := Canonical(p[0]), Canonical(p[1])
		if a != b {
			t.Errorf("Canonical(%q) = %q, Canonical(%q) = %q; want equal", p[0], a, p[1], b)
		}
		if a == "" {
			t.Errorf("Canonical(%q) = empty key", p[0])
		}
	}
}

func TestTitleKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Attention Is All You Need", "title:attention is all you need"},
		{"attention is all you need!", "title:attention is all you need"},
		{"  BERT:  Pre-training  ", "title:bert pretraining"},
		{"", "title:"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TitleKey(tt.input); got != tt.want {
				t.Errorf("TitleKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
