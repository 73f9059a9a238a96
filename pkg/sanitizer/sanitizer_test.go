package sanitizer

import "testing"

func TestNormalizeCouponCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase is upper-cased",
			input: "save20",
			want:  "SAVE20",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  SAVE20  ",
			want:  "SAVE20",
		},
		{
			name:  "mixed case",
			input: "SuMmEr5",
			want:  "SUMMER5",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCouponCode(tt.input); got != tt.want {
				t.Errorf("NormalizeCouponCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Priya Sharma  ",
			want:  "Priya Sharma",
		},
		{
			name:  "multiple spaces between words",
			input: "Priya    Sharma",
			want:  "Priya Sharma",
		},
		{
			name:  "tabs and newlines",
			input: "Priya\t\nSharma",
			want:  "Priya Sharma",
		},
		{
			name:  "preserve accents and punctuation",
			input: " José O'Brien ",
			want:  "José O'Brien",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "upper-case local part lowered",
			input: "Priya.Sharma@Example.COM",
			want:  "priya.sharma@example.com",
		},
		{
			name:  "trimmed",
			input: "  a@b.co  ",
			want:  "a@b.co",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEmail(tt.input); got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
