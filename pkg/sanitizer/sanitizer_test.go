package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only spaces", "    ", ""},
		{"leading and trailing", "  Jane Doe  ", "Jane Doe"},
		{"internal runs collapse", "Jane   \t Doe", "Jane Doe"},
		{"newlines collapse", "Jane\nDoe", "Jane Doe"},
		{"already clean", "Jane Doe", "Jane Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("  Dr.   Gregory   House "); got != "Dr. Gregory House" {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestSanitizeFreeText_PreservesNewlines(t *testing.T) {
	input := "line one\nline two\n\tindented"
	want := "line one\nline two\n\tindented"
	if got := SanitizeFreeText(input); got != want {
		t.Errorf("SanitizeFreeText(%q) = %q, want %q", input, got, want)
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("  Patient@Example.COM "); got != "patient@example.com" {
		t.Errorf("unexpected result: %q", got)
	}
}
