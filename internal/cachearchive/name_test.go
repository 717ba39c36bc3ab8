package cachearchive

import "testing"

func Test_checkName(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		wantWellFormed  bool
		wantWindowsSafe bool
	}{
		{"empty", "", false, false},
		{"dot", ".", false, true},
		{"dotdot", "..", false, true},
		{"leading slash", "/etc/passwd", false, true},
		{"leading dot slash", "./foo", false, true},
		{"leading dotdot slash", "../foo", false, true},
		{"trailing slash dot", "foo/.", false, true},
		{"trailing slash dotdot", "foo/..", false, true},
		{"double slash", "foo//bar", false, true},
		{"embedded dot segment", "foo/./bar", false, true},
		{"embedded dotdot segment", "foo/../bar", false, true},
		{"simple file", "foo", true, true},
		{"nested file", "foo/bar", true, true},
		{"directory with trailing slash", "foo/bar/", true, true},
		{"backslash is windows unsafe", `foo\bar`, true, false},
		{"dotdot inside a segment", "foo..bar", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wellFormed, windowsSafe := checkName(tt.input)
			if wellFormed != tt.wantWellFormed {
				t.Errorf("checkName(%q) wellFormed = %v, want %v", tt.input, wellFormed, tt.wantWellFormed)
			}
			if windowsSafe != tt.wantWindowsSafe {
				t.Errorf("checkName(%q) windowsSafe = %v, want %v", tt.input, windowsSafe, tt.wantWindowsSafe)
			}
		})
	}
}

func Test_canonicalizeName(t *testing.T) {
	got, err := canonicalizeName("foo/bar/")
	if err != nil {
		t.Fatalf("canonicalizeName returned error: %v", err)
	}
	if got.ToString() != "foo/bar" && got.ToString() != `foo\bar` {
		t.Errorf("canonicalizeName(%q) = %q, want trailing slash trimmed", "foo/bar/", got.ToString())
	}

	if _, err := canonicalizeName("../escape"); err == nil {
		t.Fatalf("canonicalizeName(%q) expected error, got nil", "../escape")
	}
}
