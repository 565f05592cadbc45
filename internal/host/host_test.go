package host

import "testing"

func TestParseOSRelease(t *testing.T) {
	data := []byte("NAME=\"Ubuntu\"\nVERSION=\"22.04 LTS\"\n# a comment\n\nID=ubuntu\n")
	fields := parseOSRelease(data)
	if fields["NAME"] != "Ubuntu" {
		t.Fatalf("NAME = %q, want Ubuntu", fields["NAME"])
	}
	if fields["VERSION"] != "22.04 LTS" {
		t.Fatalf("VERSION = %q, want 22.04 LTS", fields["VERSION"])
	}
	if fields["ID"] != "ubuntu" {
		t.Fatalf("ID = %q, want ubuntu", fields["ID"])
	}
}

func TestCharsToString(t *testing.T) {
	buf := make([]byte, 8)
	copy(buf, "abc")
	if got := charsToString(buf); got != "abc" {
		t.Fatalf("charsToString = %q, want abc", got)
	}
}

func TestGetFactsNeverFails(t *testing.T) {
	r := NewLinuxReader()
	f, err := r.GetFacts()
	if err != nil {
		t.Fatalf("GetFacts: %v", err)
	}
	if f.NumCPU <= 0 {
		t.Fatalf("NumCPU = %d, want > 0", f.NumCPU)
	}
	if f.Architecture == "" {
		t.Fatal("expected a non-empty Architecture")
	}
}
