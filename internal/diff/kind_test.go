package diff

import (
	"encoding/json"
	"testing"
)

func TestChangeKind_String(t *testing.T) {
	tests := []struct {
		kind ChangeKind
		want string
	}{
		{KindAdded, "added"},
		{KindModified, "modified"},
		{KindDeleted, "deleted"},
		{KindRenamed, "renamed"},
		{KindCopied, "copied"},
		{ChangeKind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestChangeKind_Letter(t *testing.T) {
	tests := []struct {
		kind ChangeKind
		want string
	}{
		{KindAdded, "A"},
		{KindModified, "M"},
		{KindDeleted, "D"},
		{KindRenamed, "R"},
		{KindCopied, "C"},
		{ChangeKind(99), "?"},
	}

	for _, tt := range tests {
		if got := tt.kind.Letter(); got != tt.want {
			t.Errorf("Letter() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ChangeKind
		wantErr bool
	}{
		{"letter A", "A", KindAdded, false},
		{"lowercase letter", "m", KindModified, false},
		{"full name", "deleted", KindDeleted, false},
		{"mixed case name", "Renamed", KindRenamed, false},
		{"copied letter", "C", KindCopied, false},
		{"unknown", "Z", KindAdded, true},
		{"empty", "", KindAdded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseKind() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseKindSet(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"default filter", "A,M", "A,M", false},
		{"single kind", "D", "D", false},
		{"names", "added,deleted", "A,D", false},
		{"spaces tolerated", " A , M ", "A,M", false},
		{"duplicates collapse", "A,A,M", "A,M", false},
		{"empty string", "", "", false},
		{"trailing comma", "A,M,", "A,M", false},
		{"unknown kind", "A,Z", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKindSet(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseKindSet() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKindSet() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseKindSet(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestKindSet_Has(t *testing.T) {
	set := NewKindSet(KindAdded, KindModified)

	if !set.Has(KindAdded) {
		t.Error("Has(KindAdded) = false, want true")
	}
	if set.Has(KindDeleted) {
		t.Error("Has(KindDeleted) = true, want false")
	}

	var empty KindSet
	if empty.Has(KindAdded) {
		t.Error("empty set Has(KindAdded) = true, want false")
	}
}

func TestChangeKind_JSON(t *testing.T) {
	data, err := json.Marshal(KindModified)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"modified"` {
		t.Errorf("Marshal(KindModified) = %s, want %q", data, "modified")
	}

	var k ChangeKind
	if err := json.Unmarshal([]byte(`"A"`), &k); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if k != KindAdded {
		t.Errorf("Unmarshal(\"A\") = %v, want KindAdded", k)
	}

	if err := json.Unmarshal([]byte(`"bogus"`), &k); err == nil {
		t.Error("Unmarshal of unknown kind should return error")
	}
}
