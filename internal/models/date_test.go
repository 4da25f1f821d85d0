// ABOUTME: Tests for the calendar Date type
// ABOUTME: Verifies parsing, ordering, and JSON encoding
package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-10")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.String() != "2026-03-10" {
		t.Errorf("String() = %v, want 2026-03-10", d.String())
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, err := ParseDate("10/03/2026"); err == nil {
		t.Error("ParseDate(10/03/2026) error = nil, want error")
	}
}

func TestDateAfter(t *testing.T) {
	dep := NewDate(2026, time.March, 10)
	ret := NewDate(2026, time.March, 12)

	if !ret.After(dep) {
		t.Error("ret.After(dep) = false, want true")
	}
	if dep.After(ret) {
		t.Error("dep.After(ret) = true, want false")
	}
	if dep.After(dep) {
		t.Error("dep.After(dep) = true, want false for equal dates")
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2026, time.March, 10)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2026-03-10"` {
		t.Errorf("Marshal() = %s, want \"2026-03-10\"", data)
	}

	var decoded Date
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.String() != "2026-03-10" {
		t.Errorf("decoded = %v, want 2026-03-10", decoded)
	}
}

func TestDateJSONNull(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte("null"), &d); err != nil {
		t.Fatalf("Unmarshal(null) error = %v", err)
	}
	if !d.IsZero() {
		t.Error("IsZero() = false, want true for null date")
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "null" {
		t.Errorf("Marshal() = %s, want null", data)
	}
}
