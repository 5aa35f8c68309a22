package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "scheduler.run")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithRun(t *testing.T) {
	logger := slog.Default()
	result := WithRun(logger, "0c2f8a9e")
	if result == nil {
		t.Error("WithRun returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("digest.process")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "digest.process" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "digest.process")
	}
}

func TestGroupAttr(t *testing.T) {
	attr := Group("AI Weekly")
	if attr.Key != KeyGroup {
		t.Errorf("Group key = %q, want %q", attr.Key, KeyGroup)
	}
	if attr.Value.String() != "AI Weekly" {
		t.Errorf("Group value = %q, want %q", attr.Value.String(), "AI Weekly")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != "success" {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), "success")
	}
}

func TestErrAttr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "boom")
	}
}

func TestErrAttrNil(t *testing.T) {
	attr := Err(nil)
	// A nil error must not produce an "error" attribute
	if attr.Key == KeyError {
		t.Error("Err(nil) produced an error attribute")
	}
}

func TestAnonymizeEmail(t *testing.T) {
	hash := AnonymizeEmail("user@example.com")
	if !strings.HasPrefix(hash, "user:") {
		t.Errorf("AnonymizeEmail = %q, want user: prefix", hash)
	}
	if strings.Contains(hash, "example.com") {
		t.Error("AnonymizeEmail leaked the email address")
	}
	if hash != AnonymizeEmail("user@example.com") {
		t.Error("AnonymizeEmail is not stable for the same input")
	}
	if hash == AnonymizeEmail("other@example.com") {
		t.Error("AnonymizeEmail collided for different inputs")
	}
}

func TestAnonymizeEmailEmpty(t *testing.T) {
	if AnonymizeEmail("") != "" {
		t.Error("AnonymizeEmail(\"\") should return empty string")
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"user@example.com", "example.com"},
		{"user@sub.example.com", "sub.example.com"},
		{"not-an-email", ""},
		{"a@b@c", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractDomain(tt.email); got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestDomainAttr(t *testing.T) {
	attr := Domain("user@example.com")
	if attr.Key != KeyUserDomain {
		t.Errorf("Domain key = %q, want %q", attr.Key, KeyUserDomain)
	}
	if attr.Value.String() != "example.com" {
		t.Errorf("Domain value = %q, want %q", attr.Value.String(), "example.com")
	}
}
