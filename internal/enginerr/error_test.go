package enginerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewFromRegisteredCode(t *testing.T) {
	err := New("M102")

	if err.Code != "M102" {
		t.Errorf("got code %q, want M102", err.Code)
	}
	if err.Category != CategoryValidation {
		t.Errorf("got category %q, want validation", err.Category)
	}
	if err.Message == "" {
		t.Error("registered code should have a message")
	}
	if !strings.Contains(err.Error(), "M102") {
		t.Errorf("Error() should contain the code, got %q", err.Error())
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("M999")

	if err.Code != "M999" {
		t.Errorf("got code %q, want M999", err.Code)
	}
	if err.Message != "Unknown error" {
		t.Errorf("got message %q, want %q", err.Message, "Unknown error")
	}
}

func TestFluentBuilders(t *testing.T) {
	cause := errors.New("boom")
	err := New("M301").
		WithDetail("factory for hero@1.0.0 failed").
		WithSuggestion("check the factory's prop handling").
		WithNode("hero-1").
		WithField("props.title").
		Wrap(cause)

	if err.Detail != "factory for hero@1.0.0 failed" {
		t.Errorf("detail not set: %q", err.Detail)
	}
	if err.NodeID != "hero-1" || err.Field != "props.title" {
		t.Errorf("node/field not set: %q %q", err.NodeID, err.Field)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "M552") != nil {
		t.Error("FromError(nil) should return nil")
	}

	orig := New("M551")
	if got := FromError(orig, "M552"); got != orig {
		t.Error("FromError should pass through engine errors unchanged")
	}

	wrapped := FromError(errors.New("disk full"), "M552")
	if wrapped.Code != "M552" {
		t.Errorf("got code %q, want M552", wrapped.Code)
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New("M201"))

	if !Is(err, "M201") {
		t.Error("Is should find M201 through wrapping")
	}
	if Is(err, "M301") {
		t.Error("Is should not match a different code")
	}
	if Is(nil, "M201") {
		t.Error("Is(nil) should be false")
	}
}

func TestFormatPlain(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("M102").
		WithField("tenantId").
		WithSuggestion("set the owning tenant before saving").
		Format()

	for _, want := range []string{"M102", "tenantId", "hint:", "docs:"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("colors disabled but output contains ANSI escapes")
	}
}
