package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/radarfiscal/radar/internal/client"
	"github.com/radarfiscal/radar/internal/payment"
)

func TestRootCommandHelp(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand(strings.NewReader(""), &out, &out)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, flag := range []string{"--api", "--email", "--poll-interval", "--max-attempts", "--verbose"} {
		if !strings.Contains(out.String(), flag) {
			t.Errorf("help missing %s:\n%s", flag, out.String())
		}
	}
}

func TestRootCommandDefaults(t *testing.T) {
	cmd := NewRootCommand(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})

	if got := cmd.Flags().Lookup("poll-interval").DefValue; got != "3s" {
		t.Errorf("poll-interval default = %s, want 3s", got)
	}
	if got := cmd.Flags().Lookup("max-attempts").DefValue; got != "100" {
		t.Errorf("max-attempts default = %s, want 100", got)
	}
}

func TestRootCommandDeclinedTerms(t *testing.T) {
	var out, errOut bytes.Buffer
	// The API is never contacted before consent.
	cmd := NewRootCommand(strings.NewReader("n\n"), &out, &errOut)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--api", "http://127.0.0.1:1"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "aceitar os termos") {
		t.Fatalf("err = %v, want declined terms", err)
	}
	if !strings.Contains(out.String(), "Termos e Privacidade") {
		t.Errorf("consent prompt not shown:\n%s", out.String())
	}
}

type stubUI struct {
	client.UI
	asked int
}

func (s *stubUI) Email() (string, error) {
	s.asked++
	return "prompted@example.com", nil
}

func (s *stubUI) PaymentCode(payment.Code) {}

func TestPresetEmailUsedOnce(t *testing.T) {
	inner := &stubUI{}
	ui := &presetEmail{UI: inner, email: "flag@example.com"}

	first, _ := ui.Email()
	second, _ := ui.Email()

	if first != "flag@example.com" {
		t.Errorf("first = %q, want flag value", first)
	}
	if second != "prompted@example.com" || inner.asked != 1 {
		t.Errorf("second = %q asked = %d, want prompt once", second, inner.asked)
	}
}
