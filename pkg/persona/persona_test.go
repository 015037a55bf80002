package persona

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSetInvariants(t *testing.T) {
	s := DefaultSet()
	def := s.Default()

	if def.Name == "" {
		t.Fatal("default persona must have a display name")
	}
	if len(def.Fallbacks) == 0 {
		t.Fatal("default persona fallback list must never be empty")
	}
	if len(def.Triggers) == 0 {
		t.Fatal("default persona must have trigger substrings")
	}
}

func TestForChannelFallsBackToDefault(t *testing.T) {
	s := DefaultSet()
	if got := s.ForChannel("#unbound"); got != s.Default() {
		t.Error("unbound channel should resolve to the default persona")
	}
}

func TestBindInheritsDefaultFallbacks(t *testing.T) {
	s := DefaultSet()
	s.Bind("#philosophy", &Persona{Name: "Sage"})

	p := s.ForChannel("#philosophy")
	if p.Name != "Sage" {
		t.Fatalf("expected Sage, got %s", p.Name)
	}
	if len(p.Fallbacks) == 0 {
		t.Error("bound persona with no fallbacks must inherit the default list")
	}
	if len(p.Triggers) == 0 {
		t.Error("bound persona with no triggers must inherit the default list")
	}
}

func TestIsPersonaExactMatch(t *testing.T) {
	s := DefaultSet()
	s.Bind("#philosophy", &Persona{Name: "Sage"})

	tests := []struct {
		nick string
		want bool
	}{
		{"Sage", true},
		{s.Default().Name, true},
		{"sage", false}, // case-sensitive
		{"Sage2", false},
		{"alice", false},
	}
	for _, tt := range tests {
		if got := s.IsPersona(tt.nick); got != tt.want {
			t.Errorf("IsPersona(%q) = %v, want %v", tt.nick, got, tt.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	content := `personas:
  - name: Sage
    soul: You are a patient philosopher.
    fallbacks:
      - "A"
      - "B"
    triggers:
      - "?"
      - "meaning"
    welcome: The sage has arrived.
    channels:
      - "#philosophy"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := DefaultSet()
	n, err := s.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 binding, got %d", n)
	}

	p := s.ForChannel("#philosophy")
	if p.Name != "Sage" || len(p.Fallbacks) != 2 || p.Fallbacks[0] != "A" {
		t.Errorf("unexpected persona: %+v", p)
	}
	if !s.IsPersona("Sage") {
		t.Error("loaded persona name should be known")
	}
}

func TestLoadFileRejectsNameless(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("personas:\n  - soul: x\n    channels: [\"#c\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DefaultSet().LoadFile(path); err == nil {
		t.Error("expected error for persona without a name")
	}
}
