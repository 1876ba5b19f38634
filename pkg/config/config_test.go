package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func TestParseKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "media")
	s := sample{Port: 8080}
	if err := Parse([]byte("name: ${SAMPLE_NAME}\n"), &s); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "media" || s.Port != 8080 {
		t.Errorf("got %+v", s)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	s := sample{Port: 1}
	if err := Parse(nil, &s); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	s := sample{Port: 1}
	if err := Parse([]byte("nmae: typo\n"), &s); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseRunsValidator(t *testing.T) {
	s := sample{}
	err := Parse([]byte("port: 0\n"), &s)
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Fatalf("err = %v", err)
	}
}
