package research

import (
	"errors"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero threshold", func(c *Config) { c.ConfidenceThreshold = 0 }, false},
		{"threshold one", func(c *Config) { c.ConfidenceThreshold = 1 }, false},
		{"negative threshold", func(c *Config) { c.ConfidenceThreshold = -0.1 }, true},
		{"threshold above one", func(c *Config) { c.ConfidenceThreshold = 1.2 }, true},
		{"empty order", func(c *Config) { c.SourceOrder = nil }, true},
		{"reordered", func(c *Config) {
			c.SourceOrder = []SourceKind{SourceEnvironment, SourceProjectFiles}
		}, false},
		{"web search in order", func(c *Config) {
			c.SourceOrder = append(c.SourceOrder, SourceWebSearch)
		}, true},
		{"unknown kind", func(c *Config) {
			c.SourceOrder = []SourceKind{"oracle"}
		}, true},
		{"duplicate kind", func(c *Config) {
			c.SourceOrder = []SourceKind{SourceProjectFiles, SourceProjectFiles}
		}, true},
		{"zero per-source timeout", func(c *Config) { c.PerSourceTimeout = 0 }, true},
		{"negative deadline", func(c *Config) { c.OverallDeadline = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultConfig_DoesNotAliasOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceOrder[0] = SourceEnvironment
	if DefaultSourceOrder[0] != SourceProjectFiles {
		t.Fatal("DefaultConfig must copy the default order")
	}
}

func TestOrchestratorConfig_ReturnsCopy(t *testing.T) {
	o := newTestOrchestrator(t, testConfig(), nil)
	cfg := o.Config()
	cfg.SourceOrder[0] = SourceEnvironment
	if o.Config().SourceOrder[0] != SourceProjectFiles {
		t.Error("Config() must not expose the orchestrator's slice")
	}
}

func TestSetConfig(t *testing.T) {
	o := newTestOrchestrator(t, testConfig(), nil)

	bad := DefaultConfig()
	bad.SourceOrder = nil
	if err := o.SetConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("SetConfig(bad) error = %v, want ErrInvalidConfig", err)
	}

	good := DefaultConfig()
	good.ConfidenceThreshold = 0.8
	good.Parallel = true
	if err := o.SetConfig(good); err != nil {
		t.Fatalf("SetConfig(good) error: %v", err)
	}
	got := o.Config()
	if got.ConfidenceThreshold != 0.8 || !got.Parallel {
		t.Errorf("Config() = %+v, want threshold 0.8 parallel", got)
	}
}

func TestParseSourceKind(t *testing.T) {
	for _, k := range AllKinds {
		got, err := ParseSourceKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseSourceKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseSourceKind("oracle"); err == nil {
		t.Error("ParseSourceKind(oracle) should fail")
	}
}

func TestProviderError(t *testing.T) {
	cause := errors.New("socket closed")
	err := Unavailable(SourceKnowledgeGraph, cause)

	if !errors.Is(err, cause) {
		t.Error("ProviderError must unwrap to its cause")
	}
	var pe *ProviderError
	if !errors.As(error(err), &pe) || pe.Kind != ProviderUnavailable {
		t.Errorf("errors.As failed: %+v", pe)
	}
	want := "knowledge_graph provider unavailable: socket closed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
