package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Feature: skillbench, Property 11: Config merge precedence
func TestConfigMergePrecedence(t *testing.T) {
	// Generator for a non-empty string field value.
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.-]{1,20}`)

	// Each field is independently either empty or a non-empty value.
	configGen := rapid.Custom(func(t *rapid.T) *Config {
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasDefaultModel") {
			cfg.DefaultModel = nonEmptyString.Draw(t, "defaultModel")
		}
		if rapid.Bool().Draw(t, "hasStreamSpeed") {
			cfg.StreamSpeed = nonEmptyString.Draw(t, "streamSpeed")
		}
		if rapid.Bool().Draw(t, "hasSeedPath") {
			cfg.SeedPath = nonEmptyString.Draw(t, "seedPath")
		}
		if rapid.Bool().Draw(t, "hasMaxDelay") {
			cfg.MaxStepDelayMS = rapid.IntRange(1, 5000).Draw(t, "maxDelay")
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")
		env := configGen.Draw(t, "env")

		merged := Merge(global, project, env)
		defaults := Defaults()

		checkStringField(t, "DefaultModel",
			global.DefaultModel, project.DefaultModel, env.DefaultModel, defaults.DefaultModel,
			merged.DefaultModel)
		checkStringField(t, "StreamSpeed",
			global.StreamSpeed, project.StreamSpeed, env.StreamSpeed, defaults.StreamSpeed,
			merged.StreamSpeed)
		checkStringField(t, "SeedPath",
			global.SeedPath, project.SeedPath, env.SeedPath, defaults.SeedPath,
			merged.SeedPath)

		want := defaults.MaxStepDelayMS
		for _, l := range []*Config{global, project, env} {
			if l.MaxStepDelayMS != 0 {
				want = l.MaxStepDelayMS
			}
		}
		if merged.MaxStepDelayMS != want {
			t.Fatalf("MaxStepDelayMS: want %d, got %d", want, merged.MaxStepDelayMS)
		}
	})
}

// checkStringField asserts the merge precedence rule for a single string field:
// the last non-empty layer wins, and the default applies when every layer is empty.
func checkStringField(t *rapid.T, name, globalVal, projectVal, envVal, defaultVal, mergedVal string) {
	t.Helper()
	switch {
	case envVal != "":
		if mergedVal != envVal {
			t.Fatalf("%s: env set, expected %q, got %q", name, envVal, mergedVal)
		}
	case projectVal != "":
		if mergedVal != projectVal {
			t.Fatalf("%s: project set, expected %q, got %q", name, projectVal, mergedVal)
		}
	case globalVal != "":
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set, expected %q, got %q", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: nothing set, expected default %q, got %q", name, defaultVal, mergedVal)
		}
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.DefaultModel != "Claude 3.5 Sonnet" {
		t.Errorf("DefaultModel: want %q, got %q", "Claude 3.5 Sonnet", d.DefaultModel)
	}
	if d.StreamSpeed != "normal" {
		t.Errorf("StreamSpeed: want %q, got %q", "normal", d.StreamSpeed)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	if !reflect.DeepEqual(*cfg, Defaults()) {
		t.Errorf("want defaults, got %+v", cfg)
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	tmp := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadGlobalReadsYAML(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	cfgDir := filepath.Join(tmp, ".config", "skillbench")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "stream_speed: slow\nmax_step_delay_ms: 900\nmodels:\n  - GPT-4\n  - Gemini Pro\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.StreamSpeed != "slow" || cfg.MaxStepDelayMS != 900 || len(cfg.Models) != 2 || cfg.Models[1] != "Gemini Pro" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.DefaultModel != "" {
		t.Errorf("unset keys should stay empty for Merge, got DefaultModel %q", cfg.DefaultModel)
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	// Write an invalid YAML file where LoadGlobal expects it.
	cfgDir := filepath.Join(tmp, ".config", "skillbench")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("stream_speed: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid YAML, got nil")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestLoadFileMissingIsError(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("want ErrNotExist, got %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SKILLBENCH_STREAM_SPEED", "fast")
	t.Setenv("SKILLBENCH_MIN_STEP_DELAY_MS", "5")
	t.Setenv("SKILLBENCH_MODELS", "GPT-4,Claude 3 Opus")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.StreamSpeed != "fast" || cfg.MinStepDelayMS != 5 {
		t.Errorf("got %+v", cfg)
	}
	if len(cfg.Models) != 2 || cfg.Models[1] != "Claude 3 Opus" {
		t.Errorf("Models = %q", cfg.Models)
	}
	if cfg.SeedPath != "" {
		t.Errorf("unset env leaked a value: %q", cfg.SeedPath)
	}
}

func TestValidateAndStepDelays(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
		lo, hi  time.Duration
	}{
		{"preset", Config{StreamSpeed: "fast"}, false, 15 * time.Millisecond, 45 * time.Millisecond},
		{"explicit", Config{StreamSpeed: "normal", MinStepDelayMS: 10, MaxStepDelayMS: 20}, false, 10 * time.Millisecond, 20 * time.Millisecond},
		{"inverted", Config{StreamSpeed: "normal", MinStepDelayMS: 30, MaxStepDelayMS: 20}, true, 30 * time.Millisecond, 30 * time.Millisecond},
		{"unknown speed", Config{StreamSpeed: "warp"}, true, 50 * time.Millisecond, 150 * time.Millisecond},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.cfg.Validate(); (err != nil) != c.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, c.wantErr)
			}
			lo, hi := c.cfg.StepDelays()
			if lo != c.lo || hi != c.hi {
				t.Errorf("StepDelays() = [%s, %s], want [%s, %s]", lo, hi, c.lo, c.hi)
			}
		})
	}
}
