package schema

import (
	"testing"
	"time"
)

func TestNormalizeEngineConfigDefaults(t *testing.T) {
	cfg, err := NormalizeEngineConfig(EngineConfig{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.DeadZone != DefaultDeadZone {
		t.Fatalf("dead zone = %v, want %v", cfg.DeadZone, DefaultDeadZone)
	}
	if cfg.ThrottleWindow != DefaultThrottleWindow {
		t.Fatalf("throttle window = %v, want %v", cfg.ThrottleWindow, DefaultThrottleWindow)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Fatalf("poll interval = %v, want %v", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.PollAttempts != DefaultPollAttempts {
		t.Fatalf("poll attempts = %d, want %d", cfg.PollAttempts, DefaultPollAttempts)
	}
	if cfg.AskedMax != DefaultAskedMax {
		t.Fatalf("asked max = %d, want %d", cfg.AskedMax, DefaultAskedMax)
	}
}

func TestNormalizeEngineConfigKeepsExplicitValues(t *testing.T) {
	in := EngineConfig{
		BotName:        "茴香豆",
		DeadZone:       time.Nanosecond,
		ThrottleWindow: 10 * time.Millisecond,
		PollInterval:   time.Millisecond,
		PollAttempts:   7,
		AskedMax:       16,
	}
	cfg, err := NormalizeEngineConfig(in)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.BotName != in.BotName || cfg.DeadZone != in.DeadZone ||
		cfg.ThrottleWindow != in.ThrottleWindow || cfg.PollInterval != in.PollInterval ||
		cfg.PollAttempts != in.PollAttempts || cfg.AskedMax != in.AskedMax {
		t.Fatalf("config mutated: %+v", cfg)
	}
}

func TestNormalizeEngineConfigRejectsHugePollBudget(t *testing.T) {
	if _, err := NormalizeEngineConfig(EngineConfig{PollAttempts: 5000}); err == nil {
		t.Fatalf("expected error for oversized poll budget")
	}
}
