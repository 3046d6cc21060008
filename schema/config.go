package schema

import (
	"errors"
	"time"
)

// EngineConfig controls relay engine timing and identity.
type EngineConfig struct {
	// BotName is the bot's own display name. Candidates attributed to it are
	// never forwarded.
	BotName string
	// HostPackage restricts which package's events are handled. Empty accepts
	// any package.
	HostPackage string
	// WindowClasses restricts which window classes trigger extraction. Empty
	// accepts any class.
	WindowClasses []string
	// DeadZone is the settle period during which extraction results are
	// discarded, both after the window first becomes visible and after an
	// injection, when the window shows the freshly sent reply.
	DeadZone time.Duration
	// ThrottleWindow is the minimum interval between accepted injections.
	ThrottleWindow time.Duration
	// PollInterval is the wait between poll attempts.
	PollInterval time.Duration
	// PollAttempts bounds the poll loop; exhausting it expires the cycle.
	PollAttempts int
	// AskedMax bounds the asked-questions cache. Older entries are evicted
	// and become re-askable.
	AskedMax int
}

// Defaults match the reference relay deployment.
const (
	DefaultDeadZone       = 2 * time.Second
	DefaultThrottleWindow = 4 * time.Second
	DefaultPollInterval   = 5 * time.Second
	DefaultPollAttempts   = 2
	DefaultAskedMax       = 512
)

// NormalizeEngineConfig applies defaults and validates the config.
func NormalizeEngineConfig(cfg EngineConfig) (EngineConfig, error) {
	if cfg.DeadZone <= 0 {
		cfg.DeadZone = DefaultDeadZone
	}
	if cfg.ThrottleWindow <= 0 {
		cfg.ThrottleWindow = DefaultThrottleWindow
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = DefaultPollAttempts
	}
	if cfg.AskedMax <= 0 {
		cfg.AskedMax = DefaultAskedMax
	}
	if cfg.PollAttempts > 1000 {
		return EngineConfig{}, errors.New("poll attempts out of range")
	}
	return cfg, nil
}
