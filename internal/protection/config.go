package protection

import (
	"strconv"
	"strings"
)

const (
	PresetDefault = "default"
	PresetStable  = "stable"
)

// ProtectionConfig is an unvalidated configuration. It must pass
// ValidateConfig before use.
type ProtectionConfig struct {
	AmplificationFactor    uint64
	MaxPriceImpactBps      uint64
	VirtualReservesEnabled bool
	DynamicFeesEnabled     bool
}

// ValidatedConfig is a ProtectionConfig that passed ValidateConfig. The
// zero value is not valid; obtain one only through ValidateConfig.
type ValidatedConfig struct {
	cfg   ProtectionConfig
	valid bool
}

func (c ValidatedConfig) AmplificationFactor() uint64  { return c.cfg.AmplificationFactor }
func (c ValidatedConfig) MaxPriceImpactBps() uint64    { return c.cfg.MaxPriceImpactBps }
func (c ValidatedConfig) VirtualReservesEnabled() bool { return c.cfg.VirtualReservesEnabled }
func (c ValidatedConfig) DynamicFeesEnabled() bool     { return c.cfg.DynamicFeesEnabled }

// Config returns a copy of the underlying configuration.
func (c ValidatedConfig) Config() ProtectionConfig { return c.cfg }

// IsValid reports whether c was produced by ValidateConfig.
func (c ValidatedConfig) IsValid() bool { return c.valid }

// DefaultConfig is the preset for volatile pairs.
func DefaultConfig() ProtectionConfig {
	return ProtectionConfig{
		AmplificationFactor:    100,
		MaxPriceImpactBps:      300,
		VirtualReservesEnabled: true,
		DynamicFeesEnabled:     true,
	}
}

// StablePairConfig is the preset for correlated, low-volatility pairs.
func StablePairConfig() ProtectionConfig {
	return ProtectionConfig{
		AmplificationFactor:    500,
		MaxPriceImpactBps:      50,
		VirtualReservesEnabled: true,
		DynamicFeesEnabled:     true,
	}
}

// PresetByName resolves a named preset.
func PresetByName(name string) (ProtectionConfig, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetDefault:
		return DefaultConfig(), nil
	case PresetStable:
		return StablePairConfig(), nil
	default:
		return ProtectionConfig{}, &InvalidConfigurationError{Field: "preset", Value: name}
	}
}

// ValidateConfig rejects amplification outside [1, 1000] and impact caps
// outside (0, 1000] bps. Values are never clamped.
func ValidateConfig(cfg ProtectionConfig) (ValidatedConfig, error) {
	if cfg.AmplificationFactor < MinAmplification || cfg.AmplificationFactor > MaxAmplification {
		return ValidatedConfig{}, &InvalidConfigurationError{
			Field: "amplification_factor",
			Value: strconv.FormatUint(cfg.AmplificationFactor, 10),
		}
	}
	if cfg.MaxPriceImpactBps == 0 || cfg.MaxPriceImpactBps > MaxConfigurableImpactBps {
		return ValidatedConfig{}, &InvalidConfigurationError{
			Field: "max_price_impact_bps",
			Value: strconv.FormatUint(cfg.MaxPriceImpactBps, 10),
		}
	}
	return ValidatedConfig{cfg: cfg, valid: true}, nil
}
