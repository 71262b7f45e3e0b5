package config

import (
	"github.com/spf13/viper"

	"tradeGuard/internal/protection"
)

// ProtectionSettings is a named preset plus optional field overrides.
type ProtectionSettings struct {
	Preset string
	Config protection.ProtectionConfig
}

// Validate passes the resolved configuration through protection.ValidateConfig.
func (s ProtectionSettings) Validate() (protection.ValidatedConfig, error) {
	return protection.ValidateConfig(s.Config)
}

func setProtectionDefaults(v *viper.Viper) {
	v.SetDefault("preset", protection.PresetDefault)
}

// loadProtectionSettings starts from the preset and applies only the
// override keys that were explicitly set.
func loadProtectionSettings(v *viper.Viper) (ProtectionSettings, error) {
	preset := v.GetString("preset")
	cfg, err := protection.PresetByName(preset)
	if err != nil {
		return ProtectionSettings{}, err
	}

	if isExplicit(v, "amplification") {
		cfg.AmplificationFactor = v.GetUint64("amplification")
	}
	if isExplicit(v, "max-impact-bps") {
		cfg.MaxPriceImpactBps = v.GetUint64("max-impact-bps")
	}
	if isExplicit(v, "virtual-reserves") {
		cfg.VirtualReservesEnabled = v.GetBool("virtual-reserves")
	}
	if isExplicit(v, "dynamic-fees") {
		cfg.DynamicFeesEnabled = v.GetBool("dynamic-fees")
	}

	return ProtectionSettings{Preset: preset, Config: cfg}, nil
}

// isExplicit reports whether key came from a changed flag, the
// environment, or the config file. Override keys carry no viper default.
func isExplicit(v *viper.Viper, key string) bool {
	return v.IsSet(key)
}
