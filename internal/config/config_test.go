package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"tradeGuard/internal/protection"
)

func protectionFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("preset", protection.PresetDefault, "")
	flags.Uint64("amplification", 0, "")
	flags.Uint64("max-impact-bps", 0, "")
	flags.Bool("virtual-reserves", false, "")
	flags.Bool("dynamic-fees", false, "")
	return flags
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProtectionUnchangedFlagsKeepPreset(t *testing.T) {
	settings, err := LoadProtection(writeConfig(t, "preset: stable\n"), protectionFlags())
	require.NoError(t, err)
	require.Equal(t, "stable", settings.Preset)
	require.Equal(t, protection.StablePairConfig(), settings.Config)
}

func TestLoadProtectionFlagOverrides(t *testing.T) {
	flags := protectionFlags()
	require.NoError(t, flags.Parse([]string{"--amplification=250", "--dynamic-fees=false"}))

	settings, err := LoadProtection(writeConfig(t, "max-impact-bps: 120\n"), flags)
	require.NoError(t, err)

	cfg, err := settings.Validate()
	require.NoError(t, err)
	require.Equal(t, uint64(250), cfg.AmplificationFactor())
	require.Equal(t, uint64(120), cfg.MaxPriceImpactBps())
	require.True(t, cfg.VirtualReservesEnabled())
	require.False(t, cfg.DynamicFeesEnabled())
}

func TestLoadProtectionEnvOverride(t *testing.T) {
	t.Setenv("GUARD_AMPLIFICATION", "0")

	settings, err := LoadProtection(writeConfig(t, "{}\n"), protectionFlags())
	require.NoError(t, err)

	_, err = settings.Validate()
	require.ErrorIs(t, err, protection.ErrInvalidConfiguration)
}

func TestLoadProtectionUnknownPreset(t *testing.T) {
	_, err := LoadProtection(writeConfig(t, "preset: turbo\n"), protectionFlags())
	require.ErrorIs(t, err, protection.ErrInvalidConfiguration)
}

func TestLoadEvaluateDefaults(t *testing.T) {
	cfg, err := LoadEvaluate(writeConfig(t, "in: ./requests.jsonl\nvolume-window: 15m\n"), nil)
	require.NoError(t, err)
	require.Equal(t, SourceFile, cfg.Source)
	require.Equal(t, "./requests.jsonl", cfg.In)
	require.Equal(t, "./data/decisions.jsonl", cfg.Out)
	require.Equal(t, 500, cfg.BatchSize)
	require.Equal(t, 15*time.Minute, cfg.VolumeWindow)
	require.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	require.Equal(t, protection.DefaultConfig(), cfg.Protection.Config)
}

func TestLoadEvaluateMissingConfigFile(t *testing.T) {
	_, err := LoadEvaluate(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}
