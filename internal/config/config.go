package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceChain    = "chain"
)

// EvaluateConfig holds configuration for the evaluate command.
type EvaluateConfig struct {
	Source        string
	In            string
	Out           string
	Rejections    string
	PGDSN         string
	RPCURL        string
	ChainID       uint64
	Pool          string
	Block         uint64
	AmountIn      string
	TradeValueUSD string
	Price0USD     string
	Price1USD     string
	Concentration uint64
	Utilization   string
	BatchSize     int
	VolumeWindow  time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	LogLevel      string
	Protection    ProtectionSettings
}

// LoadEvaluate merges config file, environment variables, and flags into EvaluateConfig.
func LoadEvaluate(cfgFile string, flags *pflag.FlagSet) (EvaluateConfig, error) {
	v := viper.New()
	v.SetDefault("source", SourceFile)
	v.SetDefault("out", "./data/decisions.jsonl")
	v.SetDefault("rejections", "./data/rejections.jsonl")
	v.SetDefault("batch-size", 500)
	v.SetDefault("volume-window", time.Hour)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	setProtectionDefaults(v)

	if err := read(v, cfgFile, flags); err != nil {
		return EvaluateConfig{}, err
	}

	settings, err := loadProtectionSettings(v)
	if err != nil {
		return EvaluateConfig{}, err
	}

	cfg := EvaluateConfig{
		Source:        strings.ToLower(v.GetString("source")),
		In:            v.GetString("in"),
		Out:           v.GetString("out"),
		Rejections:    v.GetString("rejections"),
		PGDSN:         v.GetString("pg-dsn"),
		RPCURL:        v.GetString("rpc"),
		ChainID:       v.GetUint64("chain-id"),
		Pool:          v.GetString("pool"),
		Block:         v.GetUint64("block"),
		AmountIn:      v.GetString("amount-in"),
		TradeValueUSD: v.GetString("trade-value-usd"),
		Price0USD:     v.GetString("price0-usd"),
		Price1USD:     v.GetString("price1-usd"),
		Concentration: v.GetUint64("concentration"),
		Utilization:   v.GetString("utilization"),
		BatchSize:     v.GetInt("batch-size"),
		VolumeWindow:  v.GetDuration("volume-window"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		LogLevel:      v.GetString("log-level"),
		Protection:    settings,
	}

	return cfg, nil
}

// LoadProtection loads only the protection settings, for the
// single-shot commands.
func LoadProtection(cfgFile string, flags *pflag.FlagSet) (ProtectionSettings, error) {
	v := viper.New()
	setProtectionDefaults(v)
	if err := read(v, cfgFile, flags); err != nil {
		return ProtectionSettings{}, err
	}
	return loadProtectionSettings(v)
}

func read(v *viper.Viper, cfgFile string, flags *pflag.FlagSet) error {
	v.SetEnvPrefix("GUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("read config: %w", err)
			}
		}
	}
	return nil
}
