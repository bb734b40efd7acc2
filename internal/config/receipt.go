package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ReceiptConfig controls how printed receipts look.
type ReceiptConfig struct {
	ShopName     string   `mapstructure:"shop_name"`
	AddressLines []string `mapstructure:"address_lines"`
	Footer       string   `mapstructure:"footer"`
	Width        int      `mapstructure:"width"`
	Currency     string   `mapstructure:"currency"`
}

const (
	MinReceiptWidth = 20
	MaxReceiptWidth = 80
)

func DefaultReceiptConfig() ReceiptConfig {
	return ReceiptConfig{
		ShopName: "SALESDESK",
		Footer:   "Thank you for your purchase!",
		Width:    32,
	}
}

type ReceiptConfigHolder struct {
	current atomic.Value // holds ReceiptConfig
}

// NewStaticReceiptConfigHolder returns a holder that never reloads.
func NewStaticReceiptConfigHolder(cfg ReceiptConfig) *ReceiptConfigHolder {
	holder := &ReceiptConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewReceiptConfigHolder(cfg Config, log *zap.Logger) (*ReceiptConfigHolder, error) {
	log = log.Named("receipt.config")
	v := viper.New()

	if path := strings.TrimSpace(cfg.ReceiptConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("receipt")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/salesdesk")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SALESDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReceiptConfig()
	v.SetDefault("receipt.shop_name", defaults.ShopName)
	v.SetDefault("receipt.footer", defaults.Footer)
	v.SetDefault("receipt.width", defaults.Width)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var current ReceiptConfig
	if err := v.UnmarshalKey("receipt", &current); err != nil {
		return nil, err
	}
	if err := validateReceiptConfig(current); err != nil {
		return nil, err
	}

	holder := NewStaticReceiptConfigHolder(current)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReceiptConfig
		if err := v.UnmarshalKey("receipt", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateReceiptConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *ReceiptConfigHolder) Get() ReceiptConfig {
	return h.current.Load().(ReceiptConfig)
}

func validateReceiptConfig(cfg ReceiptConfig) error {
	if strings.TrimSpace(cfg.ShopName) == "" {
		return errors.New("receipt.shop_name cannot be empty")
	}
	if cfg.Width < MinReceiptWidth || cfg.Width > MaxReceiptWidth {
		return errors.New("receipt.width must be between 20 and 80")
	}
	return nil
}
