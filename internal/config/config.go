// Package config loads zbackup's optional configuration file.
//
// Everything here is a default: command-line flags override any value the
// file provides. The file is looked up as zbackup.toml in /etc/zbackup and
// the current directory unless an explicit path is given; a missing file
// is not an error.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds run defaults.
type Config struct {
	// Prefix is prepended to the tier in snapshot names.
	Prefix string `mapstructure:"prefix"`

	// TimeFormat is the snapshot-name timestamp format passed to zsnap.
	TimeFormat string `mapstructure:"timeformat"`

	// DeleteTiers are pruned before replication.
	DeleteTiers []string `mapstructure:"delete-tiers"`

	// EmailOnFailure is the recipient for failure notifications; empty
	// disables them.
	EmailOnFailure string `mapstructure:"email-on-failure"`

	// SMTPAddr is the mail submission endpoint for failure
	// notifications.
	SMTPAddr string `mapstructure:"smtp-addr"`

	// ReplicateMatch is "tier" (replicate only when the replicate
	// property names the tier being run) or "any".
	ReplicateMatch string `mapstructure:"replicate-match"`

	// LogFile, when set, receives the run log with rotation.
	LogFile string `mapstructure:"log-file"`

	// ZsnapOptions and ZreplicateOptions are extra options passed
	// verbatim to the respective tools.
	ZsnapOptions      string `mapstructure:"zsnap-options"`
	ZreplicateOptions string `mapstructure:"zreplicate-options"`
}

// Load reads the configuration file at path, or searches the default
// locations when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("prefix", "auto-")
	v.SetDefault("smtp-addr", "localhost:25")
	v.SetDefault("replicate-match", "tier")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("zbackup")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/zbackup")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
