package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type VoiceConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	Expiry            time.Duration `mapstructure:"expiry"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	SpeakingLimit     int           `mapstructure:"speaking_limit"`
	SpeakingWindow    time.Duration `mapstructure:"speaking_window"`
}

type LiveKitConfig struct {
	URL       string        `mapstructure:"url"`
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type Config struct {
	Mode        string        `mapstructure:"mode"`
	Port        int           `mapstructure:"port"`
	LogLevel    string        `mapstructure:"log_level"`
	ReadLimit   int64         `mapstructure:"read_limit"`
	PingPeriod  time.Duration `mapstructure:"ping_period"`
	Secret      string        `mapstructure:"secret"`
	CORSOrigins []string      `mapstructure:"cors_origins"`

	Voice   VoiceConfig   `mapstructure:"voice"`
	LiveKit LiveKitConfig `mapstructure:"livekit"`
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of the defaults.
// Environment variables override both: livekit.api_key is LIVEKIT_API_KEY.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Str("module", "config").Msg("loaded .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "huddle-dev-secret")
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})

	v.SetDefault("voice.heartbeat_interval", "15s")
	v.SetDefault("voice.expiry", "30s")
	v.SetDefault("voice.sweep_interval", "15s")
	v.SetDefault("voice.speaking_limit", 20)
	v.SetDefault("voice.speaking_window", "1s")

	v.SetDefault("livekit.url", "ws://localhost:7880")
	v.SetDefault("livekit.api_key", "")
	v.SetDefault("livekit.api_secret", "")
	v.SetDefault("livekit.token_ttl", "10h")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Voice.HeartbeatInterval <= 0 || cfg.Voice.SweepInterval <= 0 {
		return nil, fmt.Errorf("voice.heartbeat_interval %s and voice.sweep_interval %s must be positive", cfg.Voice.HeartbeatInterval, cfg.Voice.SweepInterval)
	}
	if cfg.Voice.Expiry < 2*cfg.Voice.HeartbeatInterval {
		return nil, fmt.Errorf("voice.expiry %s must cover two heartbeat intervals of %s", cfg.Voice.Expiry, cfg.Voice.HeartbeatInterval)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Msg("config ready")
	return &cfg, nil
}

// ClientConfig drives the headless voicectl client.
type ClientConfig struct {
	Server    string `mapstructure:"server"`
	User      string `mapstructure:"user"`
	Name      string `mapstructure:"name"`
	Avatar    string `mapstructure:"avatar"`
	Community string `mapstructure:"community"`
	Text      string `mapstructure:"text"`
	Voice     string `mapstructure:"voice"`
	Muted     bool   `mapstructure:"muted"`
	Deafened  bool   `mapstructure:"deafened"`

	HeartbeatInterval time.Duration `mapstructure:"heartbeat-interval"`
}

// ClientFlags declares the voicectl flags.
func ClientFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("voicectl", pflag.ContinueOnError)
	fs.String("server", "http://localhost:8080", "huddle server base url")
	fs.String("user", "", "user id to announce")
	fs.String("name", "", "display name")
	fs.String("avatar", "", "avatar url")
	fs.String("community", "default", "community (server) id for presence")
	fs.String("text", "", "text channel to mark as active")
	fs.String("voice", "", "voice channel to join")
	fs.Bool("muted", false, "join muted")
	fs.Bool("deafened", false, "join deafened")
	fs.Duration("heartbeat-interval", 15*time.Second, "voice heartbeat interval")
	return fs
}

// LoadClient binds parsed flags into viper. HUDDLE_* environment
// variables fill in anything not given on the command line.
func LoadClient(fs *pflag.FlagSet) (*ClientConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("huddle")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("user is required")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.User
	}
	return &cfg, nil
}
