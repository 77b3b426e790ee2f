package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hirescore/internal/backend"
	"github.com/spigell/hirescore/internal/reconcile"
	"github.com/spigell/hirescore/internal/session"
)

const (
	app = "hirescore"
)

type Config struct {
	APIURL        string                 `mapstructure:"api-url"`
	UserAgent     string                 `mapstructure:"user-agent"`
	Timeout       time.Duration          `mapstructure:"timeout"`
	Token         string                 `mapstructure:"token"`
	TokenFile     string                 `mapstructure:"token-file"`
	Quiz          *QuizConfig            `mapstructure:"quiz"`
	Display       *DisplayConfig         `mapstructure:"display"`
	Notifications *NotificationsConfig   `mapstructure:"notifications"`
	Breaker       *backend.BreakerConfig `mapstructure:"breaker"`
	RateLimit     *RateLimitConfig       `mapstructure:"rate-limit"`
}

type QuizConfig struct {
	Questions int `mapstructure:"questions"`
}

type DisplayConfig struct {
	MaxGaps int `mapstructure:"max-gaps"`
}

type NotificationsConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per-minute"`
	Burst     int `mapstructure:"burst"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hirescore is a cli for scoring how well a resume and a skills quiz fit a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"api-url":    "HIRESCORE_API_BASE",
		"token":      "HIRESCORE_TOKEN",
		"token-file": "HIRESCORE_TOKEN_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("quiz.questions", session.DefaultQuizQuestions)
	viper.SetDefault("display.max-gaps", reconcile.DefaultMaxGaps)
	viper.SetDefault("notifications.ttl", 5*time.Second)
	viper.SetDefault("breaker.enabled", true)
	viper.SetDefault("breaker.max-requests", 1)
	viper.SetDefault("breaker.interval", time.Minute)
	viper.SetDefault("breaker.timeout", 30*time.Second)
	viper.SetDefault("breaker.min-requests", 3)
	viper.SetDefault("breaker.failure-threshold", 0.6)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hirescore.yaml in current directory)")
	rootCmd.PersistentFlags().String("api-url", "", "base url of the matching service (default http://localhost:8000)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A missing .env is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional unless it was asked for explicitly.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if err := config.validate(); err != nil {
		return config, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Quiz == nil {
		c.Quiz = &QuizConfig{Questions: session.DefaultQuizQuestions}
	}
	if c.Display == nil {
		c.Display = &DisplayConfig{MaxGaps: reconcile.DefaultMaxGaps}
	}
	if c.Notifications == nil {
		c.Notifications = &NotificationsConfig{}
	}
	if c.RateLimit == nil {
		c.RateLimit = &RateLimitConfig{}
	}

	if q := c.Quiz.Questions; q < session.MinQuizQuestions || q > session.MaxQuizQuestions {
		return fmt.Errorf("quiz.questions must be between %d and %d, got %d",
			session.MinQuizQuestions, session.MaxQuizQuestions, q)
	}

	if g := c.Display.MaxGaps; g < 1 || g > 10 {
		return fmt.Errorf("display.max-gaps must be between 1 and 10, got %d", g)
	}

	if c.Timeout < 0 || c.Notifications.TTL < 0 {
		return errors.New("timeout and notifications.ttl must not be negative")
	}

	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate-limit values must not be negative")
	}

	if c.Breaker != nil && c.Breaker.Enabled &&
		(c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1) {
		return fmt.Errorf("breaker.failure-threshold must be in (0, 1], got %v", c.Breaker.FailureThreshold)
	}

	return nil
}
