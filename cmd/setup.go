package cmd

import (
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hirescore/internal/backend"
	"github.com/spigell/hirescore/internal/logger"
	"github.com/spigell/hirescore/internal/secrets"
	"github.com/spigell/hirescore/internal/session"
)

// bootstrap builds the logger and the validated config. It exits on failure.
func bootstrap() (*Config, *zap.Logger) {
	logger, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting with config",
		zap.String("api_url", config.APIURL),
		zap.Duration("timeout", config.Timeout),
		zap.Int("quiz_questions", config.Quiz.Questions),
		zap.Int("max_gaps", config.Display.MaxGaps),
	)

	return config, logger
}

func newClient(config *Config, logger *zap.Logger) *backend.Client {
	token, err := secrets.Load(secrets.Source{
		Name:     "api token",
		Value:    config.Token,
		File:     config.TokenFile,
		Optional: true,
	})
	if err != nil {
		logger.Fatal(
			"loading api token",
			zap.Error(err),
			zap.String("hint", "set HIRESCORE_TOKEN_FILE environment variable or the 'token-file' key in the configuration file"),
		)
	}

	client := backend.New(logger, backend.Options{
		APIURL:        config.APIURL,
		UserAgent:     config.UserAgent,
		Token:         token,
		Timeout:       config.Timeout,
		Breaker:       config.Breaker,
		RatePerMinute: config.RateLimit.PerMinute,
		Burst:         config.RateLimit.Burst,
	})

	logger.Info("using matching service",
		zap.String("api_url", client.APIURL),
		zap.Bool("authenticated", token != ""),
		zap.String("breaker", client.BreakerState()),
	)

	return client
}

func newOrchestrator(config *Config, logger *zap.Logger) (*session.Orchestrator, *session.Board) {
	board := session.NewBoard(config.Notifications.TTL)
	orchestrator := session.New(newClient(config, logger), board, logger, session.Config{
		QuizQuestions: config.Quiz.Questions,
	})

	return orchestrator, board
}
