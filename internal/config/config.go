package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full service configuration, read from the environment with
// an optional .env file on top.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Game Game `envPrefix:"GAME_"`
}

// Game holds the timing and housekeeping knobs of the session orchestrator.
type Game struct {
	StartCountdown    time.Duration `env:"START_COUNTDOWN" envDefault:"5s"`
	TurnDuration      time.Duration `env:"TURN_DURATION" envDefault:"60s"`
	ChallengeDuration time.Duration `env:"CHALLENGE_DURATION" envDefault:"40s"`
	NightDuration     time.Duration `env:"NIGHT_DURATION" envDefault:"30s"`
	VotingDuration    time.Duration `env:"VOTING_DURATION" envDefault:"45s"`

	RoomTTL      time.Duration `env:"ROOM_TTL" envDefault:"30m"`
	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"5m"`

	// Per-connection websocket command budget.
	CommandRate  float64 `env:"COMMAND_RATE" envDefault:"5"`
	CommandBurst int     `env:"COMMAND_BURST" envDefault:"10"`
}

// Load reads .env if present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
