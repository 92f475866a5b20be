package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/jmasdeu/task-manager-api/internal/config"
)

// MustReadEnv panics on a missing required setting (the signing secret or
// any Postgres field), which aborts boot before any route is served.
func MustReadEnv() {
	cfg, err := config.ReadEnv()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Msg("read env")

	config.SetGlobal(cfg)
}
