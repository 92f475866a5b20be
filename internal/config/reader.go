package config

import "github.com/ilyakaznacheev/cleanenv"

// ReadEnv populates a Config from the process environment (plus whatever
// godotenv already loaded from .env).
func ReadEnv() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
