package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() App {
	// .env is optional, real env wins either way
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("JWT_TTL_HOURS", 24)
	viper.SetDefault("OPENLIBRARY_BASE_URL", "https://openlibrary.org")
	viper.SetDefault("APP_ENV", "dev")

	cfg := App{
		Port:               viper.GetString("APP_PORT"),
		DatabaseURL:        must("DATABASE_URL"),
		JWTSecret:          must("JWT_SECRET"),
		JWTTTLHours:        viper.GetInt("JWT_TTL_HOURS"),
		OpenLibraryBaseURL: viper.GetString("OPENLIBRARY_BASE_URL"),
		Env:                viper.GetString("APP_ENV"),
	}
	return cfg
}

func must(k string) string {
	v := viper.GetString(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
