package config

type App struct {
	Port               string `mapstructure:"APP_PORT"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTTTLHours        int    `mapstructure:"JWT_TTL_HOURS"`
	OpenLibraryBaseURL string `mapstructure:"OPENLIBRARY_BASE_URL"`
	Env                string `mapstructure:"APP_ENV"`
}
