package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string        `env:"APP_ENV" envDefault:"dev"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    string        `env:"PORT" envDefault:"5000"`
	DatabaseURL string        `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns  int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	Migrate     bool          `env:"APP_MIGRATE" envDefault:"true"`
	JWTSecret   string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"trading-wallet"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"24h"`
	RateRPS     int           `env:"RATE_RPS" envDefault:"100"`
	RedisAddr   string        `env:"REDIS_ADDR"`

	PaystackSecret  string `env:"PAYSTACK_SECRET,required,notEmpty"`
	PaystackBaseURL string `env:"PAYSTACK_BASE_URL" envDefault:"https://api.paystack.co"`
	BinanceBaseURL  string `env:"BINANCE_BASE_URL" envDefault:"https://api.binance.com"`
	OandaBaseURL    string `env:"OANDA_BASE_URL" envDefault:"https://api-fxtrade.oanda.com"`
	OandaToken      string `env:"OANDA_API_TOKEN"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}
