package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"local_dev_secret"`
	Env         string `env:"APP_ENV" envDefault:"dev"`

	// Midtrans
	MidtransServerKey string `env:"MIDTRANS_SERVER_KEY,required"`
	MidtransIsProd    bool   `env:"MIDTRANS_IS_PROD" envDefault:"false"`

	// Notifications (disabled when empty)
	RedisAddr string `env:"REDIS_ADDR"`

	// Taaruf workflow
	TaarufFeeCoins      int64         `env:"TAARUF_FEE_COINS" envDefault:"5"`
	RequestExpiryWindow time.Duration `env:"TAARUF_REQUEST_EXPIRY" envDefault:"168h"`
	ExpirySweepInterval time.Duration `env:"TAARUF_EXPIRY_SWEEP_INTERVAL" envDefault:"1h"`
}
