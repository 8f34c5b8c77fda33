package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	JWTSecret       string
	JWTExpire       string // duration such as "30m", "720h", or bare minutes
	JWTCookieExpire int    // days

	FileUploadPath string
	MaxFileUpload  int64 // bytes

	GeocoderURL    string
	GeocoderAPIKey string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FromName     string

	RateLimit  int           // max requests per window per client
	RateWindow time.Duration // window size
}

// Load reads the environment into a Config, applying defaults where a
// variable is unset. It never fails; required values are checked by the
// caller (main) so tests can construct partial configs freely.
func Load() Config {
	return Config{
		Port:        getenv("PORT", "5000"),
		Env:         getenv("APP_ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTExpire:       getenv("JWT_EXPIRE", "720h"),
		JWTCookieExpire: getint("JWT_COOKIE_EXPIRE", 30),

		FileUploadPath: getenv("FILE_UPLOAD_PATH", "./public/uploads"),
		MaxFileUpload:  getint64("MAX_FILE_UPLOAD", 1000000),

		GeocoderURL:    getenv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromEmail:    getenv("FROM_EMAIL", "noreply@campdirectory.io"),
		FromName:     getenv("FROM_NAME", "CampDirectory"),

		RateLimit:  getint("RATE_LIMIT", 100),
		RateWindow: getduration("RATE_WINDOW", 10*time.Minute),
	}
}

// Production reports whether the server should behave as a production
// deployment (secure cookies, quieter logging).
func (c Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getint64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
