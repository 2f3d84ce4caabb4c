package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Reservation  ReservationConfig
	AdminAuth    AdminAuthConfig
	Email        EmailConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Reservation.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KIGURUMI_APP_ENV" required:"true"`
	Port         string `envconfig:"KIGURUMI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KIGURUMI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KIGURUMI_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"KIGURUMI_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"KIGURUMI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"KIGURUMI_DB_DSN"`
	Driver string `envconfig:"KIGURUMI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KIGURUMI_DB_HOST"`
	LegacyPort     int    `envconfig:"KIGURUMI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KIGURUMI_DB_USER"`
	LegacyPassword string `envconfig:"KIGURUMI_DB_PASSWORD"`
	LegacyName     string `envconfig:"KIGURUMI_DB_NAME"`
	LegacySSLMode  string `envconfig:"KIGURUMI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KIGURUMI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KIGURUMI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KIGURUMI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KIGURUMI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KIGURUMI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KIGURUMI_REDIS_ADDR"`
	Password     string        `envconfig:"KIGURUMI_REDIS_PASSWORD"`
	DB           int           `envconfig:"KIGURUMI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KIGURUMI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KIGURUMI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KIGURUMI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KIGURUMI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KIGURUMI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ReservationConfig carries every tunable the availability evaluator and
// the reservation transaction receive as explicit inputs. Nothing in the
// core reads these from ambient state.
type ReservationConfig struct {
	MinAdvanceDays int `envconfig:"KIGURUMI_RESERVATION_MIN_ADVANCE_DAYS" default:"1"`
	MaxAdvanceDays int `envconfig:"KIGURUMI_RESERVATION_MAX_ADVANCE_DAYS" default:"90"`

	// ClosedWeekdays lists weekday names on which no reservations are
	// accepted regardless of stock, e.g. "wednesday" or "sunday,monday".
	ClosedWeekdays []string `envconfig:"KIGURUMI_RESERVATION_CLOSED_WEEKDAYS" default:"wednesday"`

	DailyCapPerPhone int           `envconfig:"KIGURUMI_RESERVATION_DAILY_CAP_PER_PHONE" default:"3"`
	RateLimit        int           `envconfig:"KIGURUMI_RESERVATION_RATE_LIMIT" default:"5"`
	RateLimitWindow  time.Duration `envconfig:"KIGURUMI_RESERVATION_RATE_LIMIT_WINDOW" default:"1h"`
	SubmitIPLimit    int           `envconfig:"KIGURUMI_RESERVATION_SUBMIT_IP_LIMIT" default:"20"`

	// GlobalRateLimit caps submission attempts across all callers per
	// window, shielding the database when the site gets hammered.
	GlobalRateLimit int `envconfig:"KIGURUMI_RESERVATION_GLOBAL_RATE_LIMIT" default:"120"`

	CodeMaxAttempts int           `envconfig:"KIGURUMI_RESERVATION_CODE_MAX_ATTEMPTS" default:"5"`
	LockTimeout     time.Duration `envconfig:"KIGURUMI_RESERVATION_LOCK_TIMEOUT" default:"3s"`

	// LegacyCalendarSync mirrors bookings into calendar overrides the way
	// the previous deployment did: consuming the last unit writes an
	// unavailable override, cancellation resets it.
	LegacyCalendarSync bool `envconfig:"KIGURUMI_RESERVATION_LEGACY_CALENDAR_SYNC" default:"false"`
}

func (r ReservationConfig) validate() error {
	if r.MinAdvanceDays < 0 {
		return fmt.Errorf("min advance days cannot be negative")
	}
	if r.MaxAdvanceDays < r.MinAdvanceDays {
		return fmt.Errorf("max advance days must be >= min advance days")
	}
	for _, day := range r.ClosedWeekdays {
		if _, err := ParseWeekday(day); err != nil {
			return err
		}
	}
	return nil
}

// ParseWeekday converts a lowercase English weekday name into time.Weekday.
func ParseWeekday(value string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("invalid weekday %q", value)
}

// ClosedWeekdaySet resolves the configured names into weekday values.
func (r ReservationConfig) ClosedWeekdaySet() []time.Weekday {
	days := make([]time.Weekday, 0, len(r.ClosedWeekdays))
	for _, name := range r.ClosedWeekdays {
		if day, err := ParseWeekday(name); err == nil {
			days = append(days, day)
		}
	}
	return days
}

// AdminAuthConfig protects the staff endpoints with HTTP basic auth. The
// password is stored as an Argon2id hash, never in the clear.
type AdminAuthConfig struct {
	Enabled      bool   `envconfig:"KIGURUMI_ADMIN_AUTH_ENABLED" default:"true"`
	Username     string `envconfig:"KIGURUMI_ADMIN_AUTH_USERNAME"`
	PasswordHash string `envconfig:"KIGURUMI_ADMIN_AUTH_PASSWORD_HASH"`

	ArgonMemoryKB    int `envconfig:"KIGURUMI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KIGURUMI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KIGURUMI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KIGURUMI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KIGURUMI_ARGON_KEY_LEN" default:"32"`
}

type EmailConfig struct {
	SMTPHost     string `envconfig:"KIGURUMI_SMTP_HOST"`
	SMTPPort     int    `envconfig:"KIGURUMI_SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"KIGURUMI_SMTP_USERNAME"`
	SMTPPassword string `envconfig:"KIGURUMI_SMTP_PASSWORD"`

	FromName  string `envconfig:"KIGURUMI_EMAIL_FROM_NAME" default:"Kigurumi Reserve"`
	FromEmail string `envconfig:"KIGURUMI_EMAIL_FROM"`

	AdminRecipients []string `envconfig:"KIGURUMI_EMAIL_ADMIN_RECIPIENTS"`

	SendCustomerNotification bool `envconfig:"KIGURUMI_EMAIL_SEND_CUSTOMER" default:"true"`
	SendAdminNotification    bool `envconfig:"KIGURUMI_EMAIL_SEND_ADMIN" default:"true"`
	MockMode                 bool `envconfig:"KIGURUMI_EMAIL_MOCK_MODE" default:"false"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KIGURUMI_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"KIGURUMI_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"KIGURUMI_CRON_LOCK_TTL" default:"25h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
