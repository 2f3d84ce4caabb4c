package config

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "KIGURUMI"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv   = "KIGURUMI_APP_ENV"
	EnvPort     = "KIGURUMI_APP_PORT"
	EnvDBDSN    = "KIGURUMI_DB_DSN"
	EnvDBHost   = "KIGURUMI_DB_HOST"
	EnvDBUser   = "KIGURUMI_DB_USER"
	EnvDBName   = "KIGURUMI_DB_NAME"
	EnvRedisURL = "KIGURUMI_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
