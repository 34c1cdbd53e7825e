package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. Required values are
// enforced by must(); optional subsystems (SMTP) degrade when left
// unset.
type Config struct {
    Env           string // application environment (e.g. "dev", "prod")
    Port          string // HTTP port to listen on
    DBUser        string // database username
    DBPass        string // database password (optional)
    DBHost        string // database host address
    DBPort        string // database port number
    DBName        string // database name
    JWTSecret     string // secret used to sign JWTs
    AccessTTLMin  int    // access token time-to-live in minutes
    ResetTTLMin   int    // one-time reset code time-to-live in minutes
    BcryptCost    int    // bcrypt cost for password hashing
    DefaultRoleID uint64 // role assigned to self-signup accounts

    SMTPHost string // SMTP server host (empty disables outbound mail)
    SMTPPort int    // SMTP server port
    SMTPUser string // SMTP username
    SMTPPass string // SMTP password
    MailFrom string // From address on outbound mail
}

// Load reads configuration values from environment variables and
// returns a Config. Missing required variables cause the program to
// exit with a fatal log message.
func Load() Config {
    return Config{
        Env:           must("APP_ENV"),
        Port:          must("APP_PORT"),
        DBUser:        must("DB_USER"),
        DBPass:        os.Getenv("DB_PASS"), // empty allowed
        DBHost:        must("DB_HOST"),
        DBPort:        must("DB_PORT"),
        DBName:        must("DB_NAME"),
        JWTSecret:     must("JWT_SECRET"),
        AccessTTLMin:  mustInt("ACCESS_TOKEN_TTL_MIN"),
        ResetTTLMin:   envInt("RESET_TOKEN_TTL_MIN", 10),
        BcryptCost:    mustInt("BCRYPT_COST"),
        DefaultRoleID: uint64(envInt("DEFAULT_ROLE_ID", 1)),

        SMTPHost: os.Getenv("SMTP_HOST"),
        SMTPPort: envInt("SMTP_PORT", 587),
        SMTPUser: os.Getenv("SMTP_USER"),
        SMTPPass: os.Getenv("SMTP_PASS"),
        MailFrom: envStr("MAIL_FROM", "no-reply@localhost"),
    }
}

// must retrieves the value of a required environment variable. If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an
// integer. If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
