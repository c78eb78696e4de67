package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings normalizes boolean environment values
	"time"    // time is used for cache and latency durations
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, and a single boolean that decides whether the South African
// integration providers (PayFast, Clickatell, OpenWeather, EskomSePush,
// SendGrid) run against the built-in simulators or real implementations.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	JWTSecret       string        // secret used to sign JWTs
	AccessTTLMin    int           // access token time-to-live in minutes
	RefreshTTLDays  int           // refresh token time-to-live in days
	BcryptCost      int           // bcrypt cost for password hashing
	UseMockAPIs     bool          // when true all external providers are simulated
	MockLatencyMS   int           // base latency unit for simulator delays, in milliseconds
	EventCacheTTL   time.Duration // lifetime of the cached published-events listing
	RateLimitPerMin int           // per-client request cap per minute; 0 disables
	RedisAddr       string        // redis host:port
	RedisPassword   string        // redis password (optional)
	RedisDB         int           // redis database number
	RedisTLS        bool          // connect to redis over TLS
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Optional values fall
// back to defaults suitable for local development.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:      mustInt("BCRYPT_COST"),
		UseMockAPIs:     getenv("USE_MOCK_APIS", "true") == "true",
		MockLatencyMS:   atoi(getenv("MOCK_LATENCY_MS", "100")),
		EventCacheTTL:   parseDur(getenv("EVENT_CACHE_TTL", "30s")),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "0")),
		RedisAddr:       redisAddr(),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         atoi(getenv("REDIS_DB", "0")),
		RedisTLS:        boolEnv("REDIS_TLS"),
	}
}

// redisAddr resolves the Redis address: REDIS_ADDR wins, then
// REDIS_HOST with REDIS_PORT, then the local default.
func redisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if host != "" && port != "" {
		return host + ":" + port
	}
	return "localhost:6379"
}

func boolEnv(key string) bool {
	v := os.Getenv(key)
	return strings.EqualFold(v, "true") || v == "1"
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
