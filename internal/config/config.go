package config // package config loads application configuration from environment variables

import (
	"net"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Every value has a default so the service can
// start inside the reference docker-compose stack without any overrides.
type Config struct {
	Port        string // HTTP port to listen on (PORT)
	ServiceName string // reported by the liveness endpoint (SERVICE_NAME)
	LogLevel    string // DEBUG, INFO, WARN, ERROR or OFF (LOG_LEVEL)

	MongoURI      string // full connection string override (MONGODB_URI)
	MongoUser     string // MONGODB_USER
	MongoPassword string // MONGODB_PASSWORD
	MongoHost     string // MONGODB_HOST
	MongoPort     string // MONGODB_PORT
	MongoDatabase string // MONGODB_DATABASE

	MariaDB MariaDBConfig // optional secondary readiness check

	AMQPURL        string // RABBITMQ_URL or AMQP_URL; empty disables events
	EventsAuditLog string // EVENTS_AUDIT_LOG; file the item.created consumer appends to
}

// MariaDBConfig describes the optional SQL database pinged by /ready.  The
// check is enabled only when Host is set.
type MariaDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// Enabled reports whether a MariaDB host was configured.
func (m MariaDBConfig) Enabled() bool { return m.Host != "" }

// Load reads configuration values from the environment, after merging an
// optional .env file from the working directory.  Variables already present
// in the environment win over the file.
func Load() Config {
	_ = godotenv.Load() // a missing .env file is not an error

	return Config{
		Port:        getenv("PORT", "3000"),
		ServiceName: getenv("SERVICE_NAME", "api-service"),
		LogLevel:    getenv("LOG_LEVEL", "INFO"),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoUser:     getenv("MONGODB_USER", "app_user"),
		MongoPassword: getenv("MONGODB_PASSWORD", "AppPass123!"),
		MongoHost:     getenv("MONGODB_HOST", "mongodb"),
		MongoPort:     getenv("MONGODB_PORT", "27017"),
		MongoDatabase: getenv("MONGODB_DATABASE", "enterprise_db"),

		MariaDB: MariaDBConfig{
			Host:     os.Getenv("MARIADB_HOST"),
			Port:     getenv("MARIADB_PORT", "3306"),
			User:     getenv("MARIADB_USER", "app_user"),
			Password: getenv("MARIADB_PASSWORD", "AppPass123!"),
			Database: getenv("MARIADB_DATABASE", "enterprise_db"),
		},

		AMQPURL:        getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		EventsAuditLog: os.Getenv("EVENTS_AUDIT_LOG"),
	}
}

// MongoConnectionURI returns MongoURI when set, otherwise a mongodb:// URI
// assembled from the individual parts.  Credentials are escaped so passwords
// containing reserved characters survive.
func (c Config) MongoConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.MongoHost, c.MongoPort),
		Path:   "/" + c.MongoDatabase,
	}
	if c.MongoUser != "" {
		u.User = url.UserPassword(c.MongoUser, c.MongoPassword)
	}
	return u.String()
}

// MongoDatabaseName returns the database named in the connection string, or
// MongoDatabase when the string names none or cannot be parsed.
func (c Config) MongoDatabaseName() string {
	if cs, err := connstring.Parse(c.MongoConnectionURI()); err == nil && cs.Database != "" {
		return cs.Database
	}
	return c.MongoDatabase
}

// Addr is the listen address; the service binds on all interfaces.
func (c Config) Addr() string {
	return net.JoinHostPort("0.0.0.0", c.Port)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
