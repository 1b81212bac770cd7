package config

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"taskdog"`
	Password string `env:"PASSWORD" envDefault:"taskdog"`
	Name     string `env:"NAME"     envDefault:"taskdog"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production

	// AutoMigrate controls whether the application applies pending
	// migrations during startup.
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// MaxOpenConns / MaxIdleConns size the database/sql pool.
	MaxOpenConns int `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int `env:"MAX_IDLE_CONNS" envDefault:"5"`
}

// RedisConfig contains Redis configuration. Redis is optional: when disabled,
// sessions, the gantt view cache, and the optimize run lock fall back to
// in-process implementations and the service runs single-instance.
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
