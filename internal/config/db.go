package config

import (
	"runtime"
	"time"
)

const (
	// EngineSQLite selects the pure go sqlite driver. Path is the database file.
	EngineSQLite = "sqlite"
	// EngineMySQL selects the gorm mysql driver.
	EngineMySQL = "mysql"
	// EnginePostgres selects the gorm postgres driver.
	EnginePostgres = "postgres"

	defaultPoolTimeout = 8 * time.Second
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	Path       string // sqlite database file
	GormEngine string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
	AcquireTimeout  time.Duration // per request deadline for pool acquisition and queries
	SlowThreshold   time.Duration // queries slower than this are logged at warn level
}

func (d *DB) applyPoolDefaults() {
	if d.MaxOpenConns == 0 {
		d.MaxOpenConns = 100
	}

	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = 5
	}

	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = defaultPoolTimeout
	}

	if d.ConnMaxIdleTime == 0 {
		d.ConnMaxIdleTime = defaultPoolTimeout
	}

	if d.ConnectTimeout == 0 {
		d.ConnectTimeout = defaultPoolTimeout
	}

	if d.AcquireTimeout == 0 {
		d.AcquireTimeout = defaultPoolTimeout
	}

	if d.SlowThreshold == 0 {
		d.SlowThreshold = 200 * time.Millisecond //nolint:mnd
	}

	if d.GormEngine == EngineSQLite && d.Path == "" {
		d.Path = "simple_bulletin.db"
	}
}

// Auth holds password hashing settings.
type Auth struct {
	// HashWorkers bounds how many argon2id computations run at the same time.
	HashWorkers int
	Argon2      Argon2
}

// Argon2 mirrors argon2id.Params so it can be set from the config file.
type Argon2 struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func (a *Auth) applyDefaults() {
	if a.HashWorkers <= 0 {
		a.HashWorkers = runtime.NumCPU()
	}

	if a.Argon2.Memory == 0 {
		a.Argon2.Memory = 64 * 1024 //nolint:mnd
	}

	if a.Argon2.Iterations == 0 {
		a.Argon2.Iterations = 1
	}

	if a.Argon2.Parallelism == 0 {
		a.Argon2.Parallelism = 2 //nolint:mnd
	}

	if a.Argon2.SaltLength == 0 {
		a.Argon2.SaltLength = 16 //nolint:mnd
	}

	if a.Argon2.KeyLength == 0 {
		a.Argon2.KeyLength = 32 //nolint:mnd
	}
}
