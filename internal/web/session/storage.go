package session

import (
	"github.com/gofiber/fiber/v2"
	mysqlstore "github.com/gofiber/storage/mysql/v2"
	postgresstore "github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/simple-bulletin/simple-bulletin/internal/config"
	"github.com/simple-bulletin/simple-bulletin/internal/db/dsn"
)

// NewStorage selects the session storage for cfg: redis when enabled, otherwise a table in the
// database server of the board. The sqlite engine keeps sessions in process memory and returns nil.
func NewStorage(cfg *config.Config) fiber.Storage {
	if cfg.Session.Redis.Enabled {
		log.Info().Str("addr", cfg.Session.Redis.Addr).Msg("sessions stored in redis")

		return NewRedisStorage(redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		}), cfg.Session.Redis.Prefix)
	}

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		log.Info().Str("table", cfg.Session.Table).Msg("sessions stored in mysql")

		return mysqlstore.New(mysqlstore.Config{
			ConnectionURI: dsn.MySQL(&cfg.DB),
			Table:         cfg.Session.Table,
		})
	case config.EnginePostgres:
		log.Info().Str("table", cfg.Session.Table).Msg("sessions stored in postgres")

		return postgresstore.New(postgresstore.Config{
			ConnectionURI: dsn.PostgresURI(&cfg.DB),
			Table:         cfg.Session.Table,
		})
	default:
		log.Info().Msg("sessions stored in memory")

		return nil
	}
}
