package config

import (
	"time"

	"github.com/simple-bulletin/simple-bulletin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
	Table      string // table used by the mysql and postgres session storage
	Redis      Redis
}

// Redis configures the optional redis session storage.
type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func (s *Session) applyDefaults() {
	if s.ExpiryTime == 0 {
		s.ExpiryTime = 24 * time.Hour //nolint:mnd
	}

	if s.Table == "" {
		s.Table = "sessions"
	}

	if s.Redis.Prefix == "" {
		s.Redis.Prefix = "session:"
	}
}

// Board holds page sizes of the listing views.
type Board struct {
	PageSize          int // public feed and json api
	ProfilePageSize   int
	ModeratorPageSize int // both listings of the moderation dashboard
}

func (b *Board) applyDefaults() {
	if b.PageSize <= 0 {
		b.PageSize = 10
	}

	if b.ProfilePageSize <= 0 {
		b.ProfilePageSize = 10
	}

	if b.ModeratorPageSize <= 0 {
		b.ModeratorPageSize = 10
	}
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Session   Session
	Auth      Auth
	Board     Board
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool   // enable static file browsing (for development purposes only)
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	CheckAliveURI  string // path answering load balancer health checks
}
