package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/paperbark/kindwords/internal/backup"
	"github.com/paperbark/kindwords/internal/handler"
	"github.com/paperbark/kindwords/internal/middleware"
	"github.com/paperbark/kindwords/internal/session"
	"github.com/paperbark/kindwords/internal/store"
)

// Config holds the server's request-policy knobs.
type Config struct {
	// CORSOrigin is the single origin allowed to make credentialed
	// cross-origin requests. Empty disables CORS headers.
	CORSOrigin string
}

type Server struct {
	userStore   *store.UserStore
	thingStore  *store.ThingStore
	sessions    *session.Manager
	authH       *handler.AuthHandler
	thingH      *handler.ThingHandler
	healthH     *handler.HealthHandler
	backupH     *handler.BackupHandler
	rateLimiter *middleware.RateLimiter
	cfg         Config
	logger      *slog.Logger
}

func New(db *sql.DB, sessions *session.Manager, backupMgr *backup.Manager, cfg Config, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	thingStore := store.NewThingStore(db)

	s := &Server{
		userStore:   userStore,
		thingStore:  thingStore,
		sessions:    sessions,
		authH:       handler.NewAuthHandler(userStore, thingStore, sessions, logger.With("component", "auth")),
		thingH:      handler.NewThingHandler(thingStore, logger.With("component", "thing")),
		healthH:     handler.NewHealthHandler(),
		rateLimiter: middleware.NewRateLimiter(),
		cfg:         cfg,
		logger:      logger,
	}
	if backupMgr != nil {
		s.backupH = handler.NewBackupHandler(backupMgr, logger.With("component", "backup"))
	}
	return s
}

// RateLimiter returns the rate limiter for periodic cleanup sweeps.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Router builds the full handler chain. Per request, outermost-in:
// request logging, CORS, gzip, then per-route rate-limit tier and
// session validation (private routes only) ahead of the handler.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Liveness and health: unauthenticated, unthrottled.
	mux.HandleFunc("GET /{$}", s.healthH.Root)
	mux.HandleFunc("GET /server/health", s.healthH.Health)
	if s.backupH != nil {
		mux.HandleFunc("POST /server/backup", s.backupH.Trigger)
	}

	// Auth routes
	mux.Handle("POST /api/auth", s.public(middleware.TierStrict, s.authH.Signup))
	mux.Handle("GET /api/auth/check-email/{email}", s.public(middleware.TierEmailCheck, s.authH.CheckEmail))
	mux.Handle("POST /api/auth/login", s.public(middleware.TierStrict, s.authH.Login))
	mux.Handle("POST /api/auth/logout", s.public(middleware.TierLight, s.authH.Logout))
	mux.Handle("PUT /api/auth/password", s.private(middleware.TierStrict, s.authH.UpdatePassword))
	mux.Handle("DELETE /api/auth", s.private(middleware.TierLight, s.authH.DeleteAccount))
	mux.Handle("GET /api/auth", s.private(middleware.TierLight, s.authH.Me))

	// Thing routes. Update and export ride the strict tier: both are
	// higher-cost or higher-risk than the other single-item calls.
	mux.Handle("POST /api/things", s.private(middleware.TierLight, s.thingH.Create))
	mux.Handle("GET /api/things", s.private(middleware.TierLight, s.thingH.List))
	mux.Handle("GET /api/things/export", s.private(middleware.TierStrict, s.thingH.Export))
	mux.Handle("GET /api/things/{id}", s.private(middleware.TierLight, s.thingH.Get))
	mux.Handle("PUT /api/things/{id}", s.private(middleware.TierStrict, s.thingH.Update))
	mux.Handle("DELETE /api/things/{id}", s.private(middleware.TierLight, s.thingH.Delete))
	mux.Handle("DELETE /api/things", s.private(middleware.TierStrict, s.thingH.DeleteAll))

	var h http.Handler = gzhttp.GzipHandler(mux)
	h = middleware.CORS(s.cfg.CORSOrigin)(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

// public wraps a handler with its rate-limit tier.
func (s *Server) public(tier middleware.Tier, h http.HandlerFunc) http.Handler {
	return middleware.Throttle(s.rateLimiter, tier)(h)
}

// private additionally requires a valid session. The limiter runs
// first so throttled requests never cost a token validation or user
// lookup.
func (s *Server) private(tier middleware.Tier, h http.HandlerFunc) http.Handler {
	authed := middleware.RequireAuth(s.sessions, s.userStore)(h)
	return middleware.Throttle(s.rateLimiter, tier)(authed)
}
