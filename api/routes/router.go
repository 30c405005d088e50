package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mcastellanos/orghub-backend/api/controllers"
	"github.com/mcastellanos/orghub-backend/api/middleware"
	"github.com/mcastellanos/orghub-backend/internal/auth"
	"github.com/mcastellanos/orghub-backend/internal/joinrequests"
	"github.com/mcastellanos/orghub-backend/internal/memberships"
	"github.com/mcastellanos/orghub-backend/internal/organizations"
	"github.com/mcastellanos/orghub-backend/pkg/auth/session"
	"github.com/mcastellanos/orghub-backend/pkg/config"
	"github.com/mcastellanos/orghub-backend/pkg/db"
	"github.com/mcastellanos/orghub-backend/pkg/logger"
	"github.com/mcastellanos/orghub-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        redis.Pinger
	Sessions     session.AccessSessionChecker
	Auth         auth.Service
	Orgs         organizations.Service
	Memberships  memberships.Service
	JoinRequests joinrequests.Service
}

// NewRouter wires middleware, controllers, and services into the chi router.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	// The auth subrouter owns every /api/v1/auth/* path, so the token-bound
	// endpoints register here behind an inner group instead of under the
	// authed /api/v1 tree below.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

			r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
			r.Post("/switch-org", controllers.AuthSwitchOrg(p.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

		r.Post("/orgs", controllers.OrgCreate(p.Orgs, logg))
		r.Post("/orgs/{orgId}/join-requests", controllers.JoinRequestSubmit(p.JoinRequests, logg))

		// Everything below operates on the token's active organization.
		r.Route("/org", func(r chi.Router) {
			r.Use(middleware.OrgContext(logg))

			r.Get("/", controllers.OrgProfile(p.Orgs, logg))
			r.Patch("/name", controllers.OrgRename(p.Orgs, logg))
			r.Patch("/image", controllers.OrgReimage(p.Orgs, logg))
			r.Delete("/", controllers.OrgDelete(p.Orgs, logg))

			r.Route("/members", func(r chi.Router) {
				r.Get("/", controllers.MemberList(p.Memberships, logg))
				r.Patch("/{userId}/role", controllers.MemberChangeRole(p.Memberships, logg))
				r.Delete("/{userId}", controllers.MemberRemove(p.Memberships, logg))
			})

			r.Route("/join-requests", func(r chi.Router) {
				r.Get("/", controllers.JoinRequestList(p.JoinRequests, logg))
				r.Post("/{requestId}/accept", controllers.JoinRequestAccept(p.JoinRequests, logg))
				r.Delete("/{requestId}", controllers.JoinRequestDecline(p.JoinRequests, logg))
			})
		})
	})

	return r
}
