// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/barangayhub/internal/app/features/health"
	"github.com/dalemusser/barangayhub/internal/app/features/listscreen"
	screenprefsstore "github.com/dalemusser/barangayhub/internal/app/store/screenprefs"
	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/dalemusser/barangayhub/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It boots the template engine, then mounts the
// health check, the metrics endpoint and the console screens behind the
// staff session middleware.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	return newRouter(appCfg, deps, coreCfg.Env == "prod", logger)
}

// newRouter builds the routes; the template engine must already be in use
// for the HTML pages to render.
func newRouter(appCfg AppConfig, deps DBDeps, secure bool, logger *zap.Logger) (http.Handler, error) {
	sessionMgr, err := auth.NewManager(auth.Config{
		SessionKey:   appCfg.SessionKey,
		SessionName:  appCfg.SessionName,
		Domain:       appCfg.SessionDomain,
		Secure:       secure,
		IDHeader:     appCfg.StaffIDHeader,
		NameHeader:   appCfg.StaffNameHeader,
		RoleHeader:   appCfg.StaffRoleHeader,
		DevStaffID:   appCfg.DevStaffID,
		DevStaffRole: appCfg.DevStaffRole,
	}, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	svc := deps.Services
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := health.NewHandler(deps.MongoClient, svc.API, logger)
	r.Mount("/health", health.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler(svc.Registry))

	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.LoadStaff)

		screensHandler := listscreen.NewHandler(svc.Catalog, svc.Screens,
			screenprefsstore.New(deps.MongoDatabase), logger)
		r.Mount("/screens", listscreen.Routes(screensHandler))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/screens/", http.StatusSeeOther)
		})
	})

	return r, nil
}
