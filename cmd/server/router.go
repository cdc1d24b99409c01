package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/catalog-api/internal/api"
	apiMiddleware "github.com/phrazzld/catalog-api/internal/api/middleware"
	"github.com/phrazzld/catalog-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if app.config.Server.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(app.config.Server.RequestTimeout()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{apiMiddleware.TraceHeader},
		MaxAge:         300,
	}))

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	storeHandler := api.NewStoreHandler(app.catalogService, app.logger)
	itemHandler := api.NewItemHandler(app.catalogService, app.logger)
	tagHandler := api.NewTagHandler(app.taggingService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.authService, app.logger)

	if app.authLimiter == nil {
		app.authLimiter = apiMiddleware.NewKeyedRateLimiter(
			app.config.Server.AuthRatePerMinute, app.config.Server.AuthRateBurst)
		app.addCloser(app.authLimiter.Stop)
	}

	// Credential endpoints
	r.Group(func(r chi.Router) {
		r.Use(apiMiddleware.RateLimitByIP(app.authLimiter))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})
	r.Post("/refresh", authHandler.Refresh)
	r.With(authMiddleware.Authenticate).Post("/logout", authHandler.Logout)

	r.Route("/store", func(r chi.Router) {
		r.Get("/", storeHandler.ListStores)
		r.Post("/", storeHandler.CreateStore)
		r.Get("/{storeID}", storeHandler.GetStore)
		r.Delete("/{storeID}", storeHandler.DeleteStore)
		r.Get("/{storeID}/tag", tagHandler.ListStoreTags)
		r.Post("/{storeID}/tag", tagHandler.CreateStoreTag)
	})

	r.Route("/item", func(r chi.Router) {
		r.Get("/{itemID}", itemHandler.GetItem)
		r.Post("/{itemID}/tag/{tagID}", tagHandler.LinkTag)
		r.Delete("/{itemID}/tag/{tagID}", tagHandler.UnlinkTag)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/", itemHandler.ListItems)
			r.Put("/{itemID}", itemHandler.UpdateItem)
			r.With(apiMiddleware.RequireFresh).Post("/", itemHandler.CreateItem)
			r.With(apiMiddleware.RequireAdmin).Delete("/{itemID}", itemHandler.DeleteItem)
		})
	})

	r.Get("/tag/{tagID}", tagHandler.GetTag)
	r.Delete("/tag/{tagID}", tagHandler.DeleteTag)

	r.Get("/user/{userID}", userHandler.GetUser)
	r.Delete("/user/{userID}", userHandler.DeleteUser)

	r.Get("/health", app.handleHealth)

	return r
}

// handleHealth reports whether the database answers.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		if err := app.db.PingContext(r.Context()); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
