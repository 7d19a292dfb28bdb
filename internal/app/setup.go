// Package app contains the application setup for the product service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/internal/transport/rest"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const operationName = "product-service"

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	APIKey         string
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// SetupDependencies builds the product service on an empty in-memory store.
func SetupDependencies(publisher messaging.Publisher, apiKey string, metrics http.Handler, logger *slog.Logger) *Dependencies {
	pService := service.NewService(store.NewInMemoryStore(), publisher)

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
		APIKey:         apiKey,
		Metrics:        metrics,
	}
}

// SetupHttpHandler initializes the router and routes for the product service, wrapped in tracing.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, operationName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// wireRoutes sets up the HTTP routes for the product service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	productHandler := rest.NewHandler(deps.ProductService, deps.APIKey, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(server.FromConfig(cfg.HTTPServer), SetupHttpHandler(deps))
}
