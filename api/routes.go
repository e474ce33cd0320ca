package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rh "github.com/coreybb/menuorders/route-handlers"
	"github.com/coreybb/menuorders/webutil"
)

const (
	tokenPath       = "/token"
	ordersBasePath  = "/orders"
	itemsBasePath   = "/items"
	healthCheckPath = "/healthz"
)

const (
	paramID   = "id"
	paramName = "name"
)

const requestTimeout = 60 * time.Second

func SetupRoutes(
	verifier TokenVerifier,
	tokenHandler *rh.TokenHandler,
	orderHandler *rh.OrderHandler,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Log every request
	r.Use(middleware.Recoverer) // Recover from panics
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/", handleRoot)
	r.Get(healthCheckPath, handleHealthCheck)
	r.Post(tokenPath, webutil.MakeHandler(tokenHandler.HandleLogin))

	// Everything below needs a valid bearer token
	r.Group(func(r chi.Router) {
		r.Use(RequireBearer(verifier))
		configureOrderRoutes(r, orderHandler)
		configureItemRoutes(r, orderHandler)
	})

	return r
}

// Helper for constructing paths with a parameter
func pathWithParam(basePath string, paramName string) string {
	if basePath == "" {
		return "/{" + paramName + "}"
	}
	return basePath + "/{" + paramName + "}"
}

// --- Order Routes ---
func configureOrderRoutes(r chi.Router, handler *rh.OrderHandler) {
	r.Route(ordersBasePath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetOrders))
		r.Post("/", webutil.MakeHandler(handler.HandleCreateOrder))
		r.Get(pathWithParam("", paramID), webutil.MakeHandler(handler.HandleGetOrder)) // GET /orders/{id}
	})
}

// --- Item Routes (lookup and removal by item name) ---
func configureItemRoutes(r chi.Router, handler *rh.OrderHandler) {
	specificItemPath := pathWithParam(itemsBasePath, paramName) // "/items/{name}"

	r.Get(specificItemPath, webutil.MakeHandler(handler.HandleGetItemsByName))
	r.Delete(specificItemPath, webutil.MakeHandler(handler.HandleDeleteItemsByName))
}

// --- Utility Functions ---

func handleRoot(w http.ResponseWriter, r *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Menu orders API"})
}

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
