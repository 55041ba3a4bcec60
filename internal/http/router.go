package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"schedulemanager/internal/files"
	"schedulemanager/internal/handlers"
	"schedulemanager/internal/migration"
	"schedulemanager/internal/storage"
	"schedulemanager/internal/workspace"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB        *sql.DB
	Migration *migration.Service
	Board     *workspace.Service
	FileStore files.Store
	Assets    storage.AssetStore
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	importHandler := handlers.NewMigrationHandler(deps.Migration)
	boardHandler := handlers.NewBoardHandler(deps.Board)
	healthHandler := handlers.NewHealthHandler(deps.DB)
	fileHandler := handlers.NewFileHandler(deps.FileStore, deps.Assets)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/migration/import", importHandler)
		r.Method(http.MethodGet, "/board", boardHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	r.Method(http.MethodGet, "/files/{name}", fileHandler)

	return r
}
