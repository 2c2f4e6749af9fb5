package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps collects what NewRouter wires together.
type RouterDeps struct {
	Sessions          SessionServiceInterface
	Tasks             TaskServiceInterface
	Logger            logging.Logger
	Metrics           metrics.Recorder
	CORSAllowedOrigin string
}

// NewRouter builds the public JSON API.
//
// Middleware order: RequestID → CORS → Logging → Metrics → Recovery, and
// the Gate on the task routes only. Recovery sits innermost so a panic
// still reaches the access log and metrics as a 500.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(NewLoggingMiddleware(deps.Logger))
	r.Use(NewMetricsMiddleware(deps.Metrics))
	r.Use(NewRecoveryMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.Sessions)
	taskHandler := NewTaskHandler(deps.Tasks)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Server is running!"))
	})

	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/refresh", authHandler.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(NewGate(deps.Sessions))

		r.Post("/addTask", taskHandler.AddTask)
		r.Get("/getTasks", taskHandler.GetTasks)
		r.Delete("/deleteTask", taskHandler.DeleteTask)
		r.Put("/updateTask", taskHandler.UpdateTask)
	})

	return r
}
