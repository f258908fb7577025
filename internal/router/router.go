package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/handlers"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/middleware"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	subjectHandler *handlers.SubjectHandler,
	fileHandler *handlers.FileHandler,
	chatHandler *handlers.ChatHandler,
	studyHandler *handlers.StudyHandler,
	aiLabHandler *handlers.AiLabHandler,
	boostHandler *handlers.BoostHandler,
	reviewHandler *handlers.ReviewHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout and profile require auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/subjects", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", subjectHandler.Create)
			r.Get("/", subjectHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", subjectHandler.Get)
				r.Delete("/", subjectHandler.Delete)

				r.Post("/files", fileHandler.Upload)
				r.Get("/files", fileHandler.List)
				r.Delete("/files/{fileId}", fileHandler.Delete)
				r.Post("/youtube", fileHandler.ImportYouTube)

				r.Post("/chat", chatHandler.Ask)

				r.Post("/study", studyHandler.Generate)
				r.Post("/study/grade", studyHandler.Grade)

				r.Post("/ai-lab", aiLabHandler.Generate)
				r.Post("/ai-lab/coach", aiLabHandler.Coach)

				r.Post("/boost/search", boostHandler.Search)
				r.Post("/boost/explain", boostHandler.Explain)
				r.Post("/boost/planner", boostHandler.Planner)

				r.Get("/review", reviewHandler.Queue)
				r.Post("/review", reviewHandler.Seed)
				r.Post("/review/{cardId}", reviewHandler.Rate)
			})
		})

		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
