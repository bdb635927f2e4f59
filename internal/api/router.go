package api

import (
	"net/http"
	"time"

	"contesthub/internal/api/handler"
	"contesthub/internal/api/middleware"
	"contesthub/internal/app/service"
	"contesthub/internal/platform/identity"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Services struct {
	Users          *service.UserService
	Contests       *service.ContestService
	Participations *service.ParticipationService
	Submissions    *service.SubmissionService
	Payments       *service.PaymentService
	Leaderboard    *service.LeaderboardService
}

func NewRouter(svc Services, verifier identity.Verifier, roles middleware.RoleLookup, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ContestHub is running"))
	})

	guard := handler.Guard{
		Authenticate: middleware.Authenticator(verifier),
		Users:        roles,
	}

	handler.NewUserHandler(svc.Users, guard).RegisterRoutes(r)
	handler.NewContestHandler(svc.Contests, guard).RegisterRoutes(r)
	handler.NewParticipationHandler(svc.Participations, guard).RegisterRoutes(r)
	handler.NewPaymentHandler(svc.Payments, guard).RegisterRoutes(r)
	handler.NewSubmissionHandler(svc.Submissions, guard).RegisterRoutes(r)
	handler.NewLeaderboardHandler(svc.Leaderboard).RegisterRoutes(r)

	return r
}
