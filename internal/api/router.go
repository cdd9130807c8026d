package api

import (
	"net/http"
	"time"

	"engagement_hub/internal/api/handler"
	"engagement_hub/internal/app/service"
	"engagement_hub/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	directoryService *service.DirectoryService,
	lifecycleService *service.LifecycleService,
	matchingService *service.MatchingService,
	scoringService *service.ScoringService,
	engagementService *service.EngagementService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the externally issued token and puts claims in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		userHandler := handler.NewUserHandler(directoryService)
		v1.Route("/users", userHandler.RegisterRoutes)

		requestHandler := handler.NewRequestHandler(lifecycleService)
		v1.Route("/requests", requestHandler.RegisterRoutes)

		competitionHandler := handler.NewCompetitionHandler(matchingService)
		v1.Route("/competitions", competitionHandler.RegisterRoutes)
		v1.Route("/invitations", competitionHandler.RegisterInvitationRoutes)

		teamHandler := handler.NewTeamHandler(scoringService)
		v1.Route("/teams", teamHandler.RegisterRoutes)

		engagementHandler := handler.NewEngagementHandler(engagementService)
		v1.Route("/engagement", engagementHandler.RegisterRoutes)
		v1.Route("/events", engagementHandler.RegisterEventRoutes)
	})

	return r
}
