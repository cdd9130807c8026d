package handler

import (
	"encoding/json"
	"net/http"

	"engagement_hub/internal/api/middleware"
	"engagement_hub/internal/app/service"
	"engagement_hub/internal/common"

	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	scoringService *service.ScoringService
}

func NewTeamHandler(ss *service.ScoringService) *TeamHandler {
	return &TeamHandler{scoringService: ss}
}

func (h *TeamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.leaderboard) // public

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Post("/", h.createTeam)
		authRouter.Post("/{teamID}/files", h.recordSubmissionFile)

		authRouter.Group(func(judgeRouter chi.Router) {
			judgeRouter.Use(middleware.JudgeOnly)
			judgeRouter.Post("/{teamID}/score", h.recordScore)
		})
	})
}

func (h *TeamHandler) createTeam(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTeamInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	team, err := h.scoringService.CreateTeam(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) recordSubmissionFile(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	team, err := h.scoringService.RecordSubmissionFile(r.Context(), teamID, req.Name)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) recordScore(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")

	var req struct {
		Breakdown map[string]float64 `json:"breakdown"`
		Feedback  string             `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	team, err := h.scoringService.RecordScore(r.Context(), teamID, req.Breakdown, req.Feedback)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scoringService.Leaderboard(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
