package handler

import (
	"encoding/json"
	"net/http"

	"engagement_hub/internal/api/middleware"
	"engagement_hub/internal/app/service"
	"engagement_hub/internal/common"

	"github.com/go-chi/chi/v5"
)

type CompetitionHandler struct {
	matchingService *service.MatchingService
}

func NewCompetitionHandler(ms *service.MatchingService) *CompetitionHandler {
	return &CompetitionHandler{matchingService: ms}
}

func (h *CompetitionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createCompetition)
	})
}

// RegisterInvitationRoutes mounts the invitation lifecycle endpoints.
func (h *CompetitionHandler) RegisterInvitationRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Group(func(judgeRouter chi.Router) {
		judgeRouter.Use(middleware.JudgeOnly)
		judgeRouter.Post("/{invitationID}/respond", h.respondToInvitation)
	})

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/{invitationID}/acknowledge", h.acknowledgeResponse)
	})
}

func (h *CompetitionHandler) createCompetition(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCompetitionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.matchingService.CreateCompetitionWithInvitations(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *CompetitionHandler) respondToInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID := chi.URLParam(r, "invitationID")

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	inv, err := h.matchingService.RespondToInvitation(r.Context(), invitationID, req.Accept)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, inv)
}

func (h *CompetitionHandler) acknowledgeResponse(w http.ResponseWriter, r *http.Request) {
	invitationID := chi.URLParam(r, "invitationID")

	inv, err := h.matchingService.AcknowledgeResponse(r.Context(), invitationID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, inv)
}
