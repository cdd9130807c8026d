package handler

import (
	"encoding/json"
	"net/http"

	"engagement_hub/internal/api/middleware"
	"engagement_hub/internal/app/service"
	"engagement_hub/internal/common"
	"engagement_hub/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type RequestHandler struct {
	lifecycleService *service.LifecycleService
}

func NewRequestHandler(ls *service.LifecycleService) *RequestHandler {
	return &RequestHandler{lifecycleService: ls}
}

func (h *RequestHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.createRequest)
	r.Get("/mentor", h.listForMentor)

	r.Group(func(mentorRouter chi.Router) {
		mentorRouter.Use(middleware.MentorOnly)
		mentorRouter.Post("/{requestID}/accept", h.acceptRequest)
		mentorRouter.Post("/{requestID}/confirm", h.confirmSession)
		mentorRouter.Post("/{requestID}/decline", h.declineRequest)
	})
}

func (h *RequestHandler) createRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	req.StudentID = userID

	created, err := h.lifecycleService.CreateRequest(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *RequestHandler) acceptRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	req, err := h.lifecycleService.AcceptRequest(r.Context(), requestID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, req)
}

func (h *RequestHandler) confirmSession(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	var session model.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	req, err := h.lifecycleService.ConfirmSession(r.Context(), requestID, session)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, req)
}

func (h *RequestHandler) declineRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	req, err := h.lifecycleService.DeclineRequest(r.Context(), requestID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, req)
}

func (h *RequestHandler) listForMentor(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	statusFilter := model.RequestStatus(r.URL.Query().Get("status"))

	requests, err := h.lifecycleService.ListRequestsForMentor(r.Context(), userID, statusFilter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, requests)
}
