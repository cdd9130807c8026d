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

type EngagementHandler struct {
	engagementService *service.EngagementService
}

func NewEngagementHandler(es *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: es}
}

func (h *EngagementHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Get("/trend", h.trend)
	r.Get("/summary", h.summary)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/samples", h.recordSample)
		adminRouter.Get("/inactive-alumni", h.inactiveAlumni)
	})
}

// RegisterEventRoutes mounts the event/lecture endpoints.
func (h *EngagementHandler) RegisterEventRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Post("/{eventID}/rsvp", h.rsvp)
	r.Post("/{eventID}/checkin", h.checkIn)
	r.Get("/{eventID}/attendance", h.attendanceReport)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createEvent)
	})
}

func (h *EngagementHandler) trend(w http.ResponseWriter, r *http.Request) {
	report, err := h.engagementService.Trend(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, report)
}

func (h *EngagementHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engagementService.Summary(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *EngagementHandler) recordSample(w http.ResponseWriter, r *http.Request) {
	var sample model.EngagementSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.engagementService.RecordSample(r.Context(), sample); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, sample)
}

func (h *EngagementHandler) inactiveAlumni(w http.ResponseWriter, r *http.Request) {
	report, err := h.engagementService.DetectInactiveAlumni(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, report)
}

func (h *EngagementHandler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req service.CreateEventInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	event, err := h.engagementService.CreateEvent(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, event)
}

func (h *EngagementHandler) rsvp(w http.ResponseWriter, r *http.Request) {
	h.markEvent(w, r, false)
}

func (h *EngagementHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	h.markEvent(w, r, true)
}

func (h *EngagementHandler) markEvent(w http.ResponseWriter, r *http.Request, attended bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	eventID := chi.URLParam(r, "eventID")

	var event *model.Event
	var err error
	if attended {
		event, err = h.engagementService.CheckIn(r.Context(), eventID, userID)
	} else {
		event, err = h.engagementService.RSVP(r.Context(), eventID, userID)
	}
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, event)
}

func (h *EngagementHandler) attendanceReport(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	report, err := h.engagementService.BuildAttendanceReport(r.Context(), eventID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, report)
}
