package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JackRamey/MTGLeague/middleware"
	"github.com/JackRamey/MTGLeague/models"
	"github.com/JackRamey/MTGLeague/services"
)

const dateLayout = "2006-01-02"

type EventHandler struct {
	eventService  services.EventService
	leagueService services.LeagueService
}

func NewEventHandler(eventService services.EventService, leagueService services.LeagueService) *EventHandler {
	return &EventHandler{
		eventService:  eventService,
		leagueService: leagueService,
	}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := h.requireEditable(w, r)
	if !ok {
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), leagueID, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"event": event}

	// The date range and temporal class are derived from stages; both
	// are omitted for an event that has none yet.
	start, err := h.eventService.StartDate(r.Context(), eventID)
	if err == nil {
		end, endErr := h.eventService.EndDate(r.Context(), eventID)
		if endErr != nil {
			mapServiceErrorToHTTP(w, r, endErr)
			return
		}
		response["start_date"] = start.Format(dateLayout)
		response["end_date"] = end.Format(dateLayout)
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListEvents lists a league's events, optionally filtered with
// ?timing=upcoming|in_progress|past.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var events []*models.Event
	if timing := r.URL.Query().Get("timing"); timing != "" {
		events, err = h.eventService.EventsByTiming(r.Context(), leagueID, models.EventTiming(timing))
	} else {
		events, err = h.eventService.ListEvents(r.Context(), leagueID)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) AddStage(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if !h.requireEventEditable(w, r, eventID) {
		return
	}

	var input struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	startDate, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid start_date, expected %s", dateLayout))
		return
	}
	endDate, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid end_date, expected %s", dateLayout))
		return
	}

	stage, err := h.eventService.AddStage(r.Context(), eventID, startDate, endDate)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stages, err := h.eventService.ListStages(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stages": stages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinEvent enrolls the authenticated user as a participant.
func (h *EventHandler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.eventService.AddParticipant(r.Context(), eventID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddParticipant enrolls another user; restricted to league managers.
func (h *EventHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if !h.requireEventEditable(w, r, eventID) {
		return
	}

	var input struct {
		UserID int `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.eventService.AddParticipant(r.Context(), eventID, input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.eventService.ListParticipants(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) requireEditable(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return 0, false
	}
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, false
	}

	editable, err := h.leagueService.EditableByUser(r.Context(), leagueID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return 0, false
	}
	if !editable {
		forbiddenResponse(w, r, services.ErrForbiddenOperation.Error())
		return 0, false
	}
	return leagueID, true
}

// requireEventEditable checks league manage rights through the event's
// league.
func (h *EventHandler) requireEventEditable(w http.ResponseWriter, r *http.Request, eventID int) bool {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return false
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}

	editable, err := h.leagueService.EditableByUser(r.Context(), event.LeagueID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return false
	}
	if !editable {
		forbiddenResponse(w, r, services.ErrForbiddenOperation.Error())
		return false
	}
	return true
}
