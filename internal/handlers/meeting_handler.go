package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"creatorflow/internal/service"
)

// MeetingHandler drives the meeting lifecycle over HTTP
type MeetingHandler struct {
	meetingSvc *service.MeetingService
	meetings   service.MeetingStore
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingSvc *service.MeetingService, meetings service.MeetingStore) *MeetingHandler {
	return &MeetingHandler{meetingSvc: meetingSvc, meetings: meetings}
}

// GetMeeting returns a meeting record by its own id
func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	meeting, err := h.meetings.GetByID(meetingID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to get meeting", err)
		return
	}
	if meeting == nil {
		respondErrorKind(w, http.StatusNotFound, "not_found", "meeting not found")
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// GetCreatorMeeting returns the meeting record for a creator, if any
func (h *MeetingHandler) GetCreatorMeeting(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	meeting, err := h.meetings.GetByCreator(creatorID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to get meeting", err)
		return
	}
	if meeting == nil {
		respondErrorKind(w, http.StatusNotFound, "not_found", "no meeting for creator")
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// Book schedules a creator's meeting slot
func (h *MeetingHandler) Book(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondErrorKind(w, http.StatusBadRequest, "validation", "date must be YYYY-MM-DD")
		return
	}
	if req.Time == "" {
		respondErrorKind(w, http.StatusBadRequest, "validation", "time is required")
		return
	}

	meeting, err := h.meetingSvc.Book(creatorID, date, req.Time)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// Confirm moves a pending meeting to confirmed
func (h *MeetingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	meeting, err := h.meetingSvc.Confirm(meetingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// RequestReschedule records a proposed new slot from the creator
func (h *MeetingHandler) RequestReschedule(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Date   string `json:"date"`
		Time   string `json:"time"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondErrorKind(w, http.StatusBadRequest, "validation", "date must be YYYY-MM-DD")
		return
	}

	meeting, err := h.meetingSvc.RequestReschedule(meetingID, date, req.Time, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// ApproveReschedule adopts the proposed slot
func (h *MeetingHandler) ApproveReschedule(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	meeting, err := h.meetingSvc.ApproveReschedule(meetingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// DeclineReschedule rejects the proposed slot
func (h *MeetingHandler) DeclineReschedule(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	meeting, err := h.meetingSvc.DeclineReschedule(meetingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// Cancel marks the meeting cancelled
func (h *MeetingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	meeting, err := h.meetingSvc.Cancel(meetingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}

// Complete marks the meeting completed and grants the creator full access
func (h *MeetingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	meetingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	meeting, err := h.meetingSvc.Complete(OperatorFromContext(r.Context()), meetingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meeting)
}
