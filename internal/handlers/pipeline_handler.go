package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"creatorflow/internal/models"
	"creatorflow/internal/repository"
	"creatorflow/internal/service"
)

// PipelineHandler serves the creator activation pipeline API: creators,
// funnel state, access transitions, invitations, and the delivery and
// audit trails behind them
type PipelineHandler struct {
	creators   *repository.CreatorRepository
	deliveries *repository.DeliveryRepository
	audit      *repository.AuditRepository
	access     *repository.AccessRepository
	accessSvc  *service.AccessService
	funnelSvc  *service.FunnelService
	inviteSvc  *service.InviteService
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(
	creators *repository.CreatorRepository,
	deliveries *repository.DeliveryRepository,
	audit *repository.AuditRepository,
	access *repository.AccessRepository,
	accessSvc *service.AccessService,
	funnelSvc *service.FunnelService,
	inviteSvc *service.InviteService,
) *PipelineHandler {
	return &PipelineHandler{
		creators:   creators,
		deliveries: deliveries,
		audit:      audit,
		access:     access,
		accessSvc:  accessSvc,
		funnelSvc:  funnelSvc,
		inviteSvc:  inviteSvc,
	}
}

type creatorView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ManagerID *int64 `json:"manager_id,omitempty"`
}

func newCreatorView(c *models.Creator) creatorView {
	return creatorView{ID: c.ID, Name: c.Name, Email: c.Email, ManagerID: c.ManagerID}
}

// CreateCreator registers a new creator from an application
func (h *PipelineHandler) CreateCreator(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		ManagerID *int64 `json:"manager_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondErrorKind(w, http.StatusBadRequest, "validation", "name and email are required")
		return
	}

	creator, err := h.creators.Create(req.Name, req.Email, req.ManagerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to create creator", err)
		return
	}

	respondJSON(w, http.StatusCreated, newCreatorView(creator))
}

// ListCreators returns all creators
func (h *PipelineHandler) ListCreators(w http.ResponseWriter, r *http.Request) {
	creators, err := h.creators.List()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to list creators", err)
		return
	}

	views := make([]creatorView, 0, len(creators))
	for i := range creators {
		views = append(views, newCreatorView(&creators[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetCreator returns one creator with their current access level
func (h *PipelineHandler) GetCreator(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	creator, err := h.creators.GetByID(creatorID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to get creator", err)
		return
	}
	if creator == nil {
		respondErrorKind(w, http.StatusNotFound, "not_found", "creator not found")
		return
	}

	grant, err := h.access.Get(creatorID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to get access grant", err)
		return
	}
	level := models.AccessNone
	if grant != nil {
		level = grant.Level
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"creator":      newCreatorView(creator),
		"access_level": level,
	})
}

// AssignManager sets or clears a creator's assigned manager
func (h *PipelineHandler) AssignManager(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		ManagerID *int64 `json:"manager_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := h.creators.AssignManager(creatorID, req.ManagerID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to assign manager", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStage returns the creator's derived funnel stage
func (h *PipelineHandler) GetStage(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	stage, err := h.funnelSvc.Stage(creatorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"creator_id": creatorID,
		"stage":      stage,
	})
}

// GetRanking returns creators ordered most urgent first. Without an ids
// query parameter every creator is ranked.
func (h *PipelineHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	var creatorIDs []int64
	if raw := r.URL.Query().Get("ids"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid ids parameter")
			return
		}
		creatorIDs = ids
	} else {
		creators, err := h.creators.List()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to list creators", err)
			return
		}
		for i := range creators {
			creatorIDs = append(creatorIDs, creators[i].ID)
		}
	}

	ranked, err := h.funnelSvc.UrgencyRanking(creatorIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ranked)
}

// GrantAccess applies a forward access transition
func (h *PipelineHandler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Level  string `json:"level"`
		Method string `json:"method"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	method := models.GrantMethod(req.Method)
	if method == "" {
		method = models.GrantManualEarly
	}

	grant, err := h.accessSvc.GrantAccess(OperatorFromContext(r.Context()), creatorID, models.AccessLevel(req.Level), method, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, grant)
}

// RevokeAccess lowers a creator from full_access to meeting_only
func (h *PipelineHandler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	grant, err := h.accessSvc.RevokeAccess(OperatorFromContext(r.Context()), creatorID, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, grant)
}

// SendInvitation dispatches an onboarding invitation to the creator
func (h *PipelineHandler) SendInvitation(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entry, err := h.inviteSvc.SendInvitation(r.Context(), creatorID)
	if err != nil && entry == nil {
		respondServiceError(w, err)
		return
	}
	if err != nil {
		// Delivery failed after retries; surface the failed entry so the
		// operator can re-trigger, with the error kind alongside.
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"delivery": entry,
			"error":    err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// ListDeliveries returns the delivery log for a creator, newest first
func (h *PipelineHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.deliveries.ListByCreator(creatorID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to list deliveries", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ListFailedDeliveries returns recent failed deliveries needing manual
// re-trigger, for the dashboard
func (h *PipelineHandler) ListFailedDeliveries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.deliveries.ListFailed(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to list failed deliveries", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ListAuditLog returns the access transition history for a creator
func (h *PipelineHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.audit.ListByCreator(creatorID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "failed to list audit log", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respondErrorKind(w, http.StatusBadRequest, "bad_request", "invalid "+name)
		return 0, false
	}
	return id, true
}

func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
