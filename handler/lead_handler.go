package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bizpilot/bizpilot-be/repository"
	"github.com/bizpilot/bizpilot-be/types"
	"github.com/google/uuid"
)

// Enqueuer schedules a lead for background processing.
type Enqueuer interface {
	Enqueue(leadID string) error
}

type LeadHandler struct {
	leads     repository.LeadRepo
	processor Enqueuer
}

func NewLeadHandler(leads repository.LeadRepo, processor Enqueuer) *LeadHandler {
	return &LeadHandler{
		leads:     leads,
		processor: processor,
	}
}

// HandleCreateLead ingests a lead and queues it for classification and
// message generation.
func (h *LeadHandler) HandleCreateLead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req types.CreateLeadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			sendError(w, "Lead name is required", http.StatusBadRequest)
			return
		}
		if req.Source == "" {
			req.Source = types.LeadSourceAPI
		}

		lead := &types.Lead{
			ID:             uuid.NewString(),
			Email:          req.Email,
			Phone:          req.Phone,
			Name:           req.Name,
			Company:        req.Company,
			Source:         req.Source,
			SourceMetadata: req.SourceMetadata,
		}
		if err := h.leads.CreateLead(r.Context(), lead); err != nil {
			sendError(w, "Failed to create lead: "+err.Error(), http.StatusInternalServerError)
			return
		}

		if err := h.processor.Enqueue(lead.ID); err != nil {
			sendError(w, "Lead stored but could not be queued: "+err.Error(), http.StatusServiceUnavailable)
			return
		}

		sendCreated(w, lead)
	}
}

func (h *LeadHandler) HandleGetLead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			sendError(w, "Lead id is required", http.StatusBadRequest)
			return
		}
		lead, err := h.leads.GetLead(r.Context(), id)
		if err != nil {
			sendError(w, "Lead not found", http.StatusNotFound)
			return
		}
		sendSuccess(w, lead)
	}
}

func (h *LeadHandler) HandleListLeads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		intent := types.LeadIntent(r.URL.Query().Get("intent"))
		leads, err := h.leads.ListLeads(r.Context(), intent, 100)
		if err != nil {
			sendError(w, "Failed to list leads: "+err.Error(), http.StatusInternalServerError)
			return
		}
		sendSuccess(w, leads)
	}
}
