package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bizpilot/bizpilot-be/repository"
	"github.com/bizpilot/bizpilot-be/service"
	"github.com/bizpilot/bizpilot-be/types"
	"github.com/google/uuid"
)

type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
	repo      repository.KnowledgeRepo
}

func NewKnowledgeHandler(knowledge *service.KnowledgeService, repo repository.KnowledgeRepo) *KnowledgeHandler {
	return &KnowledgeHandler{
		knowledge: knowledge,
		repo:      repo,
	}
}

func (h *KnowledgeHandler) HandleSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req types.SearchKnowledgeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			sendError(w, "Query is required", http.StatusBadRequest)
			return
		}
		if req.Limit == 0 {
			req.Limit = 5
		}

		contexts, err := h.knowledge.SearchText(r.Context(), req.Query, req.DocType, req.Limit)
		if err != nil {
			sendError(w, "Search failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		sendSuccess(w, contexts)
	}
}

// HandleImport stores and indexes a batch of knowledge documents.
func (h *KnowledgeHandler) HandleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req types.ImportKnowledgeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if len(req.Documents) == 0 {
			sendError(w, "No documents provided", http.StatusBadRequest)
			return
		}

		docs := make([]*types.KnowledgeDocument, 0, len(req.Documents))
		for i := range req.Documents {
			doc := req.Documents[i]
			if doc.Content == "" {
				sendError(w, "Document content is required", http.StatusBadRequest)
				return
			}
			if doc.ID == "" {
				doc.ID = uuid.NewString()
			}
			if doc.DocType == "" {
				doc.DocType = types.DocTypeOther
			}
			doc.Active = true
			doc.EmbeddingID = ""
			if err := h.repo.CreateDocument(r.Context(), &doc); err != nil {
				sendError(w, "Failed to store document: "+err.Error(), http.StatusInternalServerError)
				return
			}
			docs = append(docs, &doc)
		}

		indexed, err := h.knowledge.Index(r.Context(), docs, false)
		if err != nil {
			if errors.Is(err, types.ErrConfiguration) {
				sendError(w, err.Error(), http.StatusInternalServerError)
				return
			}
			sendError(w, "Documents stored but indexing failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		sendCreated(w, map[string]int{"imported": len(docs), "indexed": indexed})
	}
}

// HandleReindex re-runs indexing over the active knowledge base.
func (h *KnowledgeHandler) HandleReindex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		force := r.URL.Query().Get("force") == "true"
		indexed, err := h.knowledge.IndexAll(r.Context(), force)
		if err != nil {
			sendError(w, "Reindex failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		sendSuccess(w, map[string]int{"indexed": indexed})
	}
}

func (h *KnowledgeHandler) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			sendError(w, "Document id is required", http.StatusBadRequest)
			return
		}
		if err := h.knowledge.Delete(r.Context(), id); err != nil {
			sendError(w, "Delete failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		sendSuccess(w, nil)
	}
}
