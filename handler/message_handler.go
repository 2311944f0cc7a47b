package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bizpilot/bizpilot-be/repository"
	"github.com/bizpilot/bizpilot-be/types"
)

type MessageHandler struct {
	messages repository.MessageRepo
	sender   SendFunc
}

// SendFunc dispatches a message by id; wired to the worker's SendMessage.
type SendFunc func(r *http.Request, messageID string) error

func NewMessageHandler(messages repository.MessageRepo, sender SendFunc) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		sender:   sender,
	}
}

func (h *MessageHandler) HandleListMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := types.MessageStatus(r.URL.Query().Get("status"))
		messages, err := h.messages.ListMessages(r.Context(), status, 100)
		if err != nil {
			sendError(w, "Failed to list messages: "+err.Error(), http.StatusInternalServerError)
			return
		}
		sendSuccess(w, messages)
	}
}

// HandleReview applies a human review action: approve, edit or reject.
// Approval triggers sending.
func (h *MessageHandler) HandleReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req types.ReviewMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.MessageID == "" {
			sendError(w, "Message id is required", http.StatusBadRequest)
			return
		}

		switch req.Action {
		case "approve":
			if err := h.messages.UpdateStatus(r.Context(), req.MessageID, types.MessageApproved); err != nil {
				sendError(w, "Approve failed: "+err.Error(), http.StatusInternalServerError)
				return
			}
			if h.sender != nil {
				if err := h.sender(r, req.MessageID); err != nil {
					sendError(w, "Approved but send failed: "+err.Error(), http.StatusInternalServerError)
					return
				}
			}
		case "edit":
			if req.EditedBody == "" {
				sendError(w, "Edited body is required", http.StatusBadRequest)
				return
			}
			if err := h.messages.ApplyEdit(r.Context(), req.MessageID, req.EditedSubject, req.EditedBody); err != nil {
				sendError(w, "Edit failed: "+err.Error(), http.StatusInternalServerError)
				return
			}
		case "reject":
			if err := h.messages.UpdateStatus(r.Context(), req.MessageID, types.MessageRejected); err != nil {
				sendError(w, "Reject failed: "+err.Error(), http.StatusInternalServerError)
				return
			}
		default:
			sendError(w, "Unknown action: "+req.Action, http.StatusBadRequest)
			return
		}

		message, err := h.messages.GetMessage(r.Context(), req.MessageID)
		if err != nil {
			sendError(w, "Message not found", http.StatusNotFound)
			return
		}
		sendSuccess(w, message)
	}
}
