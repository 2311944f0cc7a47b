package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/bizpilot/bizpilot-be/types"
	"github.com/bizpilot/bizpilot-be/utils"
)

type LoginHandler struct {
	adminUsername string
	adminPassword string
}

func NewLoginHandler(adminUsername, adminPassword string) *LoginHandler {
	return &LoginHandler{
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

// HandleLogin authenticates the configured admin and issues a bearer
// token for the admin surface.
func (h *LoginHandler) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req types.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if h.adminPassword == "" ||
			subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.adminUsername)) != 1 ||
			subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
			sendError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := utils.GenerateAdminToken(req.Username)
		if err != nil {
			sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		sendSuccess(w, types.LoginResponse{Token: token})
	}
}
