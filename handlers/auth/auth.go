package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"kotochan-birthday/session"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	LoginRequest struct {
		BirthDate string `json:"birthDate"`
	}

	LoginResponse struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionId,omitempty"`
		Message   string `json:"message"`
	}

	SessionResponse struct {
		Authenticated bool   `json:"authenticated"`
		SessionID     string `json:"sessionId,omitempty"`
		Message       string `json:"message"`
	}
)

// HandleLogin checks the submitted birth date and mints a session cookie.
func HandleLogin(gate *session.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, LoginResponse{Success: false, Message: "エラーが発生しました"})
			return
		}

		sess, err := gate.Create(r.Context(), req.BirthDate)
		if err != nil {
			if errors.Is(err, session.ErrInvalidSecret) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, LoginResponse{Success: false, Message: "たんじょうびが ちがいます"})
				return
			}
			logrus.WithField("error", err).Error("Failed to create session")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, LoginResponse{Success: false, Message: "エラーが発生しました"})
			return
		}

		gate.SetCookie(w, sess.ID)
		render.JSON(w, r, LoginResponse{
			Success:   true,
			SessionID: sess.ID,
			Message:   "ログインに成功しました",
		})
	}
}

// HandleSession reports whether the current session cookie is still valid.
// Expired records are deleted server-side as a side effect of the check.
func HandleSession(gate *session.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := session.TokenFromRequest(r)
		if token == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, SessionResponse{Authenticated: false, Message: "セッションが見つかりません"})
			return
		}

		if !gate.Validate(r.Context(), token) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, SessionResponse{Authenticated: false, Message: "セッションが無効です"})
			return
		}

		render.JSON(w, r, SessionResponse{
			Authenticated: true,
			SessionID:     token,
			Message:       "セッションが有効です",
		})
	}
}

// HandleLogout destroys the session record and clears the cookie. Always
// reports success, even when there was nothing to destroy.
func HandleLogout(gate *session.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := session.TokenFromRequest(r)
		if err := gate.Destroy(r.Context(), token); err != nil {
			logrus.WithField("error", err).Warn("Failed to destroy session")
		}

		gate.ClearCookie(w)
		render.JSON(w, r, map[string]any{"success": true, "message": "ログアウトしました"})
	}
}
