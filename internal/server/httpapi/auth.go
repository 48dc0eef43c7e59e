package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/common"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    int64     `json:"userId"`
	IsAdmin   bool      `json:"isAdmin"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	sess, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info(r.Context(), "logged in", "user", sess.Identity.UserID)
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		UserID:    sess.Identity.UserID,
		IsAdmin:   sess.Identity.IsAdmin,
	})
}

// Logout drops the session cookie. Tokens are stateless and stay valid
// until they expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"userId": id.UserID, "isAdmin": id.IsAdmin})
}
