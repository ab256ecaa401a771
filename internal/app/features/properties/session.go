// internal/app/features/properties/session.go
package properties

import (
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/vitrine/internal/app/features/errors"
	"github.com/dalemusser/vitrine/internal/app/system/auth"
	"github.com/dalemusser/vitrine/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

type signInRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Privileged bool `json:"privileged"`
}

// HandleSignIn handles POST /admin/session.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)
	if !h.SignIns.Allow(ip) {
		h.Log.Warn("admin sign-in rate limited", zap.String("ip", ip))
		uierrors.WriteJSON(w, http.StatusTooManyRequests, uierrors.Body{Error: "Muitas tentativas. Aguarde um minuto."})
		return
	}

	var req signInRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode sign-in failed", err, "Corpo da requisição inválido.")
		return
	}

	err := h.Sessions.SignIn(w, r, req.Token)
	switch {
	case err == nil:
		h.SignIns.Reset(ip)
		uierrors.WriteJSON(w, http.StatusOK, sessionResponse{Privileged: true})
	case errors.Is(err, auth.ErrInvalidToken):
		h.Log.Info("admin sign-in rejected")
		uierrors.WriteJSON(w, http.StatusUnauthorized, uierrors.Body{Error: "Token inválido."})
	case errors.Is(err, auth.ErrNoAdminToken):
		uierrors.WriteJSON(w, http.StatusServiceUnavailable, uierrors.Body{Error: "Acesso administrativo não configurado."})
	default:
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Não foi possível iniciar a sessão.")
	}
}

// HandleSignOut handles DELETE /admin/session.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.ErrLog.LogServerError(w, r, "clear session failed", err, "Não foi possível encerrar a sessão.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, sessionResponse{Privileged: false})
}

// ServeSession handles GET /admin/session.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	uierrors.WriteJSON(w, http.StatusOK, sessionResponse{Privileged: auth.IsPrivileged(r)})
}
