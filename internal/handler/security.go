package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/brosmart/pkg/httpmiddleware"
)

// HeaderAdminPassword carries the shared admin password.
const HeaderAdminPassword = "X-Admin-Password"

func (h *Handler) checkPassword(got string) bool {
	if len(h.adminPassword) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), h.adminPassword) == 1
}

// AdminGate rejects requests without the admin password.
func (h *Handler) AdminGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.checkPassword(r.Header.Get(HeaderAdminPassword)) {
			httpmiddleware.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Login checks {"password"} and answers 204 or 401.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var password string
	if err := readObject(r, func(d *jx.Decoder, key string) error {
		if key == "password" {
			var err error
			password, err = d.Str()
			return err
		}
		return d.Skip()
	}); err != nil {
		respondError(w, r, err)
		return
	}

	if !h.checkPassword(password) {
		zctx.From(r.Context()).Warn("Admin login failed",
			zap.String("remote", httpmiddleware.ClientIP(r)),
		)
		httpmiddleware.WriteError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
