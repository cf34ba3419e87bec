package httpapi

import (
	"net/http"
	"time"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/middleware"
)

const (
	MessageLoggedIn  = "Login successful!"
	MessageRefreshed = "Tokens refreshed"
	MessageLoggedOut = "Logged out"
)

type emailRequest struct {
	Email string `json:"email"`
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	Message string              `json:"message"`
	User    *otpauth.UserRecord `json:"user"`
}

type sessionResponse struct {
	Message          string             `json:"message"`
	User             otpauth.UserRecord `json:"user"`
	AccessExpiresAt  time.Time          `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time          `json:"refreshExpiresAt"`
}

type meResponse struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type healthResponse struct {
	Status         string `json:"status"`
	StoreAvailable bool   `json:"storeAvailable"`
	StoreLatencyMs int64  `json:"storeLatencyMs"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.auth.Health(r.Context())

	resp := healthResponse{
		Status:         "ok",
		StoreAvailable: status.StoreAvailable,
		StoreLatencyMs: status.StoreLatency.Milliseconds(),
	}
	code := http.StatusOK
	if !status.StoreAvailable {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, r, code, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req otpauth.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *Handler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.auth.VerifyRegistration(r.Context(), req.Email, req.OTP)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, userResponse{Message: otpauth.MessageRegistered, User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSession(w, r, MessageLoggedIn, res)
}

// Refresh reads the refresh token from its cookie, falling back to the JSON
// body for clients without a cookie jar.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(RefreshCookie); err == nil {
		token = c.Value
	}
	if token == "" && r.ContentLength != 0 {
		var req refreshRequest
		if !h.decode(w, r, &req) {
			return
		}
		token = req.RefreshToken
	}

	res, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		h.clearSessionCookies(w)
		h.writeError(w, r, err)
		return
	}
	h.writeSession(w, r, MessageRefreshed, res)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookies(w)
	h.writeJSON(w, r, http.StatusOK, otpauth.Result{Message: MessageLoggedOut})
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.auth.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *Handler) ConfirmPasswordResetOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.auth.ConfirmPasswordResetOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.auth.ResetPassword(r.Context(), req.Email, req.NewPassword)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, otpauth.ErrInvalidToken)
		return
	}
	h.writeJSON(w, r, http.StatusOK, meResponse{ID: claims.ID, Role: claims.Role})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusNotFound, errorResponse{
		Error:      "Not found",
		Code:       "NOT_FOUND",
		StatusCode: http.StatusNotFound,
		Timestamp:  h.now().UTC(),
		Path:       r.URL.Path,
	})
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, message string, res *otpauth.LoginResult) {
	h.setSessionCookies(w, res)
	h.writeJSON(w, r, http.StatusOK, sessionResponse{
		Message:          message,
		User:             res.User,
		AccessExpiresAt:  res.AccessExpiresAt,
		RefreshExpiresAt: res.RefreshExpiresAt,
	})
}
