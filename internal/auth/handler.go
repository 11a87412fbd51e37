package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Handler implements the register -> OTP verify -> login flow. SMS delivery
// is out of scope; in non-production environments the generated code is
// echoed in the response so the flow stays testable end to end.
type Handler struct {
	repo    Repository
	otps    OTPStore
	tokens  *TokenIssuer
	otpTTL  time.Duration
	devMode bool
	logger  *logging.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(repo Repository, otps OTPStore, tokens *TokenIssuer, otpTTL time.Duration, devMode bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &Handler{
		repo:    repo,
		otps:    otps,
		tokens:  tokens,
		otpTTL:  otpTTL,
		devMode: devMode,
		logger:  logger,
	}
}

type otpResponse struct {
	Message  string `json:"message"`
	Phone    string `json:"phone"`
	DebugOTP string `json:"debug_otp,omitempty"`
}

// Register handles POST /api/register: creates the account and issues the
// first verification code.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingPhone):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserExists):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("failed to create user", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	code, err := h.issueOTP(r, user.Phone)
	if err != nil {
		h.logger.Error("failed to issue otp", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	resp := otpResponse{Message: "verification code sent", Phone: user.Phone}
	if h.devMode {
		resp.DebugOTP = code
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/login: issues a fresh code for an existing account.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.GetByPhone(r.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	code, err := h.issueOTP(r, user.Phone)
	if err != nil {
		h.logger.Error("failed to issue otp", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := otpResponse{Message: "verification code sent", Phone: user.Phone}
	if h.devMode {
		resp.DebugOTP = code
	}
	writeJSON(w, http.StatusOK, resp)
}

// Verify handles POST /api/verify: consumes the code and returns a session
// token. First successful verification also marks the account verified.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.GetByPhone(r.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.otps.Consume(r.Context(), req.Phone, req.OTP); err != nil {
		if errors.Is(err, ErrInvalidOTP) {
			writeError(w, http.StatusUnauthorized, "invalid or expired otp")
			return
		}
		h.logger.Error("failed to check otp", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !user.Verified {
		if err := h.repo.MarkVerified(r.Context(), user.ID); err != nil {
			h.logger.Error("failed to mark verified", "error", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		user.Verified = true
	}

	token, expires, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user verified", "user_id", user.ID)
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expires, User: user})
}

func (h *Handler) issueOTP(r *http.Request, phone string) (string, error) {
	code, err := GenerateOTP()
	if err != nil {
		return "", err
	}
	if err := h.otps.Set(r.Context(), phone, code, h.otpTTL); err != nil {
		return "", err
	}
	return code, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
