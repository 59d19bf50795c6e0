package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Raman247365/Note-app/internal/httputil"
	"github.com/Raman247365/Note-app/internal/logging"
	"github.com/Raman247365/Note-app/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
}

// VerifyOTPRequest represents the OTP verification request body. The profile
// fields repeat the signup values and act as a fallback only.
type VerifyOTPRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries a Google-issued ID token
type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// AuthResponse is returned by every successful authentication endpoint
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MessageResponse carries a plain acknowledgment
type MessageResponse struct {
	Message string `json:"message"`
}

// validationErrors are the user-correctable signup failures, returned with
// their field-level message.
var validationErrors = []error{
	ErrFieldsRequired,
	ErrInvalidEmail,
	ErrPasswordTooShort,
	ErrNameTooShort,
	ErrInvalidDateOfBirth,
	ErrUnderage,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Signup handles the first half of registration: validation, OTP generation,
// and dispatch. No secret material is returned.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.service.Signup(r.Context(), req.Email, req.Password, req.Name, req.DateOfBirth); err != nil {
		switch {
		case isValidationError(err):
			logger.Warn("signup failed: validation error", "error", err.Error())
			respondError(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrUserExists):
			logger.Warn("signup failed: email already registered")
			respondError(w, ErrUserExists.Error(), httputil.CodeUserAlreadyExists, http.StatusConflict)
		case errors.Is(err, ErrEmailDispatchFailed):
			logger.Error("signup failed: email dispatch", "error", err.Error())
			respondError(w, ErrEmailDispatchFailed.Error(), httputil.CodeEmailDispatchFailed, http.StatusInternalServerError)
		default:
			logger.Error("signup failed: internal error", "error", err.Error())
			respondError(w, "server error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("signup OTP issued")

	respondJSON(w, MessageResponse{Message: "OTP sent to email"}, http.StatusOK)
}

// VerifyOTP handles the second half of registration: it consumes the pending
// signup and creates the account.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid OTP verification request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.VerifyOTP(r.Context(), req.Email, req.OTP, req.Password, req.Name, req.DateOfBirth)
	if err != nil {
		switch {
		case errors.Is(err, ErrOTPInvalid):
			logger.Warn("OTP verification failed")
			respondError(w, ErrOTPInvalid.Error(), httputil.CodeInvalidOTP, http.StatusUnauthorized)
		case errors.Is(err, ErrUserExists):
			logger.Warn("OTP verification failed: account already exists")
			respondError(w, ErrUserExists.Error(), httputil.CodeUserAlreadyExists, http.StatusConflict)
		default:
			logger.Error("OTP verification failed: internal error", "error", err.Error())
			respondError(w, "server error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account created", "user_id", result.User.ID)

	respondJSON(w, toAuthResponse(result), http.StatusOK)
}

// Login handles password login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			logger.Warn("login failed: missing fields")
			respondError(w, ErrFieldsRequired.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			respondError(w, ErrInvalidCredentials.Error(), httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			respondError(w, "server error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in")

	respondJSON(w, toAuthResponse(result), http.StatusOK)
}

// GoogleLogin handles federated login with a Google ID token
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid google login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	result, err := h.service.GoogleLogin(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrGoogleNotConfigured):
			logger.Warn("google login failed: not configured")
			respondError(w, ErrGoogleNotConfigured.Error(), httputil.CodeGoogleNotConfigured, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidGoogleToken):
			logger.Warn("google login failed: invalid token")
			respondError(w, ErrInvalidGoogleToken.Error(), httputil.CodeInvalidGoogleToken, http.StatusUnauthorized)
		default:
			logger.Error("google login failed: internal error", "error", err.Error())
			respondError(w, "server error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("google login succeeded", "user_id", result.User.ID)

	respondJSON(w, toAuthResponse(result), http.StatusOK)
}

func toAuthResponse(result *AuthResult) AuthResponse {
	return AuthResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	}
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	httputil.RespondJSON(w, data, statusCode)
}

// respondError sends an error response with a machine-readable code
func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}
