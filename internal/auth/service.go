package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Raman247365/Note-app/internal/logging"
	"github.com/Raman247365/Note-app/internal/user"
)

var (
	ErrFieldsRequired     = errors.New("all fields are required")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrNameTooShort       = errors.New("name must be at least 2 characters")
	ErrInvalidDateOfBirth = errors.New("invalid date of birth")
	ErrUnderage           = errors.New("must be at least 13 years old")
	ErrUserExists         = errors.New("user already exists")

	// ErrOTPInvalid covers a missing entry, a wrong code, and an expired
	// code. The three cases are deliberately indistinguishable to the
	// caller.
	ErrOTPInvalid = errors.New("invalid or expired OTP")

	// ErrInvalidCredentials covers an unknown email, an account with no
	// password, and a wrong password, without revealing which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrGoogleNotConfigured = errors.New("google authentication not configured")
	ErrInvalidGoogleToken  = errors.New("invalid google token")
	ErrEmailDispatchFailed = errors.New("failed to send email")
)

const (
	otpTTL         = 5 * time.Minute
	bcryptCost     = 12
	minPasswordLen = 6
	minNameLen     = 2
	minSignupAge   = 13

	// defaultGoogleName is used when the ID token carries no name claim.
	defaultGoogleName = "Google User"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthResult is what every successful authentication path returns: a session
// token and the authenticated account.
type AuthResult struct {
	Token string
	User  *user.User
}

// Service handles signup, OTP verification, password login, and Google login.
type Service struct {
	users          UserStore
	pending        PendingSignupStore
	tokens         TokenService
	mailer         Mailer
	verifier       IdentityVerifier
	logger         *logging.Logger
	googleClientID string
	tokenDuration  time.Duration
	isProduction   bool
}

func NewService(
	users UserStore,
	pending PendingSignupStore,
	tokens TokenService,
	mailer Mailer,
	verifier IdentityVerifier,
	logger *logging.Logger,
	googleClientID string,
	tokenDuration time.Duration,
	isProduction bool,
) *Service {
	return &Service{
		users:          users,
		pending:        pending,
		tokens:         tokens,
		mailer:         mailer,
		verifier:       verifier,
		logger:         logger,
		googleClientID: googleClientID,
		tokenDuration:  tokenDuration,
		isProduction:   isProduction,
	}
}

// Signup validates the request, checks for an existing account, and stores a
// pending signup with a fresh OTP. Validation failures are reported in a
// fixed order, first failing check wins.
func (s *Service) Signup(ctx context.Context, email, password, name, dateOfBirth string) error {
	if email == "" || password == "" || name == "" || dateOfBirth == "" {
		return ErrFieldsRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if len(strings.TrimSpace(name)) < minNameLen {
		return ErrNameTooShort
	}
	birthDate, err := parseDate(dateOfBirth)
	if err != nil {
		return ErrInvalidDateOfBirth
	}
	// Coarse year-only age check, as specified: no day precision.
	if time.Now().Year()-birthDate.Year() < minSignupAge {
		return ErrUnderage
	}

	normalized := normalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, normalized); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("failed to look up account: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	entry := &PendingSignup{
		Email:       normalized,
		Code:        code,
		Name:        name,
		DateOfBirth: birthDate,
		ExpiresAt:   time.Now().Add(otpTTL),
	}
	if err := s.pending.Put(ctx, normalized, entry); err != nil {
		return fmt.Errorf("failed to store pending signup: %w", err)
	}

	if !s.mailer.IsConfigured() {
		// Local fallback: surface the code through the dev logger so the
		// flow can be exercised without an SMTP account. Not for production.
		if !s.isProduction {
			s.logger.Info("mailer not configured, development OTP", "email", normalized, "otp", code)
		}
		return nil
	}

	if err := s.mailer.SendOTPEmail(ctx, email, code); err != nil {
		// The pending entry stays behind; it expires on its own.
		return fmt.Errorf("%w: %v", ErrEmailDispatchFailed, err)
	}

	return nil
}

// VerifyOTP consumes the pending signup for the email and creates the
// account. The consume step is atomic, so a concurrent second verification
// observes no entry and fails; together with the unique email constraint
// this keeps account creation at-most-once per email.
//
// The password, name, and dateOfBirth arguments are the client's resubmitted
// copy; name and date of birth are only used when the ledger draft is absent.
func (s *Service) VerifyOTP(ctx context.Context, email, code, password, name, dateOfBirth string) (*AuthResult, error) {
	normalized := normalizeEmail(email)

	entry, err := s.pending.Consume(ctx, normalized, code)
	if err != nil {
		if errors.Is(err, ErrOTPInvalid) {
			return nil, ErrOTPInvalid
		}
		return nil, fmt.Errorf("failed to consume pending signup: %w", err)
	}

	profileName := entry.Name
	if profileName == "" {
		profileName = name
	}
	birthDate := entry.DateOfBirth
	if birthDate.IsZero() {
		if parsed, err := parseDate(dateOfBirth); err == nil {
			birthDate = parsed
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	passwordHash := string(hash)

	newUser := &user.User{
		Email:        normalized,
		PasswordHash: &passwordHash,
		Name:         strings.TrimSpace(profileName),
	}
	if !birthDate.IsZero() {
		newUser.DateOfBirth = &birthDate
	}

	created, err := s.users.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.issueToken(created)
}

// Login authenticates a password account. An unknown email, an account with
// no password hash (Google-only), and a failed comparison all produce the
// same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrFieldsRequired
	}

	account, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !account.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(account)
}

// GoogleLogin verifies a Google ID token and signs the subject in, creating
// an account on first login. An existing account with the same email is
// silently reused regardless of how it was created and gains no password:
// merge-by-email is deliberate and relies entirely on Google's email
// verification.
func (s *Service) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.googleClientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	claims, err := s.verifier.Verify(ctx, idToken, s.googleClientID)
	if err != nil {
		s.logger.Warn("google id token verification failed", "error", err.Error())
		return nil, ErrInvalidGoogleToken
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, ErrInvalidGoogleToken
	}

	normalized := normalizeEmail(claims.Email)
	account, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up account: %w", err)
		}

		name := claims.Name
		if name == "" {
			name = defaultGoogleName
		}
		googleID := claims.Subject

		account, err = s.users.Create(ctx, &user.User{
			Email:    normalized,
			Name:     name,
			GoogleID: &googleID,
		})
		if err != nil {
			if errors.Is(err, user.ErrDuplicateEmail) {
				// Lost a creation race; the other writer's account wins.
				account, err = s.users.GetByEmail(ctx, normalized)
			}
			if err != nil {
				return nil, fmt.Errorf("failed to create account: %w", err)
			}
		}
	}

	return s.issueToken(account)
}

func (s *Service) issueToken(account *user.User) (*AuthResult, error) {
	token, err := s.tokens.CreateToken(account.ID, account.Email, s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}
	return &AuthResult{Token: token, User: account}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateOTP returns a uniformly random 6-digit code in [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}
