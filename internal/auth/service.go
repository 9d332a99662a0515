package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/internal/accounts"
	pkgAuth "github.com/AadiSharma49/Street-Food-Solution/pkg/auth"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/auth/session"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/security"
)

const (
	invalidCodeMessage  = "invalid or expired code"
	invalidPhoneMessage = "invalid mobile number"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	SendOTP(ctx context.Context, input SendOTPInput) (*SendOTPResult, error)
	VerifyOTP(ctx context.Context, phone, code, clientIP string) error
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
}

type accountRepository interface {
	FindByPhone(ctx context.Context, phone string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type accountRegistrar interface {
	Register(ctx context.Context, input accounts.RegisterInput) (*accounts.AccountDTO, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string, accountID uuid.UUID) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error)
	Revoke(ctx context.Context, accessID string) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Accounts       accountRepository
	Registrar      accountRegistrar
	SessionManager sessionManager
	OTPStore       *OTPStore
	Sender         Sender
	Limiter        rateLimiter
	JWTConfig      config.JWTConfig
	OTPConfig      config.OTPConfig
	RateLimit      config.AuthRateLimitConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	accounts  accountRepository
	registrar accountRegistrar
	session   sessionManager
	otp       *OTPStore
	sender    Sender
	limiter   rateLimiter
	jwtCfg    config.JWTConfig
	otpCfg    config.OTPConfig
	limits    config.AuthRateLimitConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs the OTP login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.Registrar == nil {
		return nil, fmt.Errorf("account registrar is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.OTPStore == nil {
		return nil, fmt.Errorf("otp store is required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("otp sender is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.OTPConfig.Length <= 0 {
		params.OTPConfig.Length = 6
	}
	if params.OTPConfig.TTL <= 0 {
		params.OTPConfig.TTL = 5 * time.Minute
	}
	if params.OTPConfig.MaxAttempts <= 0 {
		params.OTPConfig.MaxAttempts = 3
	}
	return &service{
		accounts:  params.Accounts,
		registrar: params.Registrar,
		session:   params.SessionManager,
		otp:       params.OTPStore,
		sender:    params.Sender,
		limiter:   params.Limiter,
		jwtCfg:    params.JWTConfig,
		otpCfg:    params.OTPConfig,
		limits:    params.RateLimit,
		logg:      params.Logger,
		now:       params.Now,
	}, nil
}

func (s *service) SendOTP(ctx context.Context, input SendOTPInput) (*SendOTPResult, error) {
	phone := NormalizePhone(input.Phone)
	if !ValidatePhone(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidPhoneMessage)
	}
	channel := input.Channel
	if channel == "" {
		channel = enums.OTPChannelSMS
	}
	if !channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "channel must be sms or whatsapp")
	}
	if err := s.allow(ctx, "otp:send", phone, input.ClientIP, s.limits.OTPPhoneLimit, s.limits.OTPIPLimit, s.limits.OTPWindow); err != nil {
		return nil, err
	}

	code, err := security.GenerateNumericCode(s.otpCfg.Length)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	hash, err := security.HashCode(code, s.otpCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash otp")
	}
	if err := s.otp.Save(ctx, phone, otpRecord{Hash: hash, Channel: channel}, s.otpCfg.TTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store otp")
	}
	if err := s.sender.Send(ctx, phone, channel, code); err != nil {
		_ = s.otp.Delete(ctx, phone)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deliver otp")
	}

	return &SendOTPResult{
		Phone:     phone,
		Channel:   channel,
		ExpiresIn: int(s.otpCfg.TTL.Seconds()),
	}, nil
}

// VerifyOTP consumes the pending code for phone. Wrong codes count against
// the attempt budget; once it is spent the code is dropped.
func (s *service) VerifyOTP(ctx context.Context, phone, code, clientIP string) error {
	phone = NormalizePhone(phone)
	if !ValidatePhone(phone) {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidPhoneMessage)
	}
	if err := s.allow(ctx, "otp:verify", phone, clientIP, s.limits.VerifyPhoneLimit, s.limits.VerifyIPLimit, s.limits.VerifyWindow); err != nil {
		return err
	}

	rec, err := s.otp.Load(ctx, phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}
	if rec == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCodeMessage)
	}
	if rec.Attempts >= s.otpCfg.MaxAttempts {
		_ = s.otp.Delete(ctx, phone)
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many failed attempts, request a new code")
	}

	ok, err := security.VerifyCode(strings.TrimSpace(code), rec.Hash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify otp")
	}
	if !ok {
		rec.Attempts++
		remaining := s.otpCfg.MaxAttempts - rec.Attempts
		if err := s.otp.RecordFailure(ctx, phone, *rec); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record otp failure")
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"phone":    maskPhone(phone),
			"attempts": rec.Attempts,
		}), "otp mismatch")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCodeMessage).
			WithDetails(map[string]any{"attempts_remaining": remaining})
	}

	if err := s.otp.Delete(ctx, phone); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume otp")
	}
	return nil
}

// Login looks the account up before touching the code, so an unknown number
// can still register with the same code.
func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	phone := NormalizePhone(input.Phone)
	if !ValidatePhone(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidPhoneMessage)
	}
	account, err := s.accounts.FindByPhone(ctx, phone)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no account for this number, register first")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}
	if err := s.VerifyOTP(ctx, phone, input.Code, input.ClientIP); err != nil {
		return nil, err
	}
	return s.issue(ctx, account)
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	phone := NormalizePhone(input.Profile.Phone)
	if !ValidatePhone(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidPhoneMessage)
	}
	if _, err := s.accounts.FindByPhone(ctx, phone); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}
	if err := s.VerifyOTP(ctx, phone, input.Code, input.ClientIP); err != nil {
		return nil, err
	}

	profile := input.Profile
	profile.Phone = phone
	created, err := s.registrar.Register(ctx, profile)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByID(ctx, created.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload account")
	}
	return s.issue(ctx, account)
}

func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	rotated, err := s.session.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}
	if rotated.AccountID != claims.AccountID {
		_ = s.session.Revoke(ctx, rotated.AccessID)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	access, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		AccountID:   claims.AccountID,
		AccountType: claims.AccountType,
		Phone:       claims.Phone,
		JTI:         rotated.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: rotated.RefreshToken,
		ExpiresIn:    int(s.jwtCfg.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issue(ctx context.Context, account *models.Account) (*AuthResponse, error) {
	now := s.now().UTC()
	if err := s.accounts.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	account.LastLoginAt = &now

	accessID := session.NewAccessID()
	access, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		AccountID:   account.ID,
		AccountType: account.Type,
		Phone:       account.Phone,
		JTI:         accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refresh, err := s.session.Generate(ctx, accessID, account.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	s.logg.Info(s.logg.WithAccountID(ctx, account.ID.String()), "account logged in")
	return &AuthResponse{
		TokenPair: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int(s.jwtCfg.AccessTokenTTL().Seconds()),
		},
		Account: accounts.FromModel(account),
	}, nil
}

// allow applies the per-phone and per-IP windows for one auth action. A
// zero limit disables that window.
func (s *service) allow(ctx context.Context, action, phone, clientIP string, phoneLimit, ipLimit int, window time.Duration) error {
	if s.limiter == nil || window <= 0 {
		return nil
	}
	checks := []struct {
		scope string
		limit int
	}{
		{scope: action + ":phone:" + phone, limit: phoneLimit},
		{scope: action + ":ip:" + clientIP, limit: ipLimit},
	}
	for _, check := range checks {
		if check.limit <= 0 || strings.HasSuffix(check.scope, ":") {
			continue
		}
		ok, _, err := s.limiter.FixedWindowAllow(ctx, check.scope, int64(check.limit), window)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, try again later")
		}
	}
	return nil
}
