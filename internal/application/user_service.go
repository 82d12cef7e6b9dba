package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-registration/config"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/either"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/failure"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/policy"
	repo "github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-registration/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-user-registration/pkg/mailer/templates"
)

// authStats is published under /api/debug/vars.
var authStats = expvar.NewMap("auth")

// EmailSender hands an email job to the delivery pipeline.
type EmailSender interface {
	Send(ctx context.Context, job mailer.EmailJob) error
}

// VerifiedCache caches the email-verified flag per user.
type VerifiedCache interface {
	Get(ctx context.Context, userID string) (verified bool, found bool, err error)
	Set(ctx context.Context, userID string, verified bool) error
}

// UserIndexer writes user documents to the search directory.
type UserIndexer interface {
	IndexUser(ctx context.Context, id string, doc any) error
}

// RequestMeta is the caller context copied into outgoing emails.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// Service runs the registration use cases for the transport layer. Domain
// failures come back as failure.Failure errors; anything else is a fault.
type Service struct {
	Registration  *RegisterUser
	Verification  *VerifyEmail
	Recovery      *RecoverPassword
	PasswordReset *ResetPassword

	Repo   repo.UserRepository
	Mail   EmailSender
	Cache  VerifiedCache
	Index  UserIndexer
	Cfg    *config.Config
	Logger *logrus.Logger
	Now    func() time.Time
}

// ServiceDeps lists the capabilities NewService wires into the use cases.
type ServiceDeps struct {
	Repo   repo.UserRepository
	Hasher entity.PasswordHasher
	IDs    entity.IDGenerator
	Emails policy.EmailValidator
	Mail   EmailSender
	Cache  VerifiedCache
	Index  UserIndexer
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewService(cfg *config.Config, d ServiceDeps) *Service {
	if d.Emails == nil {
		d.Emails = policy.NewEmailValidator()
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	factory := entity.UserFactory{Emails: d.Emails, Hasher: d.Hasher, IDs: d.IDs, Now: d.Now}
	verify := NewVerifyEmail(d.Repo)
	verify.Now = d.Now
	reset := NewResetPassword(d.Repo, d.Hasher)
	reset.Now = d.Now
	return &Service{
		Registration:  NewRegisterUser(d.Repo, factory),
		Verification:  verify,
		Recovery:      NewRecoverPassword(d.Repo),
		PasswordReset: reset,
		Repo:          d.Repo,
		Mail:          d.Mail,
		Cache:         d.Cache,
		Index:         d.Index,
		Cfg:           cfg,
		Logger:        d.Logger,
		Now:           d.Now,
	}
}

// leftErr returns the failure held by e, or nil when e is a Right.
func leftErr[R any](op string, e either.Either[failure.Failure, R]) error {
	if f, ok := e.Left(); ok {
		authStats.Add(op+"_"+f.Kind.String(), 1)
		return f
	}
	authStats.Add(op+"_ok", 1)
	return nil
}

// Register creates the account and queues the confirmation email. A queueing
// failure is logged and does not undo the registration.
func (s *Service) Register(ctx context.Context, in RegisterUserInput, meta RequestMeta) (*RegisterUserOutput, error) {
	res, err := s.Registration.Execute(ctx, in)
	if err != nil {
		authStats.Add("register_error", 1)
		s.Logger.WithError(err).WithField("email", in.Email).Error("register failed")
		return nil, err
	}
	if err := leftErr("register", res); err != nil {
		return nil, err
	}
	out, _ := res.Right()
	log := s.Logger.WithFields(logrus.Fields{"user_id": out.User.ID, "email": out.User.Email})
	log.Info("user registered")

	if err := s.sendConfirmEmail(ctx, out, meta); err != nil {
		log.WithError(err).Warn("confirmation email not queued")
	}
	s.indexUser(ctx, out.User)
	return &out, nil
}

func (s *Service) sendConfirmEmail(ctx context.Context, out RegisterUserOutput, meta RequestMeta) error {
	if s.Mail == nil {
		return nil
	}
	link, err := actionURL(s.Cfg.VerifyEmailURL, url.Values{"id": {out.User.ID}, "token": {out.VerificationToken}})
	if err != nil {
		return err
	}
	data := mailtpl.NewConfirmEmailData(s.Cfg, out.User.Name, out.User.Email, out.VerificationToken, link,
		mailtpl.WithExpiresAt(out.VerificationTokenExpiresAt),
		mailtpl.WithIP(meta.IP),
		mailtpl.WithUserAgent(meta.UserAgent),
		mailtpl.WithTime(s.now()),
	)
	return s.Mail.Send(ctx, mailer.EmailJob{To: out.User.Email, Template: mailtpl.ConfirmEmail, Data: data})
}

// VerifyEmail marks the user verified when token matches the one on record.
func (s *Service) VerifyEmail(ctx context.Context, userID, token string) error {
	res, err := s.Verification.Execute(ctx, userID, token)
	if err != nil {
		authStats.Add("verify_error", 1)
		s.Logger.WithError(err).WithField("user_id", userID).Error("verify email failed")
		return err
	}
	if err := leftErr("verify", res); err != nil {
		s.Logger.WithField("user_id", userID).Info("verify email rejected")
		return err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, true); err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("verified cache write failed")
		}
	}
	s.Logger.WithField("user_id", userID).Info("email verified")
	return nil
}

// RequestRecovery sends the recovery email. When the token on record is
// missing or expired a fresh one is issued first.
func (s *Service) RequestRecovery(ctx context.Context, email string, meta RequestMeta) error {
	res, err := s.Recovery.Execute(ctx, email)
	if err != nil {
		authStats.Add("recovery_error", 1)
		s.Logger.WithError(err).WithField("email", email).Error("recovery lookup failed")
		return err
	}
	if err := leftErr("recovery", res); err != nil {
		return err
	}
	out, _ := res.Right()

	now := s.now()
	if !entity.TokenValid(out.Token, out.ExpiresAt, out.Token, now) {
		tok, err := s.Repo.ReissueVerificationToken(ctx, out.UserID)
		if err != nil {
			return fmt.Errorf("reissue token: %w", err)
		}
		out.Token = tok.Value
		out.ExpiresAt = &tok.ExpiresAt
	}

	if s.Mail == nil {
		return nil
	}
	link, err := actionURL(s.Cfg.ResetPasswordURL, url.Values{"email": {out.Email}, "token": {out.Token}})
	if err != nil {
		return err
	}
	data := mailtpl.NewRecoveryPasswordData(s.Cfg, out.Name, out.Email, out.Token, link,
		mailtpl.WithExpiresAt(*out.ExpiresAt),
		mailtpl.WithIP(meta.IP),
		mailtpl.WithUserAgent(meta.UserAgent),
		mailtpl.WithTime(now),
	)
	if err := s.Mail.Send(ctx, mailer.EmailJob{To: out.Email, Template: mailtpl.RecoveryPassword, Data: data}); err != nil {
		return fmt.Errorf("queue recovery email: %w", err)
	}
	s.Logger.WithField("user_id", out.UserID).Info("recovery email queued")
	return nil
}

// ResetPassword sets a new password after checking the recovery token.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	res, err := s.PasswordReset.Execute(ctx, in)
	if err != nil {
		authStats.Add("reset_error", 1)
		s.Logger.WithError(err).WithField("email", in.Email).Error("reset password failed")
		return err
	}
	if err := leftErr("reset", res); err != nil {
		return err
	}
	s.Logger.WithField("email", in.Email).Info("password reset")
	return nil
}

// IsEmailVerified reads the verified flag, cache first.
func (s *Service) IsEmailVerified(ctx context.Context, userID string) (bool, error) {
	if s.Cache != nil {
		v, found, err := s.Cache.Get(ctx, userID)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("verified cache read failed")
		} else if found {
			return v, nil
		}
	}
	u, err := s.Repo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, failure.NewUserNotFound()
	}
	if err != nil {
		return false, err
	}
	verified := u.Props().EmailVerified
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, verified); err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("verified cache write failed")
		}
	}
	return verified, nil
}

func (s *Service) indexUser(ctx context.Context, v entity.UserView) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexUser(ctx, v.ID, v); err != nil {
		s.Logger.WithError(err).WithField("user_id", v.ID).Warn("es index failed")
	}
}

func (s *Service) now() time.Time { return nowFrom(s.Now) }

// actionURL appends params to base, keeping any query base already has.
func actionURL(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse action url %q: %w", base, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
