package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/internal"
	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/internal/kv"
	"github.com/MrEthical07/otpauth/mail"
)

type Config struct {
	Digits      int
	CodeTTL     time.Duration
	CooldownTTL time.Duration
	// MaxAttempts is the number of wrong guesses that locks the identity.
	MaxAttempts   int
	AttemptWindow time.Duration
	LockDuration  time.Duration
	Subject       string
}

func DefaultConfig() Config {
	return Config{
		Digits:        4,
		CodeTTL:       5 * time.Minute,
		CooldownTTL:   60 * time.Second,
		MaxAttempts:   3,
		AttemptWindow: 15 * time.Minute,
		LockDuration:  15 * time.Minute,
		Subject:       mail.DefaultOTPSubject,
	}
}

// Engine issues one-time codes by mail and verifies them against the store.
type Engine struct {
	store    kv.Store
	keys     keys.Namespace
	sender   mail.Sender
	config   Config
	generate func(digits int) (string, error)
}

func New(store kv.Store, ns keys.Namespace, sender mail.Sender, cfg Config) *Engine {
	if cfg.Subject == "" {
		cfg.Subject = mail.DefaultOTPSubject
	}
	return &Engine{
		store:    store,
		keys:     ns,
		sender:   sender,
		config:   cfg,
		generate: internal.NewOTP,
	}
}

// Send generates a code and mails it, then stores the code and the
// cooldown marker. The code is only stored once the mail was accepted, so
// a delivery failure leaves nothing to verify against.
func (e *Engine) Send(ctx context.Context, identity, name, template string) error {
	if e.sender == nil {
		return errors.New("otp engine has no mail sender")
	}

	code, err := e.generate(e.config.Digits)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	msg := mail.Message{
		To:       identity,
		Subject:  e.config.Subject,
		Template: template,
		Data: mail.TemplateData{
			Name:  name,
			Email: identity,
			OTP:   code,
		},
	}
	if err := e.sender.Send(ctx, msg); err != nil {
		return err
	}

	if err := e.store.Set(ctx, e.keys.OTP(identity), code, e.config.CodeTTL); err != nil {
		return err
	}
	return e.store.Set(ctx, e.keys.OTPCooldown(identity), "true", e.config.CooldownTTL)
}

// Verify checks code against the stored one.
//
// An active lock fails with OTP_LOCKED. A missing code fails with
// OTP_EXPIRED. A mismatch either counts the failure and reports the
// remaining attempts, or, when MaxAttempts is reached, locks the identity
// and deletes the code. A match consumes the code.
func (e *Engine) Verify(ctx context.Context, identity, code string) error {
	lockKey := e.keys.OTPLock(identity)
	locked, err := kv.Exists(ctx, e.store, lockKey)
	if err != nil {
		return err
	}
	if locked {
		remaining, err := e.store.TTL(ctx, lockKey)
		if err != nil {
			return err
		}
		return autherr.ErrOTPLocked.WithRetryAfter(remaining)
	}

	codeKey := e.keys.OTP(identity)
	stored, ok, err := e.store.Get(ctx, codeKey)
	if err != nil {
		return err
	}
	if !ok {
		return autherr.ErrOTPExpired
	}

	attemptsKey := e.keys.OTPAttempts(identity)
	failed, err := kv.ReadCounter(ctx, e.store, attemptsKey)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		if failed >= e.config.MaxAttempts-1 {
			if err := e.store.Set(ctx, lockKey, "1", e.config.LockDuration); err != nil {
				return err
			}
			if err := e.store.Delete(ctx, attemptsKey, codeKey); err != nil {
				return err
			}
			return autherr.ErrOTPAttemptsExceeded.WithRetryAfter(e.config.LockDuration)
		}

		if _, err := e.store.Incr(ctx, attemptsKey); err != nil {
			return err
		}
		if err := e.store.Expire(ctx, attemptsKey, e.config.AttemptWindow); err != nil {
			return err
		}

		left := e.config.MaxAttempts - 1 - failed
		return autherr.ErrInvalidOTP.
			WithAttemptsLeft(left).
			WithMessage(fmt.Sprintf("incorrect OTP. %d attempts left", left))
	}

	return e.store.Delete(ctx, codeKey, attemptsKey)
}
