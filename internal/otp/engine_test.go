package otp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/internal/kv"
	"github.com/MrEthical07/otpauth/mail"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testEmail = "user@example.com"

type captureSender struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *captureSender) last(t *testing.T) mail.Message {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.msgs) == 0 {
		t.Fatal("no mail sent")
	}
	return s.msgs[len(s.msgs)-1]
}

func newTestEngine(t *testing.T) (*Engine, *miniredis.Miniredis, *captureSender, keys.Namespace) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ns := keys.New("")
	sender := &captureSender{}
	return New(kv.NewRedisStore(rdb), ns, sender, DefaultConfig()), mr, sender, ns
}

func wrongCode(code string) string {
	if code == "1000" {
		return "1001"
	}
	return "1000"
}

func TestSendStoresCodeAndCooldown(t *testing.T) {
	e, mr, sender, ns := newTestEngine(t)

	if err := e.Send(context.Background(), testEmail, "Ada", mail.TemplateUserActivation); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msg := sender.last(t)
	if msg.To != testEmail || msg.Template != mail.TemplateUserActivation || msg.Subject != "Your OTP Code" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.Data.Name != "Ada" || len(msg.Data.OTP) != 4 {
		t.Fatalf("unexpected template data %+v", msg.Data)
	}

	stored, err := mr.Get(ns.OTP(testEmail))
	if err != nil || stored != msg.Data.OTP {
		t.Fatalf("stored code %q, mailed %q (err %v)", stored, msg.Data.OTP, err)
	}
	if ttl := mr.TTL(ns.OTP(testEmail)); ttl != 5*time.Minute {
		t.Fatalf("code ttl = %v", ttl)
	}
	if ttl := mr.TTL(ns.OTPCooldown(testEmail)); ttl != 60*time.Second {
		t.Fatalf("cooldown ttl = %v", ttl)
	}
}

func TestSendMailFailureStoresNothing(t *testing.T) {
	e, mr, sender, ns := newTestEngine(t)
	sender.err = errors.New("smtp down")

	err := e.Send(context.Background(), testEmail, "Ada", mail.TemplateUserActivation)
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Fatalf("expected mail failure, got %v", err)
	}
	if mr.Exists(ns.OTP(testEmail)) || mr.Exists(ns.OTPCooldown(testEmail)) {
		t.Fatal("nothing may be stored when mail fails")
	}
}

func TestVerifySucceedsOnce(t *testing.T) {
	e, _, sender, _ := newTestEngine(t)
	ctx := context.Background()

	if err := e.Send(ctx, testEmail, "Ada", mail.TemplateForgotPassword); err != nil {
		t.Fatalf("Send: %v", err)
	}
	code := sender.last(t).Data.OTP

	if err := e.Verify(ctx, testEmail, code); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if err := e.Verify(ctx, testEmail, code); !errors.Is(err, autherr.ErrOTPExpired) {
		t.Fatalf("second verify: expected OTP_EXPIRED, got %v", err)
	}
	if !errors.Is(e.Verify(ctx, testEmail, code), autherr.ErrNotFound) {
		t.Fatal("expected NotFound kind")
	}
}

func TestVerifyThreeWrongGuessesLocks(t *testing.T) {
	e, mr, sender, ns := newTestEngine(t)
	ctx := context.Background()

	if err := e.Send(ctx, testEmail, "Ada", mail.TemplateUserActivation); err != nil {
		t.Fatalf("Send: %v", err)
	}
	code := sender.last(t).Data.OTP
	bad := wrongCode(code)

	for i, wantLeft := range []int{2, 1} {
		err := e.Verify(ctx, testEmail, bad)
		if !errors.Is(err, autherr.ErrInvalidOTP) {
			t.Fatalf("guess %d: expected INVALID_OTP, got %v", i+1, err)
		}
		structured, _ := autherr.As(err)
		if structured.AttemptsLeft != wantLeft {
			t.Fatalf("guess %d: attempts left = %d, want %d", i+1, structured.AttemptsLeft, wantLeft)
		}
	}
	if ttl := mr.TTL(ns.OTPAttempts(testEmail)); ttl != 15*time.Minute {
		t.Fatalf("attempts ttl = %v", ttl)
	}

	err := e.Verify(ctx, testEmail, bad)
	if !errors.Is(err, autherr.ErrOTPAttemptsExceeded) || !errors.Is(err, autherr.ErrTooManyAttempts) {
		t.Fatalf("third guess: expected TooManyAttempts, got %v", err)
	}
	if !mr.Exists(ns.OTPLock(testEmail)) {
		t.Fatal("expected lock to be set")
	}
	if ttl := mr.TTL(ns.OTPLock(testEmail)); ttl != 15*time.Minute {
		t.Fatalf("lock ttl = %v", ttl)
	}
	if mr.Exists(ns.OTP(testEmail)) || mr.Exists(ns.OTPAttempts(testEmail)) {
		t.Fatal("code and attempts must be deleted on lock")
	}

	// Even the correct code is rejected while locked.
	err = e.Verify(ctx, testEmail, code)
	if !errors.Is(err, autherr.ErrOTPLocked) || !errors.Is(err, autherr.ErrTemporarilyLocked) {
		t.Fatalf("fourth call: expected TemporarilyLocked, got %v", err)
	}
}

func TestVerifyMessageReportsAttemptsLeft(t *testing.T) {
	e, _, sender, _ := newTestEngine(t)
	ctx := context.Background()

	_ = e.Send(ctx, testEmail, "Ada", mail.TemplateUserActivation)
	err := e.Verify(ctx, testEmail, wrongCode(sender.last(t).Data.OTP))
	if err == nil || err.Error() != "incorrect OTP. 2 attempts left" {
		t.Fatalf("unexpected message %v", err)
	}
}

func TestVerifyAfterExpiry(t *testing.T) {
	e, mr, sender, _ := newTestEngine(t)
	ctx := context.Background()

	_ = e.Send(ctx, testEmail, "Ada", mail.TemplateUserActivation)
	code := sender.last(t).Data.OTP
	mr.FastForward(5*time.Minute + time.Second)

	if err := e.Verify(ctx, testEmail, code); !errors.Is(err, autherr.ErrOTPExpired) {
		t.Fatalf("expected expired code, got %v", err)
	}
}

func TestVerifyWithMemoryStore(t *testing.T) {
	sender := &captureSender{}
	e := New(kv.NewMemoryStore(), keys.New("mem"), sender, DefaultConfig())
	ctx := context.Background()

	if err := e.Send(ctx, testEmail, "Ada", mail.TemplateUserActivation); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := e.Verify(ctx, testEmail, sender.last(t).Data.OTP); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}
