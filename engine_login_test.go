package otpauth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoginUnknownAndWrongPasswordIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "Ada", "ada@example.com", "secret1")

	_, errWrong := env.engine.Login(ctx, "ada@example.com", "wrong-password")
	_, errUnknown := env.engine.Login(ctx, "nobody@example.com", "wrong-password")

	for _, err := range []error{errWrong, errUnknown} {
		if !errors.Is(err, ErrInvalidCredentials) || !errors.Is(err, ErrAuth) {
			t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
		}
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Fatalf("messages differ: %q vs %q", errWrong.Error(), errUnknown.Error())
	}

	for _, email := range []string{"ada@example.com", "nobody@example.com"} {
		n, err := env.engine.LoginAttempts(ctx, email)
		if err != nil || n != 1 {
			t.Fatalf("%s: attempts = %d, err = %v", email, n, err)
		}
	}
}

func TestLoginLockoutAfterFiveFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const email = "ada@example.com"
	env.registerUser(t, "Ada", email, "secret1")

	for i := 0; i < 5; i++ {
		if _, err := env.engine.Login(ctx, email, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected INVALID_CREDENTIALS, got %v", i+1, err)
		}
	}

	// Locked out even with the right password.
	_, err := env.engine.Login(ctx, email, "secret1")
	if !errors.Is(err, ErrLoginRateLimited) || !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected LOGIN_RATE_LIMITED, got %v", err)
	}
	var structured *Error
	if !errors.As(err, &structured) || structured.RetryAfter <= 0 {
		t.Fatalf("expected retry after, got %+v", structured)
	}

	env.mr.FastForward(15*time.Minute + time.Second)
	if _, err := env.engine.Login(ctx, email, "secret1"); err != nil {
		t.Fatalf("Login after window: %v", err)
	}
}

func TestLoginSuccessClearsFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const email = "ada@example.com"
	env.registerUser(t, "Ada", email, "secret1")

	for i := 0; i < 3; i++ {
		_, _ = env.engine.Login(ctx, email, "wrong-password")
	}
	if _, err := env.engine.Login(ctx, email, "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if n, _ := env.engine.LoginAttempts(ctx, email); n != 0 {
		t.Fatalf("expected attempts cleared, got %d", n)
	}
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "Ada", "ada@example.com", "secret1")

	if _, err := env.engine.Login(context.Background(), " ADA@example.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestLoginStoreFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	env.users.findErr = errors.New("connection refused")

	_, err := env.engine.Login(context.Background(), "ada@example.com", "secret1")
	if !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected LOGIN_FAILED, got %v", err)
	}
}

func TestRefreshAndValidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.registerUser(t, "Ada", "ada@example.com", "secret1")

	login, err := env.engine.Login(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := env.engine.Validate(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.ID != user.ID || claims.Role != "user" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := env.engine.Validate(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}

	refreshed, err := env.engine.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.User.ID != user.ID || refreshed.AccessToken == "" {
		t.Fatalf("unexpected refresh result %+v", refreshed)
	}

	if _, err := env.engine.Refresh(ctx, login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
	if _, err := env.engine.Refresh(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected INVALID_TOKEN, got %v", err)
	}
}

func TestValidateLatencyHistogram(t *testing.T) {
	_, rdb := newTestRedis(t)
	cfg := testConfig()
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithCredentialStore(newMockCredentialStore()).
		WithMailer(&captureMailer{}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, _ = engine.Validate(context.Background(), "garbage")

	var total uint64
	for _, n := range engine.MetricsSnapshot().Histograms[MetricValidateLatency] {
		total += n
	}
	if total != 1 {
		t.Fatalf("expected one latency sample, got %d", total)
	}
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const email = "ada@example.com"
	env.registerUser(t, "Ada", email, "secret1")
	before, _ := env.users.user(email)

	for _, upgrade := range []bool{false, true} {
		cfg := testConfig()
		cfg.Password.Time = 2
		cfg.Password.UpgradeOnLogin = upgrade
		_, rdb := newTestRedis(t)
		stronger, err := New().
			WithConfig(cfg).
			WithRedis(rdb).
			WithCredentialStore(env.users).
			WithMailer(env.mailer).
			Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		if _, err := stronger.Login(ctx, email, "secret1"); err != nil {
			t.Fatalf("Login(upgrade=%v): %v", upgrade, err)
		}
		after, _ := env.users.user(email)
		changed := after.PasswordHash != before.PasswordHash
		if changed != upgrade {
			t.Fatalf("upgrade=%v: hash changed = %v", upgrade, changed)
		}
		if upgrade && !strings.Contains(after.PasswordHash, ",t=2,") {
			t.Fatalf("expected t=2 hash, got %s", after.PasswordHash)
		}
	}

	if _, err := env.engine.Login(ctx, email, "secret1"); err != nil {
		t.Fatalf("Login with upgraded hash: %v", err)
	}
}
