package otpauth

import (
	"context"
	"errors"
	"testing"
)

func TestBuilderRequiresCollaborators(t *testing.T) {
	_, rdb := newTestRedis(t)

	tests := []struct {
		name    string
		builder *Builder
	}{
		{"no store", New().WithConfig(testConfig()).WithCredentialStore(newMockCredentialStore()).WithMailer(&captureMailer{})},
		{"no credentials", New().WithConfig(testConfig()).WithRedis(rdb).WithMailer(&captureMailer{})},
		{"no mailer", New().WithConfig(testConfig()).WithRedis(rdb).WithCredentialStore(newMockCredentialStore())},
		{"no secrets", New().WithRedis(rdb).WithCredentialStore(newMockCredentialStore()).WithMailer(&captureMailer{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.builder.Build(); err == nil {
				t.Fatal("expected Build to fail")
			}
		})
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().
		WithConfig(testConfig()).
		WithStore(NewMemoryStore()).
		WithCredentialStore(newMockCredentialStore()).
		WithMailer(&captureMailer{})

	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrBuilderUsed) {
		t.Fatalf("expected ErrBuilderUsed, got %v", err)
	}
}

func TestEngineWithMemoryStore(t *testing.T) {
	mailer := &captureMailer{}
	users := newMockCredentialStore()
	engine, err := New().
		WithConfig(testConfig()).
		WithStore(NewMemoryStore()).
		WithCredentialStore(users).
		WithMailer(mailer).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ctx := context.Background()
	if _, err := engine.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := engine.VerifyRegistration(ctx, "ada@example.com", mailer.last(t).Data.OTP); err != nil {
		t.Fatalf("VerifyRegistration: %v", err)
	}
	if _, err := engine.Login(ctx, "ada@example.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
}
