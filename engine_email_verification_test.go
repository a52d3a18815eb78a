package taskauth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerifyEmailSuccess(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, env)

	code := env.users.byEmail(t, "a@b.com").VerificationCode
	if err := env.engine.VerifyEmail(ctx, "a@b.com", code); err != nil {
		t.Fatalf("VerifyEmail error: %v", err)
	}

	stored := env.users.byEmail(t, "a@b.com")
	if !stored.Verified {
		t.Fatal("account not marked verified")
	}
	if stored.VerificationCode != "" {
		t.Fatal("consumed code not cleared")
	}
}

func TestVerifyEmailWrongCode(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, env)

	if err := env.engine.VerifyEmail(ctx, "a@b.com", "000000"); !errors.Is(err, ErrVerificationInvalid) {
		t.Fatalf("wrong code: %v", err)
	}
	if err := env.engine.VerifyEmail(ctx, "a@b.com", ""); !errors.Is(err, ErrVerificationInvalid) {
		t.Fatalf("empty code: %v", err)
	}
	if env.users.byEmail(t, "a@b.com").Verified {
		t.Fatal("account verified by a wrong code")
	}
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, env)

	code := env.users.byEmail(t, "a@b.com").VerificationCode

	env.users.mu.Lock()
	env.users.users["a@b.com"].VerificationExpires = time.Now().Add(-time.Second)
	env.users.mu.Unlock()

	if err := env.engine.VerifyEmail(ctx, "a@b.com", code); !errors.Is(err, ErrVerificationInvalid) {
		t.Fatalf("expired code: %v", err)
	}
}

func TestVerifyEmailUnknownAddress(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()

	if err := env.engine.VerifyEmail(ctx, "nobody@b.com", "123456"); !errors.Is(err, ErrVerificationInvalid) {
		t.Fatalf("unknown address: %v", err)
	}
}

func TestVerifyEmailAlreadyVerified(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, env)

	code := env.users.byEmail(t, "a@b.com").VerificationCode
	if err := env.engine.VerifyEmail(ctx, "a@b.com", code); err != nil {
		t.Fatalf("first VerifyEmail error: %v", err)
	}
	// Replays are a no-op, even with a stale or wrong code.
	if err := env.engine.VerifyEmail(ctx, "a@b.com", code); err != nil {
		t.Fatalf("replay errored: %v", err)
	}
	if err := env.engine.VerifyEmail(ctx, "a@b.com", "000000"); err != nil {
		t.Fatalf("verified account rejected a code: %v", err)
	}
}
