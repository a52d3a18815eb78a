package taskauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Alexandru2984/taskauth/validate"
)

func signupTestUser(t *testing.T, env *testEnv) *SignupResult {
	t.Helper()
	result, err := env.engine.Signup(context.Background(), SignupRequest{
		Email: "a@b.com", Password: "Password123!", Name: "Ana", IP: "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	return result
}

func TestRequestPasswordResetIssuesToken(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, env)

	if err := env.engine.RequestPasswordReset(ctx, "a@b.com", "10.0.0.1"); err != nil {
		t.Fatalf("RequestPasswordReset error: %v", err)
	}

	stored := env.users.byEmail(t, "a@b.com")
	if !hexToken64.MatchString(stored.ResetToken) {
		t.Fatalf("reset token not 64 hex chars: %q", stored.ResetToken)
	}
	if !time.Now().Before(stored.ResetExpires) {
		t.Fatal("issued token already expired")
	}
	if env.mailer.resetSends != 1 || env.mailer.lastResetToken != stored.ResetToken {
		t.Fatalf("mailed token mismatch: sends=%d mailed=%q stored=%q",
			env.mailer.resetSends, env.mailer.lastResetToken, stored.ResetToken)
	}
}

func TestRequestPasswordResetHidesAccountExistence(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()

	if err := env.engine.RequestPasswordReset(ctx, "nobody@b.com", "10.0.0.1"); err != nil {
		t.Fatalf("unknown address must not error: %v", err)
	}
	if env.mailer.resetSends != 0 {
		t.Fatal("mail sent for unknown address")
	}
}

func TestRequestPasswordResetSupersedesPriorToken(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, env)

	if err := env.engine.RequestPasswordReset(ctx, "a@b.com", "10.0.0.1"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	first := env.users.byEmail(t, "a@b.com").ResetToken

	if err := env.engine.RequestPasswordReset(ctx, "a@b.com", "10.0.0.1"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	second := env.users.byEmail(t, "a@b.com").ResetToken
	if first == second {
		t.Fatal("reissue did not rotate the token")
	}

	if err := env.engine.ResetPassword(ctx, first, "NewPassword456!"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("superseded token still consumable: %v", err)
	}
}

func TestResetPasswordFullFlow(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signup := signupTestUser(t, env)

	if err := env.engine.RequestPasswordReset(ctx, "a@b.com", "10.0.0.1"); err != nil {
		t.Fatalf("RequestPasswordReset error: %v", err)
	}
	token := env.users.byEmail(t, "a@b.com").ResetToken

	if err := env.engine.ResetPassword(ctx, token, "NewPassword456!"); err != nil {
		t.Fatalf("ResetPassword error: %v", err)
	}

	// Old credential dead, new one live.
	if _, err := env.engine.Login(ctx, LoginRequest{Email: "a@b.com", Password: "Password123!", IP: "10.0.0.1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := env.engine.Login(ctx, LoginRequest{Email: "a@b.com", Password: "NewPassword456!", IP: "10.0.0.1"}); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	// Every pre-reset session is revoked.
	if _, err := env.engine.ValidateSession(ctx, signup.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("pre-reset session survived: %v", err)
	}

	// The token is single-use.
	if err := env.engine.ResetPassword(ctx, token, "AnotherPass789!"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("consumed token reused: %v", err)
	}
}

func TestResetPasswordRejectsBadTokens(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, env)

	if err := env.engine.ResetPassword(ctx, "", "NewPassword456!"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("empty token: %v", err)
	}
	if err := env.engine.ResetPassword(ctx, "deadbeef", "NewPassword456!"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("unknown token: %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, env)

	if err := env.engine.RequestPasswordReset(ctx, "a@b.com", "10.0.0.1"); err != nil {
		t.Fatalf("RequestPasswordReset error: %v", err)
	}
	token := env.users.byEmail(t, "a@b.com").ResetToken

	env.users.mu.Lock()
	env.users.users["a@b.com"].ResetExpires = time.Now().Add(-time.Second)
	env.users.mu.Unlock()

	if err := env.engine.ResetPassword(ctx, token, "NewPassword456!"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expired token: %v", err)
	}
	if env.users.updateHashCalls != 0 {
		t.Fatal("expired token changed the credential")
	}
}

func TestResetPasswordValidatesNewPassword(t *testing.T) {
	env := newTestEngine(t, testEngineConfig())
	ctx := context.Background()
	signupTestUser(t, env)

	if err := env.engine.RequestPasswordReset(ctx, "a@b.com", "10.0.0.1"); err != nil {
		t.Fatalf("RequestPasswordReset error: %v", err)
	}
	token := env.users.byEmail(t, "a@b.com").ResetToken

	if err := env.engine.ResetPassword(ctx, token, "weak"); !errors.Is(err, validate.ErrWeakPassword) {
		t.Fatalf("weak replacement accepted: %v", err)
	}
	// The token survives a rejected attempt.
	if err := env.engine.ResetPassword(ctx, token, "NewPassword456!"); err != nil {
		t.Fatalf("token consumed by rejected attempt: %v", err)
	}
}

func TestRequestPasswordResetRateLimited(t *testing.T) {
	cfg := testEngineConfig()
	cfg.RateLimit.Reset = RatePolicy{MaxRequests: 3, Window: 15 * time.Minute}
	env := newTestEngine(t, cfg)
	ctx := context.Background()
	signupTestUser(t, env)

	for i := 0; i < 3; i++ {
		if err := env.engine.RequestPasswordReset(ctx, "a@b.com", "192.0.2.5"); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}
	if err := env.engine.RequestPasswordReset(ctx, "a@b.com", "192.0.2.5"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("fourth request: expected ErrRateLimited, got %v", err)
	}
}
