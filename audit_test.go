package taskauth

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestDispatcherDeliversInOrder(t *testing.T) {
	sink := NewChannelSink(16)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16}, sink)

	for i, eventType := range []string{auditEventSignup, auditEventLoginSuccess, auditEventLogout} {
		d.Emit(context.Background(), AuditEvent{EventType: eventType, UserID: "u1", Metadata: map[string]string{"seq": string(rune('0' + i))}})
	}
	d.Close()

	want := []string{auditEventSignup, auditEventLoginSuccess, auditEventLogout}
	for _, eventType := range want {
		select {
		case got := <-sink.Events():
			if got.EventType != eventType {
				t.Fatalf("event = %q, want %q", got.EventType, eventType)
			}
		case <-time.After(time.Second):
			t.Fatalf("event %q never delivered", eventType)
		}
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// A sink that never consumes: the buffer fills and overflow is counted,
	// not blocked on.
	blocked := make(chan struct{})
	sink := blockingSink{release: blocked}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventSignup})
	}
	if d.Dropped() == 0 {
		t.Fatal("overflow not counted")
	}

	close(blocked)
	d.Close()
}

type blockingSink struct {
	release <-chan struct{}
}

func (s blockingSink) Emit(_ context.Context, _ AuditEvent) {
	<-s.release
}

func TestDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, NewChannelSink(1))
	if d != nil {
		t.Fatal("disabled audit should not allocate a dispatcher")
	}
	// Nil receivers are safe everywhere the engine touches them.
	d.Emit(context.Background(), AuditEvent{EventType: auditEventSignup})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(64)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 64}, sink)

	const n = 32
	for i := 0; i < n; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess})
	}
	d.Close()

	received := 0
	for received < n {
		select {
		case <-sink.Events():
			received++
		case <-time.After(time.Second):
			t.Fatalf("delivered %d of %d buffered events", received, n)
		}
	}
	if d.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", d.Dropped())
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		EventType: auditEventLoginSuccess,
		UserID:    "u1",
		IP:        "10.0.0.1",
		Success:   true,
	})

	var decoded AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not one JSON line: %v", err)
	}
	if decoded.EventType != auditEventLoginSuccess || decoded.UserID != "u1" || !decoded.Success {
		t.Fatalf("round-trip mismatch: %+v", decoded)
	}
}

func TestEngineEmitsAuditTrail(t *testing.T) {
	sink := NewChannelSink(64)
	cfg := testEngineConfig()

	env := &testEnv{users: newFakeUsers(), sessions: newFakeSessions(), mailer: &fakeMailer{}}
	engine, err := New().
		WithConfig(cfg).
		WithUserStore(env.users).
		WithSessionStore(env.sessions).
		WithMailer(env.mailer).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	env.engine = engine

	ctx := context.Background()
	if _, err := engine.Signup(ctx, SignupRequest{
		Email: "a@b.com", Password: "Password123!", Name: "Ana", IP: "10.0.0.1",
	}); err != nil {
		t.Fatalf("Signup error: %v", err)
	}
	engine.Close()

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventSignup {
			t.Fatalf("event = %q, want %q", event.EventType, auditEventSignup)
		}
		if event.Email != "a@b.com" || event.IP != "10.0.0.1" || !event.Success {
			t.Fatalf("event fields: %+v", event)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("event not timestamped")
		}
	case <-time.After(time.Second):
		t.Fatal("signup event never delivered")
	}
}
