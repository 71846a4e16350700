package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_StampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentAuth, Output: &buf})
	l.Info("hello", FieldUserID, int64(7))

	out := buf.String()
	if !strings.Contains(out, "component=auth") || !strings.Contains(out, "user_id=7") {
		t.Fatalf("unexpected output %q", out)
	}
	if l.Component() != ComponentAuth {
		t.Fatalf("component = %q", l.Component())
	}
}

func TestWithComponent_ReplacesTag(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentHTTP, Output: &buf}).With(FieldRequestID, "r-1").WithComponent(ComponentTrace)
	l.Info("done")

	out := buf.String()
	if n := strings.Count(out, "component="); n != 1 {
		t.Fatalf("component attribute written %d times: %q", n, out)
	}
	if !strings.Contains(out, "component=trace") || !strings.Contains(out, "request_id=r-1") {
		t.Fatalf("unexpected output %q", out)
	}

	buf.Reset()
	Wrap(slog.New(slog.NewTextHandler(&buf, nil)), ComponentWorker).WithComponent(ComponentAMQP).Info("x")
	if n := strings.Count(buf.String(), "component="); n != 1 {
		t.Fatalf("wrapped logger wrote component %d times: %q", n, buf.String())
	}
}

func TestLevelForStatus(t *testing.T) {
	cases := map[int]slog.Level{200: slog.LevelInfo, 302: slog.LevelInfo, 404: slog.LevelWarn, 503: slog.LevelError}
	for code, want := range cases {
		if got := LevelForStatus(code); got != want {
			t.Errorf("%d: got %v want %v", code, got, want)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentHTTP, Output: &buf})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("request id missing: %q", buf.String())
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("nil logger")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	ctx := context.Background()

	sl.LogTransactionWrite(ctx, OpCreate, 5, 2, 1250, "income")
	sl.LogError(ctx, "boom", errors.New("disk full"), ErrorTypeDatabase, OpUpdate, nil)

	out := buf.String()
	for _, want := range []string{"Transaction created", "transaction_id=5", "amount_cents=1250", "error_type=database_error", "operation=update"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}
