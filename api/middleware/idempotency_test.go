package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

func newMiniredisStore(t *testing.T) (*pkgredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := pkgredis.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func postOrder(body, key, userID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req.WithContext(WithUserID(context.Background(), userID))
}

func TestIsIdempotentRoute(t *testing.T) {
	tests := []struct {
		method  string
		pattern string
		want    bool
	}{
		{http.MethodPost, "/orders", true},
		{http.MethodPost, "/orders/", true},
		{http.MethodPost, "/cart/add", true},
		{http.MethodPost, "/product/addDiscountTiers", true},
		{http.MethodGet, "/orders", false},
		{http.MethodPut, "/cart/update", false},
		{http.MethodPost, "/reviews", false},
	}
	for _, tt := range tests {
		if got := isIdempotentRoute(tt.method, tt.pattern); got != tt.want {
			t.Fatalf("%s %s: expected %v got %v", tt.method, tt.pattern, tt.want, got)
		}
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store, mr := newMiniredisStore(t)
	mw := Idempotency(store, time.Hour, nil)
	var calls int
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_id":"ORD-1"}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, postOrder(`{"a":1}`, "key-1", "user-1"))
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, postOrder(`{"a":1}`, "key-1", "user-1"))
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", replay.Code)
	}
	if replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if strings.TrimSpace(replay.Body.String()) != `{"data":{"order_id":"ORD-1"}}` {
		t.Fatalf("unexpected replay body %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}

	key := store.IdempotencyKey("user-1|POST|/orders", "key-1")
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected record ttl within an hour, got %v", ttl)
	}

	other := httptest.NewRecorder()
	handler.ServeHTTP(other, postOrder(`{"a":1}`, "key-1", "user-2"))
	if calls != 2 {
		t.Fatalf("keys must be scoped per user, handler ran %d times", calls)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store, _ := newMiniredisStore(t)
	handler := Idempotency(store, time.Hour, nil)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), postOrder(`{"a":1}`, "xyz", "user-1"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, postOrder(`{"a":2}`, "xyz", "user-1"))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}

func TestIdempotencySkipsServerErrorsAndMissingKey(t *testing.T) {
	store, _ := newMiniredisStore(t)
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), postOrder(`{}`, "retry-me", "user-1"))
	handler.ServeHTTP(httptest.NewRecorder(), postOrder(`{}`, "retry-me", "user-1"))
	if calls != 2 {
		t.Fatalf("server errors must not be replayed, handler ran %d times", calls)
	}

	handler.ServeHTTP(httptest.NewRecorder(), postOrder(`{}`, "", "user-1"))
	if calls != 3 {
		t.Fatalf("requests without a key pass through, handler ran %d times", calls)
	}
}

func TestIdempotencyReportsStoreOutage(t *testing.T) {
	store, mr := newMiniredisStore(t)
	handler := Idempotency(store, time.Hour, nil)(okHandler())
	mr.Close()

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, postOrder(`{}`, "k", "user-1"))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestIdempotencyRejectsDuplicateWhileInFlight(t *testing.T) {
	store, mr := newMiniredisStore(t)
	var calls int
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	body := `{"a":1}`
	key := store.IdempotencyKey("user-1|POST|/orders", "busy")
	pending, _ := json.Marshal(idempotencyRecord{State: recordPending, RequestHash: hashBody([]byte(body))})
	if err := mr.Set(key, string(pending)); err != nil {
		t.Fatalf("seed pending record: %v", err)
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, postOrder(body, "busy", "user-1"))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 while the first request runs, got %d", resp.Code)
	}
	if calls != 0 {
		t.Fatalf("duplicate must not reach the handler, ran %d times", calls)
	}
}
