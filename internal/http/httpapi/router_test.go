package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rahmanmohd/incubator-api/internal/domain"
	"github.com/rahmanmohd/incubator-api/internal/feed"
	"github.com/rahmanmohd/incubator-api/internal/http/handlers"
	"github.com/rahmanmohd/incubator-api/internal/middleware"
)

func adminToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := middleware.SignJWT(secret, middleware.TokenClaims{
		Sub:  "admin-1",
		Role: middleware.RoleAdmin,
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	return token
}

func TestFeedRouteUpgradesThroughMiddleware(t *testing.T) {
	const secret = "router-test-secret"
	hub := feed.NewHub(4, zerolog.Nop())
	app := handlers.NewApp(nil, nil, feed.NewWSHandler(hub, zerolog.Nop()), zerolog.Nop())
	router := NewRouter(app, Options{Logger: zerolog.Nop(), JWTSecret: secret})

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/applications/feed"
	header := http.Header{"Authorization": {"Bearer " + adminToken(t, secret)}}

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("websocket dial through router failed (status %d): %v", status, err)
	}
	defer conn.Close()

	// The subscription is registered after the handshake completes; wait for
	// it before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("feed never registered a subscriber")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish(feed.Event{
		Type:   feed.EventStatusChanged,
		Kind:   domain.KindIncubation,
		ID:     "inc-1",
		Status: domain.StatusApproved,
		At:     time.Now().UTC(),
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev feed.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("reading feed event: %v", err)
	}
	if ev.Type != feed.EventStatusChanged || ev.Kind != domain.KindIncubation || ev.ID != "inc-1" {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestFeedRouteRequiresAdminToken(t *testing.T) {
	hub := feed.NewHub(4, zerolog.Nop())
	app := handlers.NewApp(nil, nil, feed.NewWSHandler(hub, zerolog.Nop()), zerolog.Nop())
	router := NewRouter(app, Options{Logger: zerolog.Nop(), JWTSecret: "router-test-secret"})

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/applications/feed"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial without a token to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %#v", resp)
	}
}
