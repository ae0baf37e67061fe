package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	router "github.com/dkeye/Scribe/internal/adapters/http"
	wsignal "github.com/dkeye/Scribe/internal/adapters/signal"
	"github.com/dkeye/Scribe/internal/app"
	"github.com/dkeye/Scribe/internal/app/orch"
	"github.com/dkeye/Scribe/internal/config"
	"github.com/dkeye/Scribe/internal/core"
	"github.com/dkeye/Scribe/internal/domain"
	"github.com/dkeye/Scribe/internal/protocol"
)

func newTestServer(t *testing.T, customize func(cfg *config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	if customize != nil {
		customize(cfg)
	}

	rooms := core.NewRoomManager(cfg.DefaultContent)
	reg := app.NewRegistry()
	o := &orch.Orchestrator{Registry: reg, Rooms: rooms}
	o.Transport = &wsignal.Broadcaster{
		Registry: reg,
		Rooms:    rooms,
		Policy:   app.SimplePolicy{Action: app.DropFrame},
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(router.NewHandler(ctx, cfg, o))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
	id   domain.ConnID
}

func dial(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	c := &client{t: t, conn: conn}
	env := c.expect(protocol.TypeConnected)
	var who protocol.Identity
	c.decode(env, &who)
	if who.ID == "" {
		t.Fatal("connected event without id")
	}
	c.id = who.ID
	return c
}

func (c *client) send(typ string, data any) {
	c.t.Helper()
	frame, err := json.Marshal(map[string]any{"type": typ, "data": data})
	if err != nil {
		c.t.Fatal(err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *client) expect(typ string) protocol.Envelope {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("read %s: %v", typ, err)
	}
	env, err := protocol.Decode(data)
	if err != nil {
		c.t.Fatalf("decode %q: %v", data, err)
	}
	if env.Type != typ {
		c.t.Fatalf("got %s %s, want %s", env.Type, env.Data, typ)
	}
	return env
}

func (c *client) decode(env protocol.Envelope, v any) {
	c.t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		c.t.Fatalf("decode %s payload: %v", env.Type, err)
	}
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			t.Fatalf("GET %s: decode %q: %v", url, body, err)
		}
	}
	return resp.StatusCode
}

func TestCollaborationScenario(t *testing.T) {
	srv := newTestServer(t, nil)

	a := dial(t, srv)
	a.send(protocol.TypeJoinRoom, map[string]string{"roomId": "doc", "username": "alice"})
	var data protocol.RoomData
	a.decode(a.expect(protocol.TypeRoomData), &data)
	if data.Content != domain.DefaultContent || len(data.Members) != 1 || data.Members[0].Name != "alice" {
		t.Fatalf("unexpected room-data for first joiner: %+v", data)
	}

	b := dial(t, srv)
	b.send(protocol.TypeJoinRoom, map[string]string{"roomId": "doc", "username": "bob"})
	b.decode(b.expect(protocol.TypeRoomData), &data)
	if len(data.Members) != 2 {
		t.Fatalf("second joiner sees %d members", len(data.Members))
	}
	var joined domain.Member
	a.decode(a.expect(protocol.TypeUserJoined), &joined)
	if joined.ID != b.id || joined.Name != "bob" {
		t.Fatalf("unexpected user-joined %+v", joined)
	}

	a.send(protocol.TypeContentChange, map[string]string{"roomId": "doc", "content": "<p>hi</p>"})
	var content string
	b.decode(b.expect(protocol.TypeContentChanged), &content)
	if content != "<p>hi</p>" {
		t.Fatalf("content = %q", content)
	}
	// the sender never gets its own change back
	a.send(protocol.TypePing, map[string]string{})
	a.expect(protocol.TypePong)

	var list struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	if code := getJSON(t, srv.URL+"/api/rooms", &list); code != http.StatusOK {
		t.Fatalf("list status %d", code)
	}
	if len(list.Rooms) != 1 || list.Rooms[0].ID != "doc" || list.Rooms[0].MemberCount != 2 {
		t.Fatalf("unexpected room list %+v", list.Rooms)
	}
	var snap core.RoomSnapshot
	if code := getJSON(t, srv.URL+"/api/rooms/doc", &snap); code != http.StatusOK {
		t.Fatalf("get status %d", code)
	}
	if snap.Content != "<p>hi</p>" {
		t.Fatalf("snapshot content %q", snap.Content)
	}

	_ = b.conn.Close()
	var left string
	a.decode(a.expect(protocol.TypeUserLeft), &left)
	if domain.ConnID(left) != b.id {
		t.Fatalf("user-left %q, want %q", left, b.id)
	}

	a.send(protocol.TypeLeaveRoom, map[string]string{"roomId": "doc"})
	deadline := time.Now().Add(5 * time.Second)
	for getJSON(t, srv.URL+"/api/rooms/doc", nil) != http.StatusNotFound {
		if time.Now().After(deadline) {
			t.Fatal("room was not destroyed after the last member left")
		}
		time.Sleep(10 * time.Millisecond)
	}

	a.send(protocol.TypeWhoAmI, map[string]string{})
	var who protocol.Identity
	a.decode(a.expect(protocol.TypeWhoAmI), &who)
	if who.ID != a.id || who.Room != "" {
		t.Fatalf("unexpected identity %+v", who)
	}
}

func TestRejoinAfterDestroyGetsDefaultContent(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.DefaultContent = "<p>new</p>" })

	a := dial(t, srv)
	a.send(protocol.TypeJoinRoom, map[string]string{"roomId": "r", "username": "alice"})
	a.expect(protocol.TypeRoomData)
	a.send(protocol.TypeContentChange, map[string]string{"roomId": "r", "content": "edited"})
	a.send(protocol.TypeLeaveRoom, map[string]string{"roomId": "r"})
	a.send(protocol.TypeJoinRoom, map[string]string{"roomId": "r", "username": "alice"})

	var data protocol.RoomData
	a.decode(a.expect(protocol.TypeRoomData), &data)
	if data.Content != "<p>new</p>" {
		t.Fatalf("content survived destruction: %q", data.Content)
	}
}

func TestProtocolErrors(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.JoinLimit = 1 })
	a := dial(t, srv)

	readError := func() protocol.Error {
		t.Helper()
		var e protocol.Error
		a.decode(a.expect(protocol.TypeError), &e)
		return e
	}

	if err := a.conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if e := readError(); e.Code != protocol.CodeBadPayload {
		t.Fatalf("bad json: code %q", e.Code)
	}

	a.send("draw-circle", map[string]string{})
	if e := readError(); e.Code != protocol.CodeUnknownType {
		t.Fatalf("unknown type: code %q", e.Code)
	}

	a.send(protocol.TypeJoinRoom, map[string]string{"username": "alice"})
	if e := readError(); e.Code != protocol.CodeBadPayload {
		t.Fatalf("missing room: code %q", e.Code)
	}

	a.send(protocol.TypeJoinRoom, map[string]string{"roomId": "x", "username": "alice"})
	a.expect(protocol.TypeRoomData)
	a.send(protocol.TypeJoinRoom, map[string]string{"roomId": "y", "username": "alice"})
	if e := readError(); e.Code != protocol.CodeRateLimited {
		t.Fatalf("second join: code %q", e.Code)
	}

	// the connection survives every error above
	a.send(protocol.TypePing, nil)
	a.expect(protocol.TypePong)
}

func TestOriginRejected(t *testing.T) {
	srv := newTestServer(t, nil)
	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	if err == nil {
		_ = conn.Close()
		t.Fatal("dial from a disallowed origin must fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected response %v", resp)
	}
	_ = resp.Body.Close()
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("healthz: %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "scribe_rooms_active") {
		t.Fatalf("metrics: %d", resp.StatusCode)
	}
}

func TestUnknownRoomNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	var body map[string]string
	if code := getJSON(t, srv.URL+"/api/rooms/nope", &body); code != http.StatusNotFound {
		t.Fatalf("status %d", code)
	}
	if body["error"] != "room not found" {
		t.Fatalf("body %v", body)
	}

	var list struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	getJSON(t, srv.URL+"/api/rooms", &list)
	if len(list.Rooms) != 0 {
		t.Fatalf("expected empty list, got %+v", list.Rooms)
	}
}
