package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dominion/internal/domain/campaign"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
)

func entry(factionID, message string) campaign.LogEntry {
	e := campaign.NewLogEntry(campaign.LogActivity, time.Unix(1700000000, 0).UTC(), message, nil)
	e.FactionID = factionID
	return e
}

type recordingSink struct {
	name string
	err  error
	got  []campaign.LogEntry
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(_ context.Context, entries []campaign.LogEntry) error {
	s.got = append(s.got, entries...)
	return s.err
}

func TestFanout_FailingSinkDoesNotStopOthers(t *testing.T) {
	bad := &recordingSink{name: "bad", err: errors.New("disk full")}
	good := &recordingSink{name: "good"}
	f := NewFanout(zerolog.Nop(), bad, good)

	f.Publish(context.Background(), []campaign.LogEntry{entry("f1", "a")})

	if len(good.got) != 1 {
		t.Fatalf("expected good sink to receive entry, got %d", len(good.got))
	}
}

func TestFanout_SkipsEmptyBatch(t *testing.T) {
	s := &recordingSink{name: "s"}
	NewFanout(zerolog.Nop(), s).Publish(context.Background(), nil)
	if len(s.got) != 0 {
		t.Fatalf("expected no delivery")
	}
}

func TestArchive_WritesCompressedJSONL(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir)
	a.now = func() time.Time { return time.Date(2026, 3, 1, 14, 5, 0, 0, time.UTC) }

	if err := a.Send(context.Background(), []campaign.LogEntry{entry("f1", "first"), entry("f2", "second")}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "log-2026-03-01-14.jsonl.zst"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var messages []string
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e campaign.LogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		messages = append(messages, e.Message)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if strings.Join(messages, ",") != "first,second" {
		t.Fatalf("unexpected archive content: %v", messages)
	}
}

func TestArchive_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir)
	at := time.Date(2026, 3, 1, 14, 59, 0, 0, time.UTC)
	a.now = func() time.Time { return at }

	if err := a.Send(context.Background(), []campaign.LogEntry{entry("f1", "a")}); err != nil {
		t.Fatalf("send: %v", err)
	}
	at = at.Add(2 * time.Minute)
	if err := a.Send(context.Background(), []campaign.LogEntry{entry("f1", "b")}); err != nil {
		t.Fatalf("send: %v", err)
	}
	_ = a.Close()

	files, _ := filepath.Glob(filepath.Join(dir, "*.jsonl.zst"))
	if len(files) != 2 {
		t.Fatalf("expected two hourly files, got %v", files)
	}
}

func dialHub(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, h.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_FiltersByFaction(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	all := dialHub(t, srv, "/")
	defer all.Close()
	onlyF2 := dialHub(t, srv, "/?faction=f2")
	defer onlyF2.Close()
	waitForClients(t, hub, 2)

	if err := hub.Send(context.Background(), []campaign.LogEntry{entry("f1", "one"), entry("f2", "two")}); err != nil {
		t.Fatalf("send: %v", err)
	}

	read := func(conn *websocket.Conn) Message {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		return m
	}
	if m := read(all); m.Entry.Message != "one" {
		t.Fatalf("expected first entry, got %+v", m)
	}
	if m := read(all); m.Entry.Message != "two" {
		t.Fatalf("expected second entry, got %+v", m)
	}
	if m := read(onlyF2); m.Faction != "f2" || m.Entry.Message != "two" {
		t.Fatalf("expected only f2 entry, got %+v", m)
	}
}

func TestHub_SendAfterCloseFails(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	hub.Close()
	if err := hub.Send(context.Background(), []campaign.LogEntry{entry("f1", "x")}); !errors.Is(err, ErrHubClosed) {
		t.Fatalf("expected ErrHubClosed, got %v", err)
	}
}
