package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/NERVsystems/mapfeatures/pkg/tools"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *tools.Store {
	t.Helper()

	fc := geojson.NewFeatureCollection()
	f := geojson.NewLineStringFeature([][]float64{{139.70, 35.68, 0}, {139.71, 35.68, 0}})
	f.SetProperty("id", "Tokyo.Subway.15")
	f.SetProperty("type", 0)
	f.SetProperty("zoom", 15)
	fc.AddFeature(f)

	store := tools.NewStore(testLogger())
	if err := store.Load(fc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store
}

func TestNewServer(t *testing.T) {
	s, err := NewServer(testStore(t), testLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if s == nil || s.GetMCPServer() == nil {
		t.Fatal("NewServer() returned nil server")
	}
	if len(s.ToolNames()) == 0 {
		t.Error("no tools registered")
	}

	if _, err := NewServer(nil, testLogger()); err == nil {
		t.Error("NewServer(nil) should fail")
	}
}

func TestServer_ListTools(t *testing.T) {
	s, err := NewServer(testStore(t), testLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ctx := context.Background()
	s.GetMCPServer().HandleMessage(ctx, json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`))

	resp := s.GetMCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}

	for _, name := range s.ToolNames() {
		if !strings.Contains(string(data), `"`+name+`"`) {
			t.Errorf("tools/list response does not contain %s", name)
		}
	}
}

func TestServer_ServeEndsWithInput(t *testing.T) {
	s, err := NewServer(testStore(t), testLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(context.Background(), strings.NewReader(""), io.Discard)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		s.Shutdown()
		t.Fatal("Serve() did not return at end of input")
	}
}

func TestServer_Shutdown(t *testing.T) {
	s, err := NewServer(testStore(t), testLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	// No-op before the server runs
	s.Shutdown()

	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, in, io.Discard)
	}()

	// Wait for the server to be running
	deadline := time.Now().Add(5 * time.Second)
	for {
		s.mu.Lock()
		running := s.running
		s.mu.Unlock()
		if running || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.Shutdown()
	// Unblock the pending read
	w.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after Shutdown")
	}
	s.WaitForShutdown()
}
