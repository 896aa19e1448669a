package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"csls/internal/source"
)

type testServer struct {
	t      *testing.T
	server *Server
	out    *bytes.Buffer
	nextID int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	var out bytes.Buffer
	server := NewServer(bytes.NewReader(nil), &out, ServerOptions{Debounce: time.Hour})
	t.Cleanup(func() {
		server.mu.Lock()
		if server.debounceTimer != nil {
			server.debounceTimer.Stop()
		}
		server.mu.Unlock()
	})
	return &testServer{t: t, server: server, out: &out}
}

// notify delivers a notification and fails the test on error.
func (ts *testServer) notify(method string, params any) {
	ts.t.Helper()
	payload, err := json.Marshal(params)
	if err != nil {
		ts.t.Fatalf("marshal %s: %v", method, err)
	}
	if err := ts.server.handleMessage(&rpcMessage{JSONRPC: "2.0", Method: method, Params: payload}); err != nil {
		ts.t.Fatalf("%s: %v", method, err)
	}
}

// request delivers a request and decodes the response result into result.
func (ts *testServer) request(method string, params, result any) *rpcError {
	ts.t.Helper()
	ts.nextID++
	id, _ := json.Marshal(ts.nextID)
	payload, err := json.Marshal(params)
	if err != nil {
		ts.t.Fatalf("marshal %s: %v", method, err)
	}
	ts.out.Reset()
	if err := ts.server.handleMessage(&rpcMessage{JSONRPC: "2.0", ID: id, Method: method, Params: payload}); err != nil {
		ts.t.Fatalf("%s: %v", method, err)
	}
	for _, msg := range ts.messages() {
		if string(msg.ID) != string(id) {
			continue
		}
		if msg.Error != nil {
			return msg.Error
		}
		if result != nil {
			if err := json.Unmarshal(msg.Result, result); err != nil {
				ts.t.Fatalf("decode %s result: %v (%s)", method, err, msg.Result)
			}
		}
		return nil
	}
	ts.t.Fatalf("no response to %s", method)
	return nil
}

// messages drains everything the server has written so far.
func (ts *testServer) messages() []rpcMessage {
	ts.t.Helper()
	reader := bufio.NewReader(bytes.NewReader(ts.out.Bytes()))
	ts.out.Reset()
	var out []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			ts.t.Fatalf("read message: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			ts.t.Fatalf("decode message: %v", err)
		}
		out = append(out, msg)
	}
}

// publishes flushes diagnostics and returns them keyed by URI.
func (ts *testServer) publishes() map[string][]lspDiagnostic {
	ts.t.Helper()
	ts.out.Reset()
	ts.server.flushDiagnostics()
	got := make(map[string][]lspDiagnostic)
	for _, msg := range ts.messages() {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params publishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			ts.t.Fatalf("decode publish: %v", err)
		}
		got[params.URI] = params.Diagnostics
	}
	return got
}

func (ts *testServer) open(uri, text string) {
	ts.t.Helper()
	ts.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: "choicescript", Version: 1, Text: text},
	})
}

func at(uri string, line, character int) textDocumentPositionParams {
	return textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     position{Line: line, Character: character},
	}
}

// writeGame lays out scene files under a temp directory and returns the
// directory and the URI of every scene by name.
func writeGame(t *testing.T, scenes map[string]string) (string, map[string]string) {
	t.Helper()
	dir := t.TempDir()
	uris := make(map[string]string, len(scenes))
	for name, content := range scenes {
		path := filepath.Join(dir, name+".txt")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		uris[name] = source.PathToURI(path)
	}
	return dir, uris
}

func hasCode(list []lspDiagnostic, code string) bool {
	for _, d := range list {
		if d.Code == code {
			return true
		}
	}
	return false
}
