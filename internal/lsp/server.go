package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"csls/internal/index"
	"csls/internal/indexer"
	"csls/internal/project"
	"csls/internal/source"
	"csls/internal/validate"
	"csls/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// LoadFunc loads every scene of the workspace rooted at root.
type LoadFunc func(ctx context.Context, root string) (*project.Workspace, error)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce time.Duration
	// Load defaults to LoadWorkspace.
	Load LoadFunc
	// Validate holds the initial diagnostics options. A csls.toml found at
	// the workspace root overrides them.
	Validate *validate.Options
	Trace    bool
}

// Server handles stdio JSON-RPC for the ChoiceScript language server.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	mu     sync.Mutex

	idx       *index.Index
	openDocs  map[string]*source.Document
	versions  map[string]int
	diskDocs  map[string]*source.Document
	published map[string]struct{}

	workspaceRoot     string
	shutdownRequested bool
	debounce          time.Duration
	debounceTimer     *time.Timer
	analysisSeq       uint64
	latestSeq         uint64
	load              LoadFunc
	validate          validate.Options
	traceLSP          bool
	baseCtx           context.Context
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	load := opts.Load
	if load == nil {
		load = LoadWorkspace
	}
	vopts := validate.DefaultOptions()
	if opts.Validate != nil {
		vopts = *opts.Validate
	}
	return &Server{
		in:        bufio.NewReader(in),
		out:       bufio.NewWriter(out),
		idx:       index.New(),
		openDocs:  make(map[string]*source.Document),
		versions:  make(map[string]int),
		diskDocs:  make(map[string]*source.Document),
		published: make(map[string]struct{}),
		debounce:  debounce,
		load:      load,
		validate:  vopts,
		traceLSP:  opts.Trace,
		baseCtx:   context.Background(),
	}
}

// LoadWorkspace finds csls.toml at or above root and loads the game it
// describes. Without a config file root itself is searched.
func LoadWorkspace(ctx context.Context, root string) (*project.Workspace, error) {
	root, cfg, err := project.ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	return project.Load(ctx, root, project.Options{Config: cfg})
}

// Run serves LSP requests until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	s.tracef("<- %s", msg.Method)
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		s.loadWorkspace()
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	case "textDocument/references":
		return s.handleReferences(msg)
	case "textDocument/rename":
		return s.handleRename(msg)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case "textDocument/foldingRange":
		return s.handleFoldingRange(msg)
	case "csls/wordCount":
		return s.handleWordCount(msg)
	case "csls/styleGuide":
		return s.handleStyleGuide(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = source.URIToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = source.URIToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()
	if len(params.InitializationOptions) > 0 {
		s.applySettings(params.InitializationOptions)
	}

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			HoverProvider:          true,
			DefinitionProvider:     true,
			ReferencesProvider:     true,
			RenameProvider:         &renameOptions{},
			DocumentSymbolProvider: true,
			FoldingRangeProvider:   true,
			CompletionProvider: &completionOptions{
				TriggerCharacters: []string{"*", "{", " "},
			},
			CodeActionProvider: &codeActionOptions{
				CodeActionKinds: []string{kindQuickFix, kindSourceFixAll},
			},
		},
		ServerInfo: &serverInfo{Name: "csls", Version: version.Plain()},
	}
	return s.sendResponse(msg.ID, result)
}

// loadWorkspace replaces the index with one built from every scene of the
// workspace, then re-applies the open documents on top of it.
func (s *Server) loadWorkspace() {
	s.mu.Lock()
	root := s.workspaceRoot
	s.mu.Unlock()
	if root == "" {
		return
	}
	start := time.Now()
	ws, err := s.load(s.baseCtx, resolveStartDir(root))
	if err != nil {
		s.logf("failed to load workspace %s: %v", root, err)
		return
	}
	for path, ferr := range ws.Failed {
		s.logf("failed to read %s: %v", path, ferr)
	}

	s.mu.Lock()
	s.idx = ws.Index
	s.diskDocs = make(map[string]*source.Document, len(ws.Documents))
	for _, doc := range ws.Documents {
		s.diskDocs[doc.URI] = doc
	}
	s.validate = mergeConfig(s.validate, ws.Config)
	for _, doc := range s.openDocs {
		indexer.IndexDocument(doc, s.idx)
	}
	n := len(ws.Documents)
	s.mu.Unlock()

	s.tracef("indexed %d scenes under %s in %s", n, ws.SceneDir, time.Since(start).Round(time.Millisecond))
	s.scheduleDiagnostics()
}

func mergeConfig(opts validate.Options, cfg project.Config) validate.Options {
	opts.StyleGuide = cfg.Diagnostics.StyleGuide
	if cfg.Diagnostics.Max > 0 {
		opts.Max = cfg.Diagnostics.Max
	}
	return opts
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()
	atomic.AddUint64(&s.latestSeq, 1)
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.updateDocument(uri, params.TextDocument.Text, params.TextDocument.Version)
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	text := ""
	if doc, ok := s.openDocs[uri]; ok {
		text = doc.Text
	}
	s.mu.Unlock()
	text = applyChanges(text, params.ContentChanges)
	s.updateDocument(uri, text, params.TextDocument.Version)
	s.tracef("didChange: uri=%s version=%d", uri, params.TextDocument.Version)
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	if params.Text != nil {
		s.mu.Lock()
		ver := s.versions[uri]
		s.mu.Unlock()
		s.updateDocument(uri, *params.Text, ver)
	}
	s.flushDiagnostics()
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.openDocs, uri)
	delete(s.versions, uri)
	_, onDisk := s.diskDocs[uri]
	idx := s.idx
	s.mu.Unlock()

	if onDisk {
		// Scenes of the workspace stay indexed with their saved contents.
		if doc, err := source.LoadDocument(source.URIToPath(uri)); err == nil {
			s.mu.Lock()
			s.diskDocs[uri] = doc
			s.mu.Unlock()
			indexer.IndexDocument(doc, idx)
		} else {
			s.forgetDocument(uri)
		}
	} else {
		s.forgetDocument(uri)
	}
	s.scheduleDiagnostics()
	return nil
}

func (s *Server) updateDocument(uri, text string, version int) {
	doc := source.NewDocument(uri, text)
	s.mu.Lock()
	s.openDocs[uri] = doc
	s.versions[uri] = version
	idx := s.idx
	s.mu.Unlock()
	indexer.IndexDocument(doc, idx)
}

func (s *Server) forgetDocument(uri string) {
	s.mu.Lock()
	delete(s.diskDocs, uri)
	idx := s.idx
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	idx.RemoveDocument(uri)
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

// document returns the current text of uri: the open buffer when there is
// one, else the scene as loaded from disk.
func (s *Server) document(uri string) (*source.Document, *index.Index, bool) {
	uri = canonicalURI(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.openDocs[uri]; ok {
		return doc, s.idx, true
	}
	if doc, ok := s.diskDocs[uri]; ok {
		return doc, s.idx, true
	}
	return nil, s.idx, false
}

func (s *Server) currentIndex() *index.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Version:     version,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}

func (s *Server) tracef(format string, args ...any) {
	s.mu.Lock()
	trace := s.traceLSP
	s.mu.Unlock()
	if trace {
		s.logf(format, args...)
	}
}

func (s *Server) isLatestSeq(seq uint64) bool {
	if seq == 0 {
		return false
	}
	return seq == atomic.LoadUint64(&s.latestSeq)
}

// decodeParams unmarshals request params, answering invalid ones with an
// error response. ok is false when the caller should stop.
func (s *Server) decodeParams(msg *rpcMessage, v any) (ok bool, err error) {
	if len(msg.Params) == 0 {
		return true, nil
	}
	if jerr := json.Unmarshal(msg.Params, v); jerr != nil {
		return false, s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	return true, nil
}
