package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"csls/internal/diag"
	"csls/internal/index"
	"csls/internal/indexer"
	"csls/internal/source"
	"csls/internal/validate"
)

// ErrNoStartup reports a workspace without a startup.txt.
var ErrNoStartup = errors.New("no " + index.StartupFileName + " found")

// skipDirs are never descended into while looking for scenes.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// Options controls workspace loading.
type Options struct {
	Config   Config
	Jobs     int
	Progress ProgressSink
}

// Workspace is a loaded game: its scene files and a fully built index.
type Workspace struct {
	Root      string
	SceneDir  string
	Config    Config
	Index     *index.Index
	Documents []*source.Document // sorted by URI
	// Failed maps scene paths that could not be read to the read error.
	Failed map[string]error
}

// Document returns the loaded document for uri.
func (w *Workspace) Document(uri string) (*source.Document, bool) {
	i := sort.Search(len(w.Documents), func(i int) bool { return w.Documents[i].URI >= uri })
	if i < len(w.Documents) && w.Documents[i].URI == uri {
		return w.Documents[i], true
	}
	return nil, false
}

// RequireStartup fails with ErrNoStartup unless the index has a startup
// document.
func (w *Workspace) RequireStartup() error {
	if w.Index.StartupURI() == "" {
		return fmt.Errorf("%s: %w", w.SceneDir, ErrNoStartup)
	}
	return nil
}

// Matcher decides which workspace paths are ignored. Paths are relative to
// the workspace root and slash separated.
type Matcher struct {
	rules []*ignore.GitIgnore
}

// NewMatcher loads root/.gitignore, when present, plus the extra patterns.
func NewMatcher(root string, extra []string) *Matcher {
	m := &Matcher{}
	gitignorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		if gi, err := ignore.CompileIgnoreFile(gitignorePath); err == nil {
			m.rules = append(m.rules, gi)
		}
	}
	if len(extra) > 0 {
		m.rules = append(m.rules, ignore.CompileIgnoreLines(extra...))
	}
	return m
}

func (m *Matcher) Ignored(rel string) bool {
	for _, r := range m.rules {
		if r.MatchesPath(rel) {
			return true
		}
	}
	return false
}

// FindSceneDir locates the scene directory under root: the configured one
// when set, else the shallowest directory holding startup.txt, else root.
func FindSceneDir(root string, cfg Config, m *Matcher) (string, error) {
	if cfg.Project.Scenes != "" {
		dir := filepath.Join(root, cfg.Project.Scenes)
		info, err := os.Stat(dir)
		if err != nil {
			return "", fmt.Errorf("scene directory: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("scene directory %s is not a directory", dir)
		}
		return dir, nil
	}
	best := ""
	bestDepth := -1
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || m.Ignored(rel) || m.Ignored(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(d.Name(), index.StartupFileName) || m.Ignored(rel) {
			return nil
		}
		depth := strings.Count(rel, "/")
		if bestDepth < 0 || depth < bestDepth {
			best, bestDepth = filepath.Dir(path), depth
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk %s: %w", root, err)
	}
	if best == "" {
		return root, nil
	}
	return best, nil
}

// ListScenes returns the scene files directly inside dir, sorted.
func ListScenes(root, dir string, m *Matcher) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), source.SceneExt) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if rel, err := filepath.Rel(root, path); err == nil && m.Ignored(filepath.ToSlash(rel)) {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// Load discovers the scenes under root and indexes them in parallel. The
// index is marked as fully indexed once every scene is in.
func Load(ctx context.Context, root string, opts Options) (*Workspace, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	m := NewMatcher(root, opts.Config.Project.Exclude)
	sceneDir, err := FindSceneDir(root, opts.Config, m)
	if err != nil {
		return nil, err
	}
	files, err := ListScenes(root, sceneDir, m)
	if err != nil {
		return nil, err
	}
	ws := &Workspace{
		Root:     root,
		SceneDir: sceneDir,
		Config:   opts.Config,
		Index:    index.New(),
		Failed:   make(map[string]error),
	}

	type scanned struct {
		doc     *source.Document
		entries *index.DocumentEntries
		err     error
	}
	results := make([]scanned, len(files))
	for _, f := range files {
		emit(opts.Progress, Event{File: f, Stage: StageRead, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(opts.Jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusWorking})
			doc, err := source.LoadDocument(path)
			if err != nil {
				results[i].err = err
				emit(opts.Progress, Event{File: path, Stage: StageRead, Status: StatusError})
				return nil
			}
			emit(opts.Progress, Event{File: path, Stage: StageIndex, Status: StatusWorking})
			results[i] = scanned{doc: doc, entries: indexer.Scan(doc)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, r := range results {
		if r.err != nil {
			ws.Failed[files[i]] = r.err
			continue
		}
		ws.Index.Update(r.doc.URI, r.entries)
		ws.Documents = append(ws.Documents, r.doc)
	}
	sort.Slice(ws.Documents, func(i, j int) bool { return ws.Documents[i].URI < ws.Documents[j].URI })
	ws.Index.SetProjectIsIndexed(true)
	emit(opts.Progress, Event{Stage: StageIndex, Status: StatusDone, SceneList: ws.Index.SceneList()})
	return ws, nil
}

// FileDiagnostics are the diagnostics of one scene.
type FileDiagnostics struct {
	Document    *source.Document
	Diagnostics []diag.Diagnostic
}

// Diagnose validates every loaded scene in parallel and returns the results
// in document order.
func (w *Workspace) Diagnose(ctx context.Context, opts validate.Options, jobs int, sink ProgressSink) ([]FileDiagnostics, error) {
	out := make([]FileDiagnostics, len(w.Documents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobLimit(jobs, len(w.Documents)))
	for i, doc := range w.Documents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := source.URIToPath(doc.URI)
			emit(sink, Event{File: path, Stage: StageValidate, Status: StatusWorking})
			diags := validate.Generate(doc, w.Index, opts)
			out[i] = FileDiagnostics{Document: doc, Diagnostics: diags}
			done := Event{File: path, Stage: StageValidate, Status: StatusDone}
			for _, d := range diags {
				switch {
				case d.Severity >= diag.SevError:
					done.Errors++
				case d.Severity == diag.SevWarning:
					done.Warnings++
				}
			}
			if done.Errors > 0 {
				done.Status = StatusError
			}
			emit(sink, done)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateOptions turns the [diagnostics] table into validator options.
func (c Config) ValidateOptions() validate.Options {
	opts := validate.DefaultOptions()
	opts.StyleGuide = c.Diagnostics.StyleGuide
	opts.Max = c.Diagnostics.Max
	return opts
}

func jobLimit(jobs, n int) int {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}
