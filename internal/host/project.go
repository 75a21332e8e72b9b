// Package host models the environment intention actions run in: a project
// holding loaded files and settings, editors positioned on those files, and
// write actions that commit edits.
package host

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"amend/internal/config"
	"amend/internal/source"
	"amend/internal/trace"
)

// Project is the context every intention operation receives.
type Project struct {
	Root    string
	Files   *source.FileSet
	Config  config.Config
	Tracer  trace.Tracer
	DryRun  bool
	ctx     context.Context
	mu      sync.Mutex // guards Files during commits
	writing atomic.Pointer[WriteAction]
	commits []Commit
}

// NewProject creates a project rooted at root. The tracer is taken from ctx.
func NewProject(ctx context.Context, root string, cfg config.Config) *Project {
	if ctx == nil {
		ctx = context.Background()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Project{
		Root:   abs,
		Files:  source.NewFileSetWithBase(abs),
		Config: cfg,
		Tracer: trace.FromContext(ctx),
		ctx:    ctx,
	}
}

// Context returns the context the project was created with.
func (p *Project) Context() context.Context {
	return p.ctx
}

// Open loads path into the project's file set, reusing an already loaded
// version.
func (p *Project) Open(path string) (*source.File, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.Files.GetByPath(path); ok {
		return f, nil
	}
	id, err := p.Files.Load(path)
	if err != nil {
		return nil, err
	}
	return p.Files.Get(id), nil
}

// Lookup returns the newest loaded version of path.
func (p *Project) Lookup(path string) (*source.File, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Files.GetByPath(path)
}

// Latest returns the newest version of f after commits.
func (p *Project) Latest(f *source.File) *source.File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Files.Latest(f)
}

// Commits returns every write action committed so far, oldest first.
func (p *Project) Commits() []Commit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Commit(nil), p.commits...)
}
