// Copyright 2022 Upbound Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package jvmc binds the compiler-frontend contract to a JVM helper
// process. The Groovy parser and resolver run on a JVM; this package
// spawns one helper per project root and speaks JSON-RPC to it over the
// child's stdio. Every compile returns a fully materialized,
// resolution-annotated AST, so AST navigation afterwards is answered
// from local data without further round trips.
package jvmc

import (
	"context"
	"io"
	"os/exec"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/golang/tools/span"

	"github.com/groovy-lsp/groovy-language-server/internal/classpath"
	"github.com/groovy-lsp/groovy-language-server/internal/frontend"
	"github.com/groovy-lsp/groovy-language-server/internal/version"
)

const (
	defaultJavaPath = "java"

	errSpawnHelper   = "failed to start compiler helper process"
	errHelperCall    = "compiler helper call failed"
	errHelperClosed  = "compiler helper connection closed"
	errScanClasspath = "classpath scan failed"
)

// Factory spawns and talks to the JVM compiler helper, implementing
// frontend.CompilationUnitFactory. One Factory serves the whole
// process; each Create call binds a compilation unit to a root,
// reusing the root's helper when one is already running.
type Factory struct {
	javaPath   string
	helperJar  string
	javaArgs   []string
	classpath  []string
	rejected   []string
	versionTag string
	log        logging.Logger

	mu      sync.Mutex
	helpers map[span.URI]*helper

	utils *Utilities
}

// Option configures a new Factory.
type Option func(*Factory)

// WithJavaPath overrides the java executable used to start the helper.
func WithJavaPath(path string) Option {
	return func(f *Factory) { f.javaPath = path }
}

// WithJavaArgs adds extra JVM arguments (heap sizing and the like).
func WithJavaArgs(args ...string) Option {
	return func(f *Factory) { f.javaArgs = args }
}

// WithClasspath sets the extra classpath entries injected into every
// compilation unit.
func WithClasspath(entries []string) Option {
	return func(f *Factory) { f.classpath = entries }
}

// WithRejectedPackages sets the additional package prefixes excluded
// from classpath scans.
func WithRejectedPackages(prefixes []string) Option {
	return func(f *Factory) { f.rejected = prefixes }
}

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(f *Factory) { f.log = l }
}

// New constructs a Factory around the given helper jar.
func New(helperJar, versionTag string, opts ...Option) *Factory {
	f := &Factory{
		javaPath:   defaultJavaPath,
		helperJar:  helperJar,
		versionTag: versionTag,
		log:        logging.NewNopLogger(),
		helpers:    make(map[span.URI]*helper),
	}
	f.utils = &Utilities{nodes: make(map[int]*node)}
	for _, o := range opts {
		o(f)
	}
	return f
}

var _ frontend.CompilationUnitFactory = (*Factory)(nil)

// Create implements frontend.CompilationUnitFactory.
func (f *Factory) Create(root span.URI, tracker frontend.ContentsProvider, forced map[span.URI]struct{}) (frontend.CompilationUnit, error) {
	h, err := f.helperFor(root)
	if err != nil {
		return nil, err
	}

	var cfg configureResult
	if err := h.call(context.Background(), "configure", configureParams{
		Root:             root.Filename(),
		Protocol:         version.HelperProtocol,
		Classpath:        f.classpath,
		RejectedPackages: f.rejected,
	}, &cfg); err != nil {
		return nil, errors.Wrap(err, errHelperCall)
	}

	forcedList := make([]string, 0, len(forced))
	for u := range forced {
		forcedList = append(forcedList, string(u))
	}

	return &Unit{
		factory:   f,
		helper:    h,
		root:      root,
		tracker:   tracker,
		forced:    forcedList,
		targetDir: cfg.TargetDirectory,
	}, nil
}

// Utilities returns the AST navigation surface backed by the most
// recent compile of each unit this factory created.
func (f *Factory) Utilities() *Utilities { return f.utils }

// Scanner returns a classpath scanner backed by the helper process. The
// returned function matches the shared scan cache's Scanner shape.
func (f *Factory) Scanner() func(urls []string, rejectedPackages []string) ([]classpath.Symbol, error) {
	return func(urls []string, rejectedPackages []string) ([]classpath.Symbol, error) {
		h, err := f.anyHelper()
		if err != nil {
			return nil, errors.Wrap(err, errScanClasspath)
		}
		var res scanResult
		if err := h.call(context.Background(), "scanClasspath", scanParams{
			URLs:             urls,
			RejectedPackages: rejectedPackages,
		}, &res); err != nil {
			return nil, errors.Wrap(err, errScanClasspath)
		}
		out := make([]classpath.Symbol, 0, len(res.Symbols))
		for _, s := range res.Symbols {
			out = append(out, classpath.Symbol{
				FullyQualifiedName:   s.FQN,
				SimpleName:           s.SimpleName,
				PackageName:          s.Package,
				Kind:                 symbolKind(s.Kind),
				ClasspathElementPath: s.ElementPath,
			})
		}
		return out, nil
	}
}

// Decompile produces synthetic source for an external class. The
// signature matches the request providers' Decompiler surface.
func (f *Factory) Decompile(fqn string) (string, frontend.Range, bool) {
	h, err := f.anyHelper()
	if err != nil {
		return "", frontend.Range{}, false
	}
	var res decompileResult
	if err := h.call(context.Background(), "decompile", decompileParams{FQN: fqn}, &res); err != nil {
		f.log.Debug("decompile failed", "fqn", fqn, "error", err)
		return "", frontend.Range{}, false
	}
	if res.Text == "" {
		return "", frontend.Range{}, false
	}
	return res.Text, res.DeclRange.toRange(), true
}

// Close shuts down every helper process.
func (f *Factory) Close() error {
	f.mu.Lock()
	helpers := make([]*helper, 0, len(f.helpers))
	for _, h := range f.helpers {
		helpers = append(helpers, h)
	}
	f.helpers = make(map[span.URI]*helper)
	f.mu.Unlock()

	var firstErr error
	for _, h := range helpers {
		if err := h.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *Factory) helperFor(root span.URI) (*helper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.helpers[root]; ok && h.alive() {
		return h, nil
	}
	h, err := f.spawn(root)
	if err != nil {
		return nil, err
	}
	f.helpers[root] = h
	return h, nil
}

// anyHelper returns an arbitrary live helper; classpath scans and
// decompiles are root-independent.
func (f *Factory) anyHelper() (*helper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.helpers {
		if h.alive() {
			return h, nil
		}
	}
	return nil, errors.New(errHelperClosed)
}

func (f *Factory) spawn(root span.URI) (*helper, error) {
	args := append([]string{}, f.javaArgs...)
	args = append(args, "-jar", f.helperJar, "--root", root.Filename())
	cmd := exec.Command(f.javaPath, args...) //nolint:gosec // javaPath is operator-supplied configuration

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, errSpawnHelper)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, errSpawnHelper)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, errSpawnHelper)
	}

	h := &helper{cmd: cmd, log: f.log}
	stream := jsonrpc2.NewBufferedStream(pipeRWC{r: stdout, w: stdin}, jsonrpc2.VSCodeObjectCodec{})
	h.conn = jsonrpc2.NewConn(context.Background(), stream, jsonrpc2.HandlerWithError(h.handle))
	return h, nil
}

// helper is one running JVM compiler process and its JSON-RPC
// connection.
type helper struct {
	cmd  *exec.Cmd
	conn *jsonrpc2.Conn
	log  logging.Logger

	mu     sync.Mutex
	closed bool
}

// handle services the few notifications the helper sends back; the
// helper never issues requests that need results.
func (h *helper) handle(_ context.Context, _ *jsonrpc2.Conn, r *jsonrpc2.Request) (interface{}, error) {
	if r.Method == "log" && r.Params != nil {
		h.log.Debug("compiler helper", "payload", string(*r.Params))
	}
	return nil, nil
}

func (h *helper) call(ctx context.Context, method string, params, result interface{}) error {
	return h.conn.Call(ctx, method, params, result)
}

func (h *helper) alive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.closed
}

func (h *helper) close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	_ = h.conn.Close()
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
	return h.cmd.Wait()
}

// pipeRWC adapts the child's stdout/stdin pair into the single
// ReadWriteCloser the JSON-RPC stream wants.
type pipeRWC struct {
	r io.ReadCloser
	w io.WriteCloser
}

func (p pipeRWC) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p pipeRWC) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p pipeRWC) Close() error {
	if err := p.w.Close(); err != nil {
		return err
	}
	return p.r.Close()
}
