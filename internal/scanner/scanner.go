// Package scanner provides build-time component discovery for prescan.
//
// The scanner walks configured directories for .templ and .go files, extracts
// component declarations together with their prescan directives, and registers
// the results in the component registry. Directive comments associate
// components with markers and declare runtime requirements; the derived
// manifest feeds the prepared scan result writer. The scanner maintains CRC32
// content hashes for change detection and processes batches concurrently via
// a persistent worker pool.
package scanner

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/prescan/registry"
	"github.com/conneroisu/prescan/types"
)

// Directive kinds recognized in //prescan: comments.
const (
	// DirectiveComponent marks an unexported declaration for inclusion.
	// Exported declarations returning templ.Component are included without it.
	DirectiveComponent = "component" // //prescan:component
	// DirectiveMarker associates the declaration with a marker. Repeatable.
	DirectiveMarker = "marker" // //prescan:marker pages.Page
	// DirectiveRequires declares a runtime requirement on another registered
	// entry. Repeatable.
	DirectiveRequires = "requires" // //prescan:requires ui.Layout
	// DirectiveIgnore excludes the declaration from discovery entirely.
	DirectiveIgnore = "ignore" // //prescan:ignore
)

const directivePrefix = "prescan:"

// Directive is a parsed //prescan: comment attached to a declaration.
type Directive struct {
	// Kind is one of the Directive* constants
	Kind string
	// Value is the directive argument, empty for component and ignore
	Value string
}

// ScanJob represents a scanning job for the worker pool containing the file
// path to scan and a result channel for asynchronous communication.
type ScanJob struct {
	// filePath is the path to the .templ or .go file to be scanned
	filePath string
	// result channel receives the scan result or error asynchronously
	result chan<- ScanResult
}

// ScanResult represents the result of a scanning operation, containing either
// success status or error information for a specific file.
type ScanResult struct {
	// filePath is the path that was scanned
	filePath string
	// err contains any error that occurred during scanning, nil on success
	err error
}

// BufferPool manages reusable byte buffers for file reading.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a new buffer pool with initial buffer size.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				// Pre-allocate 64KB buffers for typical component files
				return make([]byte, 0, 64*1024)
			},
		},
	}
}

// Get retrieves a buffer from the pool.
func (bp *BufferPool) Get() []byte {
	return bp.pool.Get().([]byte)[:0] // Reset length but keep capacity
}

// Put returns a buffer to the pool.
func (bp *BufferPool) Put(buf []byte) {
	// Only pool reasonably-sized buffers to avoid memory leaks
	if cap(buf) <= 1024*1024 { // 1MB limit
		bp.pool.Put(buf)
	}
}

// WorkerPool manages persistent scanning workers that distribute file
// scanning jobs across CPU cores.
type WorkerPool struct {
	// jobQueue buffers scanning jobs for worker distribution
	jobQueue chan ScanJob
	// workers holds references to all active worker goroutines
	workers []*ScanWorker
	// workerCount defines the number of concurrent workers
	workerCount int
	// scanner is the shared component scanner instance
	scanner *ComponentScanner
	// stop signals all workers to terminate gracefully
	stop chan struct{}
	// stopped tracks pool shutdown state
	stopped bool
	// mu protects concurrent access to pool state
	mu sync.RWMutex
}

// ScanWorker is a persistent worker goroutine that processes scanning jobs
// from the shared job queue.
type ScanWorker struct {
	// id uniquely identifies this worker for debugging
	id int
	// jobQueue receives scanning jobs from the worker pool
	jobQueue <-chan ScanJob
	// scanner provides the component parsing functionality
	scanner *ComponentScanner
	// stop signals this worker to terminate gracefully
	stop chan struct{}
}

// ComponentScanner discovers components and markers in .templ and .go files.
//
// The scanner provides:
// - Recursive directory traversal with exclude patterns
// - Line-based extraction for .templ files, AST-based for .go files
// - Directive parsing for marker membership and runtime requirements
// - Concurrent processing via a persistent worker pool
// - File change detection using CRC32 hashing
// - Path validation with a cached working directory
type ComponentScanner struct {
	// registry receives discovered entries and broadcasts change events
	registry *registry.Registry
	// fileSet tracks file positions for AST parsing and error reporting
	fileSet *token.FileSet
	// workerPool manages concurrent scanning operations
	workerPool *WorkerPool
	// pathCache contains cached path validation data to avoid repeated syscalls
	pathCache *pathValidationCache
	// bufferPool provides reusable byte buffers for file reading
	bufferPool *BufferPool
	// excludes holds base-name patterns for files to skip during scanning
	excludes []string
}

// pathValidationCache caches the working directory lookup used by path
// validation.
type pathValidationCache struct {
	// mu protects concurrent access to cache fields
	mu sync.RWMutex
	// currentWorkingDir is the cached current working directory (absolute path)
	currentWorkingDir string
	// initialized indicates whether the cache has been populated
	initialized bool
}

// NewComponentScanner creates a new component scanner backed by the given
// registry, with a worker pool sized to the host.
func NewComponentScanner(registry *registry.Registry) *ComponentScanner {
	scanner := &ComponentScanner{
		registry:   registry,
		fileSet:    token.NewFileSet(),
		pathCache:  &pathValidationCache{},
		bufferPool: NewBufferPool(),
	}

	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8 // Cap at 8 workers for diminishing returns
	}

	scanner.workerPool = NewWorkerPool(workerCount, scanner)
	return scanner
}

// SetExcludePatterns configures base-name patterns (filepath.Match syntax)
// for files the scanner skips. Call before scanning begins; the patterns are
// not synchronized against in-flight scans.
func (s *ComponentScanner) SetExcludePatterns(patterns []string) {
	s.excludes = patterns
}

// NewWorkerPool creates a new worker pool for scanning operations.
func NewWorkerPool(workerCount int, scanner *ComponentScanner) *WorkerPool {
	pool := &WorkerPool{
		jobQueue:    make(chan ScanJob, workerCount*2),
		workerCount: workerCount,
		scanner:     scanner,
		stop:        make(chan struct{}),
	}

	// Start persistent workers
	pool.workers = make([]*ScanWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		worker := &ScanWorker{
			id:       i,
			jobQueue: pool.jobQueue,
			scanner:  scanner,
			stop:     make(chan struct{}),
		}
		pool.workers[i] = worker
		go worker.start()
	}

	return pool
}

// start begins the worker's processing loop.
func (w *ScanWorker) start() {
	for {
		select {
		case job := <-w.jobQueue:
			err := w.scanner.scanFileInternal(job.filePath)
			job.result <- ScanResult{
				filePath: job.filePath,
				err:      err,
			}
		case <-w.stop:
			return
		}
	}
}

// Stop gracefully shuts down the worker pool.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	p.stopped = true
	close(p.stop)

	for _, worker := range p.workers {
		close(worker.stop)
	}

	close(p.jobQueue)
}

// GetRegistry returns the component registry the scanner registers into.
func (s *ComponentScanner) GetRegistry() *registry.Registry {
	return s.registry
}

// Close gracefully shuts down the scanner and its worker pool.
func (s *ComponentScanner) Close() error {
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	return nil
}

// ScanDirectory scans a directory tree for components using the worker pool.
func (s *ComponentScanner) ScanDirectory(dir string) error {
	// Validate directory path to prevent path traversal
	if _, err := s.validatePath(dir); err != nil {
		return fmt.Errorf("invalid directory path: %w", err)
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".templ") && !strings.HasSuffix(path, ".go") {
			return nil
		}
		if s.excluded(filepath.Base(path)) {
			return nil
		}

		// Validate each file path as we encounter it
		if _, err := s.validatePath(path); err != nil {
			// Skip invalid paths silently for security
			return nil
		}

		files = append(files, path)
		return nil
	})

	if err != nil {
		return err
	}

	return s.processBatchWithWorkerPool(files)
}

// processBatchWithWorkerPool processes files using the persistent worker pool.
func (s *ComponentScanner) processBatchWithWorkerPool(files []string) error {
	if len(files) == 0 {
		return nil
	}

	// For very small batches, process synchronously to avoid overhead
	if len(files) <= 5 {
		return s.processBatchSynchronous(files)
	}

	resultChan := make(chan ScanResult, len(files))

	for _, file := range files {
		job := ScanJob{
			filePath: file,
			result:   resultChan,
		}

		select {
		case s.workerPool.jobQueue <- job:
			// Job submitted successfully
		default:
			// Worker pool is full, process synchronously as fallback
			err := s.scanFileInternal(file)
			resultChan <- ScanResult{filePath: file, err: err}
		}
	}

	var errors []error
	for i := 0; i < len(files); i++ {
		result := <-resultChan
		if result.err != nil {
			errors = append(errors, fmt.Errorf("scanning %s: %w", result.filePath, result.err))
		}
	}

	close(resultChan)

	if len(errors) > 0 {
		return fmt.Errorf("scan completed with %d errors: %v", len(errors), errors[0])
	}

	return nil
}

// processBatchSynchronous processes small batches without the worker pool.
func (s *ComponentScanner) processBatchSynchronous(files []string) error {
	var errors []error

	for _, file := range files {
		if err := s.scanFileInternal(file); err != nil {
			errors = append(errors, fmt.Errorf("scanning %s: %w", file, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("scan completed with %d errors: %v", len(errors), errors[0])
	}

	return nil
}

// ScanFile scans a single .templ or .go file. Excluded files are skipped
// silently so watch-mode callers can feed changed paths without filtering.
func (s *ComponentScanner) ScanFile(path string) error {
	if s.excluded(filepath.Base(path)) {
		return nil
	}
	return s.scanFileInternal(path)
}

// scanFileInternal is the internal scanning method used by workers.
func (s *ComponentScanner) scanFileInternal(path string) error {
	// Validate and clean the path to prevent directory traversal
	cleanPath, err := s.validatePath(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		return fmt.Errorf("opening file %s: %w", cleanPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("getting file info for %s: %w", cleanPath, err)
	}

	// Read through the buffer pool to keep allocations flat across batches
	buffer := s.bufferPool.Get()
	defer s.bufferPool.Put(buffer)

	if cap(buffer) < int(info.Size()) {
		buffer = make([]byte, info.Size())
	}
	buffer = buffer[:info.Size()]
	if _, err := io.ReadFull(file, buffer); err != nil {
		return fmt.Errorf("reading file %s: %w", cleanPath, err)
	}
	content := make([]byte, len(buffer))
	copy(content, buffer)

	hash := fmt.Sprintf("%x", crc32.ChecksumIEEE(content))

	// templ sources are not Go syntax; route them to the line-based parser
	if strings.HasSuffix(cleanPath, ".templ") {
		return s.parseTemplFile(cleanPath, content, hash, info.ModTime())
	}

	astFile, err := parser.ParseFile(s.fileSet, cleanPath, content, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", cleanPath, err)
	}

	return s.extractFromAST(cleanPath, astFile, hash, info.ModTime())
}

// parseTemplFile extracts component declarations from templ source. Directive
// comments bind to the templ declaration immediately following them; a blank
// line or any other statement detaches pending directives.
func (s *ComponentScanner) parseTemplFile(path string, content []byte, hash string, modTime time.Time) error {
	lines := strings.Split(string(content), "\n")
	packageName := ""
	var pending []Directive
	var firstErr error

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "package ") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				packageName = sanitizeIdentifier(parts[1])
			}
			pending = nil
			continue
		}

		if d, ok := parseDirectiveLine(line); ok {
			pending = append(pending, d)
			continue
		}

		if strings.HasPrefix(line, "templ ") {
			directives := pending
			pending = nil

			if hasDirective(directives, DirectiveIgnore) {
				continue
			}

			parts := strings.Fields(line)
			if len(parts) < 2 {
				continue
			}
			name := parts[1]
			if idx := strings.Index(name, "("); idx != -1 {
				name = name[:idx]
			}

			// Sanitize component name to prevent injection
			name = sanitizeIdentifier(name)
			if name == "" {
				continue
			}

			component := &types.ComponentInfo{
				Name:       qualifiedName(packageName, name),
				Kind:       types.KindComponent,
				Package:    packageName,
				FilePath:   path,
				Parameters: extractParameters(line),
				Markers:    directiveNames(directives, DirectiveMarker),
				Requires:   directiveNames(directives, DirectiveRequires),
				LastMod:    modTime,
				Hash:       hash,
			}

			if err := s.register(component); err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}

		if line == "" || !strings.HasPrefix(line, "//") {
			pending = nil
		}
	}

	return firstErr
}

// extractFromAST registers components found in a parsed Go file. A function
// is a component when it returns templ.Component and is exported or carries
// the component directive; the ignore directive always wins.
func (s *ComponentScanner) extractFromAST(path string, astFile *ast.File, hash string, modTime time.Time) error {
	pkg := astFile.Name.Name
	var firstErr error

	ast.Inspect(astFile, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Name == nil {
			return true
		}

		directives := parseDirectives(fn.Doc)
		if hasDirective(directives, DirectiveIgnore) {
			return true
		}
		if !s.isTemplComponent(fn) {
			return true
		}
		if !fn.Name.IsExported() && !hasDirective(directives, DirectiveComponent) {
			return true
		}

		component := &types.ComponentInfo{
			Name:       qualifiedName(pkg, fn.Name.Name),
			Kind:       types.KindComponent,
			Package:    pkg,
			FilePath:   path,
			Parameters: s.extractParametersFromFunc(fn),
			Markers:    directiveNames(directives, DirectiveMarker),
			Requires:   directiveNames(directives, DirectiveRequires),
			LastMod:    modTime,
			Hash:       hash,
		}

		if err := s.register(component); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})

	return firstErr
}

// register stores a discovered component and makes sure every marker it
// references exists as a marker entry.
func (s *ComponentScanner) register(component *types.ComponentInfo) error {
	component.APIVersion = types.APIVersion
	for _, marker := range component.Markers {
		if err := s.ensureMarker(marker, component.FilePath); err != nil {
			return err
		}
	}
	return s.registry.Register(component)
}

// ensureMarker registers a marker entry on first reference. An existing
// entry of any kind is left untouched; the manifest loader reports kind
// mismatches at read time.
func (s *ComponentScanner) ensureMarker(name, path string) error {
	if _, ok := s.registry.Get(name); ok {
		return nil
	}
	return s.registry.Register(&types.ComponentInfo{
		Name:       name,
		Kind:       types.KindMarker,
		Package:    packageOf(name),
		FilePath:   path,
		APIVersion: types.APIVersion,
		LastMod:    time.Now(),
	})
}

// Manifest derives the prepared scan result from the registry: the flat
// component name list and the marker-to-members grouping. Markers with no
// remaining members keep an empty group so they round-trip through the
// writer.
func (s *ComponentScanner) Manifest() ([]string, map[string][]string) {
	all := s.registry.GetAll()

	var components []string
	groups := make(map[string][]string)

	for name, entry := range all {
		if entry.Kind == types.KindMarker {
			if _, ok := groups[name]; !ok {
				groups[name] = []string{}
			}
			continue
		}
		components = append(components, name)
		for _, marker := range entry.Markers {
			groups[marker] = append(groups[marker], name)
		}
	}

	sort.Strings(components)
	return components, groups
}

func (s *ComponentScanner) isTemplComponent(fn *ast.FuncDecl) bool {
	// Check if the function returns a templ.Component
	if fn.Type.Results == nil || len(fn.Type.Results.List) == 0 {
		return false
	}

	result := fn.Type.Results.List[0]
	if sel, ok := result.Type.(*ast.SelectorExpr); ok {
		if ident, ok := sel.X.(*ast.Ident); ok {
			return ident.Name == "templ" && sel.Sel.Name == "Component"
		}
	}

	return false
}

func (s *ComponentScanner) extractParametersFromFunc(fn *ast.FuncDecl) []types.ParameterInfo {
	var params []types.ParameterInfo

	if fn.Type.Params == nil {
		return params
	}

	for _, param := range fn.Type.Params.List {
		paramType := ""
		if param.Type != nil {
			paramType = s.typeToString(param.Type)
		}

		for _, name := range param.Names {
			params = append(params, types.ParameterInfo{
				Name: name.Name,
				Type: paramType,
			})
		}
	}

	return params
}

func (s *ComponentScanner) typeToString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return s.typeToString(e.X) + "." + e.Sel.Name
	case *ast.StarExpr:
		return "*" + s.typeToString(e.X)
	case *ast.ArrayType:
		return "[]" + s.typeToString(e.Elt)
	default:
		return "unknown"
	}
}

// parseDirectives extracts //prescan: directives from a declaration's doc
// comment group.
func parseDirectives(doc *ast.CommentGroup) []Directive {
	if doc == nil {
		return nil
	}

	var directives []Directive
	for _, comment := range doc.List {
		if d, ok := parseDirectiveLine(comment.Text); ok {
			directives = append(directives, d)
		}
	}
	return directives
}

// parseDirectiveLine parses a single comment line as a prescan directive.
func parseDirectiveLine(text string) (Directive, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, directivePrefix) {
		return Directive{}, false
	}
	text = strings.TrimPrefix(text, directivePrefix)

	parts := strings.SplitN(text, " ", 2)
	kind := strings.TrimSpace(parts[0])
	value := ""
	if len(parts) > 1 {
		value = strings.TrimSpace(parts[1])
	}

	switch kind {
	case DirectiveComponent, DirectiveMarker, DirectiveRequires, DirectiveIgnore:
		return Directive{Kind: kind, Value: value}, true
	}
	return Directive{}, false
}

// hasDirective reports whether directives contain the given kind.
func hasDirective(directives []Directive, kind string) bool {
	for _, d := range directives {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// directiveNames collects sanitized non-empty values of the given directive
// kind, preserving declaration order.
func directiveNames(directives []Directive, kind string) []string {
	var names []string
	for _, d := range directives {
		if d.Kind != kind {
			continue
		}
		name := sanitizeName(d.Value)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// qualifiedName joins a package name and declaration name into the
// registry's fully-qualified form.
func qualifiedName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// packageOf returns the package prefix of a qualified name, or empty when
// the name has no dot.
func packageOf(name string) string {
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[:idx]
	}
	return ""
}

func extractParameters(line string) []types.ParameterInfo {
	// Simple parameter extraction from templ declaration
	if !strings.Contains(line, "(") {
		return []types.ParameterInfo{}
	}

	start := strings.Index(line, "(")
	end := strings.LastIndex(line, ")")
	if start == -1 || end == -1 || start >= end {
		return []types.ParameterInfo{}
	}

	paramStr := line[start+1 : end]
	if strings.TrimSpace(paramStr) == "" {
		return []types.ParameterInfo{}
	}

	parts := strings.Split(paramStr, ",")
	var params []types.ParameterInfo

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fields := strings.Fields(part)
		if len(fields) >= 2 {
			// Handle "name type" format
			params = append(params, types.ParameterInfo{
				Name: fields[0],
				Type: fields[1],
			})
		} else if len(fields) == 1 {
			// Type elided, shared with the following parameter
			params = append(params, types.ParameterInfo{
				Name: fields[0],
				Type: "string",
			})
		}
	}

	return params
}

// sanitizeIdentifier removes dangerous characters from identifiers.
func sanitizeIdentifier(identifier string) string {
	// Only allow alphanumeric characters and underscores for identifiers
	var cleaned strings.Builder
	for _, r := range identifier {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			cleaned.WriteRune(r)
		}
	}
	return cleaned.String()
}

// sanitizeName removes dangerous characters from qualified names, keeping
// the dots that separate package and declaration segments.
func sanitizeName(name string) string {
	var cleaned strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '.' {
			cleaned.WriteRune(r)
		}
	}
	return strings.Trim(cleaned.String(), ".")
}

// validatePath validates and cleans a file path to prevent directory
// traversal. The current working directory is cached to avoid repeated
// filesystem syscalls across large batches.
func (s *ComponentScanner) validatePath(path string) (string, error) {
	// Clean the path to resolve . and .. elements
	cleanPath := filepath.Clean(path)

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", fmt.Errorf("getting absolute path: %w", err)
	}

	cwd, err := s.getCachedWorkingDir()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	// Scanning is confined to the working directory
	if !strings.HasPrefix(absPath, cwd) {
		return "", fmt.Errorf("path %s is outside current working directory", path)
	}

	// Reject traversal attempts that stay inside the working directory
	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("path contains directory traversal: %s", path)
	}

	return cleanPath, nil
}

// getCachedWorkingDir returns the current working directory from cache,
// initializing it on first access.
func (s *ComponentScanner) getCachedWorkingDir() (string, error) {
	// Fast path: check if already initialized with read lock
	s.pathCache.mu.RLock()
	if s.pathCache.initialized {
		cwd := s.pathCache.currentWorkingDir
		s.pathCache.mu.RUnlock()
		return cwd, nil
	}
	s.pathCache.mu.RUnlock()

	s.pathCache.mu.Lock()
	defer s.pathCache.mu.Unlock()

	// Another goroutine might have initialized while waiting
	if s.pathCache.initialized {
		return s.pathCache.currentWorkingDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("getting absolute working directory: %w", err)
	}

	s.pathCache.currentWorkingDir = absCwd
	s.pathCache.initialized = true

	return absCwd, nil
}

// InvalidatePathCache clears the cached working directory. Call it if the
// working directory changes during execution.
func (s *ComponentScanner) InvalidatePathCache() {
	s.pathCache.mu.Lock()
	defer s.pathCache.mu.Unlock()
	s.pathCache.initialized = false
	s.pathCache.currentWorkingDir = ""
}

// excluded reports whether a file base name matches any exclude pattern.
func (s *ComponentScanner) excluded(base string) bool {
	for _, pattern := range s.excludes {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
