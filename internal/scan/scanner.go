// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/depshed/depshed/internal/descriptor"
	"github.com/depshed/depshed/pkg/artifact"
	"github.com/depshed/depshed/pkg/signature"

	"github.com/charmbracelet/log"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("scan root is not a directory")

var defaultSkipDirs = map[string]struct{}{
	".git":         {},
	".gradle":      {},
	".idea":        {},
	"build":        {},
	"node_modules": {},
	"out":          {},
	"target":       {},
}

type (
	// Options configures a Scanner.
	Options struct {
		// SourceRoots are the main/test source roots relative to a module.
		SourceRoots []string
		// Markers are file names designating their directory as a module root.
		Markers []string
		// Extensions select source files (".java").
		Extensions []string
		// Exclude holds gitignore-style patterns relative to the scan root.
		Exclude []string
		// UseGitignore adds the root .gitignore to Exclude.
		UseGitignore bool
		// Workers bounds concurrent source extraction; 0 means one per CPU.
		Workers int
		// Apply writes descriptor edits. When false the run is a dry run.
		Apply bool
		// Logger receives progress and retention diagnostics. Nil discards.
		Logger *log.Logger
	}

	// Scanner walks a source tree and decides every descriptor in it.
	Scanner struct {
		catalog *signature.Catalog
		opts    Options
		logger  *log.Logger
	}

	// collector gathers diagnostics from concurrent workers.
	collector struct {
		mu    sync.Mutex
		diags []Diagnostic
	}
)

// DefaultOptions returns the conventional Maven/Gradle layout.
func DefaultOptions() Options {
	return Options{
		SourceRoots:  []string{"src/main/java", "src/main/kotlin", "src/test/java", "src/test/kotlin"},
		Markers:      []string{"pom.xml", "build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts"},
		Extensions:   []string{".java", ".kt", ".kts", ".groovy"},
		UseGitignore: true,
	}
}

// New returns a Scanner classifying against catalog.
func New(catalog *signature.Catalog, opts Options) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Scanner{catalog: catalog, opts: opts, logger: logger}
}

// Run scans root and returns the report. Unreadable or malformed files become
// diagnostics; only an unusable root or a cancelled context fail the run.
func (s *Scanner) Run(ctx context.Context, root string) (*Report, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}
	info, err := os.Stat(rootAbs)
	if err != nil {
		return nil, fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", rootAbs, ErrNotDirectory)
	}

	diags := &collector{}
	session := NewSession(s.catalog, s.logger)
	if err := s.walk(ctx, rootAbs, session, diags); err != nil {
		return nil, err
	}

	analysis, err := session.Finish(s.opts.SourceRoots)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Root:   rootAbs,
		Rule:   s.catalog.Name(),
		DryRun: !s.opts.Apply,
		Stats: Stats{
			Sources:    analysis.sources,
			Markers:    analysis.markers,
			Boundaries: analysis.Boundaries.Len(),
			Facts:      analysis.Index.Len(),
		},
	}
	for _, c := range s.catalog.Coordinates() {
		report.Coordinates = append(report.Coordinates, c.String())
	}

	for _, ref := range analysis.Descriptors() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Outcomes = append(report.Outcomes, s.decide(rootAbs, analysis, ref, diags))
	}
	report.Stats.Descriptors = len(report.Outcomes)
	report.Diagnostics = diags.sorted()
	return report, nil
}

// walk visits the tree on the calling goroutine and hands source files to a
// bounded worker pool. It returns after every worker has finished, so the
// boundary catalogue is complete when it returns nil.
func (s *Scanner) walk(ctx context.Context, rootAbs string, session *Session, diags *collector) error {
	matcher := s.ignoreMatcher(rootAbs, diags)
	markers := toSet(s.opts.Markers, false)
	extensions := toSet(s.opts.Extensions, true)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	walkErr := filepath.WalkDir(rootAbs, func(path string, d fs.DirEntry, walkErr error) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == rootAbs {
				return walkErr
			}
			diags.add(Diagnostic{Severity: SeverityWarning, Code: CodeSourceUnreadable, Message: "directory entry skipped", Path: relPath(rootAbs, path), Cause: walkErr})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel := relPath(rootAbs, path)
		if rel == "" {
			return nil
		}
		if d.IsDir() {
			if _, skip := defaultSkipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		if _, ok := markers[d.Name()]; ok {
			return session.ObserveMarker(rel)
		}
		if _, ok := extensions[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				diags.add(Diagnostic{Severity: SeverityError, Code: CodeSourceUnreadable, Message: "source file could not be read", Path: rel, Cause: err})
				return nil
			}
			return session.ObserveSource(artifact.Parse(rel, data))
		})
		return nil
	})

	waitErr := g.Wait()
	if walkErr != nil {
		return fmt.Errorf("walk %s: %w", rootAbs, walkErr)
	}
	if waitErr != nil {
		return waitErr
	}
	return ctx.Err()
}

// decide computes and, unless the run is dry, applies the decision for one
// descriptor.
func (s *Scanner) decide(rootAbs string, analysis *Analysis, ref DescriptorRef, diags *collector) Outcome {
	res := analysis.Resolver.Explain(ref.Path)
	out := Outcome{Descriptor: ref.Path, Kind: ref.Kind, Module: res.Module, Via: res.Via}
	coords := s.catalog.Coordinates()
	full := filepath.Join(rootAbs, filepath.FromSlash(ref.Path))

	data, err := os.ReadFile(full)
	if err != nil {
		diags.add(Diagnostic{Severity: SeverityError, Code: CodeDescriptorUnreadable, Message: "descriptor could not be read", Path: ref.Path, Cause: err})
		out.Status = StatusFailed
		return out
	}
	live, err := descriptor.Contains(ref.Kind, data, coords)
	if err != nil {
		diags.add(Diagnostic{Severity: SeverityError, Code: CodeDescriptorMalformed, Message: err.Error(), Path: ref.Path, Cause: err})
		out.Status = StatusFailed
		return out
	}
	if !live {
		out.Status = StatusAbsent
		return out
	}

	decision := analysis.Decide(ref.Path)
	if decision.Retain() {
		out.Status = StatusRetained
		out.Signatures = decision.Signatures
		out.Artifacts = decision.Artifacts
		s.logger.Warn("dependency retained",
			"module", res.Module.Label(),
			"resolved_via", res.Via,
			"descriptor", ref.Path,
			"signatures", decision.Signatures,
			"artifacts", decision.Artifacts)
		diags.add(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeDependencyRetained,
			Message:  fmt.Sprintf("module %s still references %s", res.Module.Label(), joinSignatures(decision.Signatures)),
			Path:     ref.Path,
		})
		return out
	}

	if !s.opts.Apply {
		result, err := descriptor.Remove(ref.Kind, data, coords)
		if err != nil {
			diags.add(Diagnostic{Severity: SeverityError, Code: CodeDescriptorMalformed, Message: err.Error(), Path: ref.Path, Cause: err})
			out.Status = StatusFailed
			return out
		}
		out.Status = StatusRemovable
		out.Removed = result.Removed
		s.logger.Info("dependency removable", "module", res.Module.Label(), "descriptor", ref.Path, "entries", len(result.Removed))
		return out
	}

	result, err := descriptor.RemoveFile(full, coords)
	if errors.Is(err, descriptor.ErrUnsafeEdit) {
		diags.add(Diagnostic{Severity: SeverityError, Code: CodeDescriptorMalformed, Message: err.Error(), Path: ref.Path, Cause: err})
		out.Status = StatusFailed
		return out
	}
	if err != nil {
		diags.add(Diagnostic{Severity: SeverityError, Code: CodeDescriptorWriteFailed, Message: "descriptor could not be updated", Path: ref.Path, Cause: err})
		out.Status = StatusFailed
		return out
	}
	out.Status = StatusRemoved
	out.Removed = result.Removed
	s.logger.Info("dependency removed", "module", res.Module.Label(), "descriptor", ref.Path, "entries", len(result.Removed))
	return out
}

// ignoreMatcher compiles configured excludes and, when enabled, the root
// .gitignore. It returns nil when there is nothing to match.
func (s *Scanner) ignoreMatcher(rootAbs string, diags *collector) *ignore.GitIgnore {
	patterns := slices.Clone(s.opts.Exclude)
	if s.opts.UseGitignore {
		data, err := os.ReadFile(filepath.Join(rootAbs, ".gitignore"))
		switch {
		case err == nil:
			patterns = append(patterns, strings.Split(string(data), "\n")...)
		case !errors.Is(err, fs.ErrNotExist):
			diags.add(Diagnostic{Severity: SeverityWarning, Code: CodeGitignoreUnreadable, Message: ".gitignore ignored", Path: ".gitignore", Cause: err})
		}
	}
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

func (c *collector) add(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// sorted returns the diagnostics in a stable order regardless of which worker
// reported them first.
func (c *collector) sorted() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := slices.Clone(c.diags)
	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		if n := strings.Compare(a.Path, b.Path); n != 0 {
			return n
		}
		return strings.Compare(a.Code, b.Code)
	})
	return out
}

func relPath(rootAbs, path string) string {
	rel, err := filepath.Rel(rootAbs, path)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func toSet(values []string, extensions bool) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if extensions {
			v = strings.ToLower(v)
			if !strings.HasPrefix(v, ".") {
				v = "." + v
			}
		}
		set[v] = struct{}{}
	}
	return set
}

func joinSignatures(sigs []signature.Signature) string {
	parts := make([]string, 0, len(sigs))
	for _, s := range sigs {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ", ")
}
