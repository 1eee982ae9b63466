// Package testrunner runs the Test262 conformance suite against the
// interpreter.
package testrunner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

var log = commonlog.GetLogger("jscore.test262")

type Result int

const (
	Pass Result = iota
	Fail
	Skip
	Error
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Skip:
		return "SKIP"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

type TestResult struct {
	Path    string
	Result  Result
	Message string
	Elapsed time.Duration
}

type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int
	Elapsed time.Duration
}

// PassRate is the share of non-skipped tests that passed, in percent.
func (s Summary) PassRate() float64 {
	ran := s.Total - s.Skipped
	if ran == 0 {
		return 0
	}
	return 100 * float64(s.Passed) / float64(ran)
}

type Config struct {
	Test262Dir string
	Filter     string
	Limit      int
	Verbose    bool
	// Workers bounds the number of tests run at once; zero uses GOMAXPROCS.
	Workers int
	// Timeout bounds a single test; zero means five seconds.
	Timeout time.Duration
}

// Run discovers and runs Test262 tests, returning results in path order and
// a summary. It stops early when ctx is cancelled.
func Run(ctx context.Context, cfg Config) ([]TestResult, Summary, error) {
	testDir := filepath.Join(cfg.Test262Dir, "test")
	h, err := loadHarness(filepath.Join(cfg.Test262Dir, "harness"))
	if err != nil {
		return nil, Summary{}, err
	}

	testFiles, err := discover(testDir, cfg.Filter)
	if err != nil {
		return nil, Summary{}, err
	}
	if cfg.Limit > 0 && len(testFiles) > cfg.Limit {
		testFiles = testFiles[:cfg.Limit]
	}
	log.Infof("running %d tests from %s", len(testFiles), testDir)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	start := time.Now()
	results := make([]TestResult, len(testFiles))
	var printMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range testFiles {
		i, path := i, path
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, _ := filepath.Rel(cfg.Test262Dir, path)
			tr := runSingleTest(path, rel, h, timeout)
			results[i] = tr
			if cfg.Verbose {
				printMu.Lock()
				fmt.Println(FormatResult(tr))
				printMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{Total: len(results), Elapsed: time.Since(start)}
	for _, tr := range results {
		switch tr.Result {
		case Pass:
			summary.Passed++
		case Fail:
			summary.Failed++
		case Skip:
			summary.Skipped++
		case Error:
			summary.Errors++
		}
	}
	return results, summary, nil
}

// FormatResult renders one result line.
func FormatResult(tr TestResult) string {
	if tr.Message == "" {
		return fmt.Sprintf("%s %s", tr.Result, tr.Path)
	}
	return fmt.Sprintf("%s %s %s", tr.Result, tr.Path, tr.Message)
}

// discover lists the test files under testDir whose relative path contains
// filter, skipping fixtures that are only imported by other tests.
func discover(testDir, filter string) ([]string, error) {
	var testFiles []string
	err := filepath.WalkDir(testDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".js") || strings.Contains(path, "_FIXTURE") {
			return nil
		}
		if filter != "" {
			rel, _ := filepath.Rel(testDir, path)
			if !strings.Contains(rel, filter) {
				return nil
			}
		}
		testFiles = append(testFiles, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", testDir, err)
	}
	sort.Strings(testFiles)
	return testFiles, nil
}

// harness caches the contents of the harness directory.
type harness struct {
	dir   string
	mu    sync.Mutex
	files map[string]string
}

func loadHarness(dir string) (*harness, error) {
	h := &harness{dir: dir, files: make(map[string]string)}
	for _, name := range []string{"sta.js", "assert.js"} {
		if _, err := h.file(name); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *harness) file(name string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if src, ok := h.files[name]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	if err != nil {
		return "", fmt.Errorf("loading harness file %s: %w", name, err)
	}
	h.files[name] = string(data)
	return h.files[name], nil
}

// includes returns the harness files a test needs, in evaluation order.
func (h *harness) includes(meta *Metadata) ([]string, error) {
	if meta.HasFlag("raw") {
		return nil, nil
	}
	names := []string{"assert.js", "sta.js"}
	if meta.HasFlag("async") {
		names = append(names, "doneprintHandle.js")
	}
	names = append(names, meta.Includes...)
	sources := make([]string, 0, len(names))
	for _, name := range names {
		src, err := h.file(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
