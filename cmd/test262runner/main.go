package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/example/jscore/testrunner"
)

func main() {
	test262Dir := flag.String("dir", "test262", "path to test262 checkout")
	filter := flag.String("filter", "", "filter tests by path substring")
	limit := flag.Int("limit", 0, "maximum number of tests to run (0 = all)")
	verbose := flag.Bool("v", false, "verbose output (print each test result as it finishes)")
	workers := flag.Int("j", 0, "number of tests to run in parallel (0 = GOMAXPROCS)")
	timeout := flag.Duration("timeout", 5*time.Second, "time limit for a single test")
	verbosity := flag.Int("log", -1, "log verbosity (-4 silent .. 2 debug)")
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	if _, err := os.Stat(*test262Dir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: test262 directory not found at %s\n", *test262Dir)
		fmt.Fprintf(os.Stderr, "Clone it with: git clone --depth 1 https://github.com/tc39/test262 %s\n", *test262Dir)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := testrunner.Config{
		Test262Dir: *test262Dir,
		Filter:     *filter,
		Limit:      *limit,
		Verbose:    *verbose,
		Workers:    *workers,
		Timeout:    *timeout,
	}

	results, summary, err := testrunner.Run(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*verbose {
		for _, r := range results {
			fmt.Println(testrunner.FormatResult(r))
		}
	}

	fmt.Println()
	fmt.Println("=== Test262 Summary ===")
	fmt.Printf("Total:   %d\n", summary.Total)
	fmt.Printf("Passed:  %d\n", summary.Passed)
	fmt.Printf("Failed:  %d\n", summary.Failed)
	fmt.Printf("Skipped: %d\n", summary.Skipped)
	fmt.Printf("Errors:  %d\n", summary.Errors)
	if summary.Total > 0 {
		fmt.Printf("Pass rate: %.1f%% (%d/%d excluding skipped)\n",
			summary.PassRate(),
			summary.Passed,
			summary.Total-summary.Skipped)
	}
	fmt.Printf("Elapsed: %s\n", summary.Elapsed)

	if summary.Failed > 0 || summary.Errors > 0 {
		os.Exit(1)
	}
}
