// Command shape_probe calls backend tasks directly and reports the JSON shape each one answers
// with, so decoders can be checked against a live school server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bytedance/sonic"

	"github.com/noah-isme/school-gateway/pkg/binex"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type target struct {
	Task     string            `json:"task"`
	Method   string            `json:"method"`
	Params   map[string]string `json:"params"`
	Critical bool              `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type probe struct {
	Target   target
	Shape    binex.Shape
	Bytes    int
	Duration time.Duration
	Error    error
}

// Failed reports whether the result should break the run.
func (p probe) Failed() bool {
	return p.Target.Critical && (p.Error != nil || p.Shape == binex.ShapeMalformed)
}

type caller interface {
	Do(ctx context.Context, req binex.Request) ([]byte, error)
}

func main() {
	var (
		base        string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "https://abma.org.in/binex/api.php", "School task endpoint")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shape_probe", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-call timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client, err := binex.New(binex.Config{BaseURL: base, Timeout: timeout, UserAgent: "school-gateway-shape-probe/1.0"})
	if err != nil {
		log.Fatalf("failed to build client: %v", err)
	}

	results := run(context.Background(), client, targets)
	failed := printReport(os.Stdout, results)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func run(ctx context.Context, client caller, targets []target) []probe {
	results := make([]probe, 0, len(targets))
	for _, t := range targets {
		results = append(results, probeTarget(ctx, client, t))
	}
	return results
}

func probeTarget(ctx context.Context, client caller, t target) probe {
	query := url.Values{}
	keys := make([]string, 0, len(t.Params))
	for k := range t.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		query.Set(k, t.Params[k])
	}

	start := time.Now()
	raw, err := client.Do(ctx, binex.Request{Task: t.Task, Method: t.Method, Query: query})
	res := probe{Target: t, Duration: time.Since(start), Bytes: len(raw)}
	switch {
	case errors.Is(err, appErrors.ErrMalformedResponse):
		res.Shape = binex.ShapeMalformed
	case err != nil:
		res.Error = err
	default:
		res.Shape = binex.Classify(raw)
	}
	return res
}

func printReport(w io.Writer, results []probe) int {
	failed := 0
	fmt.Fprintln(w, "Shape Probe Report")
	fmt.Fprintln(w, "==================")
	for _, res := range results {
		status := "OK"
		if res.Failed() {
			status = "FAIL"
			failed++
		} else if res.Error != nil || res.Shape == binex.ShapeMalformed {
			status = "WARN"
		}
		fmt.Fprintf(w, "[%s] %s (%s, critical=%t)\n", status, res.Target.Task, res.Duration.Round(time.Millisecond), res.Target.Critical)
		if res.Error != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Error)
			continue
		}
		fmt.Fprintf(w, "  Shape: %s | Bytes: %d\n", res.Shape, res.Bytes)
	}
	fmt.Fprintf(w, "Critical failures: %d\n", failed)
	return failed
}
