// Package batch converts many images with a pool of workers.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"img2stl/internal/convert"
	"img2stl/internal/imageio"
	"img2stl/internal/logger"
	"img2stl/internal/preview"
	"img2stl/internal/relief"
	"img2stl/internal/stl"
)

// Config holds the settings shared by every conversion in a run.
type Config struct {
	InputDir       string // root the inputs were collected from
	OutputDir      string // empty writes next to each input
	Params         relief.Params
	Format         stl.Format
	MaxSide        int
	Preview        bool
	PreviewOptions preview.Options
	Workers        int
}

// Result holds the outcome of converting one image.
type Result struct {
	Input     string
	Output    string
	Preview   string
	Triangles int
	Success   bool
	Error     string
	NotFound  bool
}

// Run converts all inputs using a worker pool. Each conversion is
// independent; a failure is recorded in its Result and the run goes on.
// Inputs not yet started when ctx is cancelled fail with the context error.
//
// Inputs that are themselves outputs of this run are dropped. When two
// inputs map to the same output, the first in input order converts and
// the others fail without writing.
func Run(ctx context.Context, cfg Config, inputs []string) []Result {
	jobs := plan(cfg, inputs)
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					logger.Sugar.Infof("[%d/%d] %.1f images/sec", p, total, float64(p)/elapsed)
				}
			}
		}
	}()

	// Worker pool
	queue := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				results[idx] = processImage(ctx, cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	close(done)

	logger.Info("batch finished",
		zap.Int("total", total),
		zap.Int("failed", Failed(results)),
		zap.Duration("took", time.Since(start)))
	return results
}

// job is one planned conversion.
type job struct {
	input    string
	output   string
	preview  string
	conflict error
}

// plan assigns every input its output paths. Inputs that another input
// produces (a preview from an earlier run, say) are dropped. Inputs whose
// outputs are already claimed, or whose preview would replace the input
// itself, get a conflict.
func plan(cfg Config, inputs []string) []job {
	jobs := make([]job, 0, len(inputs))
	producers := make(map[string][]int, len(inputs)*2)
	for i, in := range inputs {
		j := job{input: in, output: outputFor(cfg, in)}
		if cfg.Preview {
			j.preview = convert.PreviewPath(j.output)
			producers[pathKey(j.preview)] = append(producers[pathKey(j.preview)], i)
		}
		producers[pathKey(j.output)] = append(producers[pathKey(j.output)], i)
		jobs = append(jobs, j)
	}

	owner := make(map[string]string, len(jobs)*2)
	kept := jobs[:0]
	for i, j := range jobs {
		if producedByOther(producers[pathKey(j.input)], i) {
			logger.Debug("skipping generated file", zap.String("input", j.input))
			continue
		}
		if j.preview != "" && pathKey(j.preview) == pathKey(j.input) {
			j.conflict = fmt.Errorf("preview %s would replace the input", j.preview)
		}
		for _, p := range []string{j.output, j.preview} {
			if j.conflict != nil || p == "" {
				continue
			}
			if prev, ok := owner[pathKey(p)]; ok {
				j.conflict = fmt.Errorf("output %s is already produced by %s", p, prev)
			}
		}
		if j.conflict == nil {
			owner[pathKey(j.output)] = j.input
			if j.preview != "" {
				owner[pathKey(j.preview)] = j.input
			}
		}
		kept = append(kept, j)
	}
	return kept
}

func producedByOther(producers []int, self int) bool {
	for _, p := range producers {
		if p != self {
			return true
		}
	}
	return false
}

// pathKey folds case so that names differing only in case, which collide
// on case-insensitive filesystems, count as the same file.
func pathKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

func processImage(ctx context.Context, cfg Config, j job) Result {
	if j.conflict != nil {
		err := &convert.Error{Kind: convert.KindProcessing, Op: "plan", Path: j.input, Err: j.conflict}
		logger.Warn("conversion skipped", zap.String("input", j.input), zap.Error(err))
		return Result{Input: j.input, Error: err.Error()}
	}

	opts := convert.Options{
		Input:          j.input,
		Output:         j.output,
		Params:         cfg.Params,
		Format:         cfg.Format,
		MaxSide:        cfg.MaxSide,
		Preview:        j.preview,
		PreviewOptions: cfg.PreviewOptions,
	}

	input := j.input
	res, err := convert.Run(ctx, opts)
	if err != nil {
		logger.Warn("conversion failed", zap.String("input", input), zap.Error(err))
		return Result{
			Input:    input,
			Error:    err.Error(),
			NotFound: convert.IsNotFound(err),
		}
	}

	return Result{
		Input:     input,
		Output:    res.Output,
		Preview:   res.Preview,
		Triangles: res.Triangles,
		Success:   true,
	}
}

// outputFor mirrors input's position below InputDir into OutputDir.
func outputFor(cfg Config, input string) string {
	out := convert.OutputPath(input)
	if cfg.OutputDir == "" {
		return out
	}
	rel, err := filepath.Rel(cfg.InputDir, out)
	if cfg.InputDir == "" || err != nil || !filepath.IsLocal(rel) {
		rel = filepath.Base(out)
	}
	return filepath.Join(cfg.OutputDir, rel)
}

// Failed counts unsuccessful results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}

// Collect walks dir and returns every file with a supported image
// extension, sorted. Directories starting with a dot are skipped, as are
// the skip directories (typically the output directory of the run).
func Collect(dir string, skip ...string) ([]string, error) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		if s != "" {
			skipped[pathKey(s)] = true
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if len(d.Name()) > 1 && d.Name()[0] == '.' || skipped[pathKey(path)] {
				return filepath.SkipDir
			}
			return nil
		}
		if imageio.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
