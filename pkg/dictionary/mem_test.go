//go:build test

package dictionary

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var testTexts = []string{
	"Good morning, the cat sat on the mat.",
	"Han springer fort gjennom parken hver morgen.",
	"Lyset er på, og bakeren nynner.",
	"category catalog cat caterpillar",
	"word0001 word0420 word9999 phrase 17 here",
}

func soakManager(t *testing.T, cacheSize int) *Manager {
	t.Helper()
	words := make(map[string]map[string]any, 10000)
	for i := 0; i < 10000; i++ {
		key := fmt.Sprintf("word%04d", i)
		words[key] = map[string]any{"translation": key, "partOfSpeech": "noun", "baseForm": key}
	}
	for _, w := range []string{"cat", "category", "morning", "springer", "på"} {
		words[w] = map[string]any{"translation": w, "partOfSpeech": "noun", "baseForm": w}
	}
	phrases := map[string]map[string]any{}
	for i := 0; i < 500; i++ {
		key := fmt.Sprintf("phrase %d here", i)
		phrases[key] = map[string]any{"translation": key, "partOfSpeech": "phrase", "baseForm": key}
	}
	phrases["good morning"] = map[string]any{"translation": "god morgen", "partOfSpeech": "phrase", "baseForm": "good morning"}

	m := NewManager(WithCacheSize(cacheSize))
	m.LoadDictionaries([]Source{
		NewSource("soak_words", domain.Word, words),
		NewSource("soak_phrases", domain.Phrase, phrases),
	})
	return m
}

func TestMemoryLeakBasic(t *testing.T) {
	iterations := []int{100, 500, 1000, 2500}

	for _, iterCount := range iterations {
		t.Run(fmt.Sprintf("iterations_%d", iterCount), func(t *testing.T) {
			runBasicMemoryTest(t, iterCount)
		})
	}
}

func TestMemoryLeakConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 1000},
		{workers: 4, iterationsPerWorker: 250},
		{workers: 8, iterationsPerWorker: 125},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			runConcurrentMemoryTest(t, config.workers, config.iterationsPerWorker)
		})
	}
}

func TestMemoryStabilityReloads(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}

	m := soakManager(t, 64)
	sources := append([]Source(nil), m.sources...)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	for cycle := 0; cycle < 20; cycle++ {
		m.LoadDictionaries(sources)
		for _, text := range testTexts {
			if _, err := m.FindInText(text); err != nil {
				t.Fatalf("find failed: %v", err)
			}
		}
		time.Sleep(5 * time.Millisecond)
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	memDelta := int64(final.Alloc) - int64(baseline.Alloc)
	goroutineDelta := runtime.NumGoroutine() - baselineGoroutines

	t.Logf("reloads=20 mem_delta=%d bytes goroutine_delta=%d", memDelta, goroutineDelta)

	if memDelta > 32*1024*1024 {
		t.Errorf("memory grows across reloads: %d bytes", memDelta)
	}
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

func runBasicMemoryTest(t *testing.T, iterations int) {
	m := soakManager(t, 16)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	for i := 0; i < iterations; i++ {
		for _, text := range testTexts {
			anns, err := m.FindInText(text)
			if err != nil {
				t.Fatalf("find failed: %v", err)
			}
			_ = anns
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.Alloc) - int64(baseline.Alloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	totalOps := iterations * len(testTexts)
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		iterations, totalOps, memDelta, memPerOp, goroutineDelta)

	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}

	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

func runConcurrentMemoryTest(t *testing.T, workers, iterationsPerWorker int) {
	memFile, err := os.Create("concurrent_memory.prof")
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer func() {
		memFile.Close()
		os.Remove("concurrent_memory.prof")
	}()

	// cache disabled so every call scans
	m := soakManager(t, 0)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < iterationsPerWorker; iter++ {
				for _, text := range testTexts {
					if _, err := m.FindInText(text); err != nil {
						t.Errorf("find failed: %v", err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	totalOps := workers * iterationsPerWorker * len(testTexts)

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.Alloc) - int64(baseline.Alloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("workers=%d iter_per_worker=%d total_ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		workers, iterationsPerWorker, totalOps, memDelta, memPerOp, goroutineDelta)

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}

	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}

	if goroutineDelta > 3 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
	if s := m.Statistics(); s.Searches != int64(totalOps) {
		t.Errorf("expected %d searches, got %d", totalOps, s.Searches)
	}
}
