// Command stress floods an alog pipeline from many goroutines while resizing
// the queue and rotating files underneath it, then prints the counters.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/lixenwraith/alog"
)

type options struct {
	configPath     string
	dir            string
	workers        int
	bursts         int
	perBurst       int
	maxMessageSize int
	queueSize      int64
	resizeEvery    time.Duration
	rotateEvery    time.Duration
	heartbeat      time.Duration
}

var levels = []alog.Severity{
	alog.LevelDebug,
	alog.LevelInfo,
	alog.LevelWarning,
	alog.LevelError,
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options

	flagSet := pflag.NewFlagSet("stress", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "TOML file with an [alog] table (optional)")
	flagSet.StringVar(&opts.dir, "dir", "./logs", "directory for the per-level log files")
	flagSet.IntVar(&opts.workers, "workers", 64, "producer goroutines")
	flagSet.IntVar(&opts.bursts, "bursts", 200, "total bursts")
	flagSet.IntVar(&opts.perBurst, "per-burst", 500, "records per burst")
	flagSet.IntVar(&opts.maxMessageSize, "max-message", 2000, "maximum random message length")
	flagSet.Int64Var(&opts.queueSize, "queue-size", 1024, "hand-off queue capacity")
	flagSet.DurationVar(&opts.resizeEvery, "resize-every", 200*time.Millisecond, "alternate the queue size at this interval (0 disables)")
	flagSet.DurationVar(&opts.rotateEvery, "rotate-every", 500*time.Millisecond, "rename the info log at this interval (0 disables)")
	flagSet.DurationVar(&opts.heartbeat, "heartbeat", time.Second, "heartbeat interval, rounded to seconds (0 disables)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	if err := logger.Start(); err != nil {
		return err
	}

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d records/burst, queue %d\n",
		opts.workers, opts.bursts, opts.perBurst, opts.queueSize)

	stop := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\n[Signal Received] Stopping burst generation...")
			close(stop)
		case <-stop:
		}
	}()

	var background sync.WaitGroup
	done := make(chan struct{})
	if opts.resizeEvery > 0 {
		background.Add(1)
		go func() {
			defer background.Done()
			resizeLoop(logger, opts, done)
		}()
	}
	if opts.rotateEvery > 0 {
		background.Add(1)
		go func() {
			defer background.Done()
			rotateLoop(filepath.Join(opts.dir, "info.log"), opts.rotateEvery, done)
		}()
	}

	startTime := time.Now()
	completed := produce(logger, opts, stop)
	duration := time.Since(startTime)

	close(done)
	background.Wait()

	fmt.Printf("\nCompleted %d/%d bursts in %v\n", completed, opts.bursts, duration.Round(time.Millisecond))
	if completed > 0 && duration.Seconds() > 0 {
		fmt.Printf("Approximate records/sec: %.2f\n", float64(completed*int64(opts.perBurst))/duration.Seconds())
	}

	fmt.Println("Shutting down logger (allowing up to 10s)...")
	if err := logger.Shutdown(10 * time.Second); err != nil {
		return fmt.Errorf("logger shutdown: %w", err)
	}

	printStats(logger.Stats())
	return nil
}

// newLogger loads the optional config file and routes every exercised level
// to its own file under dir
func newLogger(opts options) (*alog.Logger, error) {
	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		return nil, err
	}

	var cfg *alog.Config
	var err error
	if opts.configPath != "" {
		cfg, err = alog.NewConfigFromFile(opts.configPath)
	} else {
		cfg = alog.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	cfg.QueueSize = opts.queueSize
	cfg.HeartbeatIntervalS = int64(opts.heartbeat / time.Second)
	for _, level := range levels {
		path := filepath.Join(opts.dir, level.String()+".log")
		if err := cfg.SetLevel(level, fmt.Sprintf(`enabled, no_ansi_colors, file "%s"`, path)); err != nil {
			return nil, err
		}
	}

	logger := alog.NewLogger()
	if err := logger.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	return logger, nil
}

func produce(logger *alog.Logger, opts options, stop <-chan struct{}) int64 {
	burstChan := make(chan int, opts.workers)
	var wg sync.WaitGroup
	var completed atomic.Int64

	for i := 0; i < opts.workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for burstID := range burstChan {
				logBurst(logger, rng, burstID, opts)
				if n := completed.Add(1); n%10 == 0 || n == int64(opts.bursts) {
					fmt.Printf("\rProgress: %d/%d bursts completed", n, opts.bursts)
				}
			}
		}(time.Now().UnixNano() + int64(i))
	}

submit:
	for i := 1; i <= opts.bursts; i++ {
		select {
		case burstChan <- i:
		case <-stop:
			break submit
		}
	}
	close(burstChan)
	wg.Wait()

	return completed.Load()
}

func logBurst(logger *alog.Logger, rng *rand.Rand, burstID int, opts options) {
	timer := logger.Timer(fmt.Sprintf("burst-%d", burstID%8))
	timer.Start()
	for i := 0; i < opts.perBurst; i++ {
		level := levels[rng.Intn(len(levels))]
		msg := randomMessage(rng, rng.Intn(opts.maxMessageSize)+10)
		logger.Log(level, msg, "bst", burstID, "seq", i)
	}
	timer.Stop()
}

func randomMessage(rng *rand.Rand, size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rng.Intn(len(chars))])
	}
	return sb.String()
}

// resizeLoop alternates between the configured queue size and a quarter of it
func resizeLoop(logger *alog.Logger, opts options, done <-chan struct{}) {
	ticker := time.NewTicker(opts.resizeEvery)
	defer ticker.Stop()

	small := max(opts.queueSize/4, 2)
	sizes := [2]int64{small, opts.queueSize}
	for i := 0; ; i++ {
		select {
		case <-ticker.C:
			if err := logger.ApplyConfigString(fmt.Sprintf("queue_size=%d", sizes[i%2])); err != nil {
				fmt.Fprintf(os.Stderr, "\nresize: %v\n", err)
			}
		case <-done:
			return
		}
	}
}

// rotateLoop renames path like an external rotation tool would
func rotateLoop(path string, every time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-ticker.C:
			_ = os.Rename(path, fmt.Sprintf("%s.%d", path, n))
		case <-done:
			return
		}
	}
}

func printStats(s alog.Stats) {
	fmt.Println("--- Pipeline counters ---")
	fmt.Printf("submitted  %d\n", s.Submitted)
	fmt.Printf("dropped    %d\n", s.Dropped)
	fmt.Printf("holes      %d\n", s.Holes)
	fmt.Printf("processed  %d\n", s.Processed)
	fmt.Printf("writes     %d (%d bytes, %d flush passes)\n", s.Writes, s.Bytes, s.FlushPasses)
	fmt.Printf("reopens    %d\n", s.Reopens)
	fmt.Printf("errors     open %d, write %d\n", s.OpenErrors, s.WriteErrors)
}
