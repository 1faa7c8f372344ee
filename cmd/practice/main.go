// Command practice runs a timed mock interview in the terminal against the
// interview service.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"saylo/internal/client"
	"saylo/internal/proctoring"
	"saylo/internal/session"
)

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	url := flag.String("url", "http://localhost:8081", "interview service base URL")
	role := flag.String("role", "Software Engineer", "role to interview for")
	difficulty := flag.String("difficulty", "medium", "easy, medium or hard")
	topic := flag.String("topic", "", "interview topic")
	questionTime := flag.Duration("question-time", session.DefaultQuestionDuration, "time allowed per question")
	timeout := flag.Duration("timeout", session.DefaultRequestTimeout, "per-request timeout")
	frames := flag.String("frames", "", "JSONL landmark recording used as the camera")
	realtime := flag.Bool("realtime", false, "replay the landmark recording at its recorded pace")
	history := flag.Bool("history", false, "print past interviews and exit")
	verbose := flag.Bool("verbose", false, "log to stderr")
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*url, *timeout, logger)

	if *history {
		items, err := api.GetHistory(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load history: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(formatHistory(items))
		return
	}

	changed := make(chan struct{}, 1)
	opts := session.Options{
		QuestionDuration: *questionTime,
		RequestTimeout:   *timeout,
		Topic:            *topic,
		Logger:           logger,
		OnChange: func(session.State) {
			select {
			case changed <- struct{}{}:
			default:
			}
		},
	}
	if *frames != "" {
		path := *frames
		opts.Camera = func() (proctoring.FrameSource, error) {
			src, err := proctoring.OpenJSONL(path)
			if err != nil {
				return nil, err
			}
			src.Realtime = *realtime
			return src, nil
		}
		opts.Detector = proctoring.LoadReplayDetector
	}

	ctrl := session.New(api, opts)
	defer ctrl.Close()

	if err := run(ctx, ctrl, *role, *difficulty, changed); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, ctrl *session.Controller, role, difficulty string, changed <-chan struct{}) error {
	if err := ctrl.GoToSetup(); err != nil {
		return err
	}
	if err := ctrl.ShowInstructions(); err != nil {
		return err
	}

	con := newConsole(ctrl, os.Stdout)
	fmt.Printf("Mock interview: %s (%s). Type your answer, then a blank line to submit.\n", role, difficulty)

	if err := ctrl.StartInterview(ctx, role, difficulty); err != nil {
		return fmt.Errorf("could not start interview: %s", ctrl.State().Error)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	// the countdown notifies every second, so changed also drives warnings
	con.refresh()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			if con.refresh() {
				return nil
			}
		case line, ok := <-lines:
			if !ok || con.handleLine(ctx, line) {
				return nil
			}
			if con.refresh() {
				return nil
			}
		}
	}
}
