// vmcbridge-send drives a VMC receiver without a camera: it sends either a
// synthetic animated test signal or a recorded snapshot stream through the
// full session path, at frame rate.
package main

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vmcbridge/pkg/config"
	"vmcbridge/pkg/observability"
	"vmcbridge/pkg/session"
	"vmcbridge/pkg/tracking"
)

func main() {
	opts := ParseFlags(os.Args[1:])

	boot, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(boot)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		boot.Fatal("load config", zap.Error(err))
	}
	if opts.Host != "" {
		cfg.Receiver.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Receiver.Port = opts.Port
	}
	if opts.FPS != 0 {
		cfg.Send.FPS = opts.FPS
	}
	if opts.Format != "" {
		cfg.Send.Format = opts.Format
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		boot.Fatal("setup logger", zap.Error(err))
	}
	defer logger.Sync()

	sess, err := session.New(cfg.Receiver.Host, cfg.Receiver.Port)
	if err != nil {
		logger.Fatal("open session", zap.Error(err))
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source func(frame int) (tracking.Snapshot, error)
	if opts.Replay != "" {
		f, err := os.Open(opts.Replay)
		if err != nil {
			logger.Fatal("open recording", zap.Error(err))
		}
		defer f.Close()
		r, err := tracking.NewReader(f, cfg.Send.Format)
		if err != nil {
			logger.Fatal("open recording", zap.Error(err))
		}
		logger.Info("replaying recording",
			zap.String("file", opts.Replay), zap.String("format", cfg.Send.Format))
		source = func(int) (tracking.Snapshot, error) {
			var s tracking.Snapshot
			return s, r.Next(&s)
		}
	} else {
		logger.Info("sending synthetic test signal")
		source = func(frame int) (tracking.Snapshot, error) {
			return syntheticFrame(frame), nil
		}
	}

	interval := time.Second / time.Duration(cfg.Send.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
loop:
	for {
		snap, err := source(sent)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			logger.Fatal("read snapshot", zap.Error(err))
		}
		sess.SendFrame(snap)
		sent++
		if opts.Frames > 0 && sent >= opts.Frames {
			break
		}

		select {
		case <-ctx.Done():
			logger.Info("interrupted")
			break loop
		case <-ticker.C:
		}
	}
	logger.Info("done", zap.Int("frames", sent), zap.Uint64("dropped", sess.Drops()))
}

// syntheticFrame animates a blink, a mouth open/close cycle and a gentle
// head sway so a connected avatar visibly reacts.
func syntheticFrame(i int) tracking.Snapshot {
	t := float64(i)
	blink := math.Abs(math.Sin(t * 0.1))
	mouth := math.Abs(math.Sin(t * 0.05))
	gaze := 16 + math.Sin(t*0.08)*12

	return tracking.Snapshot{
		Success: true,
		Euler: &tracking.Euler{
			Pitch: math.Sin(t*0.03) * 5,
			Yaw:   math.Sin(t*0.02) * 15,
			Roll:  math.Sin(t*0.015) * 3,
		},
		Translation: &tracking.Vec3{Z: 400 + math.Sin(t*0.01)*30},
		Eyes: &[2]tracking.EyeState{
			{Openness: 1 - blink, YOffsetPx: 16, XOffsetPx: gaze, Confidence: 1},
			{Openness: 1 - blink, YOffsetPx: 16, XOffsetPx: gaze, Confidence: 1},
		},
		Blink: &[2]float64{1 - blink, 1 - blink},
		Features: map[string]float64{
			tracking.FeatureMouthOpen: mouth,
			tracking.FeatureMouthWide: math.Sin(t*0.04) * 0.5,
		},
	}
}
