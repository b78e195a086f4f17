// Command pedalboard runs the distortion pedal on the default audio
// device and draws the output spectrum in the terminal.
//
// Usage:
//
//	pedalboard [flags]
//
// Keys:
//
//	d / c      select Distortion / Clean
//	+ / -      drive up / down
//	I / i      input gain up / down
//	O / o      output gain up / down
//	q, Ctrl-C  quit
//
// Examples:
//
//	pedalboard
//	pedalboard -ir-dir ./cabinets -ir 4x12.wav
//	pedalboard -rate 44100 -block 128 -log pedal.log -v
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cwbudde/algo-pedal/pedal/analyzer"
	"github.com/cwbudde/algo-pedal/pedal/control"
	"github.com/cwbudde/algo-pedal/pedal/engine"
	"github.com/cwbudde/algo-pedal/pedal/irload"
)

type options struct {
	irDir     string
	cabinet   string
	rate      float64
	block     int
	channels  int
	refresh   float64
	logPath   string
	verbose   bool
	noWatch   bool
	startDist bool
}

func main() {
	var opts options

	flag.StringVar(&opts.irDir, "ir-dir", ".", "directory holding the cabinet impulse response")
	flag.StringVar(&opts.cabinet, "ir", engine.DefaultCabinetIR, "cabinet impulse response file name")
	flag.Float64Var(&opts.rate, "rate", 48000, "requested device sample rate in Hz")
	flag.IntVar(&opts.block, "block", 256, "frames per device buffer")
	flag.IntVar(&opts.channels, "channels", 2, "input and output channel count")
	flag.Float64Var(&opts.refresh, "refresh", engine.DefaultRefreshRate, "spectrum refresh rate in Hz")
	flag.StringVar(&opts.logPath, "log", "", "write logs to this file instead of stderr")
	flag.BoolVar(&opts.verbose, "v", false, "enable debug logging")
	flag.BoolVar(&opts.noWatch, "no-watch", false, "do not reload the impulse response when it changes on disk")
	flag.BoolVar(&opts.startDist, "distortion", false, "start in the Distortion state")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pedalboard [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the distortion pedal on the default audio device.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pedalboard: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	log, closeLog, err := newLogger(opts.logPath, opts.verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	proc, err := engine.New(
		engine.WithLogger(log),
		engine.WithLocator(irload.DirLocator{Dir: opts.irDir}),
		engine.WithCabinetIR(opts.cabinet),
		engine.WithRefreshRate(opts.refresh),
	)
	if err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()

	audio, err := openAudio(proc, opts.rate, opts.block, opts.channels, log)
	if err != nil {
		return err
	}
	defer audio.Close()

	if opts.startDist {
		if err := proc.OnControlEvent(control.ControlSelectDistortion, 1); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		defer func() { _ = term.Restore(fd, old) }()
	}

	if err := audio.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	surface := newSurface()
	screen := newScreen(os.Stdout, int(os.Stdout.Fd()))

	g.Go(func() error {
		return proc.Run(gctx, func(curve analyzer.Curve) {
			screen.draw(curve, surface.status(proc.State(), proc.Dropped(), audio.Errors()))
		})
	})

	g.Go(func() error {
		return readKeys(gctx, os.Stdin, surface, proc, log)
	})

	if !opts.noWatch {
		path := opts.cabinet
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.irDir, path)
		}

		g.Go(func() error {
			err := irload.Watch(gctx, path, func() {
				if proc.Reload() {
					log.WithField("path", path).Info("Cabinet impulse response changed, reloading")
				}
			}, irload.WithWatchLogger(log))
			if err != nil {
				log.WithField("error", err.Error()).Warn("Impulse response watcher disabled")
			}

			return nil
		})
	}

	err = g.Wait()

	if stopErr := audio.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}

	proc.Release()
	screen.clear()

	if errors.Is(err, errQuit) {
		return nil
	}

	return err
}

func newLogger(path string, verbose bool) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if path == "" {
		// Raw mode leaves the terminal to the spectrum; only warnings
		// interrupt it.
		if !verbose {
			log.SetLevel(logrus.WarnLevel)
		}

		return log, func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}

	log.SetOutput(f)

	return log, func() { _ = f.Close() }, nil
}
