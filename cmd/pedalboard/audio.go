package main

import (
	"fmt"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/pedal/engine"
)

// audioStream drives a Processor from a portaudio duplex stream.
type audioStream struct {
	stream *portaudio.Stream
	proc   *engine.Processor
	block  buffer.Block
	errs   atomic.Uint64
}

// openAudio opens the default duplex device and prepares proc for the rate
// the device actually granted.
func openAudio(proc *engine.Processor, sampleRate float64, frames, channels int, log logrus.FieldLogger) (*audioStream, error) {
	a := &audioStream{
		proc:  proc,
		block: buffer.Alloc(channels, frames),
	}

	stream, err := portaudio.OpenDefaultStream(channels, channels, sampleRate, frames, a.process)
	if err != nil {
		return nil, fmt.Errorf("portaudio: open stream: %w", err)
	}

	a.stream = stream

	info := stream.Info()
	log.WithFields(logrus.Fields{
		"function":       "openAudio",
		"sample_rate":    info.SampleRate,
		"input_latency":  info.InputLatency.String(),
		"output_latency": info.OutputLatency.String(),
	}).Info("Opened audio stream")

	if err := proc.Prepare(info.SampleRate, frames, channels); err != nil {
		_ = stream.Close()
		return nil, err
	}

	return a, nil
}

// process is the device callback. Blocks the chain rejects pass through
// unprocessed and are counted.
func (a *audioStream) process(in, out [][]float32) {
	n := a.block.LoadFloat32(in)
	b := a.block.Sub(n)

	if err := a.proc.Process(b); err != nil {
		a.errs.Add(1)
	}

	b.StoreFloat32(out)
}

// Errors returns how many callbacks failed to process.
func (a *audioStream) Errors() uint64 {
	return a.errs.Load()
}

func (a *audioStream) Start() error {
	if err := a.stream.Start(); err != nil {
		return fmt.Errorf("portaudio: start stream: %w", err)
	}

	return nil
}

func (a *audioStream) Stop() error {
	if err := a.stream.Stop(); err != nil {
		return fmt.Errorf("portaudio: stop stream: %w", err)
	}

	return nil
}

func (a *audioStream) Close() error {
	return a.stream.Close()
}
