package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"sysagent/collector"
	"sysagent/config"
	"sysagent/logger"
	"sysagent/publisher"
	"sysagent/scheduler"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error setting up logger:", err)
		os.Exit(1)
	}
	defer logger.Flush(log)

	sources, err := buildSources(cfg)
	if err != nil {
		// The only fatal condition: a required source cannot be
		// constructed at all. Fail before the scheduler starts.
		log.Fatal("cannot construct metric sources", zap.Error(err))
	}

	sampler := collector.NewSampler(sources, log)
	pub := publisher.New(cfg, log)
	sched := scheduler.New(sampler, pub, cfg.TickInterval(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil {
		log.Error("scheduler exited", zap.Error(err))
	}
}

// buildSources constructs every enabled metric source. When GPU
// collection is excluded, a disabled placeholder keeps the GPU fields in
// each snapshot (as sentinels) without ever touching the GPU tooling.
func buildSources(cfg *config.Config) ([]collector.Source, error) {
	network, err := collector.NewNetworkSource(cfg.NetCommand, cfg.CommandTimeout)
	if err != nil {
		return nil, err
	}

	sources := []collector.Source{
		collector.NewCPUSource(),
		collector.NewMemorySource(),
		collector.NewDiskSource(cfg.DiskPath),
		network,
	}

	if cfg.ExcludeGPU {
		sources = append(sources, collector.Disabled("gpu", collector.GPUFieldNames))
	} else {
		gpu, err := collector.NewGPUSource(cfg.CommandTimeout)
		if err != nil {
			return nil, fmt.Errorf("gpu source (pass --exclude-gpu to run without one): %w", err)
		}
		sources = append(sources, gpu)
	}
	return sources, nil
}
