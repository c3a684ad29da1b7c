// Command hapticsh is an interactive shell over the haptics engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-haptics/actuator"
	"go-haptics/config"
	"go-haptics/debug"
	"go-haptics/haptics"
	"go-haptics/midi"
)

func main() {
	var (
		configFile string
		dry        bool
		debugLog   bool
		noInput    bool
	)
	flag.StringVar(&configFile, "config", "", "Configuration file path (default ~/.config/go-haptics/config.yaml)")
	flag.BoolVar(&dry, "dry", false, "Record buzzes in memory instead of opening MIDI ports")
	flag.BoolVar(&debugLog, "debug", false, "Write the debug log")
	flag.BoolVar(&noInput, "no-input", false, "Do not watch MIDI input controllers")
	flag.Parse()

	cfg, err := loadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if debugLog || cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	opts := engineOptions(ctx, cfg, dry, noInput)
	engine := haptics.New(cfg, opts...)

	shell := NewShell(engine, os.Stdout)
	if err := shell.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func engineOptions(ctx context.Context, cfg *config.Config, dry, noInput bool) []haptics.Option {
	if dry {
		return []haptics.Option{haptics.WithDriver(actuator.NewMemoryDriver("dry", nil))}
	}

	opts := []haptics.Option{haptics.WithProbes(midi.Probes(cfg.Actuator, nil)...)}

	if cfg.Actuator.Policy == config.PolicyAttempt {
		fallback, err := midi.OpenFallback(cfg.Actuator, nil)
		if err != nil {
			debug.Log("main", "fallback: %v", err)
		} else if fallback != nil {
			opts = append(opts, haptics.WithFallback(fallback))
		}
	}

	if !noInput && len(cfg.Input.Ports) > 0 {
		deviceMgr := midi.NewDeviceManager(cfg.Input.Ports)
		go deviceMgr.Run(ctx)
		go func() {
			for range deviceMgr.Events() {
				// connection changes only matter to the log
			}
		}()
		opts = append(opts, haptics.WithSources(deviceMgr))
	}
	return opts
}
