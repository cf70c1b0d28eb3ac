package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tankarena/audio"
	"github.com/lixenwraith/tankarena/config"
	"github.com/lixenwraith/tankarena/engine"
	"github.com/lixenwraith/tankarena/network"
	"github.com/lixenwraith/tankarena/vars"
)

var (
	worldFlag = flag.String("world", "", "world file (overrides TANKARENA_WORLD)")
	dumpFlag  = flag.Bool("dump", false, "print the world's dynamic colors and exit")
	debugFlag = flag.Bool("debug", false, "write logs to logs/arena-sandbox.log")
)

// peerOutbox delivers local shot messages to a mirror session
type peerOutbox struct {
	peer *engine.Simulation
	sent int
}

func (o *peerOutbox) Send(msg *network.Message) {
	o.sent++
	o.peer.Receive(msg)
}

func main() {
	var screen tcell.Screen

	// Panic Recovery: Ensure terminal is reset even if the sandbox crashes
	defer func() {
		if r := recover(); r != nil {
			if screen != nil {
				screen.Fini()
			}
			fmt.Fprintf(os.Stderr, "\n\x1b[31mARENA-SANDBOX CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *worldFlag != "" {
		cfg.World = *worldFlag
	}
	cfg.Debug = cfg.Debug || *debugFlag

	logger, logFile := setupLogging(cfg.Debug)
	if logFile != nil {
		defer logFile.Close()
	}

	var world *config.World
	if cfg.World != "" {
		if world, err = config.LoadWorld(cfg.World); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load world: %v\n", err)
			os.Exit(1)
		}
	}

	if *dumpFlag {
		if err := dump(os.Stdout, world); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build world: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Variables are pumped on the simulation thread, never from the watcher goroutine
	store := vars.NewDefaultStore()
	var bridge engine.Pumper
	if cfg.NATSURL != "" {
		watcher, release, err := vars.WatchBucket(context.Background(), cfg.NATSURL, cfg.NATSBucket)
		if err != nil {
			logger.Warn("variable bucket unavailable, continuing offline", "err", err)
		} else {
			defer release()
			kv := vars.NewKVBridge(store, watcher, logger)
			kv.Start()
			defer kv.Close()
			bridge = kv
		}
	}

	mirror := engine.NewSimulation(engine.Options{
		Player:        cfg.Player + 1,
		Vars:          vars.NewDefaultStore(),
		Logger:        logger.WithPrefix("mirror"),
		EventCapacity: cfg.EventQueue,
	})
	defer mirror.Close()

	outbox := &peerOutbox{peer: mirror}
	sim := engine.NewSimulation(engine.Options{
		Player:        cfg.Player,
		Vars:          store,
		Outbox:        outbox,
		Bridge:        bridge,
		Logger:        logger,
		EventCapacity: cfg.EventQueue,
	})
	defer sim.Close()

	if world != nil {
		if err := world.ApplyVars(store); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply world variables: %v\n", err)
			os.Exit(1)
		}
		if err := world.ApplyVars(mirror.Vars()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply world variables: %v\n", err)
			os.Exit(1)
		}
		if err := world.BuildColors(sim.Colors()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build world colors: %v\n", err)
			os.Exit(1)
		}
	}

	player := audio.NewPlayer(0.4)
	if cfg.Audio {
		if err := player.Init(); err != nil {
			logger.Warn("audio initialization failed, continuing without audio", "err", err)
		} else {
			defer player.Close()
		}
	}

	screen, err = tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	app := newSandbox(screen, sim, mirror, outbox, logger)
	app.run(cfg, player)
}

// run drives the fixed-rate step loop until the user quits
func (a *sandbox) run(cfg config.Config, player *audio.Player) {
	ticker := time.NewTicker(cfg.TickInterval())
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 64)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.screen.Fini()
				fmt.Fprintf(os.Stderr, "\r\n\x1b[31mEVENT POLLER CRASHED: %v\x1b[0m\r\n", r)
				fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
				os.Exit(1)
			}
		}()

		for {
			ev := a.screen.PollEvent()
			// nil after Fini
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	dt := cfg.TickSeconds()
	for {
		select {
		case ev := <-eventChan:
			if !a.handleEvent(ev) {
				return
			}

		case <-ticker.C:
			a.sim.Step(dt)
			a.mirror.Step(dt)

			events := a.sim.Events().Consume()
			player.HandleEvents(events)
			a.noteEvents(events)
			a.mirrorEvents += len(a.mirror.Events().Consume())

			a.draw()
		}
	}
}
