// Command oscmix bridges OSC control surfaces to an RME-class audio
// interface's SysEx register protocol over MIDI, composing the
// ParameterTree/DeviceMirror/ControlDispatcher core with the concrete
// UDP transport, Echo-based monitoring API, and WebSocket bridge.
package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"oscmix/internal/auditlog"
	"oscmix/internal/config"
	"oscmix/internal/engine"
	"oscmix/internal/monitorapi"
	"oscmix/internal/param"
	"oscmix/internal/transport"
	"oscmix/internal/wsbridge"
)

// noMidiPort stands in for a MIDI port when this build has no compiled-in
// MIDI backend (see internal/midi's package doc). It lets the engine come
// up and serve OSC/monitoring traffic without a real device attached,
// rather than refusing to start at all.
type noMidiPort struct {
	name string
	done chan struct{}
}

func newNoMidiPort(name string) *noMidiPort {
	return &noMidiPort{name: name, done: make(chan struct{})}
}

func (p *noMidiPort) Name() string { return p.name }

func (p *noMidiPort) SendSysex(frame []byte) error {
	return errors.New("midi: no backend compiled into this build")
}

func (p *noMidiPort) ReceiveSysex() ([]byte, error) {
	<-p.done
	return nil, errors.New("midi: port closed")
}

func (p *noMidiPort) Close() error {
	close(p.done)
	return nil
}

func main() {
	if len(os.Args) > 1 && RunCLI(os.Args[1:], nil) {
		return
	}

	cfg := config.Load()

	debug := flag.Bool("d", cfg.Debug, "enable debug logging")
	disableMeters := flag.Bool("l", cfg.DisableMeters, "disable level meters")
	recvAddr := flag.String("r", cfg.RecvAddr, "OSC receive address (udp!host!port)")
	sendAddr := flag.String("s", cfg.SendAddr, "OSC send address (udp!host!port)")
	multicast := flag.Bool("m", cfg.Multicast, "use multicast send address")
	midiPort := flag.String("p", cfg.MidiPort, "MIDI port name or index (env MIDIPORT)")
	model := flag.String("model", "Fireface UCX II", "device register-map model")
	deviceID := flag.Int("device-id", 0x10, "device id byte for SysEx frames")
	monitorAddr := flag.String("monitor-addr", ":8421", "read-only HTTP monitoring API address (empty to disable)")
	webTransportAddr := flag.String("webtransport-addr", "", "HTTP/3 WebTransport OSC bridge address (empty to disable)")
	dbPath := flag.String("db", "", "audit log SQLite path (empty disables persistence)")
	flag.Parse()

	if *debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if *midiPort == "" {
		*midiPort = os.Getenv("MIDIPORT")
	}

	cfg.Debug = *debug
	cfg.DisableMeters = *disableMeters
	cfg.RecvAddr = *recvAddr
	cfg.SendAddr = *sendAddr
	cfg.Multicast = *multicast
	cfg.MidiPort = *midiPort
	if err := config.Save(cfg); err != nil {
		log.Printf("[main] save config: %v", err)
	}

	recv, err := transport.ParseAddr(*recvAddr)
	if err != nil {
		log.Printf("[main] %v", err)
		os.Exit(1)
	}
	send, err := transport.ParseAddr(*sendAddr)
	if err != nil {
		log.Printf("[main] %v", err)
		os.Exit(1)
	}
	send.Multicast = send.Multicast || *multicast

	tr, err := transport.ListenUDP(recv, send)
	if err != nil {
		log.Printf("[main] %v", err)
		os.Exit(1)
	}

	reg := param.NewRegistry()

	// No MIDI I/O library is wired into this build: MidiPort is an
	// external collaborator (see internal/midi) with no concrete binding
	// anywhere in this module's dependency set. Hardware register traffic
	// is unavailable, but OSC and the monitoring surface still work.
	if *midiPort != "" {
		log.Printf("[main] MIDI port %q requested, but this build has no compiled-in MIDI backend", *midiPort)
	} else {
		log.Printf("[main] no MIDI backend compiled into this build; running without hardware register access")
	}
	port := newNoMidiPort(*midiPort)

	var audit *auditlog.Store
	if *dbPath != "" {
		audit, err = auditlog.Open(*dbPath)
		if err != nil {
			log.Printf("[main] %v", err)
			os.Exit(1)
		}
		defer audit.Close()
	}

	eng, err := engine.New(reg, engine.Config{
		Model:     *model,
		DeviceID:  byte(*deviceID),
		Debug:     cfg.Debug,
		Transport: tr,
		MidiPort:  port,
		Audit:     audit,
	})
	if err != nil {
		log.Printf("[main] %v", err)
		os.Exit(1)
	}
	if err := eng.Start(); err != nil {
		log.Printf("[main] %v", err)
		os.Exit(1)
	}
	defer eng.Stop()

	if *monitorAddr != "" {
		mon := monitorapi.New(eng.Mirror(), *model)
		wsbridge.NewHandler(eng.Dispatcher()).Register(mon.Echo())
		go func() {
			if err := mon.Run(*monitorAddr); err != nil {
				log.Printf("[main] monitor api: %v", err)
			}
		}()
		log.Printf("[main] monitoring api listening on %s", *monitorAddr)
	}

	if *webTransportAddr != "" {
		wt, err := wsbridge.NewWebTransportHandler(eng.Dispatcher(), *webTransportAddr)
		if err != nil {
			log.Printf("[main] webtransport bridge: %v", err)
		} else {
			go func() {
				if err := wt.ListenAndServe(); err != nil {
					log.Printf("[main] webtransport bridge: %v", err)
				}
			}()
			defer wt.Close()
			log.Printf("[main] webtransport osc bridge listening on %s", *webTransportAddr)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh
	log.Printf("[main] shutting down")
}
