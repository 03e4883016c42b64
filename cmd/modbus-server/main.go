// Command modbus-server runs a Modbus TCP slave whose data model is loaded
// from a YAML descriptor file, the declarative counterpart to
// simonvetter-modbus's examples/tcp_server.go (which builds its coil/
// register tables in Go source instead).
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/brightgrid-io/mbslave/config"
	"github.com/brightgrid-io/mbslave/mblog"
	"github.com/brightgrid-io/mbslave/transport"
)

func main() {
	mapPath := flag.String("map", "mapping.yaml", "path to the YAML data model descriptor")
	addr := flag.String("addr", ":5020", "TCP listen address")
	flag.Parse()

	log := mblog.New("cmd.modbus-server")

	f, err := os.Open(*mapPath)
	if err != nil {
		log.Errorf("opening %s: %v", *mapPath, err)
		os.Exit(1)
	}
	defer f.Close()

	m, err := config.Load(f)
	if err != nil {
		log.Errorf("loading data model: %v", err)
		os.Exit(1)
	}

	inst, err := m.Build()
	if err != nil {
		log.Errorf("building instance: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := transport.NewTCPServer(inst, log)
	if err := srv.ListenAndServe(ctx, *addr); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
