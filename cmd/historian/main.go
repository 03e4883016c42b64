// Command historian runs a Modbus TCP slave that records every coil and
// register write to a SQLite audit log, wiring mbslave's commit_*_write_cb
// hooks to a durable sink the way a real historian appliance would, instead
// of mqtt-bridge's pub/sub mirror.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brightgrid-io/mbslave"
	"github.com/brightgrid-io/mbslave/mblog"
	"github.com/brightgrid-io/mbslave/transport"
)

const (
	numCoils = 16
	numRegs  = 16
)

const schema = `
CREATE TABLE IF NOT EXISTS coil_writes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	address INTEGER NOT NULL,
	value INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS register_writes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	address INTEGER NOT NULL,
	value INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
`

func main() {
	dbPath := flag.String("db", "historian.sqlite", "path to the SQLite audit log")
	addr := flag.String("addr", ":5022", "TCP listen address")
	flag.Parse()

	log := mblog.New("cmd.historian")

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Errorf("opening %s: %v", *dbPath, err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		log.Errorf("creating schema: %v", err)
		os.Exit(1)
	}

	var mu sync.Mutex
	coilVals := make([]bool, numCoils)
	regVals := make([]uint16, numRegs)

	// touchedCoils/touchedRegs track which addresses changed since the
	// last commit callback fired, so only the addresses actually written
	// by this request are recorded rather than the whole bank.
	touchedCoils := make(map[int]bool)
	touchedRegs := make(map[int]bool)

	recordCoils := func(i *mbslave.Instance) {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now().UTC().Format(time.RFC3339Nano)
		for n := range touchedCoils {
			v := 0
			if coilVals[n] {
				v = 1
			}
			if _, err := db.Exec(`INSERT INTO coil_writes (address, value, recorded_at) VALUES (?, ?, ?)`, n, v, now); err != nil {
				log.Errorf("recording coil write: %v", err)
			}
			delete(touchedCoils, n)
		}
	}
	recordRegs := func(i *mbslave.Instance) {
		mu.Lock()
		defer mu.Unlock()
		now := time.Now().UTC().Format(time.RFC3339Nano)
		for n := range touchedRegs {
			if _, err := db.Exec(`INSERT INTO register_writes (address, value, recorded_at) VALUES (?, ?, ?)`, n, regVals[n], now); err != nil {
				log.Errorf("recording register write: %v", err)
			}
			delete(touchedRegs, n)
		}
	}

	coils := make([]mbslave.CoilDesc, numCoils)
	for n := range coils {
		n := n
		coils[n] = mbslave.NewCoil(uint16(n),
			mbslave.WithCoilReadValue(&coilVals[n]),
			mbslave.WithCoilWriteFunc(func(v bool) mbslave.Status {
				mu.Lock()
				coilVals[n] = v
				touchedCoils[n] = true
				mu.Unlock()
				return mbslave.StatusOK
			}),
		)
	}

	regs := make([]mbslave.RegDesc, numRegs)
	for n := range regs {
		n := n
		v := &regVals[n]
		regs[n] = mbslave.RegU16Ptr(uint16(n), v,
			mbslave.WithRegPostWrite(func() {
				mu.Lock()
				touchedRegs[n] = true
				mu.Unlock()
			}),
		)
	}

	inst := mbslave.NewInstance(
		mbslave.WithCoils(coils),
		mbslave.WithHoldingRegisters(regs),
		mbslave.WithCommitCoilsWriteCB(recordCoils),
		mbslave.WithCommitRegsWriteCB(recordRegs),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := transport.NewTCPServer(inst, log)
	if err := srv.ListenAndServe(ctx, *addr); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
