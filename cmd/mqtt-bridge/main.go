// Command mqtt-bridge exposes a small fixed Modbus TCP slave whose holding
// registers and coils are mirrored onto an MQTT broker: every write that
// reaches the slave is republished as a retained MQTT message, and messages
// published to a command topic are applied back onto the slave's registers.
// This exercises mbslave's commit_*_write_cb hooks the way
// simonvetter-modbus's own examples wire callbacks around a RequestHandler,
// generalized here to a pub/sub sink instead of a log line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/brightgrid-io/mbslave"
	"github.com/brightgrid-io/mbslave/mblog"
	"github.com/brightgrid-io/mbslave/transport"
)

const (
	numCoils = 16
	numRegs  = 16
)

func main() {
	broker := flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	topicPrefix := flag.String("topic-prefix", "mbslave/demo", "MQTT topic prefix for published state")
	addr := flag.String("addr", ":5021", "TCP listen address")
	flag.Parse()

	log := mblog.New("cmd.mqtt-bridge")

	var mu sync.Mutex
	coilVals := make([]bool, numCoils)
	regVals := make([]uint16, numRegs)

	opts := mqtt.NewClientOptions().AddBroker(*broker).SetClientID("mbslave-bridge")
	client := mqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		log.Errorf("connecting to broker: %v", tok.Error())
		os.Exit(1)
	}
	defer client.Disconnect(250)

	publishCoils := func(i *mbslave.Instance) {
		mu.Lock()
		defer mu.Unlock()
		for n, v := range coilVals {
			topic := fmt.Sprintf("%s/coils/%d", *topicPrefix, n)
			client.Publish(topic, 0, true, strconv.FormatBool(v))
		}
	}
	publishRegs := func(i *mbslave.Instance) {
		mu.Lock()
		defer mu.Unlock()
		for n, v := range regVals {
			topic := fmt.Sprintf("%s/registers/%d", *topicPrefix, n)
			client.Publish(topic, 0, true, strconv.Itoa(int(v)))
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
				mu.Unlock()
				return mbslave.StatusOK
			}),
		)
	}

	regs := make([]mbslave.RegDesc, numRegs)
	for n := range regs {
		regs[n] = mbslave.RegU16Ptr(uint16(n), &regVals[n])
	}

	inst := mbslave.NewInstance(
		mbslave.WithCoils(coils),
		mbslave.WithHoldingRegisters(regs),
		mbslave.WithCommitCoilsWriteCB(publishCoils),
		mbslave.WithCommitRegsWriteCB(publishRegs),
	)

	// Commands published to <prefix>/registers/<n>/set are applied back
	// onto the slave's own backing storage.
	cmdTopic := fmt.Sprintf("%s/registers/+/set", *topicPrefix)
	if tok := client.Subscribe(cmdTopic, 0, func(c mqtt.Client, m mqtt.Message) {
		var n int
		if _, err := fmt.Sscanf(m.Topic(), *topicPrefix+"/registers/%d/set", &n); err != nil {
			return
		}
		if n < 0 || n >= numRegs {
			return
		}
		if val, err := strconv.Atoi(string(m.Payload())); err == nil {
			mu.Lock()
			regVals[n] = uint16(val)
			mu.Unlock()
		}
	}); tok.Wait() && tok.Error() != nil {
		log.Errorf("subscribing to %s: %v", cmdTopic, tok.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				publishCoils(inst)
				publishRegs(inst)
			}
		}
	}()

	srv := transport.NewTCPServer(inst, log)
	if err := srv.ListenAndServe(ctx, *addr); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
