/* ccnd - a content-centric networking forwarding daemon
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ccnlabs/ccnd/core"
	"github.com/ccnlabs/ccnd/face"
	"github.com/ccnlabs/ccnd/fw"
	"github.com/ccnlabs/ccnd/ioloop"
	"github.com/ccnlabs/ccnd/mgmt"
	"github.com/ccnlabs/ccnd/pool"
	"github.com/ccnlabs/ccnd/sched"
)

// Version of ccnd, set by the linker at build time.
var Version string

// BuildTime records when this build of ccnd was produced.
var BuildTime string

func main() {
	core.Version = Version
	core.BuildTime = BuildTime

	var shouldPrintVersion bool
	flag.BoolVar(&shouldPrintVersion, "version", false, "Print version and exit")
	flag.BoolVar(&shouldPrintVersion, "V", false, "Print version and exit (short)")
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to a TOML configuration file")
	flag.Parse()

	if shouldPrintVersion {
		fmt.Println("ccnd: a content-centric networking forwarding daemon")
		fmt.Println("Version " + core.Version + " (Built " + core.BuildTime + ")")
		return
	}

	core.LoadConfig(configFile)
	core.InitializeLogger()
	core.EnableTraceFromDebugEnv(os.Getenv("CCND_DEBUG"))
	core.StartTimestamp = time.Now()

	if err := run(); err != nil {
		core.LogFatal("main", err.Error())
	}
}

// run wires config into a scratch pool, a daemon, the local and
// datagram listeners, the status HTTP surface, and the I/O loop, then
// blocks until a termination signal arrives, grounded in
// cmd/yanfd/main.go's setup-then-signal-wait shape and ccnd.c's
// unlink_at_exit/handle_fatal_signal treatment of SIGTERM, SIGINT, and
// SIGHUP alike as fatal (SPEC_FULL.md §10.5).
func run() error {
	scratch, err := pool.New()
	if err != nil {
		return fmt.Errorf("scratch pool: %w", err)
	}
	defer scratch.Close()

	seed := time.Now().UnixNano()
	daemon := fw.New(sched.SystemClock{}, seed, scratch)
	daemon.ShortTermBlocking = core.GetConfigBoolDefault("matching.short_term_blocking", false)

	sockname := face.SockNameFromEnv(os.Getenv)
	backlog := core.GetConfigIntDefault("face.unix.backlog", 32)
	listener, err := face.ListenUnix(sockname, backlog)
	if err != nil {
		return fmt.Errorf("local listener %s: %w", sockname, err)
	}
	defer listener.Close()

	udpPort := face.UDPPortFromEnv(os.Getenv)
	udpFaces, err := face.ListenUDP(udpPort)
	if err != nil {
		return fmt.Errorf("datagram sockets on port %s: %w", udpPort, err)
	}

	var wsListener *face.WebSocketListener
	if core.GetConfigBoolDefault("face.websocket.enabled", false) {
		wsListener = face.NewWebSocketListener()
	}

	loop := ioloop.New(daemon, listener, udpFaces, wsListener)

	if core.GetConfigBoolDefault("face.ethernet.enabled", false) {
		if err := enrollEthernetFace(daemon); err != nil {
			core.LogWarn("main", "ethernet face: ", err)
		}
	}

	statusAddr := core.GetConfigStringDefault("mgmt.status_addr", "127.0.0.1:4486")
	var wsHandler http.Handler
	if wsListener != nil {
		wsHandler = wsListener
	}
	statusServer := mgmt.NewServer(statusAddr, loop.Status, wsHandler)
	go func() {
		if err := statusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			core.LogWarn("main", "status listener: ", err)
		}
	}()

	core.LogInfo("main", "ccnd ", core.Version, " starting: local=", sockname,
		" udp=", udpPort, " status=", statusAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run() }()

	select {
	case sig := <-sigCh:
		core.LogInfo("main", "received signal ", sig, ", shutting down")
		loop.Stop()
		<-loopDone
	case err := <-loopDone:
		if err != nil {
			core.LogError("main", "I/O loop exited: ", err)
		}
	}

	_ = statusServer.Close()

	core.LogInfo("main", "ccnd exiting: in_interests=", daemon.NInInterests,
		" in_data=", daemon.NInData, " out_interests=", daemon.NOutInterests,
		" out_data=", daemon.NOutData, " dropped=", daemon.InterestsDropped)
	return nil
}

// enrollEthernetFace opens the multicast Ethernet face named by
// face.ethernet.interface/face.ethernet.multicast_address and enrolls
// it on daemon, grounded in cmd/yanfd/main.go's identical
// config-gated construction of its own Ethernet transport.
func enrollEthernetFace(daemon *fw.Daemon) error {
	ifaceName := core.GetConfigStringDefault("face.ethernet.interface", "")
	if ifaceName == "" {
		return fmt.Errorf("face.ethernet.enabled is set but face.ethernet.interface is empty")
	}
	macStr := core.GetConfigStringDefault("face.ethernet.multicast_address", "01:00:5e:00:17:aa")
	remoteMAC, err := net.ParseMAC(macStr)
	if err != nil {
		return fmt.Errorf("face.ethernet.multicast_address %s: %w", macStr, err)
	}
	f, _, err := face.NewEthernetFace(ifaceName, remoteMAC)
	if err != nil {
		return fmt.Errorf("open %s: %w", ifaceName, err)
	}
	if _, err := daemon.EnrollFace(f); err != nil {
		f.Close()
		return fmt.Errorf("enroll: %w", err)
	}
	return nil
}
