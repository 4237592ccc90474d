// Command forkhttpd is a preforking HTTP/1.x origin server. Run with
// no special environment to start the supervisor; the supervisor
// re-execs this same binary with FORKHTTPD_WORKER_SLOT set to run
// each worker.
package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/yourusername/forkhttpd/internal/config"
	"github.com/yourusername/forkhttpd/internal/netutil"
	"github.com/yourusername/forkhttpd/internal/pluginhost"
	"github.com/yourusername/forkhttpd/internal/supervisor"
	"github.com/yourusername/forkhttpd/internal/workerloop"
)

// inheritedListenerFD is where a re-exec'd worker finds the shared
// listening socket: fd 0-2 are stdio, so the first ExtraFiles entry
// lands at fd 3.
const inheritedListenerFD = 3

func main() {
	cfg := config.FromEnv()

	port := flag.Int("port", cfg.Port, "listen port")
	workers := flag.Int("workers", cfg.WorkerCount, "worker process count")
	docRoot := flag.String("docroot", cfg.DocumentRoot, "document root for static files")
	pluginPath := flag.String("plugin", cfg.PluginPath, "handler plugin path")
	storePath := flag.String("store", cfg.StorePath, "KV store path")
	flag.Parse()

	cfg.Port = *port
	cfg.WorkerCount = *workers
	cfg.DocumentRoot = *docRoot
	cfg.PluginPath = *pluginPath
	cfg.StorePath = *storePath

	if slotStr, ok := os.LookupEnv(supervisor.WorkerSlotEnv); ok {
		runWorker(cfg, slotStr)
		return
	}
	runSupervisor(cfg)
}

func runSupervisor(cfg config.Config) {
	sup, err := supervisor.New(cfg)
	if err != nil {
		log.Fatalf("forkhttpd: %v", err)
	}
	os.Exit(sup.Run())
}

func runWorker(cfg config.Config, slotStr string) {
	slot, err := strconv.Atoi(slotStr)
	if err != nil {
		log.Fatalf("forkhttpd: invalid %s=%q", supervisor.WorkerSlotEnv, slotStr)
	}

	ln, err := netutil.ListenerFromFD(inheritedListenerFD)
	if err != nil {
		log.Fatalf("forkhttpd: worker %d: %v", slot, err)
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		log.Fatalf("forkhttpd: worker %d: inherited listener is not TCP", slot)
	}

	var exitFlag int32
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		atomic.StoreInt32(&exitFlag, 1)
	}()

	host := pluginhost.New(cfg.PluginPath, "")
	// Record the plugin's starting mtime so the first connection
	// doesn't log a spurious reload. A missing plugin isn't fatal
	// here; the load failure is surfaced per connection.
	if _, err := host.CheckReload(); err != nil {
		log.Printf("forkhttpd: worker %d: %v", slot, err)
	}

	loop := &workerloop.Loop{
		Listener:  tcpLn,
		DocRoot:   cfg.DocumentRoot,
		StorePath: cfg.StorePath,
		Host:      host,
		Exit:      &exitFlag,
	}
	log.Printf("forkhttpd: worker %d serving", slot)
	loop.Run()
	log.Printf("forkhttpd: worker %d exiting", slot)
}
