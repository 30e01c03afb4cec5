// Command server runs the CacheMir server: load configuration, bind the
// listener, and serve until a SHUTDOWN command or an interrupt/terminate
// signal stops it. On a signal, the process waits for open connections to
// end before exiting; after SHUTDOWN it exits once the listener is closed.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cachemir/cachemir/internal/server"
	"github.com/cachemir/cachemir/pkg/cache"
	"github.com/cachemir/cachemir/pkg/config"
)

func main() {
	if err := run(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

// run loads config, starts the server, and blocks until shutdown. It
// returns an error only for startup failures (bad config, bind failure) so
// main can map those onto a non-zero exit code without burying the logic in
// a log.Fatal call.
func run() error {
	cfg := config.LoadServerConfig()

	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Printf("starting CacheMir server with config: %+v", cfg)

	ks := cache.New()
	defer ks.Close()

	srv := server.New(cfg, ks)

	startErr := make(chan error, 1)
	go func() {
		startErr <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-startErr:
		// Start returned before any signal: a bind failure (non-nil), or nil
		// after a SHUTDOWN command closed the listener.
		return err
	case <-sigChan:
		log.Println("shutting down server...")
	}

	if err := srv.Stop(); err != nil {
		log.Printf("error stopping server: %v", err)
	}

	log.Println("server stopped")
	return nil
}
