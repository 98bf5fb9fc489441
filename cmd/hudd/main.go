// Command hudd is the relay daemon. It accepts published text and screenshot
// uploads, persists them as timestamped events on disk, and streams them to
// any number of overlay subscribers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daviddao/hudview/internal/relay"
)

var version = "0.3.0"

func main() {
	var (
		addr        = flag.String("addr", ":8008", "listen address")
		dataDir     = flag.String("data", "hudd-data", "directory events and blobs are stored in")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("hudd", version)
		return
	}

	logger := log.New(os.Stderr, "hudd: ", log.LstdFlags)

	store, err := relay.NewStore(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hudd: open store %s: %v\n", *dataDir, err)
		os.Exit(1)
	}

	srv := relay.NewServer(*addr, store, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("received %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "hudd: %v\n", err)
			os.Exit(1)
		}
	}
}
