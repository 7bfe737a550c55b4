package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"badgeclock/internal/config"
	"badgeclock/internal/handler"
	"badgeclock/internal/hub"
	"badgeclock/internal/scanner"
	"badgeclock/internal/service"
	"badgeclock/internal/watcher"

	"github.com/spf13/cobra"
)

//go:embed web/*
var webFS embed.FS

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and listen to the badge reader",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("reader") {
				cfg.Reader.URL, _ = cmd.Flags().GetString("reader")
			}
			if path != "" {
				log.Printf("Config loaded: %s", path)
			}
			log.Printf("%s", cfg.Summary())
			return serve(cfg)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().String("reader", "", "badge reader websocket URL, empty disables it")
	return cmd
}

func serve(cfg *config.Config) error {
	log.Println("Starting badgeclock server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// SSE hub greets every client with the current status line
	sseHub := hub.New()
	sseHub.SetGreeting(func() interface{} {
		return service.Event{Type: service.EventStatusChanged, Payload: a.attendance.Status()}
	})
	go sseHub.Run(ctx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	a.eventBus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(event)
			case <-ctx.Done():
				return
			}
		}
	}()

	if cfg.Roster.Path != "" {
		result, err := watcher.LoadRoster(ctx, cfg.Roster.Path, a.directory)
		if err != nil {
			log.Printf("Warning: roster import failed: %v", err)
		} else {
			log.Printf("Roster imported: %d created, %d updated, %d skipped",
				result.Created, result.Updated, result.Skipped)
		}
		if cfg.Roster.Watch {
			go func() {
				if err := watcher.WatchRoster(ctx, cfg.Roster.Path, a.directory, 0); err != nil && ctx.Err() == nil {
					log.Printf("Roster watcher stopped: %v", err)
				}
			}()
		}
	}

	if cfg.Reader.URL != "" {
		src := scanner.NewSource(cfg.Reader.URL, cfg.Reader.HandshakeTimeout.Duration())
		go scanner.Supervise(ctx, src, a.attendance, cfg.Reader.ReconnectDelay.Duration())
	} else {
		log.Println("Badge reader disabled, accepting scans over HTTP only")
	}

	mux := handler.NewRouter(
		handler.NewAttendanceHandler(a.attendance),
		handler.NewEmployeeHandler(a.directory),
		sseHub,
	)

	// Static files from embedded filesystem
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return err
	}
	mux.Handle("/", http.FileServer(http.FS(webContent)))

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// WriteTimeout stays zero: SSE streams are long-lived
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     finalHandler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	log.Println("Shutting down server...")

	// Stops the reader, the roster watcher and the SSE hub
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}
