package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"collab-notes/infrastructure/httpapi"
	"collab-notes/infrastructure/ws"
	"collab-notes/logs"
	"collab-notes/notify"
	"collab-notes/repositories"
	"collab-notes/runtime"
	"collab-notes/runtime/workers"
	"collab-notes/sanitize"
	"collab-notes/services"
	"collab-notes/unread"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Unread counter cache (optional)
	var counter *unread.Counter
	if config.RedisURL != "" {
		counter, err = unread.NewCounter(config.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer func() { _ = counter.Close() }()
	} else {
		log.Info("REDIS_URL not set, unread counter cache disabled")
	}

	// 4. Repositories & core
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	notificationRepository := repositories.NewNotificationRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	candidateRepository := repositories.NewCandidateRepository(db)

	registry := runtime.NewRegistry()
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sanitizer := sanitize.NewSanitizer()
	notifier := notify.NewNotifier(log, notificationRepository, candidateRepository, registry, nilIfUnset(counter))
	engine := runtime.NewEngine(log, registry, messageRepository, userRepository,
		notifier, sanitizer, sup, config.BufferSize)

	directoryService := services.NewDirectoryService(userRepository, candidateRepository, sanitizer)
	notesService := services.NewNotesService(log, engine, registry,
		messageRepository, notificationRepository, unreadCache(counter))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine.Start(ctx)

	// 6. HTTP & WebSocket server
	app := fiber.New()
	app.Use(cors.New())
	httpapi.NewServer(log, directoryService, notesService).Register(app)
	wsHandler := ws.NewHandler(log, notesService, config.ConnectionBufferSize)
	app.Get("/ws", websocket.New(wsHandler.HandleConnection))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address)
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final cleanup
	_ = app.Shutdown()
	engine.Stop()
	log.Info("Program stopped cleanly")
	return nil
}

// nilIfUnset keeps a disabled counter from becoming a non-nil interface
// holding a nil pointer.
func nilIfUnset(counter *unread.Counter) notify.UnreadCounter {
	if counter == nil {
		return nil
	}
	return counter
}

func unreadCache(counter *unread.Counter) services.UnreadCache {
	if counter == nil {
		return nil
	}
	return counter
}
