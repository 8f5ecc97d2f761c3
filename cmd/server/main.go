package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go-swmon/internal/cache"
	"go-swmon/internal/db"
	"go-swmon/internal/poller"
	"go-swmon/internal/rules"
	"go-swmon/internal/telemetry"
	"go-swmon/internal/transport"
	"go-swmon/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

// getEnv fetches environment variable or returns fallback
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvSeconds reads a duration given in whole seconds.
func getEnvSeconds(key string, fallback int) time.Duration {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil || n < 0 {
		log.Printf("invalid %s, using %ds", key, fallback)
		n = fallback
	}
	return time.Duration(n) * time.Second
}

func main() {
	// Load .env if exists
	_ = godotenv.Load()

	// Configurable values from env
	host := getEnv("WEB_HOST", "0.0.0.0")
	port := getEnv("WEB_PORT", "8080")
	dbPath := getEnv("DB_PATH", "/tmp/swmon.db")
	pollInterval := getEnvSeconds("POLL_INTERVAL", 0)
	cacheTTL := getEnvSeconds("CACHE_TTL", 60)
	templatesDir := getEnv("TEMPLATES_DIR", "./internal/web/templates")

	sshPort, err := strconv.Atoi(getEnv("SWITCH_PORT", "22"))
	if err != nil {
		log.Fatalf("invalid SWITCH_PORT: %v", err)
	}
	sshCfg := transport.Config{
		User:     getEnv("SWITCH_USER", "readonly"),
		Password: os.Getenv("SWITCH_PASS"),
		Port:     sshPort,
		Timeout:  getEnvSeconds("SWITCH_TIMEOUT", 15),
	}

	speeds, err := rules.Load(os.Getenv("SPEED_RULES"))
	if err != nil {
		log.Fatalf("speed rules: %v", err)
	}

	// Initialize database
	inv, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("inventory: %v", err)
	}
	defer inv.Close()

	svc := poller.New(
		transport.NewSSH(sshCfg),
		cache.New(cacheTTL),
		inv,
		telemetry.New(speeds),
		poller.WithSystemProber(poller.SNMP{Timeout: sshCfg.Timeout}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional background warmer
	if pollInterval > 0 {
		log.Printf("background polling every %s", pollInterval)
		go svc.StartBackgroundPolling(ctx, pollInterval)
	}

	app := fiber.New(fiber.Config{
		Views: web.NewEngine(templatesDir),
	})
	app.Use(recover.New())
	app.Use(logger.New())

	web.SetupRoutes(app, svc, inv)

	go func() {
		log.Printf("Server running at http://%s:%s\n", host, port)
		if err := app.Listen(host + ":" + port); err != nil {
			log.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
