package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cinebook/booking-flow/internal/config"
	"github.com/cinebook/booking-flow/internal/database"
	"github.com/cinebook/booking-flow/internal/flow"
	"github.com/cinebook/booking-flow/internal/handler"
	"github.com/cinebook/booking-flow/internal/queue"
	"github.com/cinebook/booking-flow/internal/repository"
	"github.com/cinebook/booking-flow/internal/router"
	"github.com/cinebook/booking-flow/internal/upstream"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := config.Load()

	// The handoff journal is optional; without DB config the gateway runs
	// stateless and /v1/my-handoffs answers 503.
	var journal *repository.JournalRepo
	if cfg.JournalConfigured() {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("journal database: %v", err)
		}
		journal = repository.NewJournalRepo(db)
	} else {
		log.Println("handoff journal disabled (no DB_HOST configured)")
	}

	// Redis backs rate limiting and the showtime response cache; both
	// degrade to pass-through when the client is nil.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	// Background consumer turns checkout events into logs/booking.log lines.
	go func() {
		if err := queue.StartCheckoutConsumer(); err != nil {
			log.Printf("checkout consumer stopped: %v", err)
		}
	}()

	up := upstream.NewClient(cfg.UpstreamURL, nil)
	flows := flow.NewRegistry()

	// Sweep terminal flows so abandoned expired sessions do not pile up.
	go func() {
		interval := time.Duration(cfg.SweepIntervalSec) * time.Second
		for range time.Tick(interval) {
			if n := flows.Sweep(); n > 0 {
				log.Printf("flow sweep: closed %d terminal flow(s)", n)
			}
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterShowtime(e, handler.NewShowtimeHandler(up), config.LoadCacheConfig(), rdb)
	router.RegisterBooking(e, handler.NewBookingHandler(flows, up, journal), cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
