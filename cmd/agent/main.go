package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/httpapi"
	memdedupe "github.com/Lamplight-Studio/idea-print-agent/internal/adapters/memory/dedupe"
	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/postgres"
	pgdedupe "github.com/Lamplight-Studio/idea-print-agent/internal/adapters/postgres/dedupe"
	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/printer/fileout"
	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/printer/serialport"
	"github.com/Lamplight-Studio/idea-print-agent/internal/adapters/printer/usbraw"
	sqlitededupe "github.com/Lamplight-Studio/idea-print-agent/internal/adapters/sqlite/dedupe"
	"github.com/Lamplight-Studio/idea-print-agent/internal/app/printjob"
	"github.com/Lamplight-Studio/idea-print-agent/internal/escpos"
	"github.com/Lamplight-Studio/idea-print-agent/internal/platform/auth/hmacverifier"
	platformclock "github.com/Lamplight-Studio/idea-print-agent/internal/platform/clock"
	"github.com/Lamplight-Studio/idea-print-agent/internal/platform/config"
	dedupeport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/dedupe"
	printerport "github.com/Lamplight-Studio/idea-print-agent/internal/ports/out/printer"
)

func main() {
	selftest := flag.Bool("selftest", false, "print a test receipt to the configured transport and exit")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	transport := newTransport(cfg)
	ctx := context.Background()
	if err := transport.Open(ctx); err != nil {
		log.Fatal().Err(err).Str("transport", string(transport.Kind())).Msg("open printer transport")
	}
	defer func() { _ = transport.Close() }()
	log.Info().Str("transport", string(transport.Kind())).Msg("printer transport ready")

	if *selftest {
		if _, err := transport.Write(ctx, escpos.BuildTestReceipt(escpos.DefaultProfile())); err != nil {
			log.Fatal().Err(err).Msg("self-test print failed")
		}
		log.Info().Msg("self-test receipt sent")
		return
	}

	store, cleanup, err := newDedupeStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("dedupe store setup failed")
	}
	if cleanup != nil {
		defer cleanup()
	}

	if store != nil && cfg.DedupePruneTTL > 0 {
		cutoff := time.Now().Add(-cfg.DedupePruneTTL)
		n, err := store.PruneBefore(ctx, cutoff)
		if err != nil {
			log.Warn().Err(err).Msg("startup prune failed")
		} else if n > 0 {
			log.Info().Int64("removed", n).Time("cutoff", cutoff).Msg("pruned old dedupe records")
		}
	}

	svc := printjob.NewService(transport, store, escpos.DefaultProfile(), cfg.WriteTimeout, log)

	verifier := hmacverifier.New(cfg.HMACSecret, cfg.TimestampWindow)
	if !verifier.Enabled() {
		log.Warn().Msg("HMAC_SECRET not set; /print will accept unauthenticated requests")
	}

	handler := httpapi.NewRouter(httpapi.NewServer(svc), httpapi.RouterOptions{
		AuthMiddleware: httpapi.NewAuthMiddleware(verifier, platformclock.NewSystemClock(), log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("print agent listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-runCtx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newTransport(cfg config.Config) printerport.Transport {
	switch cfg.Transport {
	case config.TransportUSB:
		return usbraw.New(cfg.USBVendorID, cfg.USBProductID)
	case config.TransportFile:
		return fileout.New(cfg.FileOutputPath)
	default:
		return serialport.New(cfg.SerialPort, cfg.SerialBaud)
	}
}

// newDedupeStore returns a nil Store when deduplication is disabled; the
// service treats nil as "every request is fresh".
func newDedupeStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (dedupeport.Store, func(), error) {
	if !cfg.DedupeEnabled {
		log.Warn().Msg("deduplication disabled; retried requests will print twice")
		return nil, nil, nil
	}

	switch cfg.DedupeBackend {
	case config.DedupeMemory:
		return memdedupe.NewStore(), nil, nil
	case config.DedupePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pgdedupe.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pgdedupe.NewStore(pool), pool.Close, nil
	default:
		store, err := sqlitededupe.Open(cfg.DedupeDBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}
