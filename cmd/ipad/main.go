package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	api "github.com/mind-engage/ipa-grading/internal/api/http"
	auth "github.com/mind-engage/ipa-grading/internal/auth/middleware"
	"github.com/mind-engage/ipa-grading/internal/config"
	"github.com/mind-engage/ipa-grading/internal/db"
	"github.com/mind-engage/ipa-grading/internal/evaluation"
	"github.com/mind-engage/ipa-grading/internal/metrics"
	"github.com/mind-engage/ipa-grading/internal/rbac"
	"github.com/mind-engage/ipa-grading/internal/rubric"
	"github.com/mind-engage/ipa-grading/internal/storage"
	syncx "github.com/mind-engage/ipa-grading/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	driver := db.Driver(cfg.DBDriver)
	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()
	store, events := newStore(dbh, driver, cfg.Mode)
	if err := ensureAdmin(ctx, store, cfg); err != nil {
		log.Fatalf("admin bootstrap: %v", err)
	}

	// --- Rubric (loaded once, shared read-only) ---
	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	rb, rep, err := rubric.Open(bs, cfg.RubricPath)
	if err != nil {
		log.Fatalf("rubric %s: %v", cfg.RubricPath, err)
	}
	for _, w := range rep.Warnings {
		log.Printf("rubric warning: %s", w)
	}
	log.Printf("rubric loaded: %d categories, %d criteria", len(rb.Categories), len(rb.Criteria))

	rubricPrefix := "rubrics/"
	if strings.HasSuffix(cfg.RubricPath, "/") {
		rubricPrefix = cfg.RubricPath
	}

	h := api.NewRouter(api.Deps{
		Rubric:             rb,
		Store:              store,
		Events:             events,
		Auth:               auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL),
		Metrics:            metrics.New(),
		Blobs:              bs,
		RubricPrefix:       rubricPrefix,
		EnableRegistration: cfg.EnableRegistration,
		CORSOrigins:        cfg.CORSOrigins(),
		Ready:              dbh.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s (mode=%s, db=%s, registration=%t)",
		cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.EnableRegistration)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// newStore shares one event log between the store's writes and /events so
// events carry the configured mode as site id.
func newStore(dbh *sql.DB, driver db.Driver, mode config.Mode) (*evaluation.SQLStore, *syncx.EventRepo) {
	events := syncx.NewEventRepo(sqlx.NewDb(dbh, driver.DriverName()), string(mode))
	return evaluation.NewSQLStore(dbh, driver.DriverName(), events), events
}

// ensureAdmin creates the configured admin account on first start.
func ensureAdmin(ctx context.Context, store evaluation.Store, cfg config.Config) error {
	if cfg.AdminUser == "" || cfg.AdminPassHash == "" {
		return nil
	}
	_, err := store.GetUserByUsername(ctx, cfg.AdminUser)
	if err == nil {
		return nil
	}
	if !errors.Is(err, evaluation.ErrNotFound) {
		return err
	}
	if _, err := store.CreateUser(ctx, cfg.AdminUser, cfg.AdminPassHash, rbac.RoleAdmin); err != nil {
		return err
	}
	log.Printf("created admin user %q", cfg.AdminUser)
	return nil
}
