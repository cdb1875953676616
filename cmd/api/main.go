package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"staffhub.org/internal/audit"
	"staffhub.org/internal/auth"
	"staffhub.org/internal/httpapi"
	"staffhub.org/internal/obs"
	"staffhub.org/internal/staff"
	"staffhub.org/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	var codecOpts []auth.CodecOption
	if ttl := os.Getenv("STAFFHUB_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("invalid STAFFHUB_TOKEN_TTL: %v", err)
		}
		codecOpts = append(codecOpts, auth.WithTTL(d))
	}
	codec, err := auth.NewCodec(os.Getenv("STAFFHUB_AUTH_SECRET"), codecOpts...)
	if err != nil {
		log.Fatalf("auth: %v (set STAFFHUB_AUTH_SECRET)", err)
	}

	var (
		db         *sql.DB
		users      auth.UserStore
		staffStore staff.Store
		auditStore audit.Store
	)
	if dsn := os.Getenv("STAFFHUB_PG_DSN"); dsn != "" {
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		store := pg.New(db)
		users = store.Users()
		staffStore = store.Employees()
		auditStore = store.Audit()
	} else {
		// No DSN: serve from memory. Useful for local runs and demos.
		users = auth.NewMemoryUserStore()
		staffStore = staff.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
	}

	if err := bootstrapUser(users, codec); err != nil {
		log.Fatalf("bootstrap user: %v", err)
	}

	api, err := httpapi.New(httpapi.ReadyProbe{DB: db}, version, codec, users, staffStore, auditStore)
	if err != nil {
		log.Fatalf("httpapi: %v", err)
	}

	addr := os.Getenv("STAFFHUB_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting staffhub-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}

// bootstrapUser registers the STAFFHUB_BOOTSTRAP_USER admin account when set
// and not already present, so a fresh deployment has a way to log in.
func bootstrapUser(users auth.UserStore, codec *auth.Codec) error {
	username := os.Getenv("STAFFHUB_BOOTSTRAP_USER")
	password := os.Getenv("STAFFHUB_BOOTSTRAP_PASSWORD")
	if username == "" {
		return nil
	}
	if password == "" {
		return errors.New("STAFFHUB_BOOTSTRAP_PASSWORD is required with STAFFHUB_BOOTSTRAP_USER")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := users.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, auth.ErrNotFound) {
		return err
	}

	svc, err := auth.NewService(users, codec)
	if err != nil {
		return err
	}
	_, err = svc.RegisterUser(ctx, username, password, username+"@localhost", username,
		[]auth.Role{auth.RoleAdmin})
	if errors.Is(err, auth.ErrAlreadyExists) {
		return nil
	}
	return err
}
