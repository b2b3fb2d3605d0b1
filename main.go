package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	log "github.com/sirupsen/logrus"

	"student-scores/configstore"
	"student-scores/controllers"
	"student-scores/driver"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not read .env")
	}

	fs := flag.NewFlagSet("student-scores", flag.ExitOnError)
	var (
		addr       = fs.String("addr", ":8000", "listen address")
		dbDriver   = fs.String("db-driver", driver.MySQL, "database driver: mysql or sqlite3")
		dbDSN      = fs.String("db-dsn", "root:@tcp(127.0.0.1:3306)/scores?parseTime=true", "database DSN")
		configFile = fs.String("config-file", "thresholds.yaml", "threshold configuration file")
		secret     = fs.String("secret", os.Getenv("SECRET"), "token signing secret; empty leaves mutating routes open")
		logLevel   = fs.String("log-level", "info", "log level")
		logFormat  = fs.String("log-format", "text", "log format: text or json")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("SCORES")); err != nil {
		log.WithError(err).Fatal("invalid flags")
	}

	configureLogging(*logLevel, *logFormat)

	db, err := driver.ConnectDB(*dbDriver, *dbDSN)
	if err != nil {
		log.WithError(err).Fatal("cannot connect to database")
	}
	defer db.Close()
	if err := driver.Migrate(db, *dbDriver); err != nil {
		log.WithError(err).Fatal("cannot migrate database")
	}
	if *secret == "" {
		log.Warn("no secret configured, mutating routes are not protected")
	}

	router := controllers.NewRouter(db, configstore.NewFileStore(*configFile), *secret)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	closed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("shutdown")
		}
		close(closed)
	}()

	log.WithField("addr", *addr).Info("server started")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("server stopped")
	}
	<-closed
}

func configureLogging(level, format string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
