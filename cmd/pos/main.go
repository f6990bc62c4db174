package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	_ "github.com/go-sql-driver/mysql"

	cartservice "pos/pkg/cart/domain/service"
	"pos/pkg/cart/infrastructure/memory"
	catalogservice "pos/pkg/catalog/domain/service"
	catalogmysql "pos/pkg/catalog/infrastructure/mysql"
	checkoutservice "pos/pkg/checkout/domain/service"
	"pos/pkg/checkout/infrastructure/console"
	"pos/pkg/common/domain"
	notifymodel "pos/pkg/notification/domain/model"
	notifyservice "pos/pkg/notification/domain/service"
	"pos/transport"
)

type config struct {
	HTTPAddr        string        `envconfig:"http_addr" default:":8082"`
	DatabaseDSN     string        `envconfig:"database_dsn" default:"pos:pos@tcp(localhost:3306)/pos?parseTime=true"`
	MigrationsURL   string        `envconfig:"migrations_url" default:"file://migrations"`
	CheckoutDelay   time.Duration `envconfig:"checkout_delay" default:"500ms"`
	NotificationTTL time.Duration `envconfig:"notification_ttl" default:"3s"`
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:   "pos",
		Usage:  "restaurant point-of-sale order composition service",
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("Service stopped")
	}
}

func runServer(_ *cli.Context) error {
	var cfg config
	if err := envconfig.Process("pos", &cfg); err != nil {
		return errors.Wrap(err, "parse config")
	}

	if err := applyMigrations(cfg); err != nil {
		return err
	}

	db, err := sqlx.Connect("mysql", cfg.DatabaseDSN)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer db.Close()

	dispatcher := &logDispatcher{}

	presenter := notifyservice.NewPresenter(func(n *notifymodel.Notification) {
		if n == nil {
			return
		}
		log.WithFields(log.Fields{"message": n.Message, "items": n.ItemCount}).Info("Notification")
	})
	defer presenter.Close()

	notifier := &presenterNotifier{presenter: presenter, ttl: cfg.NotificationTTL}

	catalog := catalogservice.NewCatalogService(
		catalogmysql.NewProductRepository(db),
		catalogmysql.NewCounterRepository(db),
		dispatcher,
	)
	carts := cartservice.NewCartService(memory.NewCartRepository(), notifier, dispatcher)
	checkout := checkoutservice.NewCheckoutService(
		carts,
		&console.Cue{Out: os.Stdout},
		&console.Printer{Out: os.Stdout},
		notifier,
		dispatcher,
		cfg.CheckoutDelay,
	)
	defer checkout.Close()

	router := transport.Router(catalog, carts, checkout, presenter)

	log.WithField("addr", cfg.HTTPAddr).Info("Starting server")

	killSignalChan := getKillSignalChan()
	srv := startServer(cfg.HTTPAddr, router)

	waitForKillSignal(killSignalChan)
	return srv.Shutdown(context.Background())
}

func applyMigrations(cfg config) error {
	m, err := migrate.New(cfg.MigrationsURL, "mysql://"+cfg.DatabaseDSN)
	if err != nil {
		return errors.Wrap(err, "open migrations")
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func startServer(addr string, handler http.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()
	return srv
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignal(killSignalChan <-chan os.Signal) {
	killSignal := <-killSignalChan
	switch killSignal {
	case os.Interrupt:
		log.Info("Got SIGINT...")
	case syscall.SIGTERM:
		log.Info("Got SIGTERM...")
	}
}

// logDispatcher is the default event subscriber: events land in the
// structured log.
type logDispatcher struct{}

func (d *logDispatcher) Dispatch(event domain.Event) error {
	log.WithField("event", event.Type()).Debug("Domain event")
	return nil
}

// presenterNotifier adapts the presenter to the ledger's Notifier
// port, stamping the configured display duration.
type presenterNotifier struct {
	presenter notifyservice.Presenter
	ttl       time.Duration
}

func (n *presenterNotifier) Show(message string, itemCount int) {
	n.presenter.Show(message, itemCount, n.ttl)
}
