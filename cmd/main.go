package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plc_alarm_monitor/internal/alarmdef"
	"plc_alarm_monitor/internal/handlers"
	"plc_alarm_monitor/internal/logger"
	"plc_alarm_monitor/internal/models"
	"plc_alarm_monitor/internal/plc"
	"plc_alarm_monitor/internal/repository"
	"plc_alarm_monitor/internal/server"
	"plc_alarm_monitor/internal/service"

	"github.com/spf13/viper"
)

func main() {
	// load config.yml; defaults keep the service runnable without one
	configErr := loadConfig()

	log := logger.Get(viper.GetString("log.level"), viper.GetString("log.file"))
	if configErr != nil {
		log.Infow("config file not loaded; using defaults", "err", configErr)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// alarm code table; a missing file falls back to the generated defaults
	codes, err := alarmdef.Load(viper.GetString("alarms.definitions"))
	if err != nil {
		log.Infow("using built-in alarm definitions", "err", err)
	}

	controllers := loadControllers(log)

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(service.Deps{
		Repos:        repos,
		Codes:        codes,
		Controllers:  controllers,
		Source:       buildSource(codes, log),
		BoundaryHour: viper.GetInt("alarms.boundary_hour"),
		CountMode:    service.CountMode(viper.GetString("alarms.count_mode")),
		ReadTimeout:  viper.GetDuration("plc.read_timeout"),
		SigningKey:   viper.GetString("auth.signing_key"),
		Log:          log,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start register polling (via composed service)
	go services.Polling.Run(ctx, viper.GetDuration("plc.poll_interval"))

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", "alarms.db")
	viper.SetDefault("alarms.definitions", "configs/alarm_codes.csv")
	viper.SetDefault("alarms.boundary_hour", service.DefaultBoundaryHour)
	viper.SetDefault("alarms.count_mode", string(service.CountModeLatest))
	viper.SetDefault("plc.poll_interval", 10*time.Second)
	viper.SetDefault("plc.read_timeout", plc.DefaultTimeout)
	viper.SetDefault("plc.source", "master")

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening event store", "path", dbPath)
	return repository.InitDB(dbPath)
}

// loadControllers reads the monitored PLC table from config, falling back to
// the two casting-line controllers.
func loadControllers(log *logger.Logger) map[string]models.Controller {
	controllers := map[string]models.Controller{}
	if err := viper.UnmarshalKey("plcs", &controllers); err != nil {
		log.Errorw("invalid plcs config", "err", err)
	}
	if len(controllers) == 0 {
		controllers = map[string]models.Controller{
			"1A": {Name: "Casting_1A", Address: "192.168.150.22"},
			"1B": {Name: "Casting_1B", Address: "192.168.150.24"},
		}
	}
	return controllers
}

// buildSource selects where register readings come from: the PLC master
// gateway, or a local simulator for bench runs.
func buildSource(codes *alarmdef.CodeMap, log *logger.Logger) plc.RegisterSource {
	registers := codes.CurrentRegisters()
	switch mode := viper.GetString("plc.source"); mode {
	case "simulator":
		log.Infow("using simulated register source")
		return plc.NewSimulator(registers, time.Now().UnixNano())
	default:
		base := viper.GetString("plc.master_url")
		log.Infow("using PLC master gateway", "url", base)
		return plc.NewMasterClient(base, registers, viper.GetDuration("plc.read_timeout"))
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
