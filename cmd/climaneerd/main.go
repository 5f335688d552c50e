package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/climaneer/climaneer/internal/model"
	"github.com/climaneer/climaneer/internal/services/alerts"
	"github.com/climaneer/climaneer/internal/services/api"
	"github.com/climaneer/climaneer/internal/services/control"
	"github.com/climaneer/climaneer/internal/services/gateway"
	"github.com/climaneer/climaneer/internal/services/history"
	"github.com/climaneer/climaneer/internal/services/poller"
	"github.com/climaneer/climaneer/internal/services/scheduler"
	"github.com/climaneer/climaneer/internal/services/simulator"
	"github.com/climaneer/climaneer/internal/services/trends"
	"github.com/climaneer/climaneer/internal/services/voice"
	"github.com/climaneer/climaneer/pkg/mqttbus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("main: no .env file loaded: %v", err)
	}
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := gateway.NewClient(gateway.Config{
		BaseURL:         cfg.FirebaseURL,
		Timeout:         time.Duration(cfg.TimeoutMs) * time.Millisecond,
		BreakerFailures: cfg.BreakerFailures,
		BreakerOpenFor:  time.Duration(cfg.BreakerOpenSec) * time.Second,
	})
	if err := gw.Probe(ctx); err != nil {
		// Starting offline is fine; the poller keeps retrying.
		log.Printf("main: remote store not reachable at startup: %v", err)
	}

	store := trends.NewStore(cfg.TrendsFile, 24*time.Hour)
	store.Load()
	var sink *trends.InfluxSink
	if cfg.InfluxURL != "" {
		var err error
		sink, err = trends.NewInfluxSink(trends.InfluxConfig{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
		})
		if err != nil {
			log.Fatalf("main: influx sink init: %v", err)
		}
		store.SetSink(sink)
		defer sink.Close()
	}

	engine := alerts.NewEngine(time.Duration(cfg.AlertCooldownMin) * time.Minute)
	hist := history.NewLog()
	coord := control.NewCoordinator(gw, model.DefaultSettings())

	sched := scheduler.New(coord, func(title, message string) {
		engine.Push(model.AlertInfo, title, message, time.Now())
	})
	coord.OnChange(sched.Reconfigure)
	sched.Start(ctx)
	defer sched.Stop()

	p := poller.New(gw, store, hist, engine, coord)
	go p.Run(ctx)

	if cfg.MQTTHost != "" {
		client, err := mqttbus.NewConn(&mqttbus.Config{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			User:     cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: fmt.Sprintf("climaneer-%s", getenv("HOSTNAME", "local")),
		}, ctx)
		if err != nil {
			log.Fatalf("main: MQTT connect failed: %v", err)
		}
		transport := voice.NewTransport(client)
		interp := voice.NewInterpreter(voice.Actions{
			Announce:    transport.Announce,
			SensorValue: p.SensorValue,
			PumpToggle:  coord.TogglePump,
			AutoMode:    coord.SwitchToAutoMode,
		})
		go transport.Run(ctx, interp)
		log.Printf("main: voice transport listening on %s", voice.TranscriptTopic)
	}

	deps := api.Deps{
		Poller:  p,
		Alerts:  engine,
		History: hist,
		Trends:  store,
		Coord:   coord,
		Breaker: gw,
	}
	if cfg.Simulate {
		deps.Generator = simulator.NewGenerator(0)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewHTTPMux(deps),
	}
	go func() {
		log.Printf("main: dashboard API listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("main: http server: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	log.Print("main: shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("main: http shutdown: %v", err)
	}
}
