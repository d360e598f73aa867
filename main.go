package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/9seconds/geointel/geolib"
	"github.com/9seconds/geointel/webrtcprobe"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	_ "time/tzdata"
)

const (
	version = "1.0.0"

	serverShutdownTimeout = 10 * time.Second
)

var (
	app = kingpin.New(
		"geointel",
		"IP geolocation, reputation and WebRTC leak verification service")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOINTEL_DEBUG").
		Bool()

	serveCommand = app.Command("serve", "Run HTTP service.")
	configPath   = serveCommand.Arg("config-path", "Path to the config.").
			Required().
			ExistingFile()
	ipregistryKey = serveCommand.Flag("ipregistry-key", "API key for ipregistry.co.").
			Envar("GEOINTEL_IPREGISTRY_KEY").
			String()
	ipinfoToken = serveCommand.Flag("ipinfo-token", "Auth token for ipinfo.io.").
			Envar("GEOINTEL_IPINFO_TOKEN").
			String()

	probeCommand = app.Command("probe", "Gather WebRTC candidates and verify them for a leak.")
	probeURL     = probeCommand.Flag("url", "Base URL of geointel service.").
			Default("http://127.0.0.1:8080").
			Envar("GEOINTEL_URL").
			URL()
	probeSTUN = probeCommand.Flag("stun", "STUN server. Can be repeated.").
			Default(webrtcprobe.DefaultSTUNServer).
			Strings()
	probeTimeout = probeCommand.Flag("timeout", "Time to wait for ICE gathering.").
			Default(webrtcprobe.DefaultTimeout.String()).
			Duration()
)

func main() {
	app.Version(version)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var err error

	switch command {
	case serveCommand.FullCommand():
		err = mainServe()
	case probeCommand.FullCommand():
		err = mainProbe()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func mainServe() error {
	conf, err := parseConfig(*configPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	log := newLogger()
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := geolib.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("cannot register metrics: %w", err)
	}

	cache, closeCache, err := makeCache(conf.Cache, log, metrics)
	if err != nil {
		return fmt.Errorf("cannot create cache: %w", err)
	}

	defer closeCache()

	srv, err := makeService(conf, secrets{
		ipregistryKey: *ipregistryKey,
		ipinfoToken:   *ipinfoToken,
	}, log, cache, metrics)
	if err != nil {
		return err
	}

	defer srv.Shutdown()

	router := geolib.NewHTTPHandler(srv.handler(conf, log))
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	ctx, cancel := makeRootContext()
	defer cancel()

	listener, err := net.Listen("tcp", conf.GetListen())
	if err != nil {
		return fmt.Errorf("cannot start listening: %w", err)
	}

	server := &http.Server{
		Handler:           newBasicAuthMiddleware(router, conf.Admin, "/stats", "/metrics"),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer shutdownCancel()

		server.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	log.ServerInfo("listening on " + listener.Addr().String())

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ServerError("server has failed", err)

		return fmt.Errorf("server has failed: %w", err)
	}

	return nil
}

func mainProbe() error {
	ctx, cancel := makeRootContext()
	defer cancel()

	candidates, err := webrtcprobe.Gather(ctx, webrtcprobe.GatherOpts{
		STUNServers: *probeSTUN,
		Timeout:     *probeTimeout,
	})
	if err != nil {
		return fmt.Errorf("cannot gather candidates: %w", err)
	}

	client := makeHTTPClient(DefaultUserAgent,
		geolib.DefaultRequestTimeout,
		geolib.DefaultRateLimitInterval,
		geolib.DefaultRateLimitBurst)

	verdict, err := webrtcprobe.Report(ctx, client, (*probeURL).String(), candidates)
	if err != nil {
		return fmt.Errorf("cannot verify candidates: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(struct {
		Candidates []string                 `json:"candidates"`
		Verdict    *geolib.LeakVerification `json:"verdict"`
	}{
		Candidates: candidates,
		Verdict:    verdict,
	})
}
