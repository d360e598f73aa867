package main

import (
	"io"
	"net"
	"os"

	"github.com/9seconds/geointel/geolib"
	"github.com/rs/zerolog"
)

type logger struct {
	lookupLog     zerolog.Logger
	reputationLog zerolog.Logger
	cacheLog      zerolog.Logger
	internalLog   zerolog.Logger
	serverLog     zerolog.Logger
}

func (l *logger) LookupError(ip net.IP, name string, err error) {
	l.lookupLog.Warn().Str("provider", name).Stringer("ip", ip).Err(err).Msg("")
}

func (l *logger) ReputationError(ip net.IP, zone string, err error) {
	l.reputationLog.Debug().Str("zone", zone).Stringer("ip", ip).Err(err).Msg("")
}

func (l *logger) CacheError(key string, err error) {
	l.cacheLog.Warn().Str("key", key).Err(err).Msg("")
}

func (l *logger) InternalError(msg string, err error) {
	l.internalLog.Error().Err(err).Msg(msg)
}

func (l *logger) ServerInfo(msg string) {
	l.serverLog.Info().Msg(msg)
}

func (l *logger) ServerError(msg string, err error) {
	l.serverLog.Error().Err(err).Msg(msg)
}

func newLoggerTo(writer io.Writer) *logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	makeLog := func(eventName string) zerolog.Logger {
		return zerolog.New(writer).With().Timestamp().Stack().Str("event_name", eventName).Logger()
	}

	return &logger{
		lookupLog:     makeLog("lookup"),
		reputationLog: makeLog("reputation"),
		cacheLog:      makeLog("cache"),
		internalLog:   makeLog("internal"),
		serverLog:     makeLog("server"),
	}
}

func newLogger() *logger {
	return newLoggerTo(os.Stderr)
}

var _ geolib.Logger = &logger{}
