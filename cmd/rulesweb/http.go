// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/diffeo/go-rulesweb/restserver"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// shutdownTimeout bounds how long in-flight requests may take once
// the server is asked to stop.
const shutdownTimeout = 10 * time.Second

// newHandler builds the complete HTTP handler: the rulesweb routes,
// Prometheus metrics, and middleware.  If reqLogger is non-nil every
// request is logged to it.
func newHandler(config restserver.Config, reqLogger *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	restserver.PopulateRouter(r, config)
	r.Handle("/metrics", promhttp.Handler())

	recovery := negroni.NewRecovery()
	recovery.Logger = logrus.StandardLogger()
	recovery.PrintStack = false
	n := negroni.New(recovery)
	if reqLogger != nil {
		n.Use(logRequests(reqLogger))
	}
	n.UseHandler(r)
	return n
}

// logRequests is negroni middleware that logs each request once it
// completes.
func logRequests(logger *logrus.Logger) negroni.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		start := time.Now()
		next(rw, req)
		entry := logger.WithFields(logrus.Fields{
			"remote":   req.RemoteAddr,
			"method":   req.Method,
			"path":     req.URL.Path,
			"duration": time.Since(start),
		})
		if nrw, ok := rw.(negroni.ResponseWriter); ok {
			entry = entry.WithFields(logrus.Fields{
				"status": nrw.Status(),
				"size":   nrw.Size(),
			})
		}
		entry.Debug("Request")
	}
}

// serveHTTP runs an HTTP server on laddr until ctx is cancelled, then
// shuts it down gracefully.
func serveHTTP(ctx context.Context, laddr string, handler http.Handler) error {
	server := &http.Server{Addr: laddr, Handler: handler}
	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()
	logrus.WithField("addr", laddr).Info("Serving HTTP")

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
