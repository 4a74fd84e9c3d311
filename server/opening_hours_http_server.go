package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const SHUTDOWN_TIMEOUT = 5 * time.Second

type OpeningHoursHttpServer struct {
	router    *Router
	muxRouter *mux.Router
	listen    string
	log       *zap.Logger
}

func NewOpeningHoursHttpServer(router *Router, muxRouter *mux.Router, listen string, log *zap.Logger) *OpeningHoursHttpServer {
	return &OpeningHoursHttpServer{
		router:    router,
		muxRouter: muxRouter,
		listen:    listen,
		log:       log,
	}
}

// Start serves until ctx is done or the process receives SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *OpeningHoursHttpServer) Start(ctx context.Context) error {
	s.router.RegisterRoutes()

	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.muxRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt or termination signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("[OpeningHoursHttpServer] Starting server", zap.String("listen", s.listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
		return nil
	case <-stop:
	case <-ctx.Done():
	}
	s.log.Info("[OpeningHoursHttpServer] Shutting down the server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.log.Info("[OpeningHoursHttpServer] Server exiting")
	return nil
}
