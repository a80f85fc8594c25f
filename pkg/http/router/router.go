package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/navigatorx-dispatch/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/navigatorx-dispatch/pkg/http/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

// Options. RateLimitRPS <= 0 disables rate limiting. Ready backs /readyz.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Ready          func() bool
}

// Handler wires every route and the middleware chain.
func (api *API) Handler(routingService controllers.RoutingService, dispatchService controllers.DispatchService,
	opts Options) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	router.GET("/readyz", readyHandler(opts.Ready))

	group := router_helper.NewRouteGroup(router, "/api")
	controllers.New(routingService, api.log).Routes(group)
	controllers.NewDispatchAPI(dispatchService, api.log).Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log)}
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		mwChain = append(mwChain, Limit(opts.RateLimitRPS, burst))
	}
	return alice.New(mwChain...).Then(router)
}

// Run serves the API until ctx is cancelled or the listener fails.
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	routingService controllers.RoutingService,
	dispatchService controllers.DispatchService,
	opts Options,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(routingService, dispatchService, opts), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		api.log.Error("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func readyHandler(ready func() bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if ready != nil && !ready() {
			http.Error(w, "road network not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
