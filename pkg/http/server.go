package http

import (
	"context"

	http_router "github.com/lintang-b-s/navigatorx-dispatch/pkg/http/router"
	"github.com/lintang-b-s/navigatorx-dispatch/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/navigatorx-dispatch/pkg/http/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the API in the background. Wait returns once it stopped.
func (s *Server) Use(
	ctx context.Context,
	config http_server.Config,
	routingService controllers.RoutingService,
	dispatchService controllers.DispatchService,
	opts http_router.Options,
) (*Server, error) {
	api := http_router.NewAPI(s.Log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(gctx, config, routingService, dispatchService, opts)
	})
	s.g = g

	return s, nil
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}
