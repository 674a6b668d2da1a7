package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/moorlog/moor/internal/runtime"
	"github.com/moorlog/moor/internal/server/http/controllers"
	anchorsvc "github.com/moorlog/moor/internal/services/anchors"
)

type Server struct {
	rt  *runtime.Runtime
	srv *http.Server
	lis net.Listener
	svc *anchorsvc.Service
}

func New(rt *runtime.Runtime) (*Server, error) {
	svc, err := anchorsvc.New(rt)
	if err != nil {
		return nil, err
	}
	return NewWithService(rt, svc), nil
}

// NewWithService builds a server around an existing anchors service, so the
// server and a relay can share one service instance.
func NewWithService(rt *runtime.Runtime, svc *anchorsvc.Service) *Server {
	mux := http.NewServeMux()
	s := &Server{rt: rt, svc: svc, srv: &http.Server{Handler: cors(mux)}}
	controllers.NewControllerRegistry(rt, svc).RegisterAllRoutes(mux)
	return s
}

// Handler exposes the full route stack for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Moor-Key")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
