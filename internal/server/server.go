package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/drakos74/geotextile/internal/api"
	"github.com/drakos74/geotextile/internal/metrics"
	"github.com/rs/zerolog/log"
)

type Method string

const (
	GET     Method = "GET"
	POST    Method = "POST"
	OPTIONS Method = "OPTIONS"
)

// RequestIDHeader carries the id of a request, generated when the client does not send one.
const RequestIDHeader = "X-Request-ID"

// Handler executes a request and returns the response body and status code.
type Handler func(r *http.Request) ([]byte, int, error)

type Route struct {
	Path   string
	Method Method
	Exec   Handler
}

// Detail is the body of an error response.
type Detail struct {
	Detail string `json:"detail"`
}

type Server struct {
	name    string
	port    int
	debug   bool
	block   api.Block
	routes  []Route
	origins map[string]bool
	mounts  map[string]http.Handler
	once    sync.Once
}

func NewServer(name string, port int) *Server {
	return &Server{
		name:    name,
		port:    port,
		block:   api.NewBlock(),
		routes:  make([]Route, 0),
		origins: make(map[string]bool),
		mounts:  make(map[string]http.Handler),
	}
}

// Debug sets the server to debug mode
func (s *Server) Debug() *Server {
	s.debug = true
	return s
}

// WithOrigins allows cross-origin requests from the given origins.
func (s *Server) WithOrigins(origins ...string) *Server {
	for _, o := range origins {
		s.origins[strings.TrimSuffix(o, "/")] = true
	}
	return s
}

// Add adds the given routes to the server
func (s *Server) Add(route ...Route) *Server {
	s.routes = append(s.routes, route...)
	return s
}

// Mount serves the given handler on the path, outside of the request serialisation.
func (s *Server) Mount(path string, h http.Handler) *Server {
	s.mounts["/"+strings.TrimPrefix(path, "/")] = h
	return s
}

// cors sets the cross-origin headers and reports whether the origin is allowed.
func (s *Server) cors(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if !s.origins[origin] {
		return false
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Add("Vary", "Origin")
	return true
}

func (s *Server) preflight(w http.ResponseWriter, r *http.Request) {
	if !s.cors(w, r) {
		s.error(w, http.StatusBadRequest, fmt.Errorf("disallowed cors origin"))
		return
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", "DELETE, GET, HEAD, OPTIONS, PATCH, POST, PUT")
	if headers := r.Header.Get("Access-Control-Request-Headers"); headers != "" {
		h.Set("Access-Control-Allow-Headers", headers)
	}
	h.Set("Access-Control-Max-Age", "600")
	s.respond(w, http.StatusOK, []byte("OK"))
}

func (s *Server) handle(path string, routes map[Method]Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &recorder{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			metrics.Observer.Request(path, rec.code, time.Since(start).Seconds())
		}()

		if Method(r.Method) == OPTIONS && r.Header.Get("Access-Control-Request-Method") != "" {
			s.preflight(rec, r)
			return
		}
		s.cors(rec, r)

		handler, ok := routes[Method(r.Method)]
		if !ok {
			s.error(rec, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}

		// we should only handle one request per time.
		request := fmt.Sprintf("%s %s", r.Method, path)
		signal := api.NewSignal(request)
		if id := r.Header.Get(RequestIDHeader); id != "" {
			signal.WithID(id)
		}
		rec.Header().Set(RequestIDHeader, signal.ID)
		s.block.Action <- signal.Create()
		defer func() {
			s.block.ReAction <- signal.WithContent(rec.code).Create()
		}()

		b, code, err := handler(r)
		if err != nil {
			if code < http.StatusBadRequest {
				code = http.StatusInternalServerError
			}
			s.error(rec, code, err)
			return
		}
		s.respond(rec, code, b)
	}
}

// Handler returns the http handler serving all routes.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		go s.block.Run(func(action, _ api.Signal) {
			if s.debug {
				log.Debug().
					Time("time", action.Time).
					Str("action", action.Name).
					Str("id", action.ID).
					Msg("started execution")
			}
		}, func(action, reaction api.Signal) {
			if s.debug {
				log.Debug().
					Float64("duration", time.Since(action.Time).Seconds()).
					Str("reaction", reaction.Name).
					Str("id", reaction.ID).
					Interface("code", reaction.Content).
					Msg("completed execution")
			}
		})
	})

	paths := make(map[string]map[Method]Handler)
	order := make([]string, 0)
	for _, route := range s.routes {
		p := "/" + strings.TrimPrefix(route.Path, "/")
		if _, ok := paths[p]; !ok {
			paths[p] = make(map[Method]Handler)
			order = append(order, p)
		}
		paths[p][route.Method] = route.Exec
	}

	mux := http.NewServeMux()
	for _, p := range order {
		mux.HandleFunc(p, s.handle(p, paths[p]))
	}
	for p, h := range s.mounts {
		mux.Handle(p, h)
	}
	if _, ok := paths["/"]; !ok && s.mounts["/"] == nil {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			s.cors(w, r)
			s.error(w, http.StatusNotFound, fmt.Errorf("not found"))
		})
	}
	return mux
}

// Run starts the server
func (s *Server) Run() error {
	log.Info().Str("server", s.name).Int("port", s.port).Msg("starting server")
	if err := http.ListenAndServe(fmt.Sprintf(":%d", s.port), s.Handler()); err != nil {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) respond(w http.ResponseWriter, code int, b []byte) {
	if len(b) > 0 && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(code)
	if _, err := w.Write(b); err != nil {
		log.Error().Err(err).Msg("could not write response")
	}
}

func (s *Server) error(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Int("code", code).Msg("error for http request")
	} else {
		log.Warn().Err(err).Int("code", code).Msg("rejected http request")
	}
	b, _ := json.Marshal(Detail{Detail: err.Error()})
	s.respond(w, code, b)
}

// recorder keeps the status code of the response.
type recorder struct {
	http.ResponseWriter
	code int
}

func (r *recorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func Live() Route {
	return Route{
		Path:   "live",
		Method: GET,
		Exec: func(r *http.Request) (payload []byte, code int, err error) {
			return []byte{}, http.StatusOK, nil
		},
	}
}

// JsonRead decodes the request body into v.
func JsonRead(r *http.Request, debug bool, v interface{}) error {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if debug {
		log.Debug().
			Str("url", fmt.Sprintf("%+v", r.URL)).
			Str("remote-address", r.RemoteAddr).
			Str("method", r.Method).
			Str("body", string(body)).
			Msg("received payload")
	}
	if len(body) == 0 {
		return fmt.Errorf("empty body")
	}
	return json.Unmarshal(body, v)
}
