package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
	"github.com/SlpAus/quiz-share-backend/internal/user"
)

const idParam = "{id}"

var literalSegment = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Request is one call into the router.
type Request struct {
	Method string
	Path   string
	Body   []byte
	// Token is the caller's bearer token, already stripped of its scheme.
	Token string
}

// Response is a successful result: {"data": ...}.
type Response struct {
	Status int `json:"-"`
	Data   any `json:"data"`
}

// Call is what a route handler receives.
type Call struct {
	// ID is the value of the {id} segment. An id too large to represent is
	// reported as 0, which never names a stored record.
	ID   int
	Body []byte
	// User is the authenticated caller on Auth routes, nil otherwise.
	User *user.User
}

// HandlerFunc serves one route.
type HandlerFunc func(ctx context.Context, call *Call) (any, error)

// Route is one entry of the route table.
type Route struct {
	Method  string
	Pattern string
	// Auth routes reject callers without a valid token before the handler
	// runs.
	Auth bool
	// Created routes answer with 201 over HTTP.
	Created bool
	Handle  HandlerFunc
}

// TokenResolver maps a bearer token to its user.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*user.User, error)
}

type compiledRoute struct {
	Route
	segments []string
	capture  int
}

// Router dispatches requests over a fixed route table.
type Router struct {
	routes    []compiledRoute
	resolver  TokenResolver
	available func() bool
}

// Option configures a Router.
type Option func(*Router)

// WithAvailability makes mutating routes fail with Unavailable while fn
// reports false.
func WithAvailability(fn func() bool) Option {
	return func(r *Router) {
		r.available = fn
	}
}

// NewRouter validates routes and builds a Router. Duplicate or malformed
// patterns, unsupported methods and missing handlers are rejected.
func NewRouter(resolver TokenResolver, routes []Route, opts ...Option) (*Router, error) {
	if resolver == nil {
		return nil, errors.New("router: token resolver is required")
	}
	r := &Router{resolver: resolver}
	seen := make(map[string]struct{}, len(routes))

	for _, rt := range routes {
		if rt.Method != http.MethodGet && rt.Method != http.MethodPost {
			return nil, fmt.Errorf("router: unsupported method %q for %s", rt.Method, rt.Pattern)
		}
		if rt.Handle == nil {
			return nil, fmt.Errorf("router: %s %s has no handler", rt.Method, rt.Pattern)
		}
		segments, capture, err := parsePattern(rt.Pattern)
		if err != nil {
			return nil, fmt.Errorf("router: %s %s: %w", rt.Method, rt.Pattern, err)
		}
		sig := rt.Method + " " + rt.Pattern
		if _, dup := seen[sig]; dup {
			return nil, fmt.Errorf("router: duplicate route %s", sig)
		}
		seen[sig] = struct{}{}
		r.routes = append(r.routes, compiledRoute{Route: rt, segments: segments, capture: capture})
	}

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func parsePattern(pattern string) ([]string, int, error) {
	if !strings.HasPrefix(pattern, "/") || pattern == "/" {
		return nil, 0, errors.New("pattern must start with / and name a resource")
	}
	segments := strings.Split(pattern[1:], "/")
	capture := -1
	for i, seg := range segments {
		switch {
		case seg == idParam:
			if capture >= 0 {
				return nil, 0, errors.New("at most one {id} segment is allowed")
			}
			capture = i
		case !literalSegment.MatchString(seg):
			return nil, 0, fmt.Errorf("invalid segment %q", seg)
		}
	}
	return segments, capture, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// match reports whether path fits the route and returns the captured id.
func (cr *compiledRoute) match(path string) (int, bool) {
	if !strings.HasPrefix(path, "/") {
		return 0, false
	}
	parts := strings.Split(path[1:], "/")
	if len(parts) != len(cr.segments) {
		return 0, false
	}
	id := 0
	for i, seg := range cr.segments {
		if i == cr.capture {
			if !allDigits(parts[i]) {
				return 0, false
			}
			n, err := strconv.Atoi(parts[i])
			if err == nil {
				id = n
			}
			continue
		}
		if parts[i] != seg {
			return 0, false
		}
	}
	return id, true
}

// Dispatch runs req through the route table. Every outcome other than
// success is returned as a *Failure.
func (r *Router) Dispatch(ctx context.Context, req Request) (*Response, error) {
	for i := range r.routes {
		cr := &r.routes[i]
		if cr.Method != req.Method {
			continue
		}
		id, ok := cr.match(req.Path)
		if !ok {
			continue
		}
		return r.serve(ctx, cr, id, req)
	}
	return nil, newFailure(apperr.NotImplemented, fmt.Sprintf("%s %s not implemented", req.Method, req.Path))
}

func (r *Router) serve(ctx context.Context, cr *compiledRoute, id int, req Request) (*Response, error) {
	if cr.Method == http.MethodPost && r.available != nil && !r.available() {
		return nil, newFailure(apperr.Unavailable, "Service temporarily unavailable")
	}

	call := &Call{ID: id, Body: req.Body}
	if cr.Auth {
		u, err := r.resolver.ResolveToken(ctx, req.Token)
		if err != nil {
			return nil, toFailure(err)
		}
		if u == nil {
			return nil, newFailure(apperr.Unauthorized, "Unauthorized")
		}
		call.User = u
	}

	data, err := cr.Handle(ctx, call)
	if err != nil {
		return nil, toFailure(err)
	}
	status := http.StatusOK
	if cr.Created {
		status = http.StatusCreated
	}
	return &Response{Status: status, Data: data}, nil
}

// decodeBody decodes a JSON body into T. An empty or null body yields the
// zero value so that field validation reports what is missing.
func decodeBody[T any](body []byte) (T, error) {
	var v T
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return v, nil
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, apperr.Wrap(apperr.Validation, "Invalid fields", err)
	}
	return v, nil
}
