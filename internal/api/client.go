package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
	"github.com/SlpAus/quiz-share-backend/internal/session"
	"github.com/SlpAus/quiz-share-backend/internal/user"
)

// ErrSessionNotSaved is returned with a non-nil AuthResult when the server
// accepted register or login but the session could not be persisted. The
// account and token exist; retry Session().Login with the result.
var ErrSessionNotSaved = errors.New("session not saved")

// Client issues requests on behalf of one session, the way a browser tab
// would: the caller's token comes from the session's default
// Authorization header, or failing that from the persisted token.
type Client struct {
	router  *Router
	session *session.Session
}

// NewClient binds router to sess.
func NewClient(router *Router, sess *session.Session) *Client {
	return &Client{router: router, session: sess}
}

// Session returns the bound session.
func (c *Client) Session() *session.Session {
	return c.session
}

// Get sends a GET request for path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post sends body as JSON to path. A nil body sends no payload.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, path, raw)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	return c.router.Dispatch(ctx, Request{
		Method: method,
		Path:   path,
		Body:   body,
		Token:  c.token(ctx),
	})
}

func (c *Client) token(ctx context.Context) string {
	if tok := user.ParseBearer(c.session.Header(session.AuthorizationHeader)); tok != "" {
		return tok
	}
	return user.ParseBearer(c.session.PersistedToken(ctx))
}

// Register creates an account and signs the session in with it. See
// ErrSessionNotSaved for the one error returned alongside a result.
func (c *Client) Register(ctx context.Context, req user.RegisterRequest) (*user.AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

// Login signs the session in.
func (c *Client) Login(ctx context.Context, req user.LoginRequest) (*user.AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", req)
}

// Logout signs the session out. Issued tokens stay valid server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*user.AuthResult, error) {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	res, ok := resp.Data.(*user.AuthResult)
	if !ok {
		return nil, newFailure(apperr.Internal, "Server error")
	}
	if err := c.session.Login(ctx, res.User, res.Token); err != nil {
		return res, fmt.Errorf("%w: %w", ErrSessionNotSaved, err)
	}
	return res, nil
}
