// Package server exposes the gateway pipeline over HTTP.
package server

import (
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/crimson-sun/vitigate/internal/auth"
	"github.com/crimson-sun/vitigate/internal/model"
	"github.com/crimson-sun/vitigate/internal/pipeline"
)

const maxBodyBytes = 1 << 20

// Greeting is the body served at the root path.
const Greeting = "vitigate: Embrapa viticulture data gateway"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Accounts issues and checks access tokens.
type Accounts interface {
	auth.Authenticator
	Login(username, password string) (string, error)
}

// Handler provides the gateway's HTTP endpoints.
type Handler struct {
	pipeline *pipeline.Pipeline
	accounts Accounts
	logger   *zap.Logger
}

// NewHandler creates a handler. accounts may be nil, in which case the login
// and protected routes are not registered.
func NewHandler(p *pipeline.Pipeline, accounts Accounts, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pipeline: p, accounts: accounts, logger: logger}
}

// Routes returns an http.Handler with all routes registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /taxonomy", h.Taxonomy)

	if h.accounts != nil {
		mux.HandleFunc("POST /login", h.Login)
		mux.HandleFunc("POST /auth", h.Login)
		mux.HandleFunc("GET /protected", h.Protected)
		mux.HandleFunc("GET /protegido", h.Protected)
	}

	// Data routes, with and without a trailing slash.
	mux.HandleFunc("GET /{action}", h.Data)
	mux.HandleFunc("GET /{action}/{$}", h.Data)
	mux.HandleFunc("GET /{action}/{type}", h.Data)
	mux.HandleFunc("GET /{action}/{type}/{$}", h.Data)

	return mux
}

// Data serves one taxonomy key. The HTTP status equals the envelope status.
// GET /{action}[/{type}]
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	env := h.pipeline.Handle(r.Context(), pipeline.Request{
		Action: r.PathValue("action"),
		Type:   r.PathValue("type"),
		Bearer: auth.BearerToken(r),
	})
	h.writeJSON(w, env.StatusCode, env)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type message struct {
	Msg string `json:"msg"`
}

// Login exchanges credentials for an access token.
// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, message{Msg: "malformed request body"})
		return
	}

	token, err := h.accounts.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.writeJSON(w, http.StatusUnauthorized, message{Msg: "invalid credentials"})
	case err != nil:
		h.logger.Error("login failed", zap.Error(err), zap.String("request_id", RequestID(r.Context())))
		h.writeJSON(w, http.StatusInternalServerError, message{Msg: "could not issue token"})
	default:
		h.writeJSON(w, http.StatusOK, loginResponse{AccessToken: token})
	}
}

// Protected echoes the identity carried by a valid bearer token.
// GET /protected
func (h *Handler) Protected(w http.ResponseWriter, r *http.Request) {
	id, err := h.accounts.Authenticate(r.Context(), auth.BearerToken(r))
	if err != nil {
		kind := model.Internal
		if auth.IsUnauthorized(err) {
			kind = model.Unauthorized
		}
		env := pipeline.Failure(&model.GatewayError{Kind: kind, Err: err})
		h.writeJSON(w, env.StatusCode, env)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"logged_in_as": id.Subject})
}

// TaxonomyAction describes one action of the served taxonomy.
type TaxonomyAction struct {
	Name    string   `json:"name"`
	Default string   `json:"default"`
	Types   []string `json:"types"`
}

// Taxonomy lists every action with its types and default type.
// GET /taxonomy
func (h *Handler) Taxonomy(w http.ResponseWriter, _ *http.Request) {
	reg := h.pipeline.Registry()
	actions := make([]TaxonomyAction, 0, len(reg.Actions()))
	for _, name := range reg.Actions() {
		def, _ := reg.Default(name)
		actions = append(actions, TaxonomyAction{Name: name, Default: def, Types: reg.Types(name)})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"actions": actions})
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Home serves a static greeting.
// GET /
func (h *Handler) Home(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, Greeting)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(model.Envelope{StatusCode: status, Data: "internal error: could not encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
