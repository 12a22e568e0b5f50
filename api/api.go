package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/rs/cors"
)

var errEmptyName = errors.New("empty message name")

// A DB provides a storage layer that persists messages.
type DB interface {
	ListMessages(ctx context.Context, excludeMsgIDs ...string) ([]Message, error)
	InsertMessage(ctx context.Context, msg Message) (Message, error)
}

// A Cache provides a storage layer that caches the most recent messages.
type Cache interface {
	ListMessages(ctx context.Context) ([]Message, error)
	InsertMessage(ctx context.Context, msg Message) error
}

// An Assistant answers the latest user message given the conversation so far.
type Assistant interface {
	Reply(ctx context.Context, history []Message) (string, error)
}

// API provides the REST endpoints for the application.
type API struct {
	Logger    *slog.Logger
	DB        DB
	Cache     Cache
	Assistant Assistant // optional

	// AllowedOrigins lists the browser origins allowed by CORS.
	AllowedOrigins []string

	once    sync.Once
	handler http.Handler
}

func (a *API) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /conversation", a.listConversation)
	mux.HandleFunc("POST /conversation", a.createMessage)

	a.handler = cors.New(cors.Options{
		AllowedOrigins:   a.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(mux)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	a.handler.ServeHTTP(w, r)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string) {
	type response struct {
		Error string `json:"error"`
	}
	a.Logger.Error("Error", "error", err.Error())
	a.respond(w, status, response{Error: msg})
}

type message struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func toResponse(msg Message) message {
	return message{
		ID:        msg.ID,
		Name:      msg.Name,
		Role:      msg.Role,
		CreatedAt: msg.CreatedAt.Format(time.RFC1123),
	}
}

// conversation returns all messages in insertion order. The newest messages
// come from the cache, the rest from the database.
func (a *API) conversation(ctx context.Context) ([]Message, error) {
	msgs, err := a.Cache.ListMessages(ctx)
	if err != nil {
		a.Logger.Error("Error listing messages from cache, trying database", "error", err.Error())
		msgs = nil
	}
	a.Logger.Info("Got messages from cache", "count", len(msgs))

	msgIDs := make([]string, len(msgs))
	for i, msg := range msgs {
		msgIDs[i] = msg.ID
	}
	dbMsgs, err := a.DB.ListMessages(ctx, msgIDs...)
	if err != nil {
		return nil, err
	}
	a.Logger.Info("Got remaining messages from DB", "count", len(dbMsgs))

	out := append(dbMsgs, msgs...)
	slices.SortStableFunc(out, func(x, y Message) int {
		return x.CreatedAt.Compare(y.CreatedAt)
	})
	return out, nil
}

func (a *API) listConversation(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Conversation []message `json:"conversation"`
	}

	msgs, err := a.conversation(r.Context())
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list conversation")
		return
	}

	out := make([]message, len(msgs))
	for i, msg := range msgs {
		out[i] = toResponse(msg)
	}
	a.respond(w, http.StatusOK, response{Conversation: out})
}

func (a *API) createMessage(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name string `json:"name"`
	}

	var body request
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}
	r.Body.Close()

	if body.Name == "" {
		a.respondError(w, http.StatusBadRequest, errEmptyName, "Message name is required")
		return
	}

	msg, err := a.insert(r.Context(), Message{
		Name:      body.Name,
		Role:      RoleUser,
		CreatedAt: time.Now(),
	})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not insert message")
		return
	}

	if a.Assistant != nil {
		a.reply(r.Context())
	}

	a.respond(w, http.StatusCreated, toResponse(msg))
}

// insert stores msg in the database and then in the cache. A cache failure is
// only logged.
func (a *API) insert(ctx context.Context, msg Message) (Message, error) {
	msg, err := a.DB.InsertMessage(ctx, msg)
	if err != nil {
		return Message{}, err
	}
	if err := a.Cache.InsertMessage(ctx, msg); err != nil {
		a.Logger.Error("Could not cache message", "error", err.Error())
	}
	return msg, nil
}

// reply asks the assistant to answer the conversation and stores the answer.
// The user message is already stored, so failures here are only logged.
func (a *API) reply(ctx context.Context) {
	history, err := a.conversation(ctx)
	if err != nil {
		a.Logger.Error("Could not load conversation for assistant", "error", err.Error())
		return
	}

	text, err := a.Assistant.Reply(ctx, history)
	if err != nil {
		a.Logger.Error("Could not get assistant reply", "error", err.Error())
		return
	}
	if text == "" {
		a.Logger.Warn("Assistant returned an empty reply")
		return
	}

	_, err = a.insert(ctx, Message{
		Name:      text,
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
	})
	if err != nil {
		a.Logger.Error("Could not insert assistant reply", "error", err.Error())
	}
}
