// Package bridge serves the plugin UI message protocol over HTTP so a thin
// UI can drive the headless workspace.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"figsiner/internal/config"
	"figsiner/internal/llm"
	"figsiner/internal/storage"
	"figsiner/internal/studio"
)

// ClientFactory builds a model client for explicit settings. It backs
// VERIFY_SETTINGS, which checks settings before they are saved.
type ClientFactory func(ctx context.Context, s config.Settings) (llm.Client, error)

func defaultFactory(ctx context.Context, s config.Settings) (llm.Client, error) {
	return llm.NewClient(ctx, llm.Options{Provider: s.Provider, Host: s.Host, APIKey: s.APIKey, Model: s.Model})
}

type Server struct {
	studio   *studio.Studio
	settings storage.SettingsStore
	base     config.Settings
	clients  ClientFactory
	log      *slog.Logger
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

func WithClientFactory(f ClientFactory) Option {
	return func(s *Server) { s.clients = f }
}

// WithBaseSettings sets what REQUEST_SETTINGS reports before anything is saved.
func WithBaseSettings(b config.Settings) Option {
	return func(s *Server) { s.base = b }
}

func New(st *studio.Studio, settings storage.SettingsStore, opts ...Option) *Server {
	s := &Server{
		studio:   st,
		settings: settings,
		clients:  defaultFactory,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes returns the bridge's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	s.RegisterHTTP(r)
	return r
}

func (s *Server) RegisterHTTP(r chi.Router) {
	r.Post("/messages", s.handleMessage)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"busy": s.studio.Busy()})
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "Invalid message body", http.StatusBadRequest)
		return
	}
	s.log.Debug("bridge message", "type", msg.Type, "request_id", middleware.GetReqID(r.Context()))

	switch msg.Type {
	case MsgRequestSettings:
		s.requestSettings(w, r)
	case MsgSaveSettings:
		s.saveSettings(w, r, msg.Payload)
	case MsgVerifySettings:
		s.verifySettings(w, r, msg.Payload)
	case MsgGenerateSection:
		s.generate(w, r, msg.Payload)
	case MsgEditSection:
		s.edit(w, r, msg.Payload)
	default:
		http.Error(w, fmt.Sprintf("Unknown message type %q", msg.Type), http.StatusBadRequest)
	}
}

func (s *Server) requestSettings(w http.ResponseWriter, r *http.Request) {
	saved, ok, err := s.settings.LoadSettings(r.Context())
	if err != nil {
		s.log.Error("failed to load settings", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	cur := s.base
	if ok {
		cur = cur.Merge(saved)
	}
	if !ok && cur == (config.Settings{}) {
		writeJSON(w, http.StatusOK, Reply{Type: MsgSettings})
		return
	}
	writeJSON(w, http.StatusOK, Reply{Type: MsgSettings, Payload: cur})
}

func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var in config.Settings
	if err := decodePayload(raw, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.settings.SaveSettings(r.Context(), trimSettings(in)); err != nil {
		s.log.Error("failed to save settings", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, Reply{Type: MsgSettingsSaved})
}

func (s *Server) verifySettings(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var in config.Settings
	if err := decodePayload(raw, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in = trimSettings(in)
	res := VerifyResult{}
	client, err := s.clients(r.Context(), in)
	if err == nil {
		res.Models, err = llm.Verify(r.Context(), client, in.Model)
	}
	if err != nil {
		res.Error = err.Error()
	} else {
		res.OK = true
	}
	writeJSON(w, http.StatusOK, Reply{Type: MsgSettingsVerified, Payload: res})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var in GenerateRequest
	if err := decodePayload(raw, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if in.Settings != nil {
		ctx = studio.WithSettings(ctx, trimSettings(*in.Settings))
	}
	res, err := s.studio.Generate(ctx, in.Prompt, in.Targets)
	if err != nil {
		s.log.Warn("generation failed", "err", err)
		writeJSON(w, statusFor(err), Reply{Type: MsgGenerationError, Payload: ErrorResult{Message: err.Error()}})
		return
	}
	writeJSON(w, http.StatusOK, Reply{Type: MsgGenerationSuccess, Payload: GenerationResult{ViewportFrames: res.Frames}})
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var in EditRequest
	if err := decodePayload(raw, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	if in.Settings != nil {
		ctx = studio.WithSettings(ctx, trimSettings(*in.Settings))
	}
	res, err := s.studio.Edit(ctx, in.FrameID, in.EditBrief)
	if err != nil {
		s.log.Warn("edit failed", "frame", in.FrameID, "err", err)
		writeJSON(w, statusFor(err), Reply{Type: MsgPatchError, Payload: ErrorResult{Message: err.Error()}})
		return
	}
	out := PatchResult{FrameID: res.FrameID, Applied: res.Applied}
	for _, sk := range res.Skipped {
		out.Skipped = append(out.Skipped, fmt.Sprintf("%d %s: %v", sk.Index, sk.Op, sk.Reason))
	}
	writeJSON(w, http.StatusOK, Reply{Type: MsgPatchSuccess, Payload: out})
}

// statusFor maps request failures to HTTP status codes. Model and document
// failures still answer 200 with an *_ERROR reply, as the UI expects.
func statusFor(err error) int {
	switch {
	case errors.Is(err, studio.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, studio.ErrFrameNotFound):
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func trimSettings(s config.Settings) config.Settings {
	s.Provider = strings.TrimSpace(s.Provider)
	s.Host = strings.TrimSpace(s.Host)
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.Model = strings.TrimSpace(s.Model)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
