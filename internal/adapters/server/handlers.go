package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/zerr"
)

type handlers struct {
	cfg Config
}

// intercept hands the request to the active controller and falls back to
// the network when no controller handled it.
func (h *handlers) intercept(w http.ResponseWriter, r *http.Request) {
	h.observeClient(w, r)

	res, err := h.cfg.Registration.Dispatch(r.Context(), domain.Event{Kind: domain.EventFetch, Request: r})
	if err != nil {
		h.logError(zerr.With(err, "url", r.URL.String()))
		writeProblem(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if !res.Handled || res.Response == nil {
		h.passThrough(w, r)
		return
	}
	writeResponse(w, res.Response, res)
}

func (h *handlers) passThrough(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Fetcher == nil {
		writeProblem(w, http.StatusBadGateway, "no network fetcher configured")
		return
	}

	out := r.Clone(r.Context())
	if !out.URL.IsAbs() && h.cfg.Origin != nil {
		out.URL = h.cfg.Origin.ResolveReference(&url.URL{
			Path:     r.URL.Path,
			RawPath:  r.URL.RawPath,
			RawQuery: r.URL.RawQuery,
		})
		out.Host = out.URL.Host
	}

	resp, err := h.cfg.Fetcher.Fetch(r.Context(), out)
	if err != nil {
		h.logError(zerr.With(zerr.Wrap(err, "pass-through fetch failed"), "url", out.URL.String()))
		writeProblem(w, http.StatusBadGateway, "upstream unreachable")
		return
	}
	writeResponse(w, resp, domain.Result{Strategy: domain.StrategyBypass, Source: domain.SourceNetwork})
}

func writeResponse(w http.ResponseWriter, resp *http.Response, res domain.Result) {
	defer resp.Body.Close()

	header := w.Header()
	for k, vs := range resp.Header {
		header[k] = append([]string(nil), vs...)
	}
	if res.Strategy != "" {
		header.Set(StrategyHeader, res.Strategy.String())
	}
	if res.Source != "" {
		header.Set(SourceHeader, string(res.Source))
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

// observeClient records navigations as clients. Pages without an id are
// given one through the client cookie.
func (h *handlers) observeClient(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Clients == nil || r.Method != http.MethodGet || r.URL.IsAbs() || !isNavigation(r) {
		return
	}

	id := r.Header.Get(ClientHeader)
	if id == "" {
		if c, err := r.Cookie(ClientCookie); err == nil {
			id = c.Value
		}
	}

	target := r.URL.String()
	if h.cfg.Origin != nil {
		target = h.cfg.Origin.ResolveReference(&url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery}).String()
	}
	client := h.cfg.Clients.Observe(r.Context(), id, target)
	if id == "" {
		http.SetCookie(w, &http.Cookie{
			Name:     ClientCookie,
			Value:    client.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func isNavigation(r *http.Request) bool {
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (h *handlers) message(w http.ResponseWriter, r *http.Request) {
	var msg domain.Message
	if err := decodeBody(r, &msg); err != nil || msg.Type == "" {
		writeProblem(w, http.StatusBadRequest, "expected a JSON message with a type")
		return
	}
	res, err := h.cfg.Registration.Dispatch(r.Context(), domain.Event{Kind: domain.EventMessage, Message: msg})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"handled": res.Handled})
}

func (h *handlers) push(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxControlBody))
	if err != nil {
		writeProblem(w, http.StatusRequestEntityTooLarge, "push payload too large")
		return
	}
	res, err := h.cfg.Registration.Dispatch(r.Context(), domain.Event{Kind: domain.EventPush, Payload: payload})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res.Notification)
}

func (h *handlers) sync(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tag string `json:"tag"`
	}
	if err := decodeBody(r, &body); err != nil || body.Tag == "" {
		writeProblem(w, http.StatusBadRequest, "expected a JSON body with a tag")
		return
	}
	if _, err := h.cfg.Registration.Dispatch(r.Context(), domain.Event{Kind: domain.EventSync, Tag: body.Tag}); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *handlers) click(w http.ResponseWriter, r *http.Request) {
	res, err := h.cfg.Registration.Dispatch(r.Context(), domain.Event{
		Kind:           domain.EventNotificationClick,
		NotificationID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Client)
}

// forgetClient drops a closed page so it no longer counts as open.
func (h *handlers) forgetClient(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Clients == nil {
		writeProblem(w, http.StatusNotFound, "clients are not tracked")
		return
	}
	if err := h.cfg.Clients.Forget(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) notifications(w http.ResponseWriter, r *http.Request) {
	list := []domain.Notification{}
	if h.cfg.Notifier != nil {
		list = append(list, h.cfg.Notifier.List(r.Context())...)
	}
	writeJSON(w, http.StatusOK, list)
}

// StatusResponse is the body of GET /_aqt/status.
type StatusResponse struct {
	domain.RegistrationStatus
	Clients []domain.Client `json:"clients"`
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		RegistrationStatus: h.cfg.Registration.Status(),
		Clients:            []domain.Client{},
	}
	if h.cfg.Clients != nil {
		resp.Clients = append(resp.Clients, h.cfg.Clients.MatchAll(r.Context())...)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logError(err)
	}
	writeProblem(w, status, err.Error())
}

func (h *handlers) logError(err error) {
	if h.cfg.Logger != nil {
		h.cfg.Logger.Error(err)
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxControlBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}
