package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/paperbark/kindwords/internal/auth"
	"github.com/paperbark/kindwords/internal/export"
	"github.com/paperbark/kindwords/internal/model"
	"github.com/paperbark/kindwords/internal/store"
)

const (
	maxThingLength = 500
	maxWhoLength   = 100
	maxWhyLength   = 1000
)

type ThingHandler struct {
	things *store.ThingStore
	logger *slog.Logger
}

func NewThingHandler(ts *store.ThingStore, logger *slog.Logger) *ThingHandler {
	return &ThingHandler{things: ts, logger: logger}
}

type thingRequest struct {
	Thing string `json:"thing"`
	Who   string `json:"who"`
	Why   string `json:"why"`
}

// validate trims and bounds the request fields, returning the cleaned
// values and an empty message on success.
func (req *thingRequest) validate() (thing, who string, why *string, errMsg string) {
	thing = strings.TrimSpace(req.Thing)
	who = strings.TrimSpace(req.Who)
	whyText := strings.TrimSpace(req.Why)

	if thing == "" || who == "" {
		return "", "", nil, "Thing text and who said it are required."
	}
	// Limits are in characters, not bytes: a multi-byte quote must not
	// hit the ceiling early.
	if utf8.RuneCountInString(thing) > maxThingLength {
		return "", "", nil, "Thing text must be at most 500 characters."
	}
	if utf8.RuneCountInString(who) > maxWhoLength {
		return "", "", nil, "Who said it must be at most 100 characters."
	}
	if utf8.RuneCountInString(whyText) > maxWhyLength {
		return "", "", nil, "Why must be at most 1000 characters."
	}
	if whyText != "" {
		why = &whyText
	}
	return thing, who, why, ""
}

func (h *ThingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req thingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	thing, who, why, errMsg := req.validate()
	if errMsg != "" {
		writeMessage(w, http.StatusBadRequest, errMsg)
		return
	}

	created, err := h.things.Create(ac.UserID, thing, who, why)
	if err != nil {
		h.logger.Error("create thing", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error creating entry.")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ThingHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	things, err := h.things.ListByOwner(ac.UserID)
	if err != nil {
		h.logger.Error("list things", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error fetching entries.")
		return
	}
	if things == nil {
		things = []model.Thing{}
	}
	writeJSON(w, http.StatusOK, things)
}

func (h *ThingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	thing, err := h.things.GetByID(ac.UserID, r.PathValue("id"))
	if err != nil {
		h.logger.Error("get thing", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error fetching entry.")
		return
	}
	if thing == nil {
		writeMessage(w, http.StatusNotFound, "Entry not found.")
		return
	}
	writeJSON(w, http.StatusOK, thing)
}

func (h *ThingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req thingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	thing, who, why, errMsg := req.validate()
	if errMsg != "" {
		writeMessage(w, http.StatusBadRequest, errMsg)
		return
	}

	updated, err := h.things.Update(ac.UserID, r.PathValue("id"), thing, who, why)
	if err != nil {
		h.logger.Error("update thing", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error updating entry.")
		return
	}
	if updated == nil {
		writeMessage(w, http.StatusNotFound, "Entry not found.")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ThingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	deleted, err := h.things.Delete(ac.UserID, r.PathValue("id"))
	if err != nil {
		h.logger.Error("delete thing", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error deleting entry.")
		return
	}
	if !deleted {
		writeMessage(w, http.StatusNotFound, "Entry not found.")
		return
	}
	writeMessage(w, http.StatusOK, "Entry deleted successfully.")
}

// DeleteAll wipes the caller's entire collection. Succeeds even when
// there is nothing to delete.
func (h *ThingHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	if _, err := h.things.DeleteAll(ac.UserID); err != nil {
		h.logger.Error("delete all things", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error deleting entries.")
		return
	}
	writeMessage(w, http.StatusOK, "All entries deleted successfully.")
}

// Export serializes the caller's collection oldest-first, as JSON or
// as a plain-text report. Any format other than json or txt is a
// validation error, never a silent default.
func (h *ThingHandler) Export(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	format := r.URL.Query().Get("format")
	if format != "json" && format != "txt" {
		writeMessage(w, http.StatusBadRequest, "Invalid format. Use json or txt.")
		return
	}

	things, err := h.things.ListByOwnerOldest(ac.UserID)
	if err != nil {
		h.logger.Error("export things", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error exporting entries.")
		return
	}

	if format == "json" {
		if things == nil {
			things = []model.Thing{}
		}
		writeJSON(w, http.StatusOK, things)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, export.Text(things))
}
