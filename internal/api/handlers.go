// Package api exposes HTTP handlers for the import service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/allhaile/puppyTrackr-sub000/internal/auth"
	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
	"github.com/allhaile/puppyTrackr-sub000/internal/importer"
	"github.com/allhaile/puppyTrackr-sub000/internal/persistence"
)

// Handler coordinates HTTP requests with the import service and entry store.
type Handler struct {
	imports     *importer.Service
	repo        domain.EntryRepository
	defaultUser string
}

// NewHandler builds a Handler. defaultUser names entries whose source row and
// request both leave the caregiver blank.
func NewHandler(imports *importer.Service, repo domain.EntryRepository, defaultUser string) *Handler {
	return &Handler{imports: imports, repo: repo, defaultUser: defaultUser}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/imports", h.commitImport)
	mux.HandleFunc("/v1/imports/preview", h.previewImport)
	mux.HandleFunc("/v1/entries", h.listEntries)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) previewImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeEntriesRead) && !claims.HasScope(auth.ScopeEntriesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope entries:read required")
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.ValidatePreview(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	result, err := h.imports.ImportFile([]byte(req.Content), req.FileName, h.resolveDefaultUser(req))
	if err != nil {
		if isFormatError(err) {
			writeError(w, http.StatusBadRequest, "invalid_file", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toPreviewResponse(result))
}

func (h *Handler) commitImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeEntriesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope entries:write required")
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.ValidateCommit(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	result, err := h.imports.ImportFile([]byte(req.Content), req.FileName, h.resolveDefaultUser(req))
	if err != nil {
		if isFormatError(err) {
			writeError(w, http.StatusBadRequest, "invalid_file", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	stats, err := h.imports.CommitRemote(r.Context(), req.PetID, req.UserID, result.Entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, ImportCommitResponse{
		Imported: stats.Imported,
		Skipped:  stats.Skipped,
		Total:    stats.Total,
		Preview:  toPreviewView(result.Preview),
	})
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeEntriesRead) && !claims.HasScope(auth.ScopeEntriesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope entries:read required")
		return
	}

	petID := r.URL.Query().Get("pet_id")
	if strings.TrimSpace(petID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing pet_id parameter")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	entries, next, err := h.repo.ListByPet(r.Context(), petID, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]EntryView, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toEntryView(entry))
	}
	writeJSON(w, http.StatusOK, ListEntriesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) resolveDefaultUser(req ImportRequest) string {
	if strings.TrimSpace(req.DefaultUser) != "" {
		return req.DefaultUser
	}
	return h.defaultUser
}

func isFormatError(err error) bool {
	return errors.Is(err, importer.ErrUnsupportedFormat) ||
		errors.Is(err, importer.ErrMalformedJSON) ||
		errors.Is(err, importer.ErrNoDataRows)
}

// ImportRequest is the payload for the preview and commit endpoints.
type ImportRequest struct {
	FileName    string `json:"file_name"`
	Content     string `json:"content"`
	DefaultUser string `json:"default_user"`
	PetID       string `json:"pet_id"`
	UserID      string `json:"user_id"`
}

// ValidatePreview ensures the fields needed for parse + normalize are present.
func (r ImportRequest) ValidatePreview() error {
	if strings.TrimSpace(r.FileName) == "" {
		return errors.New("file_name is required")
	}
	if r.Content == "" {
		return errors.New("content is required")
	}
	return nil
}

// ValidateCommit additionally requires the commit target.
func (r ImportRequest) ValidateCommit() error {
	if err := r.ValidatePreview(); err != nil {
		return err
	}
	if strings.TrimSpace(r.PetID) == "" {
		return errors.New("pet_id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// EntryView exposes full details about an activity entry.
type EntryView struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	User     string    `json:"user"`
	Type     string    `json:"type"`
	Types    []string  `json:"types"`
	Notes    string    `json:"notes,omitempty"`
	Details  string    `json:"details,omitempty"`
	Mood     string    `json:"mood,omitempty"`
	Energy   string    `json:"energy,omitempty"`
	HasTreat bool      `json:"has_treat"`
	Imported bool      `json:"imported"`
}

// PreviewView renders the batch summary for human review.
type PreviewView struct {
	TotalEntries      int            `json:"total_entries"`
	EarliestDate      string         `json:"earliest_date"`
	LatestDate        string         `json:"latest_date"`
	ActivityBreakdown map[string]int `json:"activity_breakdown"`
	SampleEntries     []EntryView    `json:"sample_entries"`
}

// ImportPreviewResponse packages the preview endpoint result.
type ImportPreviewResponse struct {
	Preview PreviewView `json:"preview"`
	Entries int         `json:"entries"`
}

// ImportCommitResponse reports merge statistics after commit.
type ImportCommitResponse struct {
	Imported int         `json:"imported"`
	Skipped  int         `json:"skipped"`
	Total    int         `json:"total"`
	Preview  PreviewView `json:"preview"`
}

// ListEntriesResponse packages list results.
type ListEntriesResponse struct {
	Items      []EntryView `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func toPreviewResponse(result *domain.ImportResult) ImportPreviewResponse {
	return ImportPreviewResponse{
		Preview: toPreviewView(result.Preview),
		Entries: len(result.Entries),
	}
}

func toPreviewView(preview domain.PreviewSummary) PreviewView {
	breakdown := make(map[string]int, len(preview.ActivityBreakdown))
	for activityType, count := range preview.ActivityBreakdown {
		breakdown[string(activityType)] = count
	}
	samples := make([]EntryView, 0, len(preview.SampleEntries))
	for _, entry := range preview.SampleEntries {
		samples = append(samples, toEntryView(entry))
	}
	return PreviewView{
		TotalEntries:      preview.TotalEntries,
		EarliestDate:      preview.EarliestDate,
		LatestDate:        preview.LatestDate,
		ActivityBreakdown: breakdown,
		SampleEntries:     samples,
	}
}

func toEntryView(entry domain.ActivityEntry) EntryView {
	types := make([]string, 0, len(entry.Types))
	for _, t := range entry.Types {
		types = append(types, string(t))
	}
	return EntryView{
		ID:       entry.ID,
		Time:     entry.Time,
		User:     entry.User,
		Type:     string(entry.Type),
		Types:    types,
		Notes:    entry.Notes,
		Details:  entry.Details,
		Mood:     entry.Mood,
		Energy:   entry.Energy,
		HasTreat: entry.HasTreat,
		Imported: entry.Imported(),
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
