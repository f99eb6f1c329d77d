package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/allhaile/puppyTrackr-sub000/internal/auth"
	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
	"github.com/allhaile/puppyTrackr-sub000/internal/importer"
)

const handlerTestCSV = "Date/Time,Entry type?,Logged By?,Notes\n" +
	"\"August 1, 2025 9:39 PM\",Potty,Dana,Quick walk\n" +
	"\"August 1, 2025 7:00 AM\",Meal,Alex,Breakfast\n"

func writeScopeRequest(r *http.Request) *http.Request {
	return scopedRequest(r, auth.ScopeEntriesWrite)
}

func readScopeRequest(r *http.Request) *http.Request {
	return scopedRequest(r, auth.ScopeEntriesRead)
}

func scopedRequest(r *http.Request, scopes ...string) *http.Request {
	claims := &auth.Claims{
		Subject:     "tester",
		HouseholdID: "household-1",
		Scopes:      make(map[string]struct{}, len(scopes)),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	for _, scope := range scopes {
		claims.Scopes[scope] = struct{}{}
	}
	return r.WithContext(auth.WithClaims(r.Context(), claims))
}

func importBody(t *testing.T, req ImportRequest) *strings.Reader {
	t.Helper()
	payload, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return strings.NewReader(string(payload))
}

func TestPreviewImportSuccess(t *testing.T) {
	handler := NewHandler(importer.NewService(&handlerMockRepo{}, nil), &handlerMockRepo{}, "Caregiver")

	body := importBody(t, ImportRequest{
		FileName: "export.csv",
		Content:  handlerTestCSV,
	})
	req := readScopeRequest(httptest.NewRequest(http.MethodPost, "/v1/imports/preview", body))

	rr := httptest.NewRecorder()
	handler.previewImport(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ImportPreviewResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Entries != 2 {
		t.Fatalf("expected 2 entries got %d", resp.Entries)
	}
	if resp.Preview.TotalEntries != 2 {
		t.Fatalf("expected preview total 2 got %d", resp.Preview.TotalEntries)
	}
	if resp.Preview.ActivityBreakdown["potty"] != 1 {
		t.Fatalf("unexpected breakdown %v", resp.Preview.ActivityBreakdown)
	}
	if len(resp.Preview.SampleEntries) != 2 {
		t.Fatalf("expected 2 samples got %d", len(resp.Preview.SampleEntries))
	}
	if !resp.Preview.SampleEntries[0].Imported {
		t.Fatal("normalized entries should carry import provenance")
	}
}

func TestPreviewImportFallsBackToConfiguredUser(t *testing.T) {
	handler := NewHandler(importer.NewService(&handlerMockRepo{}, nil), &handlerMockRepo{}, "Caregiver")

	body := importBody(t, ImportRequest{
		FileName: "export.csv",
		Content:  "Date/Time,Entry type?\n\"August 1, 2025 9:39 PM\",Potty\n",
	})
	req := readScopeRequest(httptest.NewRequest(http.MethodPost, "/v1/imports/preview", body))

	rr := httptest.NewRecorder()
	handler.previewImport(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ImportPreviewResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Preview.SampleEntries[0].User != "Caregiver" {
		t.Fatalf("expected configured default user, got %q", resp.Preview.SampleEntries[0].User)
	}
}

func TestPreviewImportRejectsBadFormat(t *testing.T) {
	handler := NewHandler(importer.NewService(&handlerMockRepo{}, nil), &handlerMockRepo{}, "Caregiver")

	body := importBody(t, ImportRequest{
		FileName: "export.pdf",
		Content:  "binary junk",
	})
	req := readScopeRequest(httptest.NewRequest(http.MethodPost, "/v1/imports/preview", body))

	rr := httptest.NewRecorder()
	handler.previewImport(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if payload["type"] != "invalid_file" {
		t.Fatalf("expected invalid_file got %q", payload["type"])
	}
}

func TestPreviewImportRequiresScope(t *testing.T) {
	handler := NewHandler(importer.NewService(&handlerMockRepo{}, nil), &handlerMockRepo{}, "Caregiver")

	body := importBody(t, ImportRequest{FileName: "export.csv", Content: handlerTestCSV})
	req := scopedRequest(httptest.NewRequest(http.MethodPost, "/v1/imports/preview", body))

	rr := httptest.NewRecorder()
	handler.previewImport(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestPreviewImportRequiresClaims(t *testing.T) {
	handler := NewHandler(importer.NewService(&handlerMockRepo{}, nil), &handlerMockRepo{}, "Caregiver")

	body := importBody(t, ImportRequest{FileName: "export.csv", Content: handlerTestCSV})
	req := httptest.NewRequest(http.MethodPost, "/v1/imports/preview", body)

	rr := httptest.NewRecorder()
	handler.previewImport(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestCommitImportSuccess(t *testing.T) {
	repo := &handlerMockRepo{}
	handler := NewHandler(importer.NewService(repo, nil), repo, "Caregiver")

	body := importBody(t, ImportRequest{
		FileName: "export.csv",
		Content:  handlerTestCSV,
		PetID:    "pet-1",
		UserID:   "user-1",
	})
	req := writeScopeRequest(httptest.NewRequest(http.MethodPost, "/v1/imports", body))

	rr := httptest.NewRecorder()
	handler.commitImport(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ImportCommitResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Imported != 2 || resp.Skipped != 0 {
		t.Fatalf("unexpected stats imported=%d skipped=%d", resp.Imported, resp.Skipped)
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("expected 2 inserts got %d", len(repo.inserted))
	}
	if repo.insertPet != "pet-1" || repo.insertUser != "user-1" {
		t.Fatalf("unexpected insert target pet=%q user=%q", repo.insertPet, repo.insertUser)
	}
}

func TestCommitImportValidatesTarget(t *testing.T) {
	handler := NewHandler(importer.NewService(&handlerMockRepo{}, nil), &handlerMockRepo{}, "Caregiver")

	body := importBody(t, ImportRequest{FileName: "export.csv", Content: handlerTestCSV})
	req := writeScopeRequest(httptest.NewRequest(http.MethodPost, "/v1/imports", body))

	rr := httptest.NewRecorder()
	handler.commitImport(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestCommitImportRequiresWriteScope(t *testing.T) {
	handler := NewHandler(importer.NewService(&handlerMockRepo{}, nil), &handlerMockRepo{}, "Caregiver")

	body := importBody(t, ImportRequest{
		FileName: "export.csv",
		Content:  handlerTestCSV,
		PetID:    "pet-1",
		UserID:   "user-1",
	})
	req := readScopeRequest(httptest.NewRequest(http.MethodPost, "/v1/imports", body))

	rr := httptest.NewRecorder()
	handler.commitImport(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}
}

func TestListEntriesSuccess(t *testing.T) {
	now := time.Date(2025, time.August, 1, 21, 39, 0, 0, time.UTC)
	repo := &handlerMockRepo{
		entries: []domain.ActivityEntry{
			{ID: "imported_abc", Time: now, User: "Dana", Type: domain.TypePotty, Types: []domain.ActivityType{domain.TypePotty}},
			{ID: "organic-1", Time: now.Add(-time.Hour), User: "Alex", Type: domain.TypeMeal, Types: []domain.ActivityType{domain.TypeMeal}},
		},
	}
	handler := NewHandler(importer.NewService(repo, nil), repo, "Caregiver")

	req := readScopeRequest(httptest.NewRequest(http.MethodGet, "/v1/entries?pet_id=pet-1&limit=2", nil))

	rr := httptest.NewRecorder()
	handler.listEntries(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp ListEntriesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items got %d", len(resp.Items))
	}
	if !resp.Items[0].Imported {
		t.Fatal("import-provenance flag not surfaced")
	}
	if resp.Items[1].Imported {
		t.Fatal("organic entry flagged as imported")
	}
	if resp.NextCursor == "" {
		t.Fatal("expected next cursor when page is full")
	}
}

func TestListEntriesRequiresPetID(t *testing.T) {
	handler := NewHandler(importer.NewService(&handlerMockRepo{}, nil), &handlerMockRepo{}, "Caregiver")

	req := readScopeRequest(httptest.NewRequest(http.MethodGet, "/v1/entries", nil))

	rr := httptest.NewRecorder()
	handler.listEntries(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestListEntriesRejectsBadCursor(t *testing.T) {
	handler := NewHandler(importer.NewService(&handlerMockRepo{}, nil), &handlerMockRepo{}, "Caregiver")

	req := readScopeRequest(httptest.NewRequest(http.MethodGet, "/v1/entries?pet_id=pet-1&cursor=%21%21not-base64", nil))

	rr := httptest.NewRecorder()
	handler.listEntries(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

type handlerMockRepo struct {
	entries    []domain.ActivityEntry
	inserted   []domain.ActivityEntry
	insertPet  string
	insertUser string
}

func (m *handlerMockRepo) InsertMany(_ context.Context, petID, userID string, entries []domain.ActivityEntry) error {
	m.insertPet = petID
	m.insertUser = userID
	m.inserted = append(m.inserted, entries...)
	return nil
}

func (m *handlerMockRepo) ListByPet(_ context.Context, _ string, _ *domain.Cursor, limit int) ([]domain.ActivityEntry, *domain.Cursor, error) {
	out := m.entries
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	var next *domain.Cursor
	if limit > 0 && len(out) == limit && len(out) > 0 {
		last := out[len(out)-1]
		next = &domain.Cursor{Time: last.Time, ID: last.ID}
	}
	return out, next, nil
}
