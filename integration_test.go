package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"notivo/db"
)

func setupIntegrationTest(t *testing.T) *chi.Mux {
	t.Helper()
	conn, err := db.Connect(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("connecting database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return newRouter(conn, []byte("integration-secret"))
}

func doJSON(t *testing.T, router *chi.Mux, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var decoded map[string]any
	json.Unmarshal(resp.Body.Bytes(), &decoded)
	return resp, decoded
}

func listNotes(t *testing.T, router *chi.Mux, token, query string) []map[string]any {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/notes"+query, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("listing notes: status %v", resp.Code)
	}
	var notes []map[string]any
	json.Unmarshal(resp.Body.Bytes(), &notes)
	return notes
}

// TestNoteLifecycle walks the whole contract: signup, create, pin, ordered
// listing, substring search, edit, delete.
func TestNoteLifecycle(t *testing.T) {
	router := setupIntegrationTest(t)

	// Signup returns the new user and a token
	resp, signup := doJSON(t, router, "POST", "/api/signup", "", map[string]string{
		"username": "alice",
		"password": "pw1",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected signup status OK, got %v", resp.Code)
	}
	if int(signup["id"].(float64)) != 1 || signup["username"] != "alice" {
		t.Fatalf("Unexpected signup response: %v", signup)
	}
	token := signup["token"].(string)
	if token == "" {
		t.Fatal("Signup did not return a token")
	}

	// Create a note; it starts unpinned
	resp, note := doJSON(t, router, "POST", "/api/notes", token, map[string]any{
		"userId":  1,
		"title":   "Groceries",
		"content": "milk, eggs",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected create status OK, got %v", resp.Code)
	}
	if note["is_pinned"] != false {
		t.Errorf("Expected new note unpinned, got %v", note["is_pinned"])
	}
	noteID := int(note["id"].(float64))

	// A second, fresher note sorts ahead until the first is pinned
	time.Sleep(2 * time.Millisecond)
	resp, _ = doJSON(t, router, "POST", "/api/notes", token, map[string]any{
		"title":   "Work",
		"content": "ship the release",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected create status OK, got %v", resp.Code)
	}

	notes := listNotes(t, router, token, "?userId=1")
	if len(notes) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(notes))
	}
	if notes[0]["title"] != "Work" {
		t.Errorf("Expected newest note first, got %v", notes[0]["title"])
	}

	// Pin the groceries note; it moves to the front with updated_at untouched
	updatedAtBefore := notes[1]["updated_at"]
	resp, pinResp := doJSON(t, router, "PATCH", fmt.Sprintf("/api/notes/%d/pin", noteID), token, map[string]bool{
		"is_pinned": true,
	})
	if resp.Code != http.StatusOK || pinResp["success"] != true {
		t.Fatalf("Expected pin success, got %v %v", resp.Code, pinResp)
	}

	notes = listNotes(t, router, token, "")
	if int(notes[0]["id"].(float64)) != noteID {
		t.Errorf("Expected pinned note first, got %v", notes[0])
	}
	if notes[0]["updated_at"] != updatedAtBefore {
		t.Errorf("Pin must not touch updated_at: %v != %v", notes[0]["updated_at"], updatedAtBefore)
	}

	// Substring search is case-insensitive and matches title or content
	if found := listNotes(t, router, token, "?q=milk"); len(found) != 1 || int(found[0]["id"].(float64)) != noteID {
		t.Errorf("Expected q=milk to return the groceries note, got %v", found)
	}
	if found := listNotes(t, router, token, "?q=bread"); len(found) != 0 {
		t.Errorf("Expected q=bread to return nothing, got %v", found)
	}

	// Edit bumps updated_at
	resp, _ = doJSON(t, router, "PUT", fmt.Sprintf("/api/notes/%d", noteID), token, map[string]string{
		"title":   "Groceries",
		"content": "milk, eggs, bread",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected update status OK, got %v", resp.Code)
	}
	notes = listNotes(t, router, token, "")
	if notes[0]["updated_at"] == updatedAtBefore {
		t.Error("Edit must bump updated_at")
	}

	// Delete twice; both report success
	for i := 0; i < 2; i++ {
		resp, delResp := doJSON(t, router, "DELETE", fmt.Sprintf("/api/notes/%d", noteID), token, nil)
		if resp.Code != http.StatusOK || delResp["success"] != true {
			t.Fatalf("Expected delete success on attempt %d, got %v %v", i+1, resp.Code, delResp)
		}
	}
	if notes = listNotes(t, router, token, ""); len(notes) != 1 {
		t.Errorf("Expected 1 remaining note, got %d", len(notes))
	}
}

func TestAuthFlow(t *testing.T) {
	router := setupIntegrationTest(t)

	resp, _ := doJSON(t, router, "POST", "/api/signup", "", map[string]string{
		"username": "alice",
		"password": "pw1",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected signup status OK, got %v", resp.Code)
	}

	// Duplicate username
	resp, errResp := doJSON(t, router, "POST", "/api/signup", "", map[string]string{
		"username": "alice",
		"password": "other",
	})
	if resp.Code != http.StatusBadRequest || errResp["error"] != "Username already exists" {
		t.Errorf("Expected 400 Username already exists, got %v %v", resp.Code, errResp)
	}

	// Login with the right and wrong password
	resp, login := doJSON(t, router, "POST", "/api/login", "", map[string]string{
		"username": "alice",
		"password": "pw1",
	})
	if resp.Code != http.StatusOK || login["username"] != "alice" {
		t.Errorf("Expected login success, got %v %v", resp.Code, login)
	}

	resp, errResp = doJSON(t, router, "POST", "/api/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if resp.Code != http.StatusUnauthorized || errResp["error"] != "Invalid credentials" {
		t.Errorf("Expected 401 Invalid credentials, got %v %v", resp.Code, errResp)
	}

	// Note routes are closed without a token
	req := httptest.NewRequest("GET", "/api/notes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %v", rec.Code)
	}

	// And one user cannot read another's listing
	token := login["token"].(string)
	req = httptest.NewRequest("GET", "/api/notes?userId=2", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for foreign userId, got %v", rec.Code)
	}
}
