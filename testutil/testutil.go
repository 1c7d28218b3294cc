// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Him70043/Online-Voting-System-sub000/auth"
	"github.com/Him70043/Online-Voting-System-sub000/cliparse"
	"github.com/Him70043/Online-Voting-System-sub000/db"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. Each call gets its own database, so tests can run in parallel.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name, _ := auth.GenerateID(8)
	conn, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// SQLite allows one writer; a single pooled connection also keeps the
	// in-memory database alive for the whole test.
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		AdminKeySalt: "test-admin-salt",
		SessionSalt:  "test-session-salt",
	}
}

// CreateTestVoter inserts an active voter and returns its ID.
// The stored hash matches the given password.
func CreateTestVoter(t *testing.T, conn *sql.DB, username, password string) string {
	t.Helper()

	voterID, _ := auth.GenerateID(16)
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO voter (id, username, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, 'voter', TRUE, $4)
	`, voterID, username, hash, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID
}

// CreateTestQuestion inserts a question and returns its ID.
// status should be "open" or "closed".
func CreateTestQuestion(t *testing.T, conn *sql.DB, title, status string) string {
	t.Helper()

	questionID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO question (id, title, description, status, created_at)
		VALUES ($1, $2, 'A test question', $3, $4)
	`, questionID, title, status, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	return questionID
}

// AddTestOption adds an option to a question and returns the option ID
func AddTestOption(t *testing.T, conn *sql.DB, questionID, displayName string) string {
	t.Helper()

	optionID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO option (id, question_id, display_name, description, vote_count)
		VALUES ($1, $2, $3, '', 0)
	`, optionID, questionID, displayName)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// SessionToken issues a valid session token for the test configuration
func SessionToken(username string) string {
	return auth.GenerateSessionToken(username, GetTestConfig().SessionSalt, auth.DefaultSessionTTL)
}

// AdminKey returns the admin key for the test configuration
func AdminKey() string {
	return auth.GenerateAdminKey(GetTestConfig().AdminKeySalt)
}

// OptionCount reads an option's current vote_count
func OptionCount(t *testing.T, conn *sql.DB, optionID string) int64 {
	t.Helper()

	var count int64
	if err := conn.QueryRow(`SELECT vote_count FROM option WHERE id = $1`, optionID).Scan(&count); err != nil {
		t.Fatalf("Failed to read vote count: %v", err)
	}
	return count
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
