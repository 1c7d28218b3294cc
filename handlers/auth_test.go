// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Him70043/Online-Voting-System-sub000/models"
	"github.com/Him70043/Online-Voting-System-sub000/rateguard"
	"github.com/Him70043/Online-Voting-System-sub000/testutil"
)

func TestRegister(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewAuthHandler(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("POST", "/auth/register", models.RegisterRequest{
		Username: "alice",
		Password: "password123",
	}, nil)
	w := httptest.NewRecorder()
	h.Register(w, req)

	testutil.AssertStatus(t, w, 201)

	var resp models.RegisterResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Username != "alice" {
		t.Errorf("username = %q, want %q", resp.Username, "alice")
	}

	// The stored hash is not the plaintext
	var hash string
	if err := conn.QueryRow(`SELECT password_hash FROM voter WHERE username = $1`, "alice").Scan(&hash); err != nil {
		t.Fatalf("failed to query voter: %v", err)
	}
	if hash == "password123" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_Validation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewAuthHandler(conn, testutil.GetTestConfig())

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"username too short", "a", "password123"},
		{"username too long", strings.Repeat("a", 51), "password123"},
		{"password too short", "alice", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/register", models.RegisterRequest{
				Username: tt.username,
				Password: tt.password,
			}, nil)
			w := httptest.NewRecorder()
			h.Register(w, req)
			testutil.AssertStatus(t, w, 400)
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewAuthHandler(conn, testutil.GetTestConfig())
	testutil.CreateTestVoter(t, conn, "alice", "password123")

	req := testutil.MakeRequest("POST", "/auth/register", models.RegisterRequest{
		Username: "alice",
		Password: "anotherpassword",
	}, nil)
	w := httptest.NewRecorder()
	h.Register(w, req)

	testutil.AssertStatus(t, w, 409)
}

func TestLogin(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewAuthHandler(conn, testutil.GetTestConfig())
	testutil.CreateTestVoter(t, conn, "alice", "password123")

	req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
		Username: "alice",
		Password: "password123",
	}, nil)
	w := httptest.NewRecorder()
	h.Login(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.LoginResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.SessionToken == "" {
		t.Error("login returned an empty session token")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewAuthHandler(conn, testutil.GetTestConfig())
	testutil.CreateTestVoter(t, conn, "alice", "password123")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrongpassword"},
		{"unknown username", "mallory", "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
				Username: tt.username,
				Password: tt.password,
			}, nil)
			w := httptest.NewRecorder()
			h.Login(w, req)
			testutil.AssertStatus(t, w, 401)
		})
	}
}

func TestLogin_DeactivatedVoter(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewAuthHandler(conn, testutil.GetTestConfig())
	testutil.CreateTestVoter(t, conn, "alice", "password123")

	if _, err := conn.Exec(`UPDATE voter SET active = FALSE WHERE username = $1`, "alice"); err != nil {
		t.Fatalf("failed to deactivate voter: %v", err)
	}

	req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
		Username: "alice",
		Password: "password123",
	}, nil)
	w := httptest.NewRecorder()
	h.Login(w, req)

	testutil.AssertStatus(t, w, 401)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewAuthHandler(conn, testutil.GetTestConfig())
	testutil.CreateTestVoter(t, conn, "alice", "password123")

	badLogin := func() *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
			Username: "alice",
			Password: "wrongpassword",
		}, nil)
		w := httptest.NewRecorder()
		h.Login(w, req)
		return w
	}

	for i := 0; i < rateguard.MaxFailures; i++ {
		testutil.AssertStatus(t, badLogin(), 401)
	}

	// The lockout now rejects even the correct password
	req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
		Username: "alice",
		Password: "password123",
	}, nil)
	w := httptest.NewRecorder()
	h.Login(w, req)
	testutil.AssertStatus(t, w, 423)

	// Other identities are unaffected
	testutil.CreateTestVoter(t, conn, "bob", "password123")
	req = testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
		Username: "bob",
		Password: "password123",
	}, nil)
	w = httptest.NewRecorder()
	h.Login(w, req)
	testutil.AssertStatus(t, w, 200)
}

func TestLogin_SuccessClearsLockoutCounter(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewAuthHandler(conn, testutil.GetTestConfig())
	testutil.CreateTestVoter(t, conn, "alice", "password123")

	login := func(password string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
			Username: "alice",
			Password: password,
		}, nil)
		w := httptest.NewRecorder()
		h.Login(w, req)
		return w
	}

	for i := 0; i < rateguard.MaxFailures-1; i++ {
		testutil.AssertStatus(t, login("wrongpassword"), 401)
	}
	testutil.AssertStatus(t, login("password123"), 200)

	// The counter restarted; the next failure alone does not lock
	testutil.AssertStatus(t, login("wrongpassword"), 401)
	testutil.AssertStatus(t, login("password123"), 200)
}
