// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Him70043/Online-Voting-System-sub000/models"
	"github.com/Him70043/Online-Voting-System-sub000/testutil"
)

func setupAdmin(t *testing.T) (*AdminHandler, *sql.DB) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	return NewAdminHandler(conn, testutil.GetTestConfig()), conn
}

func adminHeaders() map[string]string {
	return map[string]string{"X-Admin-Key": testutil.AdminKey()}
}

// insertAuditEntry seeds the audit log directly for listing and purge tests.
func insertAuditEntry(t *testing.T, conn *sql.DB, username, status string, submittedAt time.Time) {
	t.Helper()
	_, err := conn.Exec(`
		INSERT INTO audit_entry
			(id, username, question_id, submitted_at, source_address,
			 client_fingerprint, anomaly_score, status, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, uuid.NewString(), username, "q1", submittedAt, "src", "agent", 0.5, status, "success")
	if err != nil {
		t.Fatalf("failed to insert audit entry: %v", err)
	}
}

func TestAdminEndpoints_RequireKey(t *testing.T) {
	h, _ := setupAdmin(t)

	req := testutil.MakeRequest("POST", "/admin/questions", models.CreateQuestionRequest{
		Title: "Favorite language?",
	}, map[string]string{"X-Admin-Key": "wrong-key"})
	w := httptest.NewRecorder()
	h.CreateQuestion(w, req)

	testutil.AssertStatus(t, w, 401)
}

func TestCreateQuestion(t *testing.T) {
	h, conn := setupAdmin(t)

	req := testutil.MakeRequest("POST", "/admin/questions", models.CreateQuestionRequest{
		Title:       "Favorite language?",
		Description: "Pick one",
	}, adminHeaders())
	w := httptest.NewRecorder()
	h.CreateQuestion(w, req)

	testutil.AssertStatus(t, w, 201)

	var resp models.CreateQuestionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.QuestionID == "" {
		t.Fatal("empty question_id")
	}

	var status string
	if err := conn.QueryRow(`SELECT status FROM question WHERE id = $1`, resp.QuestionID).Scan(&status); err != nil {
		t.Fatalf("failed to query question: %v", err)
	}
	if status != models.StatusOpen {
		t.Errorf("new question status = %q, want %q", status, models.StatusOpen)
	}
}

func TestCreateQuestion_RequiresTitle(t *testing.T) {
	h, _ := setupAdmin(t)

	req := testutil.MakeRequest("POST", "/admin/questions", models.CreateQuestionRequest{}, adminHeaders())
	w := httptest.NewRecorder()
	h.CreateQuestion(w, req)

	testutil.AssertStatus(t, w, 400)
}

func TestAddOption(t *testing.T) {
	h, conn := setupAdmin(t)

	questionID := testutil.CreateTestQuestion(t, conn, "Favorite language?", models.StatusOpen)

	req := testutil.MakeRequest("POST", "/admin/questions/"+questionID+"/options",
		models.AddOptionRequest{DisplayName: "JAVA"}, adminHeaders())
	req.SetPathValue("id", questionID)
	w := httptest.NewRecorder()
	h.AddOption(w, req)

	testutil.AssertStatus(t, w, 201)

	var resp models.AddOptionResponse
	testutil.AssertJSON(t, w, &resp)
	if testutil.OptionCount(t, conn, resp.OptionID) != 0 {
		t.Error("new option does not start at zero")
	}
}

func TestAddOption_ClosedQuestion(t *testing.T) {
	h, conn := setupAdmin(t)

	questionID := testutil.CreateTestQuestion(t, conn, "Favorite language?", models.StatusClosed)

	req := testutil.MakeRequest("POST", "/admin/questions/"+questionID+"/options",
		models.AddOptionRequest{DisplayName: "JAVA"}, adminHeaders())
	req.SetPathValue("id", questionID)
	w := httptest.NewRecorder()
	h.AddOption(w, req)

	testutil.AssertStatus(t, w, 409)
}

func TestCloseQuestion(t *testing.T) {
	h, conn := setupAdmin(t)

	questionID := testutil.CreateTestQuestion(t, conn, "Favorite language?", models.StatusOpen)

	closeQuestion := func(id string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/admin/questions/"+id+"/close", nil, adminHeaders())
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		h.CloseQuestion(w, req)
		return w
	}

	testutil.AssertStatus(t, closeQuestion(questionID), 204)

	var status string
	if err := conn.QueryRow(`SELECT status FROM question WHERE id = $1`, questionID).Scan(&status); err != nil {
		t.Fatalf("failed to query question: %v", err)
	}
	if status != models.StatusClosed {
		t.Errorf("status = %q, want %q", status, models.StatusClosed)
	}

	// Closing again conflicts; closing a missing question is a 404
	testutil.AssertStatus(t, closeQuestion(questionID), 409)
	testutil.AssertStatus(t, closeQuestion("nonexistent"), 404)
}

func TestListVoters(t *testing.T) {
	h, conn := setupAdmin(t)

	testutil.CreateTestVoter(t, conn, "alice", "password123")
	testutil.CreateTestVoter(t, conn, "bob", "password123")

	req := testutil.MakeRequest("GET", "/admin/voters", nil, adminHeaders())
	w := httptest.NewRecorder()
	h.ListVoters(w, req)

	testutil.AssertStatus(t, w, 200)

	var voters []models.Voter
	testutil.AssertJSON(t, w, &voters)
	if len(voters) != 2 {
		t.Errorf("got %d voters, want 2", len(voters))
	}

	// Password hashes never appear in the response
	if strings.Contains(w.Body.String(), "password_hash") {
		t.Error("voter listing leaks password hashes")
	}
}

func TestDeactivateVoter(t *testing.T) {
	h, conn := setupAdmin(t)

	testutil.CreateTestVoter(t, conn, "alice", "password123")

	req := testutil.MakeRequest("DELETE", "/admin/voters/alice", nil, adminHeaders())
	req.SetPathValue("username", "alice")
	w := httptest.NewRecorder()
	h.DeactivateVoter(w, req)

	testutil.AssertStatus(t, w, 204)

	var active bool
	if err := conn.QueryRow(`SELECT active FROM voter WHERE username = $1`, "alice").Scan(&active); err != nil {
		t.Fatalf("failed to query voter: %v", err)
	}
	if active {
		t.Error("voter still active after deactivation")
	}

	req = testutil.MakeRequest("DELETE", "/admin/voters/ghost", nil, adminHeaders())
	req.SetPathValue("username", "ghost")
	w = httptest.NewRecorder()
	h.DeactivateVoter(w, req)
	testutil.AssertStatus(t, w, 404)
}

func TestResetTallies(t *testing.T) {
	h, conn := setupAdmin(t)
	voting := NewVotingHandler(conn, testutil.GetTestConfig())

	questionID := testutil.CreateTestQuestion(t, conn, "Favorite language?", models.StatusOpen)
	javaID := testutil.AddTestOption(t, conn, questionID, "JAVA")

	testutil.CreateTestVoter(t, conn, "alice", "password123")
	w := httptest.NewRecorder()
	voting.CastVote(w, castVoteRequest(questionID, javaID, testutil.SessionToken("alice")))
	testutil.AssertStatus(t, w, 201)

	req := testutil.MakeRequest("POST", "/admin/questions/"+questionID+"/reset", nil, adminHeaders())
	req.SetPathValue("id", questionID)
	w = httptest.NewRecorder()
	h.ResetTallies(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.ResetTalliesResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.VotesDeleted != 1 {
		t.Errorf("votes_deleted = %d, want 1", resp.VotesDeleted)
	}
	if testutil.OptionCount(t, conn, javaID) != 0 {
		t.Error("counter not zeroed by reset")
	}

	// After the reset the voter may cast again
	w = httptest.NewRecorder()
	voting.CastVote(w, castVoteRequest(questionID, javaID, testutil.SessionToken("alice")))
	testutil.AssertStatus(t, w, 201)
}

func TestListAudit(t *testing.T) {
	h, conn := setupAdmin(t)

	now := time.Now()
	insertAuditEntry(t, conn, "alice", models.AuditNormal, now)
	insertAuditEntry(t, conn, "bob", models.AuditFlagged, now)
	insertAuditEntry(t, conn, "carol", models.AuditNormal, now)

	req := testutil.MakeRequest("GET", "/admin/audit", nil, adminHeaders())
	w := httptest.NewRecorder()
	h.ListAudit(w, req)

	testutil.AssertStatus(t, w, 200)

	var entries []models.AuditEntry
	testutil.AssertJSON(t, w, &entries)
	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3", len(entries))
	}
	for _, e := range entries {
		if e.Age == "" {
			t.Error("entry missing humanized age")
			break
		}
	}

	// Flagged filter
	req = testutil.MakeRequest("GET", "/admin/audit?flagged=true", nil, adminHeaders())
	w = httptest.NewRecorder()
	h.ListAudit(w, req)

	testutil.AssertStatus(t, w, 200)
	testutil.AssertJSON(t, w, &entries)
	if len(entries) != 1 || entries[0].Username != "bob" {
		t.Errorf("flagged filter returned %+v, want only bob's entry", entries)
	}
}

func TestExportAudit(t *testing.T) {
	h, conn := setupAdmin(t)

	insertAuditEntry(t, conn, "alice", models.AuditNormal, time.Now())
	insertAuditEntry(t, conn, "bob", models.AuditFlagged, time.Now())

	req := testutil.MakeRequest("GET", "/admin/audit/export", nil, adminHeaders())
	w := httptest.NewRecorder()
	h.ExportAudit(w, req)

	testutil.AssertStatus(t, w, 200)
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	// Header plus one row per entry
	if len(records) != 3 {
		t.Fatalf("got %d CSV records, want 3", len(records))
	}
	if records[0][0] != "id" || records[0][1] != "username" {
		t.Errorf("unexpected CSV header: %v", records[0])
	}
}

func TestPurgeAudit(t *testing.T) {
	h, conn := setupAdmin(t)

	now := time.Now()
	insertAuditEntry(t, conn, "alice", models.AuditNormal, now.AddDate(0, 0, -120))
	insertAuditEntry(t, conn, "bob", models.AuditNormal, now.AddDate(0, 0, -10))
	insertAuditEntry(t, conn, "carol", models.AuditNormal, now)

	req := testutil.MakeRequest("POST", "/admin/audit/purge",
		models.PurgeAuditRequest{OlderThanDays: 30}, adminHeaders())
	w := httptest.NewRecorder()
	h.PurgeAudit(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.PurgeAuditResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.EntriesDeleted != 1 {
		t.Errorf("entries_deleted = %d, want 1", resp.EntriesDeleted)
	}

	var remaining int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM audit_entry`).Scan(&remaining); err != nil {
		t.Fatalf("failed to count audit entries: %v", err)
	}
	if remaining != 2 {
		t.Errorf("remaining entries = %d, want 2", remaining)
	}
}

func TestPurgeAudit_RejectsNegativeAge(t *testing.T) {
	h, _ := setupAdmin(t)

	req := testutil.MakeRequest("POST", "/admin/audit/purge",
		models.PurgeAuditRequest{OlderThanDays: -1}, adminHeaders())
	w := httptest.NewRecorder()
	h.PurgeAudit(w, req)

	testutil.AssertStatus(t, w, 400)
}
