package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func registerAndLogin(t *testing.T, e *echo.Echo, mailer *captureMailer, email string) *http.Cookie {
	t.Helper()

	doJSON(e, http.MethodPost, "/otps", `{"email":"`+email+`"}`, nil)
	doJSON(e, http.MethodPost, "/users/register",
		`{"email":"`+email+`","password":"pw1","otp":"`+mailer.lastCode+`","fullName":"A"}`, nil)
	rec := doJSON(e, http.MethodPost, "/users/login", `{"email":"`+email+`","password":"pw1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login for %s = %d, body %s", email, rec.Code, rec.Body.String())
	}
	return sessionCookieFrom(t, rec)
}

func TestTasksRequireSession(t *testing.T) {
	e, _, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/tasks"},
		{http.MethodGet, "/tasks"},
		{http.MethodPatch, "/tasks/" + uuid.NewString()},
		{http.MethodDelete, "/tasks/" + uuid.NewString()},
	}
	for _, p := range paths {
		rec := doJSON(e, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without cookie = %d, want 401", p.method, p.path, rec.Code)
		}
	}

	garbage := &http.Cookie{Name: SessionCookieName, Value: "not-a-token"}
	rec := doJSON(e, http.MethodGet, "/tasks", "", []*http.Cookie{garbage})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /tasks with garbage cookie = %d, want 401", rec.Code)
	}
}

func TestTaskListPriorityFilterOverHTTP(t *testing.T) {
	e, mailer, _ := newTestServer(t)
	cookie := registerAndLogin(t, e, mailer, "a@b.com")

	doJSON(e, http.MethodPost, "/tasks", `{"taskTitle":"urgent one","assignee":"c@d.com","priority":"Urgent"}`, []*http.Cookie{cookie})
	doJSON(e, http.MethodPost, "/tasks", `{"taskTitle":"normal one","assignee":"c@d.com"}`, []*http.Cookie{cookie})

	rec := doJSON(e, http.MethodGet, "/tasks?priority=Urgent", "", []*http.Cookie{cookie})
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /tasks?priority=Urgent = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Count int `json:"count"`
			Tasks []struct {
				TaskTitle string `json:"taskTitle"`
			} `json:"tasks"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Count != 1 || len(body.Data.Tasks) != 1 || body.Data.Tasks[0].TaskTitle != "urgent one" {
		t.Fatalf("unexpected filtered list %+v", body.Data)
	}

	rec = doJSON(e, http.MethodGet, "/tasks?priority=Critical", "", []*http.Cookie{cookie})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown priority filter = %d, want 400", rec.Code)
	}
}

func TestTaskUpdateAndDeleteOverHTTP(t *testing.T) {
	e, mailer, _ := newTestServer(t)
	cookie := registerAndLogin(t, e, mailer, "a@b.com")

	rec := doJSON(e, http.MethodPost, "/tasks", `{"taskTitle":"x","assignee":"c@d.com"}`, []*http.Cookie{cookie})
	var created struct {
		Data struct {
			Task struct {
				ID string `json:"id"`
			} `json:"task"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doJSON(e, http.MethodPatch, "/tasks/"+created.Data.Task.ID, `{"status":"done"}`, []*http.Cookie{cookie})
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH /tasks/:taskId = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPatch, "/tasks/not-a-uuid", `{"status":"done"}`, []*http.Cookie{cookie})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PATCH with malformed id = %d, want 400", rec.Code)
	}

	rec = doJSON(e, http.MethodPatch, "/tasks/"+uuid.NewString(), `{"status":"done"}`, []*http.Cookie{cookie})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PATCH unknown task = %d, want 400", rec.Code)
	}

	rec = doJSON(e, http.MethodDelete, "/tasks/"+created.Data.Task.ID, "", []*http.Cookie{cookie})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE /tasks/:taskId = %d, want 204", rec.Code)
	}

	rec = doJSON(e, http.MethodDelete, "/tasks/"+created.Data.Task.ID, "", []*http.Cookie{cookie})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second DELETE = %d, want 400", rec.Code)
	}
}

func TestTaskCreateBadDeadlineOverHTTP(t *testing.T) {
	e, mailer, _ := newTestServer(t)
	cookie := registerAndLogin(t, e, mailer, "a@b.com")

	rec := doJSON(e, http.MethodPost, "/tasks", `{"taskTitle":"x","assignee":"c@d.com","deadline":"next tuesday"}`, []*http.Cookie{cookie})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create with malformed deadline = %d, want 400", rec.Code)
	}
}
