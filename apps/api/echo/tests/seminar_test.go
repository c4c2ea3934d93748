package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
	testutil "github.com/eic-cefet/seminarios-v2-sub001/tests"
)

func Test_seminarApi_create(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.br", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.br", "", []string{user.RoleUser}, true)
	loc := testutil.CreateLocation(t, catRepo, "Auditorium")

	scheduledAt := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	body := marchallObj(t, seminar.NewSeminar{
		Name:        "Intro to Compilers",
		Description: "A gentle introduction",
		ScheduledAt: scheduledAt,
		Room:        "E-201",
		LocationID:  loc.ID,
	})

	tests := []httpTest{
		{name: "Auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff required", body: body, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", body: marchallObj(t, seminar.NewSeminar{}), token: getToken(t, teacher),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":         "this field is required",
				"scheduled_at": "this field is required",
				"location_id":  "this field is required",
			}),
		},
		{name: "Teacher can create", body: body, token: getToken(t, teacher), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/admin/seminars"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var sem seminar.Seminar
				if err := json.Unmarshal(rec.Body.Bytes(), &sem); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if sem.Slug != "intro-to-compilers" {
					t.Errorf("slug = %q; want %q", sem.Slug, "intro-to-compilers")
				}
				if sem.CreatedBy != teacher.ID {
					t.Errorf("created_by = %q; want %q", sem.CreatedBy, teacher.ID)
				}
				if !sem.Active() {
					t.Error("new seminar must start active")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_seminarApi_slugConflictGetsSuffix(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.br", "", []string{user.RoleTeacher}, true)
	loc := testutil.CreateLocation(t, catRepo, "Auditorium")
	testutil.CreateSeminar(t, semRepo, "Go Workshop", "go-workshop", teacher.ID, loc.ID, time.Now().UTC().Add(time.Hour), true)

	body := marchallObj(t, seminar.NewSeminar{
		Name:        "Go Workshop",
		ScheduledAt: time.Now().UTC().Add(72 * time.Hour),
		LocationID:  loc.ID,
	})
	req, rec := newAuthRequest(http.MethodPost, "/api/admin/seminars", getToken(t, teacher), body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var sem seminar.Seminar
	if err := json.Unmarshal(rec.Body.Bytes(), &sem); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if sem.Slug != "go-workshop-2" {
		t.Errorf("slug = %q; want %q", sem.Slug, "go-workshop-2")
	}
}

func Test_seminarApi_ownership(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner", "owner@test.br", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.br", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.br", "", []string{user.RoleAdmin}, true)
	loc := testutil.CreateLocation(t, catRepo, "Lab 3")

	sem := testutil.CreateSeminar(t, semRepo, "Owned", "owned", owner.ID, loc.ID, time.Now().UTC().Add(time.Hour), true)
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{name: "Owner can retrieve", method: http.MethodGet, path: "/api/admin/seminars/" + sem.ID, token: getToken(t, owner), wantCode: http.StatusOK, wantData: marchallObj(t, sem)},
		{name: "Admin can retrieve", method: http.MethodGet, path: "/api/admin/seminars/" + sem.ID, token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, sem)},
		{name: "Other teacher cannot retrieve", method: http.MethodGet, path: "/api/admin/seminars/" + sem.ID, token: getToken(t, other), wantCode: http.StatusForbidden, wantData: forbidden},
		{
			name: "Other teacher cannot update", method: http.MethodPut, path: "/api/admin/seminars/" + sem.ID, token: getToken(t, other),
			body: marchallObj(t, seminar.UpdateSeminar{Name: "Hijacked"}), wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{name: "Other teacher cannot delete", method: http.MethodDelete, path: "/api/admin/seminars/" + sem.ID, token: getToken(t, other), wantCode: http.StatusForbidden, wantData: forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_seminarApi_query(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner", "owner@test.br", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.br", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.br", "", []string{user.RoleAdmin}, true)
	loc := testutil.CreateLocation(t, catRepo, "Lab 3")

	now := time.Now().UTC()
	sem1 := testutil.CreateSeminar(t, semRepo, "Alpha", "alpha", owner.ID, loc.ID, now.Add(time.Hour), true)
	sem2 := testutil.CreateSeminar(t, semRepo, "Beta", "beta", other.ID, loc.ID, now.Add(2*time.Hour), true)

	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Owner sees own only", path: "/api/admin/seminars", token: getToken(t, owner), wantData: marchallList(t, sem1)},
		{name: "Other sees own only", path: "/api/admin/seminars", token: getToken(t, other), wantData: marchallList(t, sem2)},
		{name: "Admin sees all", path: "/api/admin/seminars", token: getToken(t, admin), wantData: marchallList(t, sem2, sem1)},
		{name: "search (unknown)", path: "/api/admin/seminars?search=lol", token: getToken(t, admin), wantData: empty},
		{name: "search=alp", path: "/api/admin/seminars?search=alp", token: getToken(t, admin), wantData: marchallList(t, sem1)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_seminarApi_softDeleteAndRestore(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner", "owner@test.br", "", []string{user.RoleTeacher}, true)
	loc := testutil.CreateLocation(t, catRepo, "Lab 3")
	sem := testutil.CreateSeminar(t, semRepo, "Gone", "gone", owner.ID, loc.ID, time.Now().UTC().Add(time.Hour), true)
	token := getToken(t, owner)

	// delete
	req, rec := newAuthRequest(http.MethodDelete, "/api/admin/seminars/"+sem.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	// it is gone from the default listing
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/seminars/"+sem.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("retrieve after delete: code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// and from the public listing
	req, rec = newRequest(http.MethodGet, "/api/seminars/open/"+sem.Slug)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("public retrieve after delete: code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// restore brings it back
	req, rec = newAuthRequest(http.MethodPost, "/api/admin/seminars/"+sem.ID+"/restore", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var restored seminar.Seminar
	if err := json.Unmarshal(rec.Body.Bytes(), &restored); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if restored.DeletedAt != nil {
		t.Error("restored seminar still carries a deletion stamp")
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/admin/seminars/"+sem.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("retrieve after restore: code = %v; want %v", rec.Code, http.StatusOK)
	}
}

func Test_seminarApi_publicBrowsing(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner", "owner@test.br", "", []string{user.RoleTeacher}, true)
	loc := testutil.CreateLocation(t, catRepo, "Lab 3")

	now := time.Now().UTC()
	open := testutil.CreateSeminar(t, semRepo, "Open", "open", owner.ID, loc.ID, now.Add(time.Hour), true)
	testutil.CreateSeminar(t, semRepo, "Draft", "draft", owner.ID, loc.ID, now.Add(2*time.Hour), false)

	tests := []httpTest{
		{name: "only open seminars listed", method: http.MethodGet, path: "/api/seminars/open", wantCode: http.StatusOK, wantData: marchallList(t, open)},
		{name: "retrieve by slug", method: http.MethodGet, path: "/api/seminars/open/open", wantCode: http.StatusOK, wantData: marchallObj(t, open)},
		{name: "retrieve by id", method: http.MethodGet, path: "/api/seminars/open/" + open.ID, wantCode: http.StatusOK, wantData: marchallObj(t, open)},
		{
			name: "inactive seminar hidden", method: http.MethodGet, path: "/api/seminars/open/draft",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: seminar.ErrNotFound.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_seminarApi_presenceLink(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner", "owner@test.br", "", []string{user.RoleTeacher}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.br", "", []string{user.RoleTeacher}, true)
	loc := testutil.CreateLocation(t, catRepo, "Lab 3")
	sem := testutil.CreateSeminar(t, semRepo, "Linked", "linked", owner.ID, loc.ID, time.Now().UTC().Add(time.Hour), true)

	token := getToken(t, owner)
	base := "/api/admin/seminars/" + sem.ID + "/presence-link"

	// no link yet; data is null
	req, rec := newAuthRequest(http.MethodGet, base, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("retrieve failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data *json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if resp.Data != nil {
		t.Errorf("data = %s; want null", *resp.Data)
	}

	// other teachers cannot see it
	req, rec = newAuthRequest(http.MethodGet, base, getToken(t, other))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("other teacher: code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// create
	req, rec = newAuthRequest(http.MethodPost, base, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var pl presence.PresenceLink
	if err := json.Unmarshal(rec.Body.Bytes(), &pl); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if pl.UUID == "" {
		t.Error("created link has no uuid")
	}
	if pl.Active {
		t.Error("new link must start inactive")
	}
	wantExpiry := sem.ScheduledAt.Add(4 * time.Hour)
	if !pl.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expires_at = %v; want %v", pl.ExpiresAt, wantExpiry)
	}

	// a second link is a conflict
	req, rec = newAuthRequest(http.MethodPost, base, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second create: code = %v; want %v", rec.Code, http.StatusConflict)
	}

	// toggle on
	req, rec = newAuthRequest(http.MethodPatch, base+"/toggle", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &pl); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if !pl.Active {
		t.Error("link must be active after toggle")
	}
	if !pl.IsValid {
		t.Error("active unexpired link must be valid")
	}
	if pl.URL == "" || pl.PNGURL == "" || pl.QRCode == "" {
		t.Error("active link must carry scan URLs and a QR code")
	}

	// toggle off
	req, rec = newAuthRequest(http.MethodPatch, base+"/toggle", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &pl); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if pl.Active {
		t.Error("link must be inactive after second toggle")
	}
}
