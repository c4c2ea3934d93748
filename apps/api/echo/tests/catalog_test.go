package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/eic-cefet/seminarios-v2-sub001/apps/api/echo"
	"github.com/eic-cefet/seminarios-v2-sub001/core/catalog"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
	testutil "github.com/eic-cefet/seminarios-v2-sub001/tests"
)

func Test_catalogApi_locations(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.br", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.br", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	// access control
	accessTests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff is not enough", token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range accessTests {
		tt.method = http.MethodGet
		tt.path = "/api/admin/locations"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// create
	req, rec := newAuthRequest(http.MethodPost, "/api/admin/locations", adminToken,
		marchallObj(t, catalog.NewLocation{Name: "Auditorium", Address: "Av. Maracanã 229", Capacity: 120}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var loc catalog.Location
	if err := json.Unmarshal(rec.Body.Bytes(), &loc); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if loc.ID == "" || loc.Capacity != 120 {
		t.Errorf("location = %+v", loc)
	}

	// retrieve & list
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/locations/"+loc.ID, adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, loc)}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/api/admin/locations", adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, loc)}, rec)

	// update
	req, rec = newAuthRequest(http.MethodPut, "/api/admin/locations/"+loc.ID, adminToken,
		marchallObj(t, catalog.NewLocation{Name: "Main Auditorium", Capacity: 150}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &loc); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if loc.Name != "Main Auditorium" || loc.Capacity != 150 {
		t.Errorf("location = %+v", loc)
	}

	// delete
	req, rec = newAuthRequest(http.MethodDelete, "/api/admin/locations/"+loc.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/locations/"+loc.ID, adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: catalog.ErrNotFound.Error()}),
	}, rec)
}

func Test_catalogApi_mergeSubjects(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.br", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.br", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	loc := testutil.CreateLocation(t, catRepo, "Auditorium")
	dup := testutil.CreateSubject(t, catRepo, "Computing")
	canonical := testutil.CreateSubject(t, catRepo, "Computer Science")

	// two seminars point at the duplicate subject
	now := time.Now().UTC()
	sem1 := testutil.CreateSeminar(t, semRepo, "One", "one", teacher.ID, loc.ID, now.Add(time.Hour), true)
	sem2 := testutil.CreateSeminar(t, semRepo, "Two", "two", teacher.ID, loc.ID, now.Add(2*time.Hour), true)
	for _, sem := range []seminar.Seminar{sem1, sem2} {
		sem.SubjectID = &dup.ID
		if _, err := semRepo.UpdateSeminar(context.Background(), sem); err != nil {
			t.Fatalf("UpdateSeminar() failed: %v", err)
		}
	}

	tests := []httpTest{
		{
			name: "into_id required", path: "/api/admin/subjects/" + dup.ID + "/merge", body: marchallObj(t, catalog.MergeSubjects{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"into_id": "this field is required"}),
		},
		{
			name: "self merge", path: "/api/admin/subjects/" + dup.ID + "/merge", body: marchallObj(t, catalog.MergeSubjects{IntoID: dup.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"into_id": catalog.ErrSelfMerge.Error()}),
		},
		{
			name: "unknown target", path: "/api/admin/subjects/" + dup.ID + "/merge", body: marchallObj(t, catalog.MergeSubjects{IntoID: loc.ID}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: catalog.ErrNotFound.Error()}),
		},
		{
			name: "merged", path: "/api/admin/subjects/" + dup.ID + "/merge", body: marchallObj(t, catalog.MergeSubjects{IntoID: canonical.ID}),
			wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.MergeSubjectsResponse{Moved: 2}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.token = adminToken

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the duplicate is gone and the seminars moved
	req, rec := newAuthRequest(http.MethodGet, "/api/admin/subjects/"+dup.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("merged subject still retrievable: code = %v", rec.Code)
	}
	for _, id := range []string{sem1.ID, sem2.ID} {
		sem, err := semRepo.GetSeminar(req.Context(), seminar.GetFilter{ID: id})
		if err != nil {
			t.Fatalf("GetSeminar() failed: %v", err)
		}
		if sem.SubjectID == nil || *sem.SubjectID != canonical.ID {
			t.Errorf("seminar %s subject = %v; want %s", id, sem.SubjectID, canonical.ID)
		}
	}
}

func Test_catalogApi_workshops(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.br", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	req, rec := newAuthRequest(http.MethodPost, "/api/admin/workshops", adminToken,
		marchallObj(t, catalog.NewWorkshop{Name: "Semana da Computação", Description: "Annual series"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var ws catalog.Workshop
	if err := json.Unmarshal(rec.Body.Bytes(), &ws); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/admin/workshops", adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, ws)}, rec)

	req, rec = newAuthRequest(http.MethodDelete, "/api/admin/workshops/"+ws.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
}
