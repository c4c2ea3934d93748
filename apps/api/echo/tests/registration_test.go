package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
	emailsvc "github.com/eic-cefet/seminarios-v2-sub001/services/email"
	testutil "github.com/eic-cefet/seminarios-v2-sub001/tests"
)

func Test_registrationApi_register(t *testing.T) {
	app := setup(t)
	emailsvc.ClearSentMessages()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.br", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.br", "", []string{user.RoleUser}, true)
	loc := testutil.CreateLocation(t, catRepo, "Auditorium")

	now := time.Now().UTC()
	open := testutil.CreateSeminar(t, semRepo, "Open", "open", teacher.ID, loc.ID, now.Add(time.Hour), true)
	closed := testutil.CreateSeminar(t, semRepo, "Closed", "closed", teacher.ID, loc.ID, now.Add(time.Hour), false)

	token := getToken(t, student)

	tests := []httpTest{
		{name: "Auth required", path: "/api/seminars/" + open.ID + "/register", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Closed seminar", path: "/api/seminars/" + closed.ID + "/register", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: registration.ErrSeminarClosed.Error()}),
		},
		{
			name: "Unknown seminar", path: "/api/seminars/" + student.ID + "/register", token: token,
			wantCode: http.StatusNotFound,
		},
		{name: "Registered", path: "/api/seminars/" + open.ID + "/register", token: token, wantCode: http.StatusCreated},
		{
			name: "Duplicate registration", path: "/api/seminars/" + open.ID + "/register", token: token,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: registration.ErrAlreadyRegistered.Error()}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.name == "Registered" {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var reg registration.Registration
				if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if reg.SeminarID != open.ID || reg.UserID != student.ID {
					t.Errorf("registration = %+v; want seminar %q user %q", reg, open.ID, student.ID)
				}
				if reg.Attended() {
					t.Error("new registration must not be attended")
				}

				// confirmation mail went out
				msgs := emailsvc.GetSentMessages()
				if len(msgs) != 1 {
					t.Fatalf("sent messages = %d; want 1", len(msgs))
				}
				if want := "Registration confirmed: " + open.Name; !strings.Contains(msgs[0].Subject, want) {
					t.Errorf("subject = %q; want contains %q", msgs[0].Subject, want)
				}
				return
			}
			if tt.name == "Unknown seminar" {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_registrationApi_cancel(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.br", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.br", "", []string{user.RoleUser}, true)
	loc := testutil.CreateLocation(t, catRepo, "Auditorium")
	sem := testutil.CreateSeminar(t, semRepo, "Open", "open", teacher.ID, loc.ID, time.Now().UTC().Add(time.Hour), true)
	testutil.CreateRegistration(t, regRepo, sem.ID, student.ID)

	token := getToken(t, student)

	// cancel
	req, rec := newAuthRequest(http.MethodDelete, "/api/seminars/"+sem.ID+"/register", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	// cancelling again is an error
	req, rec = newAuthRequest(http.MethodDelete, "/api/seminars/"+sem.ID+"/register", token)
	app.ServeHTTP(rec, req)
	tt := httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: registration.ErrNotRegistered.Error()}),
	}
	checkCodeAndData(t, tt, rec)
}

func Test_registrationApi_queryMine(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.br", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.br", "", []string{user.RoleUser}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.br", "", []string{user.RoleUser}, true)
	loc := testutil.CreateLocation(t, catRepo, "Auditorium")

	now := time.Now().UTC()
	sem1 := testutil.CreateSeminar(t, semRepo, "One", "one", teacher.ID, loc.ID, now.Add(time.Hour), true)
	sem2 := testutil.CreateSeminar(t, semRepo, "Two", "two", teacher.ID, loc.ID, now.Add(2*time.Hour), true)

	reg1 := testutil.CreateRegistration(t, regRepo, sem1.ID, student.ID)
	reg2 := testutil.CreateRegistration(t, regRepo, sem2.ID, student.ID)
	testutil.CreateRegistration(t, regRepo, sem1.ID, other.ID)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Own registrations only", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallList(t, reg1, reg2)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/me/registrations"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_presenceApi_checkInFlow(t *testing.T) {
	app := setup(t)
	emailsvc.ClearSentMessages()

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.br", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.br", "", []string{user.RoleUser}, true)
	stranger := testutil.CreateUser(t, usrRepo, "Stranger", "stranger", "stranger@test.br", "", []string{user.RoleUser}, true)
	loc := testutil.CreateLocation(t, catRepo, "Auditorium")
	sem := testutil.CreateSeminar(t, semRepo, "Live", "live", teacher.ID, loc.ID, time.Now().UTC().Add(time.Hour), true)
	testutil.CreateRegistration(t, regRepo, sem.ID, student.ID)

	teacherToken := getToken(t, teacher)
	studentToken := getToken(t, student)

	// teacher creates the link
	req, rec := newAuthRequest(http.MethodPost, "/api/admin/seminars/"+sem.ID+"/presence-link", teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create link failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var pl presence.PresenceLink
	if err := json.Unmarshal(rec.Body.Bytes(), &pl); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	scanPath := "/api/presence/" + pl.UUID

	// scanning before activation reports the link inactive
	req, rec = newRequest(http.MethodGet, scanPath)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: presence.ErrLinkInactive.Error()}),
	}, rec)

	// the QR code still renders for an inactive link
	req, rec = newRequest(http.MethodGet, scanPath+"/qr.png")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("qr.png: code = %v; want %v", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("qr.png content type = %q; want %q", got, "image/png")
	}

	// unknown tokens do not render
	req, rec = newRequest(http.MethodGet, "/api/presence/nope/qr.png")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown qr.png: code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// activate
	req, rec = newAuthRequest(http.MethodPatch, "/api/admin/seminars/"+sem.ID+"/presence-link/toggle", teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	// the scan now validates
	req, rec = newRequest(http.MethodGet, scanPath)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("scan failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	// check-in requires auth
	req, rec = newRequest(http.MethodPost, scanPath+"/check-in")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	// an unregistered user cannot check in
	req, rec = newAuthRequest(http.MethodPost, scanPath+"/check-in", getToken(t, stranger))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: registration.ErrNotRegistered.Error()}),
	}, rec)

	// the registered student checks in
	req, rec = newAuthRequest(http.MethodPost, scanPath+"/check-in", studentToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("check-in failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var reg registration.Registration
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if !reg.Attended() {
		t.Fatal("registration must be attended after check-in")
	}
	attendedAt := *reg.AttendedAt

	// a certificate was issued and mailed
	msgs := emailsvc.GetSentMessages()
	if len(msgs) != 1 {
		t.Fatalf("sent messages = %d; want 1", len(msgs))
	}
	if want := "Your certificate: " + sem.Name; msgs[0].Subject != want {
		t.Errorf("subject = %q; want %q", msgs[0].Subject, want)
	}

	// re-scanning is idempotent
	req, rec = newAuthRequest(http.MethodPost, scanPath+"/check-in", studentToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("second check-in failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if !reg.AttendedAt.Equal(attendedAt) {
		t.Errorf("attended_at changed on re-scan: %v != %v", reg.AttendedAt, attendedAt)
	}
	if msgs := emailsvc.GetSentMessages(); len(msgs) != 1 {
		t.Errorf("sent messages after re-scan = %d; want 1", len(msgs))
	}

	// deactivate; scans report the link inactive again
	req, rec = newAuthRequest(http.MethodPatch, "/api/admin/seminars/"+sem.ID+"/presence-link/toggle", teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	req, rec = newRequest(http.MethodGet, scanPath)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: presence.ErrLinkInactive.Error()}),
	}, rec)
}

func Test_registrationApi_certificateBySerial(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Teacher", "teacher", "teacher@test.br", "", []string{user.RoleTeacher}, true)
	student := testutil.CreateUser(t, usrRepo, "Student", "student", "student@test.br", "", []string{user.RoleUser}, true)
	loc := testutil.CreateLocation(t, catRepo, "Auditorium")
	sem := testutil.CreateSeminar(t, semRepo, "Live", "live", teacher.ID, loc.ID, time.Now().UTC().Add(time.Hour), true)
	testutil.CreateRegistration(t, regRepo, sem.ID, student.ID)

	// create and activate the link, then check in
	req, rec := newAuthRequest(http.MethodPost, "/api/admin/seminars/"+sem.ID+"/presence-link", getToken(t, teacher))
	app.ServeHTTP(rec, req)
	var pl presence.PresenceLink
	if err := json.Unmarshal(rec.Body.Bytes(), &pl); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	req, rec = newAuthRequest(http.MethodPatch, "/api/admin/seminars/"+sem.ID+"/presence-link/toggle", getToken(t, teacher))
	app.ServeHTTP(rec, req)
	req, rec = newAuthRequest(http.MethodPost, "/api/presence/"+pl.UUID+"/check-in", getToken(t, student))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("check-in failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var reg registration.Registration
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}

	cert, err := regRepo.GetCertificate(req.Context(), registration.CertificateGetFilter{RegistrationID: reg.ID})
	if err != nil {
		t.Fatalf("GetCertificate() failed: %v", err)
	}
	if !strings.HasPrefix(cert.Serial, "CERT-") {
		t.Errorf("serial = %q; want CERT- prefix", cert.Serial)
	}

	// anyone can verify a certificate by serial; lookup is case-insensitive
	for _, serial := range []string{cert.Serial, strings.ToLower(cert.Serial)} {
		req, rec = newRequest(http.MethodGet, "/api/certificates/"+serial)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, cert)}, rec)
	}

	// unknown serials are not found
	req, rec = newRequest(http.MethodGet, "/api/certificates/CERT-XXXX-YYYYYYYY")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: registration.ErrCertificateNotFound.Error()}),
	}, rec)
}
