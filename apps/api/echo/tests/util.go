package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/eic-cefet/seminarios-v2-sub001/apps/api/echo"
	"github.com/eic-cefet/seminarios-v2-sub001/core"
	"github.com/eic-cefet/seminarios-v2-sub001/core/catalog"
	"github.com/eic-cefet/seminarios-v2-sub001/core/presence"
	"github.com/eic-cefet/seminarios-v2-sub001/core/registration"
	"github.com/eic-cefet/seminarios-v2-sub001/core/seminar"
	"github.com/eic-cefet/seminarios-v2-sub001/core/user"
	emailsvc "github.com/eic-cefet/seminarios-v2-sub001/services/email"
	logsvc "github.com/eic-cefet/seminarios-v2-sub001/services/logger"
	dummydb "github.com/eic-cefet/seminarios-v2-sub001/storage/database/dummy"
)

var (
	conf *core.Config

	usrRepo  user.Repository
	semRepo  seminar.Repository
	presRepo presence.Repository
	catRepo  catalog.Repository
	regRepo  registration.Repository

	initOnce   sync.Once
	validate   *validator.Validate
	translator ut.Translator

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", 0), conf)
	logger.Enable(false)

	initOnce.Do(func() {
		validate = validator.New()
		translator = newTranslator()
		core.InitValidators(validate, translator)
		user.InitValidators(validate, translator)
		core.ParseEmailTemplates(logger)
	})

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	semRepo = dummydb.NewSeminarRepository(db)
	presRepo = dummydb.NewPresenceLinkRepository(db)
	catRepo = dummydb.NewCatalogRepository(db)
	regRepo = dummydb.NewRegistrationRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	semSvc := seminar.NewService(semRepo)
	presSvc := presence.NewService(presRepo, conf)
	catSvc := catalog.NewService(catRepo, semRepo)
	regSvc := registration.NewServiceMock(regRepo, semRepo, presSvc, mailSvc, conf)

	// set up server
	return NewServer(
		&Options{
			Conf:            conf,
			Logger:          logger,
			DisableReqLogs:  true,
			UserSvc:         usrSvc,
			SeminarSvc:      semSvc,
			PresenceSvc:     presSvc,
			CatalogSvc:      catSvc,
			RegistrationSvc: regSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	return trans
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
