package echoapi

import (
	"bytes"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"

	"github.com/thaimooc/platform/core"
	"github.com/thaimooc/platform/core/content"
	"github.com/thaimooc/platform/core/course"
	"github.com/thaimooc/platform/core/institution"
	"github.com/thaimooc/platform/core/site"
	"github.com/thaimooc/platform/core/support"
	"github.com/thaimooc/platform/core/user"
	emailsvc "github.com/thaimooc/platform/services/email"
	dummydb "github.com/thaimooc/platform/storage/database/dummy"
	"github.com/thaimooc/platform/storage/files"
)

var (
	app  *Server
	conf *core.Config

	instSvc    *institution.Service
	courseSvc  *course.Service
	contentSvc *content.Service
	usrSvc     *user.Service
)

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(msg string, _ ...interface{}) {
	log.Fatal(msg)
}

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:         true,
		AppName:          "ThaiMOOC",
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Address: "noreply@test.local"},
		SupportEmail:     "support@test.local",
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	logger := testLogger{}

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(core.Validate, translator)
	user.InitValidators(core.Validate, translator)
	core.ParseEmailTemplates(logger)

	db, _ := dummydb.Open()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	instSvc = institution.NewService(dummydb.NewInstitutionRepository(db), logger, conf)
	courseSvc = course.NewService(dummydb.NewCourseRepository(db), logger)
	contentSvc = content.NewService(dummydb.NewContentRepository(db), logger)
	supportSvc := support.NewService(dummydb.NewSupportRepository(db), mailSvc, conf, logger)
	usrSvc = user.NewService(dummydb.NewUserRepository(db), mailSvc, conf, logger)
	assembler := site.NewAssembler(instSvc, courseSvc, contentSvc, logger)

	uploadsDir, err := ioutil.TempDir("", "uploads")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(uploadsDir) }()

	fileStore, err := files.NewLocalStore(uploadsDir)
	if err != nil {
		log.Fatal(err)
	}

	app = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		InstitutionSvc: instSvc,
		CourseSvc:      courseSvc,
		ContentSvc:     contentSvc,
		SupportSvc:     supportSvc,
		UserSvc:        usrSvc,
		Assembler:      assembler,
		Files:          fileStore,
	})

	os.Exit(m.Run())
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
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}
