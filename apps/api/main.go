package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/thaimooc/platform/apps/api/echo"
	"github.com/thaimooc/platform/core"
	"github.com/thaimooc/platform/core/content"
	"github.com/thaimooc/platform/core/course"
	"github.com/thaimooc/platform/core/institution"
	"github.com/thaimooc/platform/core/site"
	"github.com/thaimooc/platform/core/support"
	"github.com/thaimooc/platform/core/user"
	emailsvc "github.com/thaimooc/platform/services/email"
	logsvc "github.com/thaimooc/platform/services/logger"
	"github.com/thaimooc/platform/storage/database"
	sqlxrepos "github.com/thaimooc/platform/storage/database/sqlx"
	"github.com/thaimooc/platform/storage/files"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	instSvc := institution.NewService(sqlxrepos.NewInstitutionRepository(db), logger, conf)
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(db), logger)
	contentSvc := content.NewService(sqlxrepos.NewContentRepository(db), logger)
	supportSvc := support.NewService(sqlxrepos.NewSupportRepository(db), mailSvc, conf, logger)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf, logger)
	assembler := site.NewAssembler(instSvc, courseSvc, contentSvc, logger)

	// set up uploaded-asset storage
	fileStore, err := setUpFileStore(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	translator := newTranslator()
	core.InitValidators(core.Validate, translator)
	user.InitValidators(core.Validate, translator)

	core.ParseEmailTemplates(logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			InstitutionSvc: instSvc,
			CourseSvc:      courseSvc,
			ContentSvc:     contentSvc,
			SupportSvc:     supportSvc,
			UserSvc:        usrSvc,
			Assembler:      assembler,
			Files:          fileStore,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func setUpFileStore(conf *core.Config, logger core.Logger) (core.FileStore, error) {
	store, err := files.NewLocalStore(conf.Uploads.Root)
	if err != nil {
		return nil, err
	}
	if conf.Uploads.SFTP.Enabled {
		store = files.NewSFTPMirror(store, files.SFTPConfig{
			Addr:     conf.Uploads.SFTP.Addr,
			User:     conf.Uploads.SFTP.User,
			Password: conf.Uploads.SFTP.Password,
			Dir:      conf.Uploads.SFTP.Dir,
		}, logger)
	}
	return store, nil
}
