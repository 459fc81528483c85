package app

import (
	"time"

	"github.com/interview-replay/core/internal/middleware"
	"github.com/interview-replay/core/internal/modules/ai"
	"github.com/interview-replay/core/internal/modules/auth/user"
	"github.com/interview-replay/core/internal/modules/recording/bookmark"
	"github.com/interview-replay/core/internal/modules/recording/note"
	"github.com/interview-replay/core/internal/modules/recording/session"
	"github.com/interview-replay/core/internal/modules/sharing"
	"github.com/interview-replay/core/internal/modules/system/health"
	"github.com/interview-replay/core/internal/pkg/captcha"
	"github.com/interview-replay/core/internal/pkg/mail"
)

func (a *App) registerRoutes() {
	api := a.router.Group("/api/v1")
	api.Use(middleware.OptionalAuth(a.db))
	api.Use(middleware.RateLimit(a.rc.Raw()))
	api.Use(middleware.Idempotence(a.rc.Raw()))

	authMW := middleware.Auth(a.db)

	mailSender := mail.New(a.cfg.Mail)
	verifier := captcha.New(a.cfg.Captcha)

	userSvc := user.NewService(a.db, a.rc, mailSender, a.cfg.WebURL)
	user.NewHandler(userSvc, verifier, a.db).RegisterRoutes(api, authMW)

	sessionSvc := session.NewService(a.db, a.store,
		time.Duration(a.cfg.Media.SignedURLTTLMinutes)*time.Minute)
	session.NewHandler(sessionSvc, int64(a.cfg.Media.MaxUploadMB)).RegisterRoutes(api, authMW)

	bookmarkSvc := bookmark.NewService(a.db)
	bookmark.NewHandler(bookmarkSvc).RegisterRoutes(api, authMW)

	noteSvc := note.NewService(a.db)
	note.NewHandler(noteSvc).RegisterRoutes(api, authMW)

	invoker := ai.NewProviderInvoker(a.db, a.cfg.AI, a.store)
	aiSvc := ai.NewService(a.db, invoker, a.logger)
	ai.NewHandler(aiSvc, a.cfg.AI).RegisterRoutes(api, authMW)
	a.aiSvc = aiSvc

	sharingSvc := sharing.NewService(a.db)
	sharing.NewHandler(sharingSvc, sessionSvc, bookmarkSvc, noteSvc, aiSvc,
		time.Duration(a.cfg.Media.ShareSignedURLTTLMinutes)*time.Minute).RegisterRoutes(api, authMW)
	a.sharingSvc = sharingSvc

	health.NewHandler(a.db, a.rc, a.sched).RegisterRoutes(api, authMW)
}
