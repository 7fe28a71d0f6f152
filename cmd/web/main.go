package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"foroline.gr/foroline-web/internal/backend"
	"foroline.gr/foroline-web/internal/cms"
	"foroline.gr/foroline-web/internal/config"
	"foroline.gr/foroline-web/internal/i18n"
	mw "foroline.gr/foroline-web/internal/middleware"
	"foroline.gr/foroline-web/internal/observability"
	"foroline.gr/foroline-web/internal/reconcile"
)

var (
	appCfg       config.Config
	zlog         *zap.Logger
	i18nBundle   *i18n.Bundle
	apiClient    *backend.Client
	contentStore *cms.Store
	reconciler   *reconcile.Reconciler
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	appCfg = cfg
	zlog = logger

	i18nBundle, err = i18n.Load(cfg.Content.LocalesDir, cfg.Content.Fallback, cfg.Content.Locales)
	if err != nil {
		zlog.Fatal("load locales", zap.Error(err))
	}
	mw.ConfigureSessions(cfg.Session.SigningKey, cfg.Session.Secure)
	apiClient = backend.NewClient(cfg.Backend.BaseURL)
	contentStore = cms.NewStore(cfg.Content.ContentDir, cfg.Content.Fallback)
	reconciler = reconcile.New(apiClient)

	templatesDir = cfg.Content.TemplatesDir
	publicDir = cfg.Content.PublicDir
	devMode = cfg.DevMode
	if !devMode {
		tc, err := parseTemplates()
		if err != nil {
			zlog.Fatal("parse templates", zap.Error(err))
		}
		tmplCache = tc
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	zlog.Info("web listening",
		zap.String("addr", cfg.Server.Addr),
		zap.Bool("dev_mode", devMode),
		zap.Bool("mock_backend", cfg.Backend.BaseURL == ""),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("listen", zap.Error(err))
	}
}

func newRouter(cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// Behind the load balancer RealIP trusts X-Forwarded-For; only trusted
	// proxies may set it in production.
	r.Use(chimw.RealIP)
	r.Use(mw.Session)
	r.Use(mw.Locale(i18nBundle))
	r.Use(mw.Auth(cfg.Auth.TokenCookie))
	r.Use(mw.CSRF)
	r.Use(mw.VaryLocale)
	r.Use(mw.Logger(zlog))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(publicDir+"/assets"))
	r.Handle("/assets/*", assets)

	r.Get("/", HomeHandler)

	r.Get("/order", OrderPageHandler)
	r.Post("/order", OrderSubmitHandler)
	r.Post("/order/confirm", OrderConfirmHandler)
	r.Post("/order/cancel", OrderCancelHandler)
	r.Get("/order/success", OrderSuccessHandler)
	r.Get("/order/fail", OrderFailHandler)

	r.Get("/auth/callback", AuthCallbackHandler)
	r.Post("/logout", LogoutHandler)

	r.Get("/profile", ProfileHandler)
	r.Get("/guide", GuideHandler)
	r.Get("/legal/{slug}", LegalPageHandler)
	r.Get("/contact", ContactHandler)

	r.NotFound(NotFoundHandler)
	return r
}
