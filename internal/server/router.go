// Package server assembles the HTTP router.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/formation-admin/internal/auth"
	"github.com/Jeomhps/formation-admin/internal/db"
	"github.com/Jeomhps/formation-admin/internal/handlers/common"
	"github.com/Jeomhps/formation-admin/internal/images"
	"github.com/Jeomhps/formation-admin/internal/middleware"
	"github.com/Jeomhps/formation-admin/internal/render"
	"github.com/Jeomhps/formation-admin/internal/store"

	authh "github.com/Jeomhps/formation-admin/internal/handlers/auth"
	"github.com/Jeomhps/formation-admin/internal/handlers/formations"
	imagesh "github.com/Jeomhps/formation-admin/internal/handlers/images"
	"github.com/Jeomhps/formation-admin/internal/handlers/pages"
	"github.com/Jeomhps/formation-admin/internal/handlers/professors"
)

// Deps are the process-wide resources built in main.
type Deps struct {
	DB      *db.DB
	Images  images.Store
	Tokens  *auth.TokenManager
	Logger  *slog.Logger
	Limiter middleware.Limiter // nil disables login throttling

	SecureCookies bool
	PublicBaseURL string
	StaticDir     string

	// TrustedProxies may set X-Forwarded-For; nil trusts none.
	TrustedProxies []string
}

func NewRouter(d Deps) *gin.Engine {
	common.UseJSONFieldNames()
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	// ClientIP keys the login limiter, so forwarded headers count only
	// from known proxies.
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		d.Logger.Error("trusted proxies", "err", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Logger))

	st := store.New(d.DB)
	authH := authh.New(st, d.Tokens, d.SecureCookies)
	formH := formations.New(st, render.NewMarkdown())
	profH := professors.New(st)
	imgH := imagesh.New(d.Images, d.PublicBaseURL)
	pageH := pages.New(d.StaticDir)

	// Public
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", middleware.RateLimit(d.Limiter), authH.Login)
	api.POST("/auth/logout", authH.Logout)
	api.GET("/auth/me", authH.Me)

	api.GET("/formations", formH.List)
	api.GET("/formations/:id", formH.Get)
	api.GET("/professors", profH.List)
	api.GET("/professors/:id", profH.Get)
	api.GET("/images/:id", imgH.Get)

	// Authenticated
	priv := api.Group("/")
	priv.Use(middleware.JWTAuth(d.Tokens))
	{
		priv.POST("/formations", formH.Create)
		priv.PUT("/formations", formH.Update)
		priv.DELETE("/formations", formH.Delete)
		priv.PUT("/formations/:id", formH.Update)
		priv.DELETE("/formations/:id", formH.Delete)

		priv.POST("/professors", profH.Create)
		priv.DELETE("/professors", profH.DeleteAll)
		priv.PUT("/professors/:id", profH.Update)
		priv.DELETE("/professors/:id", profH.Delete)

		priv.POST("/upload-images", imgH.Upload)
		priv.DELETE("/images/:id", imgH.Delete)
	}

	// Pages
	r.GET("/auth/login", pageH.Index)
	r.GET("/auth/register", pageH.Index)
	guarded := r.Group("/")
	guarded.Use(middleware.PageGuard(d.Tokens))
	{
		guarded.GET("/", pageH.Index)
		guarded.GET("/formations", pageH.Index)
		guarded.GET("/professors", pageH.Index)
	}
	if d.StaticDir != "" {
		r.Static("/assets", d.StaticDir+"/assets")
	}

	return r
}
