// Package routing wires the HTTP routes to their handlers and middleware.
package routing

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/badili/odk-dashboard3/internal/config"
	"github.com/badili/odk-dashboard3/internal/handlers"
	"github.com/badili/odk-dashboard3/internal/managers"
	"github.com/badili/odk-dashboard3/internal/middleware"
	"github.com/badili/odk-dashboard3/internal/schemas"
)

const apiName = "ODK Dashboard API"

// InitRouter builds the gin engine with the common middleware and all routes.
func InitRouter(databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr,
	tokenMgr managers.TokenMgr, cfg *config.Config) *gin.Engine {
	router := gin.New()
	setupCommonMiddleware(router)
	setupRoutes(router, databaseMgr, mailMgr, jwtMgr, tokenMgr, cfg)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(middleware.InjectTrace())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "Origin"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr,
	jwtMgr managers.JWTMgr, tokenMgr managers.TokenMgr, cfg *config.Config) {
	// Version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := os.Getenv("API_VERSION")
		if apiVersion == "" {
			apiVersion = "main:latest"
		}

		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    apiName,
			SiteName:   cfg.SiteName,
		}
		c.JSON(http.StatusOK, metadata)
	})

	// Health route
	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.GetPool().Ping(c.Request.Context()); err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	api := router.Group("/api")
	{
		users := api.Group("/users")
		userRoutes(users, databaseMgr, mailMgr, jwtMgr, tokenMgr, cfg)

		settings := api.Group("/settings")
		settings.Use(jwtMgr.JWTMiddleware(databaseMgr))
		settingsRoutes(settings, databaseMgr)
	}
}

func userRoutes(users *gin.RouterGroup, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr,
	jwtMgr managers.JWTMgr, tokenMgr managers.TokenMgr, cfg *config.Config) {
	authHdl := handlers.NewAuthHandler(databaseMgr, jwtMgr, mailMgr, tokenMgr, cfg)

	users.POST("", middleware.ValidateAndSanitizeStruct[schemas.RegistrationRequest](), authHdl.RegisterUser)
	users.GET("/activate/:uid/:token", authHdl.ActivateUser)
	users.POST("/:username/activation", authHdl.ResendActivation)
	users.POST("/login", middleware.ValidateAndSanitizeStruct[schemas.LoginRequest](), authHdl.LoginUser)
	users.POST("/refresh", middleware.ValidateAndSanitizeStruct[schemas.RefreshTokenRequest](), authHdl.RefreshToken)
	users.POST("/recover-password", middleware.ValidateAndSanitizeStruct[schemas.RecoverPasswordRequest](), authHdl.RecoverPassword)
	users.GET("/new-password/:uid/:token", authHdl.CheckNewPasswordLink)
	users.POST("/new-password/:uid/:token", middleware.ValidateAndSanitizeStruct[schemas.NewPasswordRequest](), authHdl.CompleteNewPassword)

	users.POST("/logout", jwtMgr.JWTMiddleware(databaseMgr), authHdl.LogoutUser)
	users.PATCH("", jwtMgr.JWTMiddleware(databaseMgr),
		middleware.ValidateAndSanitizeStruct[schemas.ChangePasswordRequest](), authHdl.ChangePassword)
}

func settingsRoutes(settings *gin.RouterGroup, databaseMgr managers.DatabaseMgr) {
	settingsHdl := handlers.NewSettingsHandler(databaseMgr)

	settings.GET("", settingsHdl.ListSettings)
	settings.GET("/:key", settingsHdl.GetSetting)
	settings.PUT("", middleware.ValidateAndSanitizeStruct[schemas.SaveSettingRequest](), settingsHdl.SaveSetting)
}
