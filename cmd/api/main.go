package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/formbuilder-api/internal/config"
	"github.com/yourusername/formbuilder-api/internal/handler"
	"github.com/yourusername/formbuilder-api/internal/middleware"
	pgRepo "github.com/yourusername/formbuilder-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/formbuilder-api/internal/repository/redis"
	"github.com/yourusername/formbuilder-api/internal/service"
	ws "github.com/yourusername/formbuilder-api/internal/websocket"
	"github.com/yourusername/formbuilder-api/pkg/auth"
	"github.com/yourusername/formbuilder-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	formRepo := pgRepo.NewFormRepo(db)
	versionRepo := pgRepo.NewVersionRepo(db)
	responseRepo := pgRepo.NewResponseRepo(db)
	roleRepo := pgRepo.NewRoleRepo(db)
	imageRepo := pgRepo.NewImageRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// JWT сервис: один секрет, три назначения токенов
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs, cfg.JWT.LinkExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Почта: без ключа Resend работает noop-отправитель
	var emailService service.EmailService
	if cfg.Email.APIKey != "" {
		emailService, err = service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
		log.Println("Email notifications enabled (Resend)")
	} else {
		emailService = &service.NoopEmailService{}
		log.Println("RESEND_API_KEY не задан, уведомления отключены")
	}

	// Инициализируем сервисы
	assembler := service.NewFormAssembler()
	versionService := service.NewVersionService(db, formRepo, versionRepo, imageRepo, cacheRepo, assembler)
	accessService := service.NewAccessService(roleRepo, userRepo, formRepo, emailService)
	formService := service.NewFormService(db, formRepo, roleRepo, categoryRepo, accessService, versionService)
	shareService := service.NewShareService(formRepo, versionRepo, cacheRepo, accessService, jwtService, cfg.Email.AppBaseURL)
	responseService := service.NewResponseService(db, formRepo, versionRepo, responseRepo, userRepo, accessService, jwtService, emailService, cfg.Email.AppBaseURL)
	authService := service.NewAuthService(userRepo, jwtService)

	// Hub совместного редактирования
	collabHub := ws.NewHub()
	go collabHub.Run()

	clientConfig := ws.ClientConfig{
		WriteWait:      time.Duration(cfg.Collab.WriteWaitSec) * time.Second,
		PongWait:       time.Duration(cfg.Collab.PongWaitSec) * time.Second,
		MaxMessageSize: cfg.Collab.MaxMessageSize,
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	formHandler := handler.NewFormHandler(formService, versionService, accessService, shareService, collabHub)
	templateHandler := handler.NewTemplateHandler(formService)
	responseHandler := handler.NewResponseHandler(responseService, shareService)
	wsHandler := handler.NewWSHandler(collabHub, jwtService, accessService, clientConfig, cfg.CORS.AllowOrigins)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	isProduction := gin.Mode() == gin.ReleaseMode
	router := gin.Default()

	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		}

		// Публичные маршруты респондентов: доступ по подписанным токенам
		shared := api.Group("/shared")
		{
			shared.GET("/forms", responseHandler.GetSharedForm)
			shared.GET("/responses", responseHandler.ExchangeToken)
			shared.PUT("/responses", responseHandler.UpdateByToken)

			sharedSubmit := shared.Group("/forms/:id")
			sharedSubmit.Use(middleware.ExtractUintParam("id", "formID"))
			{
				sharedSubmit.POST("/responses", responseHandler.Submit)
			}
		}

		// Галерея шаблонов
		templates := api.Group("/templates")
		{
			templates.GET("", templateHandler.ListTemplates)
			templates.GET("/categories", templateHandler.ListCategories)

			templateWithID := templates.Group("/:id")
			templateWithID.Use(middleware.ExtractUintParam("id", "templateID"))
			{
				templateWithID.POST("/clone", authMiddleware.RequireAuth(), templateHandler.CloneTemplate)
			}
		}

		// Формы
		forms := api.Group("/forms")
		forms.Use(authMiddleware.RequireAuth())
		{
			forms.GET("", formHandler.ListMyForms)
			forms.POST("", formHandler.CreateForm)

			formWithID := forms.Group("/:id")
			formWithID.Use(middleware.ExtractUintParam("id", "formID"))
			{
				formWithID.GET("", formHandler.GetForm)
				formWithID.DELETE("", formHandler.DeleteForm)
				formWithID.POST("/publish", formHandler.Publish)
				formWithID.GET("/versions", formHandler.ListVersions)
				formWithID.POST("/share", formHandler.CreateShareLink)

				versionWithID := formWithID.Group("/versions/:versionId")
				versionWithID.Use(middleware.ExtractUintParam("versionId", "versionID"))
				{
					versionWithID.PUT("/activate", formHandler.ActivateVersion)
					versionWithID.DELETE("/responses", formHandler.DeleteVersionResponses)
				}

				// Совместный доступ
				formWithID.GET("/collaborators", formHandler.ListCollaborators)
				formWithID.POST("/collaborators", formHandler.Invite)
				collaborator := formWithID.Group("/collaborators/:userId")
				collaborator.Use(middleware.ExtractUintParam("userId", "collaboratorID"))
				{
					collaborator.DELETE("", formHandler.RevokeCollaborator)
				}

				// Ответы
				formWithID.GET("/responses", responseHandler.ListResponses)
				formWithID.GET("/responses/export", responseHandler.ExportResponses)
				responseWithID := formWithID.Group("/responses/:responseId")
				responseWithID.Use(middleware.ExtractUintParam("responseId", "responseID"))
				{
					responseWithID.GET("", responseHandler.GetResponse)
					responseWithID.PUT("", responseHandler.UpdateResponse)
					responseWithID.DELETE("", responseHandler.DeleteResponse)
				}
			}
		}

		// Совместное редактирование (токен проверяется внутри обработчика)
		collabGroup := api.Group("/collab/:id")
		collabGroup.Use(middleware.ExtractUintParam("id", "formID"))
		{
			collabGroup.GET("", wsHandler.Connect)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
