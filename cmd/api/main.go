package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/database"
	"wiki-quiz/internal/extractor"
	"wiki-quiz/internal/handler"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/middleware"
	"wiki-quiz/internal/quizgen"
	"wiki-quiz/internal/repository"
	"wiki-quiz/internal/service"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	dsn, err := cfg.GetDSN()
	if err != nil {
		appLogger.Fatal("Invalid database configuration", zap.Error(err))
	}

	db, err := database.Connect(dsn)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Successfully connected to MySQL database")

	if err := database.Migrate(db); err != nil {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// The generator is the single point that requires the API key; a
	// missing key fails here, after the database is already validated.
	generator, err := quizgen.New(cfg.Gemini.APIKey, cfg.Gemini.Model, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create quiz generator", zap.Error(err))
	}

	quizRepository := repository.NewQuizDatabaseAdapter(db)
	articleExtractor := extractor.New(nil)
	quizService := service.NewQuizService(quizRepository, articleExtractor, generator)
	quizHandler := handler.NewQuizHandler(quizService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	// Open API for a decoupled browser client: any origin, credentials off.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowCredentials: false,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders:    "*",
	}))
	app.Use(recover.New())

	app.Get("/", quizHandler.Home)
	app.Post("/url/preview", quizHandler.PreviewURL)
	app.Post("/generate_quiz", quizHandler.GenerateQuiz)
	app.Get("/history", quizHandler.GetHistory)
	app.Get("/quiz/:id", quizHandler.GetQuiz)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
