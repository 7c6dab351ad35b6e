package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mailgun/mailgun-go/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"hackreg-backend/events"
	"hackreg-backend/handler"
	"hackreg-backend/internal/blob"
	"hackreg-backend/log"
)

func envOrDefaultString(env, def string) string {
	if val, ok := os.LookupEnv(env); ok {
		return val
	}

	return def
}

func main() {
	_ = godotenv.Load()
	log.EnsureLogger()

	listenAddr := envOrDefaultString("PORT", "8080")
	mongoAddr := envOrDefaultString("MONGO_URI", "mongodb://localhost:27017")
	key := []byte(envOrDefaultString("JWT_SECRET", "test-key"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoAddr))
	if err != nil {
		log.Logger.Fatal("failed connecting to database", zap.Error(err))
	}

	store, err := blob.New(ctx,
		envOrDefaultString("S3_REGION", "eu-central-1"),
		os.Getenv("S3_ACCESS_KEY"),
		os.Getenv("S3_SECRET_KEY"),
		envOrDefaultString("S3_BUCKET", "hackreg"),
		envOrDefaultString("S3_PUBLIC_BASE_URL", "https://hackreg.s3.amazonaws.com"),
	)
	if err != nil {
		log.Logger.Fatal("failed creating blob store", zap.Error(err))
	}

	events.EnsureEvents()

	mg := mailgun.NewMailgun(
		envOrDefaultString("MAILGUN_DOMAIN", "mg.hackreg.test"),
		os.Getenv("MAILGUN_API_KEY"),
	)

	authHandler := handler.NewAuthHandler(client, key, mg,
		envOrDefaultString("MAIL_FROM", "noreply@hackreg.test"),
		envOrDefaultString("RESET_URL_BASE", "https://hackreg.test/reset"))
	teamHandler := handler.NewTeamHandler(client)
	uploadHandler := handler.NewUploadHandler(client, store)

	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		team := v1.Group("/team", handler.Auth(key))
		team.GET("", teamHandler.MyTeam)
		team.POST("", teamHandler.RegisterTeam)
		team.PUT("/members", teamHandler.UpdateMembers)
		team.DELETE("/members/:index", teamHandler.DeleteMember)
		team.GET("/timeline", teamHandler.Timeline)
		team.GET("/events", teamHandler.Events)
		team.POST("/photo", uploadHandler.Photo)
		team.POST("/resume", uploadHandler.Resume)
	}

	log.Logger.Info(fmt.Sprintf("Listening on port: %s", listenAddr))
	if err := r.Run("0.0.0.0:" + listenAddr); err != nil {
		log.Logger.Fatal("couldn't serve http", zap.Error(err))
	}
}
