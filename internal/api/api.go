package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gabzin/SerialBoxBot/internal/api/routes"
	"github.com/gabzin/SerialBoxBot/internal/container"
	"github.com/gabzin/SerialBoxBot/pkg/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func StartApi(app *container.AppContainer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(router, app)

	router.Static("/assets", "./webapp/assets")
	router.GET("/app", func(c *gin.Context) {
		c.File("./webapp/index.html")
	})

	// No WriteTimeout here: the auth stream stays open for minutes and a
	// server-side write deadline would cut it off.
	srv := &http.Server{
		Addr:    config.APIAddr,
		Handler: router,
	}

	go func() {
		log.Printf("🌐 REST API listening on %s", config.APIAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🔻 Shutting down API...")

	return srv.Shutdown(context.Background())
}
