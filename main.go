package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/booknest/backend/config"
	"github.com/booknest/backend/handlers"
	"github.com/booknest/backend/middleware"
	"github.com/booknest/backend/models"
	"github.com/booknest/backend/service"
	"github.com/booknest/backend/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	config.ValidateEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("mongodb indexes:", err)
	}

	var covers *service.CoverStorage
	if cfg.S3Bucket != "" {
		covers, err = service.NewCoverStorage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatal("s3:", err)
		}
	} else {
		log.Println("warning: AWS_S3_BUCKET not set; cover uploads will fail")
	}

	ratings := &service.Recalculator{Store: db}
	mailer := &service.Mailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	authHandler := &handlers.AuthHandler{
		DB:             db,
		JWTSecret:      cfg.JWTSecret,
		GoogleClientID: cfg.GoogleClientID,
		AdminEmail:     cfg.AdminEmail,
		AdminPass:      cfg.AdminPass,
	}
	booksHandler := &handlers.BooksHandler{DB: db, Covers: covers, Ratings: ratings}
	authorsHandler := &handlers.AuthorsHandler{DB: db}
	publishersHandler := &handlers.PublishersHandler{DB: db}
	reviewsHandler := &handlers.ReviewsHandler{DB: db, Ratings: ratings, Mailer: mailer}
	usersHandler := &handlers.UsersHandler{DB: db}
	uploadHandler := &handlers.UploadHandler{
		Covers:   covers,
		MaxBytes: cfg.MaxUploadMB * 1024 * 1024,
	}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"welcome to booknest."}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	canPublish := middleware.RequireRole(models.RoleAuthor, models.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/google", authHandler.GoogleLogin)
		r.Post("/auth/login", authHandler.Login)

		// Public read endpoints
		r.Get("/books", booksHandler.List)
		r.Get("/books/{id}", booksHandler.Get)
		r.Get("/books/{id}/cover", booksHandler.Cover)
		r.Get("/authors", authorsHandler.List)
		r.Get("/authors/{id}", authorsHandler.Get)
		r.Get("/publishers", publishersHandler.List)
		r.Get("/publishers/{id}", publishersHandler.Get)
		r.Get("/reviews", reviewsHandler.List)
		r.Get("/reviews/{id}", reviewsHandler.Get)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			r.Get("/me", usersHandler.Me)
			r.Put("/me", usersHandler.UpdateMe)
			r.Post("/me/favorites/{bookId}", usersHandler.AddFavorite)
			r.Delete("/me/favorites/{bookId}", usersHandler.RemoveFavorite)
			r.Put("/me/reading/{bookId}", usersHandler.UpdateReading)

			r.Post("/reviews", reviewsHandler.Create)
			r.Put("/reviews/{id}", reviewsHandler.Update)
			r.Delete("/reviews/{id}", reviewsHandler.Delete)
			r.Post("/reviews/{id}/helpful", reviewsHandler.Helpful)

			// Catalog mutations need the author or admin role
			r.Group(func(r chi.Router) {
				r.Use(canPublish)
				r.Post("/books", booksHandler.Create)
				r.Put("/books/{id}", booksHandler.Update)
				r.Delete("/books/{id}", booksHandler.Delete)
				r.Post("/authors", authorsHandler.Create)
				r.Put("/authors/{id}", authorsHandler.Update)
				r.Delete("/authors/{id}", authorsHandler.Delete)
				r.Post("/publishers", publishersHandler.Create)
				r.Put("/publishers/{id}", publishersHandler.Update)
				r.Delete("/publishers/{id}", publishersHandler.Delete)
				r.Post("/upload/cover", uploadHandler.UploadCover)
			})

			// Moderation is admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Patch("/reviews/{id}/moderation", reviewsHandler.Moderate)
			})
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
