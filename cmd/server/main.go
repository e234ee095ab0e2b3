package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/pennitter/pennitter-backend/internal/config"
	"github.com/pennitter/pennitter-backend/internal/database"
	"github.com/pennitter/pennitter-backend/internal/handlers"
	"github.com/pennitter/pennitter-backend/internal/middleware"
	"github.com/pennitter/pennitter-backend/internal/routes"
	"github.com/pennitter/pennitter-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	client, db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect(client)

	// Connect to Redis (rate limiting)
	log.Printf("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Media storage
	var media services.MediaStore = services.UnconfiguredMediaStore{}
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("File uploads will not be available")
		} else {
			media = cld
			log.Println("Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. File uploads will not be available")
	}

	// Wire up services
	auth := services.NewAuth(db, cfg.JWTSecret)
	users := services.NewUsers(db)
	posts := services.NewPosts(db, users)
	comments := services.NewComments(db, posts)
	follow := services.NewFollow(db)
	hidden := services.NewHidden(db)
	account := services.NewAccount(users, posts, follow, hidden, auth, media)

	h := handlers.New(users, auth, posts, comments, follow, hidden, account, media)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(rdb))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, h, auth)

	log.Printf("Pennitter backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
