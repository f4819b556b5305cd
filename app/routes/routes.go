package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/ivansvit/upgraded-blog/app/auth"
	"github.com/ivansvit/upgraded-blog/app/controllers"
	"github.com/ivansvit/upgraded-blog/app/mailer"
	"github.com/ivansvit/upgraded-blog/app/middleware"
	"github.com/ivansvit/upgraded-blog/app/repositories"
	"github.com/ivansvit/upgraded-blog/app/services"
	"github.com/ivansvit/upgraded-blog/app/sessions"
	"github.com/ivansvit/upgraded-blog/app/views"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the router is built from.
type Dependencies struct {
	DB       *gorm.DB
	Sessions *sessions.Store
	Mailer   mailer.Sender
	Policy   auth.Policy
	Log      zerolog.Logger

	MailFrom    string
	MailTo      string
	MailTimeout time.Duration
	// HashCost is the bcrypt cost for new passwords; 0 means the default.
	HashCost int
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) (*mux.Router, error) {
	if deps.DB == nil || deps.Sessions == nil || deps.Mailer == nil || deps.Policy == nil {
		return nil, errors.New("routes: database, sessions, mailer and policy are required")
	}

	templates, err := views.Load()
	if err != nil {
		return nil, err
	}

	postRepo := repositories.NewPostRepository(deps.DB)
	userRepo := repositories.NewUserRepository(deps.DB)
	commentRepo := repositories.NewCommentRepository(deps.DB)

	postService := services.NewPostService(postRepo)
	userService := services.NewUserService(userRepo, deps.HashCost)
	commentService := services.NewCommentService(commentRepo)
	feedbackService := services.NewFeedbackService(deps.Mailer, deps.MailFrom, deps.MailTo, deps.MailTimeout)

	renderer := controllers.NewRenderer(templates, deps.Sessions, deps.Policy, deps.Log)
	postController := controllers.NewPostController(renderer, postService, commentService)
	authController := controllers.NewAuthController(renderer, userService, deps.Sessions)
	pageController := controllers.NewPageController(renderer, feedbackService)

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Recoverer(deps.Log))
	router.Use(middleware.Logger(deps.Log))
	router.Use(middleware.Metrics)
	router.Use(deps.Sessions.Middleware)

	admin := middleware.RequireAdmin(deps.Policy)

	// Serve static files
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(views.Static()))))
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Pages
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/about", pageController.About).Methods("GET")
	router.HandleFunc("/contact", pageController.Contact).Methods("GET")
	router.HandleFunc("/contact", pageController.SendFeedback).Methods("POST")

	// Posts and comments
	router.HandleFunc("/post/{id:[0-9]+}", postController.Show).Methods("GET")
	router.HandleFunc("/post/{id:[0-9]+}", postController.AddComment).Methods("POST")
	router.Handle("/new-post", admin(http.HandlerFunc(postController.New))).Methods("GET")
	router.Handle("/new-post", admin(http.HandlerFunc(postController.Create))).Methods("POST")
	router.Handle("/edit-post/{post_id:[0-9]+}", admin(http.HandlerFunc(postController.Edit))).Methods("GET")
	router.Handle("/edit-post/{post_id:[0-9]+}", admin(http.HandlerFunc(postController.Update))).Methods("POST")
	router.Handle("/delete/{post_id:[0-9]+}", admin(http.HandlerFunc(postController.Delete))).Methods("GET")

	// Accounts
	router.HandleFunc("/register", authController.RegisterForm).Methods("GET")
	router.HandleFunc("/register", authController.Register).Methods("POST")
	router.HandleFunc("/login", authController.LoginForm).Methods("GET")
	router.HandleFunc("/login", authController.Login).Methods("POST")
	router.HandleFunc("/logout", authController.Logout).Methods("GET")

	return router, nil
}
