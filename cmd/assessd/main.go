package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/mind-engage/assessment-engine/internal/api/http"
	"github.com/mind-engage/assessment-engine/internal/audit"
	auth "github.com/mind-engage/assessment-engine/internal/auth/middleware"
	"github.com/mind-engage/assessment-engine/internal/config"
	"github.com/mind-engage/assessment-engine/internal/db"
	"github.com/mind-engage/assessment-engine/internal/exam"
	"github.com/mind-engage/assessment-engine/internal/rbac"
	"github.com/mind-engage/assessment-engine/internal/storage"
	"github.com/mind-engage/assessment-engine/pkg/gradebook"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := exam.NewSQLStore(dbh, cfg.DBDriver)
	auditLog := audit.NewLog(dbh)

	uploads, err := storage.NewFSStore(cfg.UploadBasePath)
	if err != nil {
		log.Fatalf("upload store: %v", err)
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)
	creds := map[string]auth.Credentials{
		cfg.AdminUser: {PassHash: cfg.AdminPassHash, Role: "admin"},
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, creds, cfg.DevLogin))

	// Protected API (JWT → subject/role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("exam:create")).
			Post("/exams", api.UploadExamHandler(store))
		pr.With(rbac.Require("exam:list")).
			Get("/exams", api.ListExamsHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", api.GetExamHandler(store))

		// Taker flow
		pr.With(rbac.Require("submission:create")).
			Post("/submissions", api.CreateSubmissionHandler(store))
		pr.With(rbac.Require("submission:save")).
			Put("/submissions/{submissionID}/answers/{questionID}", api.SaveAnswerHandler(store))
		pr.With(rbac.Require("submission:submit")).
			Post("/submissions/{submissionID}/submit", api.SubmitHandler(store, auditLog))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions", api.ListSubmissionsHandler(store))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions/{submissionID}", api.GetSubmissionHandler(store))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions/{submissionID}/review", api.ReviewHandler(store))

		// Grader flow
		pr.With(rbac.Require("submission:grade")).
			Get("/submissions/{submissionID}/grading", api.GetGradingHandler(store))
		pr.With(rbac.Require("submission:grade")).
			Post("/submissions/{submissionID}/grading", api.ApplyGradingHandler(store, auditLog))

		// File-upload answers
		pr.Route("/uploads", func(ur chi.Router) {
			api.MountUploads(ur, store, uploads)
		})

		if cfg.GradebookEnabled {
			syncer := gradebook.New(
				&gradebook.SQLStore{DB: dbh},
				gradebook.NewHTTPClient(gradebook.HTTPConfig{
					ColumnsURL:   cfg.GradebookColumnsURL,
					TokenURL:     cfg.GradebookTokenURL,
					ClientID:     cfg.GradebookClientID,
					ClientSecret: cfg.GradebookClientSecret,
					Timeout:      15 * time.Second,
				}),
				nil,
			)
			pr.With(rbac.Require("submission:grade")).
				Post("/submissions/{submissionID}/grade-sync", api.SyncGradeHandler(syncer))
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("assessd listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
