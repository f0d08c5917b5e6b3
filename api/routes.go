package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/trackops/trackd/internal/config"
	"github.com/trackops/trackd/internal/db"
	"github.com/trackops/trackd/internal/files"
	"github.com/trackops/trackd/internal/repository/sqlite"
	"github.com/trackops/trackd/internal/validate"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB, queue Enqueuer) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(database, nil)

	validator, err := validate.New()
	if err != nil {
		return nil, err
	}
	store, err := files.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	trackerHandler := NewTrackerHandler(repo, repo, repo, repo, store, queue)
	projectHandler := NewProjectHandler(repo, validator)
	taskHandler := NewTaskHandler(repo, repo, validator)
	dropdownHandler := NewDropdownHandler(repo, repo, repo)
	exportHandler := NewExportHandler(repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/user/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/user/signin", authHandler.Signin).Methods("POST")

	// Attachments
	r.PathPrefix(files.URLPrefix).Handler(
		http.StripPrefix(files.URLPrefix, http.FileServer(http.Dir(store.Dir()))))

	// Protected routes
	jwtAuth := JWTAuthMiddlewareWithSecret(cfg.JWTSecret)

	user := r.PathPrefix("/user").Subrouter()
	user.Use(jwtAuth)
	user.HandleFunc("/signout", authHandler.Signout).Methods("POST")
	user.HandleFunc("/list", authHandler.ListUsers).Methods("POST")
	user.HandleFunc("/update", authHandler.UpdateUser).Methods("POST")

	tracker := r.PathPrefix("/tracker").Subrouter()
	tracker.Use(jwtAuth)
	tracker.HandleFunc("/view", trackerHandler.View).Methods("POST")
	tracker.HandleFunc("/add", trackerHandler.Add).Methods("POST")
	tracker.HandleFunc("/update", trackerHandler.Update).Methods("POST")
	tracker.HandleFunc("/delete", trackerHandler.Delete).Methods("POST")
	tracker.HandleFunc("/report", trackerHandler.Report).Methods("POST")
	tracker.HandleFunc("/export", exportHandler.Export).Methods("POST")

	project := r.PathPrefix("/project").Subrouter()
	project.Use(jwtAuth)
	project.HandleFunc("/create", projectHandler.Create).Methods("POST")
	project.HandleFunc("/update", projectHandler.Update).Methods("POST")
	project.HandleFunc("/list", projectHandler.List).Methods("POST")
	project.HandleFunc("/delete", projectHandler.Delete).Methods("POST")

	task := r.PathPrefix("/task").Subrouter()
	task.Use(jwtAuth)
	task.HandleFunc("/add", taskHandler.Add).Methods("POST")
	task.HandleFunc("/update", taskHandler.Update).Methods("POST")
	task.HandleFunc("/list", taskHandler.List).Methods("POST")
	task.HandleFunc("/delete", taskHandler.Delete).Methods("PUT")

	dropdown := r.PathPrefix("/dropdown").Subrouter()
	dropdown.Use(jwtAuth)
	dropdown.HandleFunc("/get", dropdownHandler.Get).Methods("POST")

	return r, nil
}
