package main

import (
	auth "Despiece/internal/auth"
	batch "Despiece/internal/calc/batch"
	despiece "Despiece/internal/calc/despiece"
	importer "Despiece/internal/calc/importer"
	report "Despiece/internal/calc/report"
	designs "Despiece/internal/designs"
	profile "Despiece/internal/profile"
	repo "Despiece/internal/repo"
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // abierto mientras el frontend no tenga dominio fijo
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, db *sql.DB) {
	userRepo := repo.NewPostgresDB(db)

	tokenKey := os.Getenv("TOKEN_KEY")
	if tokenKey == "" {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}

	authEnv := &auth.Authenv{JWTkey: []byte(tokenKey), Repo: userRepo}
	profileH := &profile.ProfileHandler{Repo: userRepo}
	designsH := &designs.Handler{Repo: userRepo}
	despieceH := &despiece.Handler{}
	reportH := &report.Handler{Repo: userRepo}
	importerH := &importer.Handler{}
	batchH := &batch.Handler{}

	limiter := auth.NewIPRateLimiter(1, 3)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/profile", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/profile", profileH.UpdateProfile).Methods("PATCH", "PUT")
	secureApi.HandleFunc("/profile/{id:[0-9]+}", profileH.GetProfile).Methods("GET")

	secureApi.HandleFunc("/tools/despiece/calc", despieceH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/despiece/presets", despieceH.Presets).Methods("GET")
	secureApi.HandleFunc("/tools/despiece/batch", batchH.Beams).Methods("POST")
	secureApi.HandleFunc("/tools/despiece/import", importerH.Beams).Methods("POST")
	secureApi.HandleFunc("/tools/report/pdf", reportH.GeneratePDF).Methods("POST")
	secureApi.HandleFunc("/tools/report/xlsx", reportH.GenerateXLSX).Methods("POST")

	secureApi.HandleFunc("/designs", designsH.Create).Methods("POST")
	secureApi.HandleFunc("/designs", designsH.List).Methods("GET")
	secureApi.HandleFunc("/designs/{id:[0-9]+}", designsH.Get).Methods("GET")
	secureApi.HandleFunc("/designs/{id:[0-9]+}", designsH.Update).Methods("PATCH", "PUT")
	secureApi.HandleFunc("/designs/{id:[0-9]+}", designsH.Delete).Methods("DELETE")
	secureApi.HandleFunc("/designs/{id:[0-9]+}/exports", reportH.Exports).Methods("GET")
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db := auth.InitDB()
	defer db.Close()
	router := mux.NewRouter()

	addr := os.Getenv("BIND_ADDR")
	if addr == "" {
		addr = ":8001"
	}
	log.Println("Starting server on " + addr)
	HandleList(router, db)
	handler := handlers.LoggingHandler(os.Stdout, CORS(router))

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Shutdown signal received!")
	fmt.Println("Cerrando conexiones activas")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Error al detener el servidor: %v", err)
	}
	log.Println("Servidor detenido correctamente")

	wg.Wait()
}
