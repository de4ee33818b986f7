package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cacifebrand/cacife-dashboard/internal/infra/database"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/http/handlers"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/http/middleware"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/integration/chatwoot"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/mail"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/proxy"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/queue"
	"github.com/cacifebrand/cacife-dashboard/internal/infra/worker"
	"github.com/cacifebrand/cacife-dashboard/internal/usecase"
)

func main() {
	godotenv.Load()

	log.Println("🚀 Iniciando Cacife Dashboard...")

	dbURL := os.Getenv("DATABASE_URL")
	db, err := database.NewDBConnection(dbURL)
	if err != nil {
		log.Fatalf("❌ Falha ao conectar no banco: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"),
		envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("❌ Falha ao conectar no RabbitMQ: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositórios
	contactRepo := database.NewContactRepository(db)
	oppRepo := database.NewOpportunityRepository(db)
	abandonedRepo := database.NewAbandonedCheckoutRepository(db)
	orderRepo := database.NewOrderRepository(db)
	leadPostRepo := database.NewLeadPostRepository(db)

	// 2. Integrações e adapters
	cwClient := chatwoot.NewClient(
		envOr("CHATWOOT_URL", "https://chatwoot.segredosdodrop.com"),
		os.Getenv("PLATFORM_TOKEN"),
	)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailPort, _ := strconv.Atoi(envOr("MAIL_PORT", "587"))
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), mailPort, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		envOr("MAIL_FROM", "nao-responda@cacifebrand.com"),
	)

	// 3. UseCases
	syncUC := usecase.NewSyncOrdersUseCase(orderRepo, contactRepo, oppRepo, producer)

	// 4. Workers
	recoveryWorker := queue.NewWorker(rabbitMQ.Ch, mailSender, abandonedRepo)
	go recoveryWorker.Start(queue.RecoveryQueueName)

	workerCtx := context.Background()

	syncInterval, _ := strconv.Atoi(envOr("SYNC_INTERVAL_MINUTES", "15"))
	syncWorker := worker.NewSyncWorker(syncUC, time.Duration(syncInterval)*time.Minute)
	go syncWorker.Start(workerCtx)

	scheduler := worker.NewRecoveryScheduler(abandonedRepo, producer)
	go scheduler.Start(workerCtx)

	// 5. Assinatura de mudanças: qualquer insert/update/delete em
	// opportunities/contacts vira evento de reload pro board
	sub, err := database.SubscribeToChanges(dbURL, func() {
		payload := queue.BoardReloadPayload{Reason: "db_change", At: time.Now()}
		if err := producer.PublishBoardReload(context.Background(), payload); err != nil {
			log.Printf("⚠️ Falha ao publicar reload do board: %v", err)
		}
	})
	if err != nil {
		log.Printf("⚠️ Assinatura de mudanças indisponível: %v", err)
	} else {
		defer sub.Close()
	}

	// 6. Handlers
	crmHandler := handlers.NewCRMHandler(oppRepo, contactRepo, abandonedRepo, leadPostRepo)
	ssoHandler := handlers.NewSSOHandler(cwClient, envInt("CHATWOOT_USER_ID", 11), envInt("CHATWOOT_ACCOUNT_ID", 4))
	syncHandler := handlers.NewSyncHandler(syncUC)
	recoveryHandler := handlers.NewRecoveryHandler(abandonedRepo, producer)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, cwClient)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Cookie"},
		ExposedHeaders:   []string{"Set-Cookie"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/chatwoot/sso", ssoHandler.Handle)

		r.Route("/crm", func(r chi.Router) {
			r.Get("/pipeline/{name}", crmHandler.HandleFetchPipeline)
			r.Put("/leads/{id}/stage", crmHandler.HandleUpdateStage)
			r.Put("/leads/stage", crmHandler.HandleBatchUpdateStage)
			r.Delete("/opportunities/{id}", crmHandler.HandleDeleteOpportunity)
			r.Put("/opportunities/{id}/details", crmHandler.HandleUpdateDetails)
			r.Get("/summary", crmHandler.HandleSummary)
			r.Get("/lead-posts/{username}", crmHandler.HandleLeadPost)
			r.Post("/sync", syncHandler.Handle)
			r.Post("/recovery/{id}", recoveryHandler.Handle)
		})
	})

	// Frontend estático do dashboard
	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(envOr("STATIC_DIR", "./static"))))
	r.Get("/static/*", fileServer.ServeHTTP)

	// Catch-all: tudo que não é API vai pro Chatwoot, sem os headers
	// que bloqueiam o iframe
	cwProxy, err := proxy.NewChatwootProxy(envOr("CHATWOOT_URL", "https://chatwoot.segredosdodrop.com"))
	if err != nil {
		log.Fatalf("❌ Falha ao montar proxy do Chatwoot: %v", err)
	}
	r.NotFound(cwProxy.ServeHTTP)

	port := ":" + envOr("PORT", "3000")
	log.Printf("✅ Cacife Dashboard rodando na porta %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatalf("❌ Servidor caiu: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func allowedOrigins() []string {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		return []string{"http://localhost:3000"}
	}
	return strings.Split(raw, ",")
}
