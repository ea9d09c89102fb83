// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/duskraven/mailraven-backend/internal/cache"
	"github.com/duskraven/mailraven-backend/internal/config"
	"github.com/duskraven/mailraven-backend/internal/controller"
	"github.com/duskraven/mailraven-backend/internal/db"
	"github.com/duskraven/mailraven-backend/internal/queue"
	"github.com/duskraven/mailraven-backend/internal/repository"
	"github.com/duskraven/mailraven-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	log.Println("✅ Connected to database")

	contactRepo := &repository.ContactRepository{DB: conn}
	groupRepo := &repository.GroupRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	deliveryRepo := &repository.DeliveryRepository{DB: conn}
	credentialRepo := &repository.CredentialRepository{DB: conn}

	var progressCache cache.ProgressCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		progressCache = cache.NewRedisProgressCache(rdb)
		log.Println("✅ Progress cache enabled")
	}

	segmentService := &service.SegmentService{
		ContactRepo: contactRepo,
		GroupRepo:   groupRepo,
	}
	ledgerService := &service.LedgerService{
		DeliveryRepo: deliveryRepo,
		Cache:        progressCache,
	}
	progressService := &service.ProgressService{
		CampaignRepo: campaignRepo,
		DeliveryRepo: deliveryRepo,
		Cache:        progressCache,
		CacheTTL:     cfg.Redis.ProgressTTL,
	}

	// Prefer the broker; fall back to the in-process queue with a local
	// sender when no broker is around.
	var publisher queue.Publisher
	if amqpQueue, err := queue.DialAMQP(cfg.Queue.URL, cfg.Queue.Name); err == nil {
		log.Println("✅ Connected to AMQP broker")
		defer amqpQueue.Close()
		publisher = amqpQueue
	} else {
		log.Println("⚠️ AMQP unavailable, using in-memory queue:", err)
		inmem := queue.NewInMemoryQueue()
		inmem.MaxRetries = cfg.Queue.MaxRetries
		sender := &service.Sender{
			ContactRepo:  contactRepo,
			CampaignRepo: campaignRepo,
			Ledger:       ledgerService,
			SendFunc:     service.MockSender,
		}
		// Returning the error lets the queue retry; the record is only
		// marked failed once every attempt is spent.
		inmem.Subscribe(queue.SendTopic, func(payload any) error {
			job, ok := payload.(queue.SendJob)
			if !ok {
				return nil
			}
			return sender.Process(context.Background(), job)
		})
		inmem.OnExhausted(queue.SendTopic, func(payload any, err error) {
			if job, ok := payload.(queue.SendJob); ok {
				sender.Fail(context.Background(), job, err.Error())
			}
		})
		publisher = inmem
	}

	campaignService := &service.CampaignService{
		CampaignRepo:   campaignRepo,
		CredentialRepo: credentialRepo,
		Segments:       segmentService,
		Ledger:         ledgerService,
		Queue:          publisher,
	}
	contactService := &service.ContactService{ContactRepo: contactRepo}
	groupService := &service.GroupService{GroupRepo: groupRepo, ContactRepo: contactRepo}
	credentialService := &service.CredentialService{CredentialRepo: credentialRepo}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
		ProgressService: progressService,
		LedgerService:   ledgerService,
	}
	contactController := &controller.ContactController{ContactService: contactService}
	groupController := &controller.GroupController{GroupService: groupService}
	credentialController := &controller.CredentialController{CredentialService: credentialService}

	r := chi.NewRouter()
	r.Use(controller.OwnerID)

	// Contact routes
	r.Post("/contacts", contactController.CreateContact)
	r.Get("/contacts", contactController.ListContacts)
	r.Get("/contacts/{id}", contactController.GetContact)
	r.Patch("/contacts/{id}", contactController.UpdateAttributes)
	r.Delete("/contacts/{id}", contactController.DeleteContact)

	// Group routes
	r.Post("/groups", groupController.CreateGroup)
	r.Get("/groups", groupController.ListGroups)
	r.Patch("/groups/{id}", groupController.RenameGroup)
	r.Delete("/groups/{id}", groupController.DeleteGroup)
	r.Get("/groups/{id}/contacts", groupController.ListMembers)
	r.Post("/groups/{id}/contacts", groupController.AddContact)
	r.Delete("/groups/{id}/contacts/{contactId}", groupController.RemoveContact)

	// Credential routes
	r.Post("/credentials", credentialController.CreateCredential)
	r.Get("/credentials", credentialController.ListCredentials)
	r.Get("/credentials/{id}", credentialController.GetCredential)
	r.Delete("/credentials/{id}", credentialController.DeleteCredential)

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaign)
	r.Delete("/campaigns/{id}", campaignController.DeleteCampaign)
	r.Post("/campaigns/{id}/send", campaignController.SendCampaign)
	r.Get("/campaigns/{id}/progress", campaignController.GetProgress)
	r.Post("/campaigns/{id}/events", campaignController.IngestEvent)

	log.Println("🚀 Server running on", cfg.Server.Address)
	log.Fatal(http.ListenAndServe(cfg.Server.Address, r))
}
