package main

import (
	"log"

	api "localsync-backend/cmd/api"
	accountdomain "localsync-backend/internal/account/domain"
	accountRepo "localsync-backend/internal/account/repository"
	accountUsecase "localsync-backend/internal/account/usecase"
	deltaUsecase "localsync-backend/internal/delta/usecase"
	maildomain "localsync-backend/internal/mail/domain"
	mailRepo "localsync-backend/internal/mail/repository"
	mailUsecase "localsync-backend/internal/mail/usecase"
	syncbackdomain "localsync-backend/internal/syncback/domain"
	syncbackRepo "localsync-backend/internal/syncback/repository"
	syncbackUsecase "localsync-backend/internal/syncback/usecase"
	txndomain "localsync-backend/internal/transaction/domain"
	txnRepo "localsync-backend/internal/transaction/repository"
	txnUsecase "localsync-backend/internal/transaction/usecase"
	"localsync-backend/pkg/config"
	"localsync-backend/pkg/database"
	"localsync-backend/pkg/mailstore"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&accountdomain.Account{}, &txndomain.Transaction{}, &maildomain.Thread{}, &maildomain.Message{}, &maildomain.Label{}, &syncbackdomain.SyncbackRequest{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	accountRepository := accountRepo.NewAccountRepository(db)
	transactionRepository := txnRepo.NewTransactionRepository(db)
	threadRepository := mailRepo.NewThreadRepository(db)
	messageRepository := mailRepo.NewMessageRepository(db)
	labelRepository := mailRepo.NewLabelRepository(db)
	syncbackRepository := syncbackRepo.NewSyncbackRepository(db)

	// Transaction log plumbing: the connector fans committed
	// transactions out to live delta subscribers, the recorder couples
	// entity mutations with their log entries.
	connector := txnUsecase.NewConnector()
	recorder := txnUsecase.NewRecorder(db, transactionRepository, connector)

	// Initialize use cases (dependency injection)
	accountUsecaseInstance := accountUsecase.NewAccountUsecase(accountRepository, recorder, cfg)

	matcher := mailUsecase.NewMatcher(threadRepository, messageRepository, cfg.MaxThreadLength)
	mailUsecaseInstance := mailUsecase.NewMailUsecase(matcher, threadRepository, messageRepository, labelRepository, recorder)

	inflaters := deltaUsecase.NewInflaters(messageRepository, threadRepository, labelRepository, accountRepository)
	deltaUsecaseInstance := deltaUsecase.NewDeltaUsecase(transactionRepository, connector, inflaters, cfg.DeltaHeartbeat)

	// Connect the mail store session for the syncback engine
	var session mailstore.Session
	if cfg.IMAPAddr != "" {
		session, err = mailstore.Dial(cfg.IMAPAddr, cfg.IMAPUsername, cfg.IMAPPassword, nil)
		if err != nil {
			log.Printf("[WARN] Failed to connect mail store session: %v", err)
		}
	} else {
		log.Printf("[WARN] IMAP_ADDR not configured, syncback execution disabled")
	}

	engine := syncbackUsecase.NewEngine(syncbackRepository, syncbackUsecase.NewRegistry(), &syncbackUsecase.Env{
		Session:     session,
		Recorder:    recorder,
		ThreadRepo:  threadRepository,
		MessageRepo: messageRepository,
	}, cfg)
	if session != nil {
		engine.Start()
		defer engine.Stop()
	}

	// Initialize HTTP handler
	handler := api.NewHandler(accountUsecaseInstance, mailUsecaseInstance, deltaUsecaseInstance, engine)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
