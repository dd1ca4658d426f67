package bootstrap

import (
	"log"
	"time"

	"ai-studypal-be/internal/config"
	"ai-studypal-be/internal/controller"
	"ai-studypal-be/internal/pkg/logger"
	"ai-studypal-be/internal/repository/implementation"
	"ai-studypal-be/internal/repository/memory"
	"ai-studypal-be/internal/service"
	"ai-studypal-be/pkg/extract"
	"ai-studypal-be/pkg/langdetect"
	"ai-studypal-be/pkg/llm"
	"ai-studypal-be/pkg/llm/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	AuthController  controller.IAuthController
	StudyController controller.IStudyController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	// SessionRepo is exposed for integration tests that need to inspect
	// live session state.
	SessionRepo *memory.SessionRepository
}

// NewContainer wires every component. Pass a non-nil llmProvider to override
// the configured backend (tests inject fakes this way); nil builds it from
// config.
func NewContainer(cfg *config.Config, llmProvider llm.LLMProvider) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	userRepo := implementation.NewUserFileRepository(cfg.Store.CredentialFile)
	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.Store.SessionTTLHours) * time.Hour)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Model backend
	if llmProvider == nil {
		var err error
		llmProvider, err = factory.NewLLMProvider(cfg.Ai)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
		}
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)
	}

	// 4. Services
	publisherService := service.NewPublisherService(pubSub)
	consumerService := service.NewConsumerService(pubSub, sysLogger)

	authService := service.NewAuthService(
		userRepo,
		sessionRepo,
		cfg.Auth.JwtSecret,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
	)
	studyService := service.NewStudyService(
		llmProvider,
		extract.NewPDFExtractor(),
		langdetect.NewWhatlangDetector(),
		publisherService,
	)

	// 5. Controllers
	return &Container{
		AuthController:  controller.NewAuthController(authService),
		StudyController: controller.NewStudyController(studyService, sessionRepo),
		ConsumerService: consumerService,
		Logger:          sysLogger,
		SessionRepo:     sessionRepo,
	}
}
