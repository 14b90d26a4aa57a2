package server

import (
	"net/http"
	"time"

	"backend/internal/chunker"
	"backend/internal/compliance_checker"
	"backend/internal/config"
	"backend/internal/embedding"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/repository"
	"backend/internal/rule_engine"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Server struct {
	router    *gin.Engine
	db        *sqlx.DB
	cfg       *config.Config
	generator compliance_checker.Generator
	reviewer  compliance_checker.Reviewer
	logger    *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, generator compliance_checker.Generator,
	reviewer compliance_checker.Reviewer, logger *zap.Logger) *Server {
	router := gin.Default()
	router.Use(middleware.RequestID())

	s := &Server{
		router:    router,
		db:        db,
		cfg:       cfg,
		generator: generator,
		reviewer:  reviewer,
		logger:    logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	ruleRepo := repository.NewRuleRepository(s.db, s.logger)
	submissionRepo := repository.NewSubmissionRepository(s.db, s.logger)
	violationRepo := repository.NewViolationRepository(s.db, s.logger)
	chunkRepo := repository.NewChunkRepository(s.db, s.logger)
	auditRepo := repository.NewAuditRepository(s.db, s.logger)
	authRepo := repository.NewAuthRepository(s.db, s.logger)

	embedder := embedding.NewHashEmbedder(s.cfg.Embedding.Dimension)
	index := embedding.NewPostgresIndex(s.db, embedder, s.logger)

	ruleService := service.NewRuleService(ruleRepo, auditRepo, index, service.RuleServiceConfig{
		SimilarityThreshold: s.cfg.Embedding.SimilarityThreshold,
		TopK:                s.cfg.Embedding.TopK,
	}, s.logger)
	authService := service.NewAuthService(authRepo, s.cfg.Auth.JWTSecret,
		time.Duration(s.cfg.Auth.TokenTTLHours)*time.Hour, s.logger)

	detector := rule_engine.NewDetector(rule_engine.NewQuotedTermExtractor(), s.cfg.Detector.ContextWindow, s.logger)
	checker := compliance_checker.NewChecker(
		ruleRepo, submissionRepo, violationRepo, chunkRepo, auditRepo,
		detector, s.generator, s.reviewer,
		chunker.New(chunker.DefaultMinTokens, chunker.DefaultMaxTokens, s.logger),
		compliance_checker.Config{
			GenerateTimeout: time.Duration(s.cfg.Generation.TimeoutSecs) * time.Second,
			ReviewTimeout:   time.Duration(s.cfg.Review.TimeoutSecs) * time.Second,
		}, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	ruleHandler := handler.NewRuleHandler(ruleService, s.logger)
	agentHandler := handler.NewAgentHandler(checker, submissionRepo, violationRepo, s.logger)
	adminHandler := handler.NewAdminHandler(violationRepo, submissionRepo, auditRepo, s.logger)
	documentHandler := handler.NewDocumentHandler(s.cfg.Documents.Dir, auditRepo, s.logger)

	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/login", authHandler.Login)

	secret := []byte(s.cfg.Auth.JWTSecret)

	agent := s.router.Group("/api/agent")
	agent.Use(middleware.AuthMiddleware(secret, s.logger))
	agent.Use(middleware.RequireRole(s.logger, models.RoleAgent, models.RoleAdmin, models.RoleSuperAdmin))
	{
		agent.POST("/generate", agentHandler.Generate)
		agent.GET("/submissions/:id", agentHandler.GetSubmission)
	}

	admin := s.router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(secret, s.logger))
	admin.Use(middleware.RequireRole(s.logger, models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.GET("/violations", adminHandler.ListViolations)
		admin.GET("/analytics/rules", adminHandler.RuleAnalytics)
		admin.GET("/submissions", adminHandler.ListSubmissions)
		admin.GET("/audit", adminHandler.ListAuditLog)
	}

	superAdmin := s.router.Group("/api/super-admin")
	superAdmin.Use(middleware.AuthMiddleware(secret, s.logger))
	superAdmin.Use(middleware.RequireRole(s.logger, models.RoleSuperAdmin))
	{
		superAdmin.POST("/rules", ruleHandler.Create)
		superAdmin.POST("/rules/force-create", ruleHandler.ForceCreate)
		superAdmin.PUT("/rules/:id", ruleHandler.Update)
		superAdmin.DELETE("/rules/:id", ruleHandler.Deactivate)
		superAdmin.GET("/rules", ruleHandler.List)
		superAdmin.POST("/documents/upload", documentHandler.Upload)
		superAdmin.GET("/documents", documentHandler.List)
	}
}

func (s *Server) Run(addr string) error {
	s.logger.Info("Server starting", zap.String("addr", addr))
	return s.router.Run(addr)
}
