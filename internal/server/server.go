package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/storage"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Board{},
		&model.BoardMember{},
		&model.List{},
		&model.Card{},
		&model.Label{},
		&model.CardLabel{},
		&model.Checklist{},
		&model.ChecklistItem{},
		&model.FileAttachment{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	zap.L().Info("connected to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	store, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init upload directory: %w", err)
	}

	r := gin.New()
	r.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(zap.L(), true))

	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	listRepo := repository.NewListRepository(db)
	cardRepo := repository.NewCardRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	access := service.NewAccessService(boardRepo, memberRepo, listRepo, cardRepo, checklistRepo, attachmentRepo, labelRepo)
	hierarchy := service.NewHierarchyService(access, userRepo, boardRepo, memberRepo, listRepo, cardRepo, checklistRepo, labelRepo, attachmentRepo, store)
	aggregator := service.NewBoardAggregator(access, userRepo, boardRepo, memberRepo, listRepo, cardRepo, checklistRepo, labelRepo, attachmentRepo)
	search := service.NewSearchService(access, userRepo, boardRepo, listRepo, cardRepo, checklistRepo, labelRepo)
	attachments := service.NewAttachmentService(access, cardRepo, attachmentRepo, store)

	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret)
	boardHandler := handler.NewBoardHandler(hierarchy, aggregator)
	memberHandler := handler.NewMemberHandler(hierarchy, aggregator)
	listHandler := handler.NewListHandler(hierarchy)
	cardHandler := handler.NewCardHandler(hierarchy, aggregator)
	checklistHandler := handler.NewChecklistHandler(hierarchy, aggregator)
	labelHandler := handler.NewLabelHandler(hierarchy, aggregator)
	attachmentHandler := handler.NewAttachmentHandler(attachments, aggregator)
	searchHandler := handler.NewSearchHandler(search)

	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		api.GET("/users/search", userHandler.Search)

		api.POST("/boards", boardHandler.Create)
		api.GET("/boards", boardHandler.GetAll)
		api.GET("/boards/:id", boardHandler.GetByID)
		api.PUT("/boards/:id", boardHandler.Update)
		api.DELETE("/boards/:id", boardHandler.Delete)

		api.GET("/boards/:id/members", memberHandler.List)
		api.POST("/boards/:id/members", memberHandler.Add)
		api.DELETE("/boards/:id/members/:user_id", memberHandler.Remove)

		api.POST("/boards/:id/lists", listHandler.Create)
		api.PUT("/lists/:id", listHandler.Update)
		api.DELETE("/lists/:id", listHandler.Delete)

		api.POST("/lists/:id/cards", cardHandler.Create)
		api.GET("/cards/:id", cardHandler.GetByID)
		api.PUT("/cards/:id", cardHandler.Update)
		api.DELETE("/cards/:id", cardHandler.Delete)

		api.GET("/boards/:id/labels", labelHandler.GetByBoard)
		api.POST("/boards/:id/labels", labelHandler.Create)
		api.PUT("/labels/:id", labelHandler.Update)
		api.DELETE("/labels/:id", labelHandler.Delete)
		api.GET("/cards/:id/labels", cardHandler.GetLabels)
		api.POST("/cards/:id/labels/:label_id", cardHandler.AddLabel)
		api.DELETE("/cards/:id/labels/:label_id", cardHandler.RemoveLabel)

		api.POST("/cards/:id/checklists", checklistHandler.Create)
		api.GET("/cards/:id/checklists", checklistHandler.GetByCard)
		api.PUT("/checklists/:id", checklistHandler.Update)
		api.DELETE("/checklists/:id", checklistHandler.Delete)
		api.POST("/checklists/:id/items", checklistHandler.AddItem)
		api.PUT("/checklist-items/:id", checklistHandler.UpdateItem)
		api.DELETE("/checklist-items/:id", checklistHandler.DeleteItem)

		api.POST("/cards/:id/attachments", attachmentHandler.Upload)
		api.GET("/cards/:id/attachments", attachmentHandler.List)
		api.GET("/attachments/:id/download", attachmentHandler.Download)
		api.DELETE("/attachments/:id", attachmentHandler.Delete)

		api.GET("/search", searchHandler.Global)
		api.GET("/boards/:id/search", searchHandler.Board)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		zap.L().Info("server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("failed to listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Fatal("server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("server exited")
}
