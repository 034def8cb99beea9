package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/schradoc/rgs-silent-auction-sub000/docs"
	v1 "github.com/schradoc/rgs-silent-auction-sub000/internal/api/handler/v1"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/api/middleware"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/config"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/notification"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository/dao"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB, dispatcher notification.Dispatcher) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	bidHandler, adminHandler := s.initHandlers(db, dispatcher)
	s.MountHandlers(bidHandler, adminHandler)

	return s
}

func (s *Server) initHandlers(db *gorm.DB, dispatcher notification.Dispatcher) (*v1.BidHandler, *v1.AdminHandler) {
	prizeRepo := repository.NewPrizeRepository(dao.NewPrizeDAO(db), dao.NewBidDAO(db))
	settingsRepo := repository.NewSettingsRepository(dao.NewSettingsDAO(db))
	winnerRepo := repository.NewWinnerRepository(dao.NewWinnerDAO(db), dao.NewBidDAO(db))
	bidderRepo := repository.NewBidderRepository(dao.NewBidderDAO(db))

	lockWait := time.Duration(s.Config.Auction.LockWaitMS) * time.Millisecond
	bidSvc := service.NewBidService(prizeRepo, settingsRepo, dispatcher, lockWait)
	winnerSvc := service.NewWinnerService(winnerRepo, prizeRepo, bidderRepo, dispatcher)
	auctionSvc := service.NewAuctionService(settingsRepo, prizeRepo, winnerSvc)

	return v1.NewBidHandler(bidSvc), v1.NewAdminHandler(auctionSvc, winnerSvc)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(bidHandler *v1.BidHandler, adminHandler *v1.AdminHandler) {
	const basePath = "/api/v1"

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)
	rateLimiter := middleware.NewBidRateLimiter(s.Config.Auction.BidRatePerMinute)

	bids := s.Router.Group(basePath, authenticator.VerifySession())
	{
		bids.POST("/bids", rateLimiter.Limit(), bidHandler.HandlePlaceBid)
		bids.GET("/bids", bidHandler.HandleGetBids)
		bids.GET("/prizes", bidHandler.HandleGetPrizes)
	}

	admin := s.Router.Group(basePath+"/admin", authenticator.VerifySession(), middleware.RequireAdmin())
	{
		admin.GET("/auction-state", adminHandler.HandleGetAuctionState)
		admin.POST("/auction-state", adminHandler.HandleUpdateAuctionState)
		admin.POST("/winners", adminHandler.HandleConfirmWinner)
		admin.DELETE("/winners", adminHandler.HandleRemoveWinner)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Silent Auction Bid Engine API"
	docs.SwaggerInfo.Description = "Bid placement and auction lifecycle engine for a timed silent auction."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
