package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/schradoc/rgs-silent-auction-sub000/internal/api"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/config"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/db"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/logger"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/notification"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository"
	"github.com/schradoc/rgs-silent-auction-sub000/internal/repository/dao"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate tables -> %w", err)
	}

	settingsRepo := repository.NewSettingsRepository(dao.NewSettingsDAO(postgresDB))
	if err = settingsRepo.EnsureExists(context.Background()); err != nil {
		return fmt.Errorf("failed to seed auction settings -> %w", err)
	}

	dispatcher, err := buildDispatcher(conf.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize notification dispatcher -> %w", err)
	}

	s := api.NewServer(conf, postgresDB, dispatcher)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func buildDispatcher(conf *config.RedisConfig) (notification.Dispatcher, error) {
	if conf == nil || conf.Addr == "" {
		zap.L().Info("no redis configured, notifications will be logged only")

		return notification.NewLogDispatcher(), nil
	}

	return notification.NewRedisDispatcher(conf.Addr, conf.Password, conf.DB)
}
