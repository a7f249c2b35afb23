package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	httpadp "worklog-backend/internal/adapter/http"
	"worklog-backend/internal/adapter/middleware"
	"worklog-backend/internal/adapter/repository/sheet"
	"worklog-backend/internal/config"
	"worklog-backend/internal/domain/grid"
	"worklog-backend/internal/infrastructure/cache"
	"worklog-backend/internal/infrastructure/sheets"
	"worklog-backend/internal/infrastructure/workbook"
	ucapproval "worklog-backend/internal/usecase/approval"
	ucworklog "worklog-backend/internal/usecase/worklog"
)

func main() {
	_ = godotenv.Load()

	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	store, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("open backing store")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("connect redis")
	}
	defer func() { _ = rdb.Close() }()

	snapshot := cache.NewSnapshot(rdb, cfg.SheetID, cfg.CacheTTL())
	sessions := middleware.NewStore(rdb, cfg.SessionTTL())

	repo := sheet.NewWorklogRepository(store)
	worklogUC := ucworklog.NewUsecase(repo, snapshot)
	approvalUC := ucapproval.NewUsecase(repo, snapshot, ucapproval.Credentials{
		Username: cfg.AdminUser,
		Password: cfg.AdminPass,
	})

	storeMode := "sheet"
	if cfg.WorkbookPath != "" {
		storeMode = "workbook"
	}
	h := httpadp.NewHandler(storeMode)
	worklogH := httpadp.NewWorklogHandler(worklogUC)
	adminH := httpadp.NewAdminHandler(approvalUC, sessions)
	exportH := httpadp.NewExportHandler(repo, cfg.Worksheet)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	// routes
	e.GET("/health", h.Health)
	e.POST("/worklogs", worklogH.CheckIn)
	e.POST("/worklogs/checkout", worklogH.CheckOut)
	e.GET("/worklogs", worklogH.List)

	e.POST("/admin/login", adminH.Login)
	admin := e.Group("/admin", middleware.RequireSession(sessions))
	admin.POST("/logout", adminH.Logout)
	admin.POST("/worklogs/:row/approve", adminH.Verdict)
	admin.DELETE("/worklogs/:row", adminH.Delete)
	admin.GET("/export/csv", exportH.CSV)
	admin.GET("/export/xlsx", exportH.XLSX)
	admin.POST("/export/report", exportH.Report)

	addr := ":" + cfg.AppPort
	log.WithField("addr", addr).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// openStore picks the grid driver. A workbook path means a local .xlsx
// file; otherwise the remote sheet is opened with the service-account
// credentials from the environment.
func openStore(cfg *config.Config) (grid.Grid, error) {
	if cfg.WorkbookPath != "" {
		log.WithField("path", cfg.WorkbookPath).Info("using local workbook store")
		g, err := workbook.Open(cfg.WorkbookPath, cfg.Worksheet, sheet.Header)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	creds, err := cfg.Credentials()
	if err != nil {
		return nil, err
	}
	g, err := sheets.Open(context.Background(), creds, cfg.SheetID, cfg.Worksheet, cfg.StoreTimeout())
	if err != nil {
		return nil, err
	}
	return g, nil
}
