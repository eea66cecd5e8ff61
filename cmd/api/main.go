package main

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/loadboard-app/loadboard/internal/alerts"
	"github.com/loadboard-app/loadboard/internal/authz"
	"github.com/loadboard-app/loadboard/internal/complaint"
	"github.com/loadboard-app/loadboard/internal/config"
	"github.com/loadboard-app/loadboard/internal/db"
	"github.com/loadboard-app/loadboard/internal/httpx"
	appmw "github.com/loadboard-app/loadboard/internal/middleware"
	"github.com/loadboard-app/loadboard/internal/moderation"
	"github.com/loadboard-app/loadboard/internal/offer"
	"github.com/loadboard-app/loadboard/internal/rating"
	"github.com/loadboard-app/loadboard/internal/shipment"
	"github.com/loadboard-app/loadboard/internal/triage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("bootstrap database pool")
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.WithError(err).Fatal("ensure schema")
	}

	notifier := alerts.NewService(pool, cfg.RedisAddr, log)
	defer notifier.Close()

	shipmentRepo := shipment.NewPGRepository(pool)
	offerRepo := offer.NewPGRepository(pool)
	ratingRepo := rating.NewPGRepository(pool)
	complaintRepo := complaint.NewPGRepository(pool)
	moderationRepo := moderation.NewPGRepository(pool)

	shipmentSvc := shipment.NewService(shipmentRepo, notifier, log)
	offerSvc := offer.NewService(offerRepo, shipmentRepo, notifier, log)
	ratingSvc := rating.NewService(ratingRepo, shipmentRepo, notifier, log)
	complaintSvc := complaint.NewService(complaintRepo, shipmentRepo, notifier, log)
	moderationSvc := moderation.NewService(moderationRepo, notifier, log)
	triageSvc := triage.NewService(complaintRepo, moderationRepo, moderationRepo)

	shipments := shipment.NewHandler(shipmentSvc)
	offers := offer.NewHandler(offerSvc)
	ratings := rating.NewHandler(ratingSvc)
	complaints := complaint.NewHandler(complaintSvc)
	mod := moderation.NewHandler(moderationSvc)
	inbox := triage.NewHandler(triageSvc)
	notifications := alerts.NewHandler(pool)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpx.NewValidator()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public reads
	e.GET("/api/users/:id/ratings", ratings.SummaryFor)

	// Authenticated group
	api := e.Group("/api")
	api.Use(appmw.JWTAuth(cfg.JWTSecret))

	// Shipment lifecycle
	api.POST("/shipments", shipments.Create, appmw.RequireRoles(authz.RoleSender, authz.RoleAdmin))
	api.GET("/shipments", shipments.List)
	api.GET("/shipments/:id", shipments.Get)
	api.PUT("/shipments/:id", shipments.UpdateStatus)
	api.POST("/shipments/:id/cancel", shipments.Cancel)
	api.POST("/shipments/:id/assign-carrier", shipments.AssignCarrier)

	// Offer lifecycle
	api.POST("/offers", offers.Create, appmw.RequireRoles(authz.RoleCarrier))
	api.GET("/offers", offers.List)
	api.POST("/offers/:id/accept", offers.Accept)
	api.POST("/offers/:id/reject", offers.Reject)

	// Ratings
	api.POST("/ratings", ratings.Submit)

	// Complaints / disputes
	api.POST("/complaints", complaints.Open)
	api.GET("/complaints", complaints.List)
	api.GET("/disputes", complaints.List)

	// Notifications
	api.GET("/notifications", notifications.List)
	api.POST("/notifications/:id/read", notifications.MarkRead)

	// Admin back-office
	admin := api.Group("/admin")
	admin.Use(appmw.AdminGuard)
	admin.GET("/users", mod.ListUsers)
	admin.PATCH("/users/:id/active", mod.SetUserActive)
	admin.POST("/flags", mod.CreateFlag)
	admin.GET("/flags", mod.ListFlags)
	admin.PATCH("/complaints/:id/status", complaints.Transition)
	admin.GET("/audit", mod.ListAudit)
	admin.GET("/inbox", inbox.Inbox)
	admin.GET("/planner/briefing", inbox.Briefing)

	log.WithField("port", cfg.Port).Info("api server listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
