package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/booking-api/api/swagger"
	"github.com/noah-isme/booking-api/internal/middleware"
	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/pkg/config"
	"github.com/noah-isme/booking-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/booking-api/pkg/middleware/requestid"
)

var opsPaths = []string{"/health", "/ready", "/metrics"}

func newRouter(cfg *config.Config, a *app, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, opsPaths...))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics, opsPaths...))

	r.GET("/health", a.ops.Health)
	r.GET("/ready", a.ops.Ready)
	r.GET("/metrics", a.ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authn := middleware.JWT(a.authService)
	owners := middleware.RequireRoles(models.RoleOwner, models.RoleAdmin)
	admins := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group(cfg.APIPrefix)

	api.POST("/login/access-token", a.auth.Login)

	users := api.Group("/users")
	users.POST("/", a.auth.Register)
	users.GET("/me", authn, a.auth.Me)
	users.POST("/me/request-owner", authn, a.owners.RequestOwner)
	users.GET("/:id", a.auth.Profile)

	userAdmin := users.Group("/admin", authn, admins)
	userAdmin.GET("/owner-requests", a.owners.ListRequests)
	userAdmin.POST("/approve-owner/:id", a.owners.Approve)
	userAdmin.POST("/reject-owner/:id", a.owners.Reject)
	userAdmin.GET("/owners", a.owners.ListOwners)

	businesses := api.Group("/businesses")
	businesses.GET("/", a.businesses.ListPublished)
	businesses.GET("/:id", middleware.OptionalJWT(a.authService), a.businesses.Detail)
	businesses.GET("/:id/available-slots", a.availability.AvailableSlots)

	businesses.POST("/admin/assign-business", authn, admins, a.businesses.Assign)

	mine := businesses.Group("", authn, owners)
	mine.GET("/my-businesses", a.businesses.ListMine)
	mine.POST("/my-business", a.businesses.Create)
	mine.PUT("/my-business/:id", a.businesses.Update)
	mine.POST("/my-business/:id/publish", a.businesses.Publish)
	mine.GET("/my-business/:id/schedule", a.schedules.Get)
	mine.PUT("/my-business/:id/schedule", a.schedules.Update)

	employees := api.Group("/employees")
	employees.GET("/businesses/:id/employees", a.employees.List)
	staff := employees.Group("", authn, owners)
	staff.POST("/businesses/:id/employees", a.employees.Create)
	staff.PUT("/employees/:id/allowed-slots", a.employees.UpdateAllowedSlots)
	staff.DELETE("/employees/:id", a.employees.Deactivate)

	appointments := api.Group("/appointments", authn)
	appointments.POST("/", a.limiter.Handler(), a.appointments.Create)
	appointments.GET("/me", a.appointments.ListMine)
	appointments.GET("/my-appointments", a.appointments.ListMine)
	appointments.GET("/business/:id/with-users", owners, a.appointments.ListByBusiness)
	appointments.GET("/business/:id", owners, a.appointments.ListByBusiness)
	appointments.GET("/:id", a.appointments.Get)
	appointments.POST("/:id/cancel", a.appointments.Cancel)
	appointments.GET("/:id/qr", a.appointments.QRCode)
	appointments.GET("/:id/pdf", a.appointments.PDF)
	appointments.POST("/:id/send-pdf", a.limiter.Handler(), a.appointments.SendPDF)
	appointments.POST("/:id/send-cancellation-email", a.limiter.Handler(), a.appointments.SendCancellationEmail)

	reviews := api.Group("/reviews")
	reviews.GET("/business/:id", a.reviews.ListByBusiness)
	reviews.POST("/", authn, a.reviews.Create)
	reviews.GET("/eligibility/:id", authn, a.reviews.Eligibility)
	reviews.POST("/:id/reply", authn, owners, a.reviews.Reply)

	return r
}
