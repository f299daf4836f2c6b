package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-gateway/internal/handler"
	"github.com/noah-isme/school-gateway/internal/middleware"
	"github.com/noah-isme/school-gateway/internal/models"
	"github.com/noah-isme/school-gateway/internal/service"
	"github.com/noah-isme/school-gateway/pkg/config"
	"github.com/noah-isme/school-gateway/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-gateway/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth       *handler.AuthHandler
	leaves     *handler.LeaveHandler
	complaints *handler.ComplaintHandler
	attendance *handler.AttendanceHandler
	fees       *handler.FeesHandler
	reports    *handler.ExamReportHandler
	notices    *handler.NoticeHandler
	homework   *handler.HomeworkHandler
	uploads    *handler.UploadHandler
	exports    *handler.ExportHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routeHandlers, auth *service.AuthService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	staff := middleware.RequireStaff()
	admin := middleware.RequireRoles(models.RoleAdmin)
	audit := func(action string) gin.HandlerFunc { return middleware.Audit(logr, action) }

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)
	api.GET("/exports/download", h.exports.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))
	secured.POST("/auth/logout", h.auth.Logout)

	secured.GET("/leaves", h.leaves.List)
	secured.POST("/leaves", audit("leave.apply"), h.leaves.Apply)
	secured.POST("/leaves/:id/status", staff, audit("leave.status"), h.leaves.UpdateStatus)

	secured.GET("/complaints", h.complaints.List)
	secured.POST("/complaints", audit("complaint.create"), h.complaints.Create)
	secured.POST("/complaints/:id/status", staff, audit("complaint.status"), h.complaints.UpdateStatus)

	secured.GET("/attendance", h.attendance.Sheet)
	secured.POST("/attendance", staff, audit("attendance.mark"), h.attendance.Mark)
	secured.GET("/attendance/summary", h.attendance.Summary)
	secured.GET("/attendance/export", staff, h.exports.Attendance)

	secured.GET("/fees/dues", h.fees.Dues)
	secured.GET("/fees/dues/export", staff, h.exports.Dues)
	secured.GET("/fees/dues/:studentId", h.fees.StudentDues)
	secured.GET("/fees/payments", h.fees.Payments)
	secured.POST("/fees/payments", admin, audit("fees.payment"), h.fees.RecordPayment)
	secured.GET("/fees/payments/:receiptId/receipt", h.fees.Receipt)
	secured.GET("/fees/payments/:receiptId/receipt/pdf", h.exports.Receipt)

	secured.GET("/exam-reports/:studentId", h.reports.Get)
	secured.GET("/exam-reports/:studentId/pdf", h.exports.ExamReport)

	secured.GET("/notices", h.notices.List)
	secured.POST("/notices", staff, audit("notice.create"), h.notices.Create)

	secured.GET("/homework", h.homework.List)
	secured.POST("/homework", staff, audit("homework.create"), h.homework.Create)

	secured.POST("/uploads", audit("upload.submit"), h.uploads.Submit)
	secured.GET("/uploads/:id", h.uploads.Get)
	secured.DELETE("/uploads/:id", audit("upload.cancel"), h.uploads.Cancel)

	return r
}
