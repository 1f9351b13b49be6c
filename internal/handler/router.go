package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/middleware"
	"github.com/noah-isme/sma-records/internal/models"
)

// SessionGuard authenticates session tokens and answers role checks for the live session.
type SessionGuard interface {
	middleware.SessionAuthenticator
	middleware.RoleChecker
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Catalog       *CatalogHandler
	Sections      *SectionHandler
	Enrollments   *EnrollmentHandler
	Assignments   *AssignmentHandler
	Attendance    *AttendanceHandler
	Announcements *AnnouncementHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts the health checks at the root and the API under prefix.
func RegisterRoutes(r *gin.Engine, prefix string, guard SessionGuard, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("", middleware.Session(guard))
	admin := middleware.RequireRoles(guard, models.RoleAdmin)
	staff := middleware.RequireRoles(guard, models.RoleAdmin, models.RoleTeacher)

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/auth/me", h.Auth.Me)
	authed.POST("/auth/change-password", h.Auth.ChangePassword)

	users := authed.Group("/users")
	users.GET("", admin, h.Users.List)
	users.POST("", admin, h.Users.Create)
	users.GET("/:id", middleware.RequireRolesOrSelf(guard, "id", models.RoleAdmin), h.Users.Get)
	users.PUT("/:id", admin, h.Users.Update)
	users.DELETE("/:id", admin, h.Users.Delete)
	users.POST("/:id/deactivate", admin, h.Users.Deactivate)
	users.PUT("/:id/password", admin, h.Users.ResetPassword)

	authed.GET("/courses", h.Catalog.ListCourses)
	authed.GET("/courses/:id", h.Catalog.GetCourse)
	authed.POST("/courses", admin, h.Catalog.CreateCourse)
	authed.PUT("/courses/:id", admin, h.Catalog.UpdateCourse)
	authed.DELETE("/courses/:id", admin, h.Catalog.DeleteCourse)

	authed.GET("/semesters", h.Catalog.ListSemesters)
	authed.GET("/semesters/active", h.Catalog.ActiveSemester)
	authed.POST("/semesters", admin, h.Catalog.CreateSemester)
	authed.POST("/semesters/:id/activate", admin, h.Catalog.ActivateSemester)
	authed.DELETE("/semesters/:id", admin, h.Catalog.DeleteSemester)

	authed.GET("/classrooms", h.Catalog.ListClassrooms)
	authed.POST("/classrooms", admin, h.Catalog.CreateClassroom)
	authed.DELETE("/classrooms/:id", admin, h.Catalog.DeleteClassroom)

	authed.GET("/time-slots", h.Catalog.ListTimeSlots)
	authed.POST("/time-slots", admin, h.Catalog.CreateTimeSlot)
	authed.DELETE("/time-slots/:id", admin, h.Catalog.DeleteTimeSlot)

	sections := authed.Group("/sections")
	sections.GET("", h.Sections.List)
	sections.POST("", admin, h.Sections.Create)
	sections.GET("/:id", h.Sections.Get)
	sections.DELETE("/:id", admin, h.Sections.Delete)
	sections.GET("/:id/schedule", h.Sections.ListSchedule)
	sections.POST("/:id/schedule", admin, h.Sections.AddScheduleEntry)
	sections.GET("/:id/enrollments", staff, h.Enrollments.ListBySection)
	sections.POST("/:id/enrollments", h.Enrollments.Enroll)
	sections.GET("/:id/roster", staff, h.Enrollments.Roster)
	sections.GET("/:id/assignments", h.Assignments.ListBySection)
	sections.GET("/:id/attendance", staff, h.Attendance.ListBySection)
	sections.GET("/:id/students/:studentId/grade", h.Assignments.WeightedGrade)
	sections.GET("/:id/students/:studentId/attendance", h.Attendance.Summary)
	authed.DELETE("/schedule/:entryId", admin, h.Sections.DeleteScheduleEntry)
	authed.GET("/teachers/:id/timetable", staff, h.Sections.Timetable)

	authed.DELETE("/enrollments/:id", admin, h.Enrollments.Withdraw)
	authed.POST("/enrollments/:id/complete", staff, h.Enrollments.Complete)
	authed.GET("/students/:id/enrollments", h.Enrollments.ListByStudent)
	authed.GET("/students/:id/transcript", h.Enrollments.Transcript)

	authed.POST("/assignments", staff, h.Assignments.Create)
	authed.GET("/assignments/:id", h.Assignments.Get)
	authed.DELETE("/assignments/:id", staff, h.Assignments.Delete)
	authed.POST("/assignments/:id/submissions", h.Assignments.Submit)
	authed.GET("/assignments/:id/submissions", staff, h.Assignments.ListSubmissions)
	authed.GET("/submissions/:id/attachment", h.Assignments.Attachment)
	authed.POST("/submissions/:id/grade", staff, h.Assignments.Grade)

	authed.POST("/attendance", staff, h.Attendance.Record)
	authed.GET("/attendance/:id", staff, h.Attendance.Entries)
	authed.DELETE("/attendance/:id", staff, h.Attendance.Delete)

	authed.GET("/announcements", h.Announcements.Board)
	authed.POST("/announcements", staff, h.Announcements.Post)
	authed.DELETE("/announcements/:id", staff, h.Announcements.Delete)
}
