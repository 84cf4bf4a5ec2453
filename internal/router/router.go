package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/handlers"
	"github.com/projectbuddy/projectbuddy/internal/middleware"
)

type Options struct {
	AllowedOrigins []string
	AuthPerMinute  int
}

func NewRouter(h *handlers.Handler, authenticator *middleware.Authenticator, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := authenticator.Required()
	optionalAuth := authenticator.Optional()
	limiter := middleware.NewRateLimiter(opts.AuthPerMinute)

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(middleware.MetricsHandler()))
	r.GET("/ws/notifications", requireAuth, h.NotificationSocket)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", limiter.Handler(), h.Register)
			auth.POST("/login", limiter.Handler(), h.Login)
			auth.POST("/logout", h.Logout)
			auth.GET("/me", requireAuth, h.Me)
			auth.PUT("/password", requireAuth, limiter.Handler(), h.ChangePassword)
			auth.DELETE("/account", requireAuth, h.DeleteAccount)
		}

		users := api.Group("/users")
		{
			users.GET("/search", optionalAuth, h.SearchUsers)
			users.GET("/suggestions", requireAuth, h.ConnectionSuggestions)
			users.PUT("/me", requireAuth, h.UpdateProfile)
			users.GET("/:id", h.GetUser)
			users.GET("/:id/posts", optionalAuth, h.ListUserPosts)
		}

		connections := api.Group("/connections", requireAuth)
		{
			connections.GET("", h.ListConnections)
			connections.GET("/pending", h.ListPendingConnections)
			connections.GET("/sent", h.ListSentConnections)
			connections.GET("/suggestions", h.ConnectionSuggestions)
			connections.GET("/status/:userId", h.ConnectionStatus)
			connections.POST("/send", h.SendConnection)
			connections.PUT("/:id/respond", h.RespondConnection)
			connections.DELETE("/:id", h.DeleteConnection)
		}

		teams := api.Group("/teams")
		{
			teams.GET("", optionalAuth, h.ListTeams)
			teams.POST("", requireAuth, h.CreateTeam)
			teams.GET("/:id", optionalAuth, h.GetTeam)
			teams.PUT("/:id", requireAuth, h.UpdateTeam)
			teams.DELETE("/:id", requireAuth, h.DeleteTeam)
			teams.GET("/:id/posts", optionalAuth, h.ListTeamPosts)

			teams.POST("/:id/join", requireAuth, h.JoinTeam)
			teams.POST("/:id/leave", requireAuth, h.LeaveTeam)
			teams.POST("/:id/follow", requireAuth, h.FollowTeam)
			teams.DELETE("/:id/follow", requireAuth, h.UnfollowTeam)

			teams.GET("/:id/requests", requireAuth, h.ListJoinRequests)
			teams.POST("/:id/join-request", requireAuth, h.RequestToJoinTeam)
			teams.POST("/:id/requests/:requestId/approve", requireAuth, h.ApproveJoinRequest)
			teams.POST("/:id/requests/:requestId/reject", requireAuth, h.RejectJoinRequest)

			teams.GET("/:id/members", optionalAuth, h.ListTeamMembers)
			teams.POST("/:id/members", requireAuth, h.InviteTeamMember)
			teams.PUT("/:id/members/:userId", requireAuth, h.ChangeTeamMemberRole)
			teams.DELETE("/:id/members/:userId", requireAuth, h.RemoveTeamMember)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", optionalAuth, h.ListProjects)
			projects.POST("", requireAuth, h.CreateProject)
			projects.GET("/:id", optionalAuth, h.GetProject)
			projects.PUT("/:id", requireAuth, h.UpdateProject)
			projects.DELETE("/:id", requireAuth, h.DeleteProject)

			projects.GET("/:id/members", optionalAuth, h.ListProjectMembers)
			projects.POST("/:id/members", requireAuth, h.AddProjectMember)
			projects.PUT("/:id/members/:userId", requireAuth, h.ChangeProjectMemberRole)
			projects.DELETE("/:id/members/:userId", requireAuth, h.RemoveProjectMember)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", optionalAuth, h.ListPosts)
			posts.POST("", requireAuth, h.CreatePost)
			posts.GET("/user/feed", requireAuth, h.Feed)
			posts.GET("/trending", h.Trending)
			posts.GET("/bookmarks", requireAuth, h.ListBookmarks)

			posts.GET("/:id", optionalAuth, h.GetPost)
			posts.PUT("/:id", requireAuth, h.UpdatePost)
			posts.DELETE("/:id", requireAuth, h.DeletePost)

			posts.POST("/:id/reactions", requireAuth, h.React)
			posts.DELETE("/:id/reactions", requireAuth, h.Unreact)

			posts.GET("/:id/comments", optionalAuth, h.ListComments)
			posts.POST("/:id/comments", requireAuth, h.CreateComment)
			posts.DELETE("/:id/comments/:commentId", requireAuth, h.DeleteComment)

			posts.POST("/:id/share", requireAuth, h.SharePost)
			posts.POST("/:id/bookmark", requireAuth, h.BookmarkPost)
			posts.DELETE("/:id/bookmark", requireAuth, h.UnbookmarkPost)
		}

		notifications := api.Group("/notifications", requireAuth)
		{
			notifications.GET("", h.ListNotifications)
			notifications.GET("/unread-count", h.UnreadNotificationCount)
			notifications.PUT("/read-all", h.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", h.MarkNotificationRead)
			notifications.DELETE("/:id", h.DeleteNotification)
		}

		messages := api.Group("/messages", requireAuth)
		{
			messages.GET("/conversations", h.ListConversations)
			messages.POST("", h.SendMessage)
			messages.GET("/:userId", h.GetThread)
			messages.PUT("/:userId/read", h.MarkThreadRead)
		}
	}

	return r
}
