package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"socialfeed-backend/config"
	"socialfeed-backend/internal/api/comment"
	"socialfeed-backend/internal/api/friend"
	"socialfeed-backend/internal/api/post"
	"socialfeed-backend/internal/api/reaction"
	"socialfeed-backend/internal/api/user"
	"socialfeed-backend/internal/cache"
	"socialfeed-backend/internal/middleware"
	"socialfeed-backend/internal/repository/mysql"
	"socialfeed-backend/internal/service"
	"socialfeed-backend/internal/storage"
	"socialfeed-backend/internal/util"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	if err = db.Ping(); err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 初始化 Redis（限流）
	rdb, err := cache.NewRedisCache(&config.AppConfig)
	if err != nil {
		util.Logger.Fatal("连接Redis失败", zap.Error(err))
	}
	defer rdb.Close()
	util.Logger.Info("Redis连接成功")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("reaction_kind", util.ValidateReactionKind)
	}

	// 确保上传文件夹存在
	ensureUploadsFolder()

	// 初始化存储后端
	store, err := storage.New(&config.AppConfig)
	if err != nil {
		util.Logger.Fatal("初始化存储失败", zap.Error(err))
	}

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	postRepo := mysql.NewPostRepository(db)
	commentRepo := mysql.NewCommentRepository(db)
	reactionRepo := mysql.NewReactionRepository(db)
	friendRepo := mysql.NewFriendRepository(db)

	emailService := service.NewEmailService()
	userService := service.NewUserService(userRepo, emailService)
	commentService := service.NewCommentService(commentRepo, postRepo, reactionRepo, userRepo, store)
	postService := service.NewPostService(postRepo, reactionRepo, commentService, store)
	reactionService := service.NewReactionService(reactionRepo)
	friendService := service.NewFriendService(friendRepo, userRepo)

	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService, store)
	postHandler := post.NewPostHandler(postService, store)
	commentHandler := comment.NewCommentHandler(commentService, store)
	reactionHandler := reaction.NewReactionHandler(reactionService)
	friendHandler := friend.NewFriendHandler(friendService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.New()
	r.Use(gin.Logger())

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}
	r.Use(cors.New(corsConfig))

	// 静态文件的CORS处理
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
		}
		c.Next()
	})

	// 配置静态文件服务
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	// 定义 API 路由
	api := r.Group("/api")
	{
		// 公开路由，按IP限流
		api.POST("/register",
			middleware.RateLimitMiddleware(rdb, "register", 5, time.Minute),
			authHandler.Register)
		api.POST("/login",
			middleware.RateLimitMiddleware(rdb, "login", 10, time.Minute),
			authHandler.Login)
		api.POST("/password/reset/request",
			middleware.RateLimitMiddleware(rdb, "password_reset", 5, time.Minute),
			authHandler.RequestPasswordReset)
		api.POST("/password/reset",
			middleware.RateLimitMiddleware(rdb, "password_reset", 5, time.Minute),
			authHandler.ResetPassword)

		// 需要认证的路由，按用户限流
		authorized := api.Group("/")
		authorized.Use(
			middleware.AuthMiddleware(userService),
			middleware.UserRateLimitMiddleware(rdb, "api", 60, time.Minute),
		)
		{
			authorized.GET("/user", profileHandler.GetCurrentUser)
			authorized.POST("/logout", authHandler.Logout)
			authorized.POST("/logout/all", authHandler.LogoutAll)
			authorized.POST("/refresh", authHandler.RefreshToken)

			authorized.PUT("/profile", profileHandler.UpdateProfile)
			authorized.POST("/profile", profileHandler.UpdateProfile)
			authorized.PUT("/profile/password", profileHandler.UpdatePassword)

			authorized.GET("/posts", postHandler.ListFeed)
			authorized.POST("/posts", postHandler.Create)
			authorized.GET("/posts/:id", postHandler.GetPost)
			authorized.PUT("/posts/:id", postHandler.Update)
			authorized.POST("/posts/:id", postHandler.Update)
			authorized.DELETE("/posts/:id", postHandler.Delete)

			authorized.GET("/posts/:id/comments", commentHandler.ListByPost)
			authorized.POST("/comments", commentHandler.Create)
			authorized.PUT("/comments/:id", commentHandler.Update)
			authorized.DELETE("/comments/:id", commentHandler.Delete)

			authorized.POST("/likes/toggle", reactionHandler.Toggle)
			authorized.GET("/likes", reactionHandler.List)

			authorized.GET("/friends", friendHandler.ListFriends)
			authorized.GET("/friends/search", friendHandler.Search)
			authorized.GET("/friends/suggested", friendHandler.Suggested)
			authorized.GET("/friends/pending", friendHandler.Pending)
			authorized.POST("/friends/request", friendHandler.SendRequest)
			authorized.POST("/friends/request/:id/accept", friendHandler.Accept)
			authorized.POST("/friends/request/:id/reject", friendHandler.Reject)
		}
	}

	// 创建 http.Server 以支持优雅关闭
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
}
