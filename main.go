package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fintrack/cache"
	"fintrack/config"
	"fintrack/database"
	"fintrack/events"
	"fintrack/llm"
	"fintrack/logger"
	"fintrack/middleware"
	"fintrack/prompt"
	"fintrack/router"
	"fintrack/service"

	"github.com/spf13/cobra"
)

// @title Fintrack API
// @version 1.0
// @description Finanças pessoais: carteiras, categorias, transações, estatísticas, exportação e planos financeiros gerados por IA
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile string
	port       string
	version    = "1.0.0"

	rootCmd = &cobra.Command{
		Use:          "fintrack",
		Short:        "个人记账与 AI 理财计划服务",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "外部配置文件路径（可选）")
	rootCmd.PersistentFlags().StringVarP(&port, "port", "p", "", "监听端口，如: 8080 或 :8080")
	rootCmd.Version = version
	// 不带子命令时直接启动服务
	rootCmd.RunE = runServe

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE:  runServe,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		RunE:  runMigrate,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fintrack v%s\n", version)
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 加载配置、初始化日志与数据库
func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger.Init(cfg.Log)
	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		return nil, fmt.Errorf("数据库初始化失败: %w", err)
	}
	return cfg, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if _, err := setup(); err != nil {
		return err
	}
	if err := database.Migrate(database.DB); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	logger.L().Info("数据库迁移完成")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	log := logger.Component("server")

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Info("命令行指定端口", "port", port)
	}

	if err := database.Migrate(database.DB); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	middleware.InitJWT(cfg)

	publisher, err := events.NewPublisher(cfg.Events)
	if err != nil {
		// 消息队列不可用时不影响主流程
		log.Warn("事件发布器初始化失败，已禁用", "error", err)
		publisher = events.Noop{}
	}
	defer publisher.Close()

	store, err := cache.NewMemory(cache.DefaultOptions())
	if err != nil {
		return fmt.Errorf("初始化缓存失败: %w", err)
	}
	defer store.Close()

	planner, err := buildPlanner(cfg, store, publisher)
	if err != nil {
		return err
	}

	r := router.SetupRouter(cfg, router.Dependencies{
		Store:   store,
		Planner: planner,
		Events:  publisher,
		Email:   service.NewEmailService(&cfg.Email),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("服务已启动",
		"addr", cfg.Server.Port,
		"swagger", fmt.Sprintf("http://localhost%s/swagger/index.html", cfg.Server.Port),
		"api", fmt.Sprintf("http://localhost%s/api/v1/", cfg.Server.Port),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	log.Info("正在关闭服务")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// buildPlanner 组装 AI 计划生成流程
func buildPlanner(cfg *config.Config, store cache.Store, publisher events.Publisher) (*service.Planner, error) {
	completer, err := llm.NewCompleter(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("初始化模型客户端失败: %w", err)
	}

	analytics := service.NewAnalytics(database.DB, cfg.Location())
	limiter := service.NewPlanLimiter(store, cfg.AIPlan.RateLimit, cfg.AIPlan.RateWindow())

	return service.NewPlanner(
		limiter,
		service.NewContextBuilder(analytics),
		completer,
		service.NewPlanStore(database.DB),
		publisher,
		prompt.NewValidator(cfg.Prompt.MinLength, cfg.Prompt.MaxLength),
		service.PlannerOptions{
			Model:         cfg.LLM.Model,
			Temperature:   cfg.LLM.Temperature,
			MaxTokens:     cfg.LLM.MaxTokens,
			Timeout:       cfg.LLM.Timeout(),
			TopCategories: cfg.AIPlan.TopCategories,
		},
	), nil
}
