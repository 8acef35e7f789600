package main

import (
	"flag"
	stdlog "log"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/clawcast/internal/config"
	"github.com/iWorld-y/clawcast/internal/logger"
	"github.com/iWorld-y/clawcast/internal/server"
	"github.com/iWorld-y/clawcast/internal/service"
	"github.com/iWorld-y/clawcast/pkg/engine"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "clawcast"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	// 1. 加载配置（环境变量覆盖凭证）
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		stdlog.Fatalf("无法加载配置文件: %v", err)
	}

	// 2. 初始化日志
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		stdlog.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动 clawcast 分析服务...")

	// 缺少凭证时仍然启动，但提前给运维留痕；请求侧会拿到安全的降级响应
	if missing := cfg.MissingCredential(); missing != "" {
		logger.Log.Warnf("配置不完整: %s 未设置", missing)
	}

	// 3. 初始化核心引擎
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	// 4. 组装 HTTP 服务
	klogger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)
	svc := service.NewAnalysisService(eng, klogger)
	srv := server.NewHTTPServer(&cfg.Server, svc)

	app := kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Logger(klogger),
		kratos.Server(srv),
	)

	if err := app.Run(); err != nil {
		logger.Log.Fatalf("服务退出: %v", err)
	}
}
