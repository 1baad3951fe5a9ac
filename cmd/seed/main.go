package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"invest-portal/config"
	"invest-portal/internal/dto"
	"invest-portal/internal/model"
	"invest-portal/internal/repository"
	"invest-portal/internal/service"
	"invest-portal/pkg/database"
	applogger "invest-portal/pkg/logger"
)

// 初始化管理员账户与起始激活码。
// 管理员已存在时跳过创建，重复执行安全。
func main() {
	var (
		adminUser = flag.String("admin-user", "admin", "管理员用户名")
		adminPass = flag.String("admin-pass", "", "管理员密码（必填）")
		adminMail = flag.String("admin-email", "admin@example.com", "管理员邮箱")
		codeCount = flag.Int("codes", 0, "起始激活码数量")
		industry  = flag.String("industry", "", "起始激活码行业")
	)
	flag.Parse()

	if *adminPass == "" {
		fmt.Fprintln(os.Stderr, "必须通过 -admin-pass 指定管理员密码")
		os.Exit(1)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	repo := repository.NewRepository(db)
	ctx := context.Background()

	if err := seedAdmin(ctx, repo, *adminUser, *adminPass, *adminMail, logger); err != nil {
		logger.Fatal("创建管理员失败", zap.Error(err))
	}

	if *codeCount > 0 {
		if err := seedInviteCodes(ctx, repo, *codeCount, *industry, logger); err != nil {
			logger.Fatal("创建起始激活码失败", zap.Error(err))
		}
	}

	logger.Info("初始化完成")
}

func seedAdmin(ctx context.Context, repo *repository.Repository, username, password, email string, logger *zap.Logger) error {
	_, err := repo.User.GetByUsername(ctx, username)
	if err == nil {
		logger.Info("管理员已存在，跳过创建", zap.String("username", username))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Industries:   model.IndustryList{model.IndustryAll},
	}
	if err := repo.User.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("管理员已创建", zap.String("username", username))
	return nil
}

func seedInviteCodes(ctx context.Context, repo *repository.Repository, count int, industry string, logger *zap.Logger) error {
	if industry == "" {
		return service.ErrInvalidIndustry
	}

	inviteSvc := service.NewInviteService(repo, logger)
	codes, err := inviteSvc.Issue(ctx, &dto.CreateInviteCodesRequest{
		Industry:       industry,
		Count:          count,
		ValidityMonths: model.ValidityOneYear,
	})
	if err != nil {
		return err
	}

	for _, c := range codes {
		fmt.Println(c.Code)
	}
	logger.Info("起始激活码已创建", zap.Int("count", len(codes)), zap.String("industry", industry))
	return nil
}
