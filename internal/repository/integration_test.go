//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"invest-portal/internal/model"
	"invest-portal/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=invest_portal password=invest_portal_password dbname=invest_portal_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		fmt.Fprintf(os.Stderr, "创建 pgcrypto 扩展失败: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.AutoMigrate(
		&model.User{},
		&model.InviteCode{},
		&model.Investment{},
	); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func truncateAll(t *testing.T) {
	t.Helper()
	for _, table := range []string{"invite_codes", "investments", "users"} {
		if err := testDB.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			t.Fatalf("清空 %s 失败: %v", table, err)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// 激活码核销（compare-and-swap）
// ═══════════════════════════════════════════════════════════

func TestRedeemCAS(t *testing.T) {
	truncateAll(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	invite := &model.InviteCode{Code: "CASTEST1", Industry: "人工智能", ValidityMonths: 12}
	if err := repo.InviteCode.Create(ctx, invite); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.InviteCode.Redeem(ctx, "CASTEST1", "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Fatalf("首次核销应影响 1 行, got %d", rows)
	}

	// 二次核销失败
	rows, err = repo.InviteCode.Redeem(ctx, "CASTEST1", "user-2")
	if err != nil {
		t.Fatal(err)
	}
	if rows != 0 {
		t.Fatalf("重复核销应影响 0 行, got %d", rows)
	}

	stored, err := repo.InviteCode.GetByCode(ctx, "CASTEST1")
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Used || stored.UsedBy == nil || *stored.UsedBy != "user-1" {
		t.Errorf("核销记录不符: %+v", stored)
	}
}

func TestRedeemConcurrent(t *testing.T) {
	truncateAll(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	invite := &model.InviteCode{Code: "RACETEST", Industry: "新能源", ValidityMonths: 12}
	if err := repo.InviteCode.Create(ctx, invite); err != nil {
		t.Fatal(err)
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]int64, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rows, err := repo.InviteCode.Redeem(ctx, "RACETEST", fmt.Sprintf("user-%d", n))
			if err != nil {
				t.Errorf("并发核销出错: %v", err)
				return
			}
			results[n] = rows
		}(i)
	}
	wg.Wait()

	var success int64
	for _, rows := range results {
		success += rows
	}
	if success != 1 {
		t.Fatalf("并发核销应恰好一方成功, got %d", success)
	}
}

// ═══════════════════════════════════════════════════════════
// 投资数据过滤
// ═══════════════════════════════════════════════════════════

func seedInvestments(t *testing.T, repo *repository.Repository) {
	t.Helper()
	ctx := context.Background()
	rows := []*model.Investment{
		{CompanyName: "深度智言", Description: "大模型对话平台", Industry: "人工智能", Institution: "红杉中国"},
		{CompanyName: "星云机器人", Description: "工业机械臂", Industry: "人工智能", Institution: "高瓴创投"},
		{CompanyName: "绿洲电池", Description: "固态电池", Industry: "新能源", Institution: "红杉中国"},
		{CompanyName: "边界案例", Description: "脏数据", Industry: "人工智能 ", Institution: "无名机构"},
	}
	if err := repo.Investment.BatchCreate(ctx, rows); err != nil {
		t.Fatal(err)
	}
}

func TestInvestmentFilterExactMatch(t *testing.T) {
	truncateAll(t)
	repo := repository.NewRepository(testDB)
	seedInvestments(t, repo)

	// 精确匹配：尾随空格的行业标签不命中
	filter := &repository.InvestmentFilter{Industries: []string{"人工智能"}}
	rows, total, err := repo.Investment.List(context.Background(), filter, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("精确匹配应命中 2 条, got total=%d rows=%d", total, len(rows))
	}
}

func TestInvestmentSearchSharedPredicate(t *testing.T) {
	truncateAll(t)
	repo := repository.NewRepository(testDB)
	seedInvestments(t, repo)

	// 行业过滤与关键字搜索取交集，计数与数据共用谓词
	filter := &repository.InvestmentFilter{
		Industries: []string{"人工智能"},
		Query:      "红杉",
	}
	rows, total, err := repo.Investment.List(context.Background(), filter, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("交集应命中 1 条, got total=%d rows=%d", total, len(rows))
	}
	if rows[0].CompanyName != "深度智言" {
		t.Errorf("命中记录不符: %s", rows[0].CompanyName)
	}
}

func TestInvestmentSearchCaseInsensitive(t *testing.T) {
	truncateAll(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Investment.Create(ctx, &model.Investment{CompanyName: "CloudBase", Industry: "SaaS软件"}); err != nil {
		t.Fatal(err)
	}

	filter := &repository.InvestmentFilter{Query: "cloudbase"}
	_, total, err := repo.Investment.List(ctx, filter, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("ILIKE 搜索应大小写不敏感, got %d", total)
	}
}

// ═══════════════════════════════════════════════════════════
// 激活码列表联查使用者
// ═══════════════════════════════════════════════════════════

func TestInviteListJoinsUsername(t *testing.T) {
	truncateAll(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	expiry := time.Now().AddDate(0, 12, 0)
	user := &model.User{
		Username:     "zhangsan",
		Email:        "zhangsan@test.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		Industries:   model.IndustryList{"人工智能"},
		ExpiresAt:    &expiry,
	}
	if err := repo.User.Create(ctx, user); err != nil {
		t.Fatal(err)
	}

	invite := &model.InviteCode{Code: "JOINTEST", Industry: "人工智能", ValidityMonths: 12}
	if err := repo.InviteCode.Create(ctx, invite); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.InviteCode.Redeem(ctx, "JOINTEST", user.UserID); err != nil {
		t.Fatal(err)
	}

	rows, total, err := repo.InviteCode.List(ctx, "", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("总数不符: %d", total)
	}
	if rows[0].UsedByUsername == nil || *rows[0].UsedByUsername != "zhangsan" {
		t.Errorf("应联查出使用者用户名: %+v", rows[0].UsedByUsername)
	}
}

// ═══════════════════════════════════════════════════════════
// 事务回滚
// ═══════════════════════════════════════════════════════════

func TestTransactionRollbackKeepsCodeUnused(t *testing.T) {
	truncateAll(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	invite := &model.InviteCode{Code: "TXNROLL1", Industry: "人工智能", ValidityMonths: 12}
	if err := repo.InviteCode.Create(ctx, invite); err != nil {
		t.Fatal(err)
	}

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatal(err)
	}
	txRepo := repo.WithTx(tx)

	rows, err := txRepo.InviteCode.Redeem(ctx, "TXNROLL1", "user-1")
	if err != nil || rows != 1 {
		t.Fatalf("事务内核销失败: rows=%d err=%v", rows, err)
	}

	if err := tx.Rollback().Error; err != nil {
		t.Fatal(err)
	}

	stored, err := repo.InviteCode.GetByCode(ctx, "TXNROLL1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Used {
		t.Error("回滚后激活码应保持未使用")
	}
}
