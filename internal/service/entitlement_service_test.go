package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"invest-portal/internal/model"
	apperrors "invest-portal/pkg/errors"
)

func setupEntitlementTest() (EntitlementService, *mockUserRepo) {
	repo, userRepo, _, _ := newMockRepository()
	return NewEntitlementService(repo, zap.NewNop()), userRepo
}

func TestResolveAdmin(t *testing.T) {
	svc, userRepo := setupEntitlementTest()

	// 管理员即使过期时间已过也放行，且不做行业过滤
	past := time.Now().Add(-24 * time.Hour)
	_ = userRepo.Create(nil, &model.User{
		UserID:     "admin-1",
		Username:   "admin",
		Role:       model.RoleAdmin,
		Industries: model.IndustryList{model.IndustryAll},
		ExpiresAt:  &past,
	})

	ent, err := svc.Resolve(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("管理员解析失败: %v", err)
	}
	if !ent.Unrestricted {
		t.Error("管理员应不受行业过滤限制")
	}
	if !ent.IsAdmin() {
		t.Error("IsAdmin 应为 true")
	}
	if ent.Warning != nil {
		t.Error("管理员不应有临期提醒")
	}
}

func TestResolveExpired(t *testing.T) {
	svc, userRepo := setupEntitlementTest()

	past := time.Now().Add(-time.Second)
	_ = userRepo.Create(nil, &model.User{
		UserID:     "u-expired",
		Username:   "zhangsan",
		Role:       model.RoleUser,
		Industries: model.IndustryList{"人工智能"},
		ExpiresAt:  &past,
	})

	_, err := svc.Resolve(context.Background(), "u-expired")
	var expired *apperrors.AccountExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("过期账户应返回 AccountExpiredError, got %v", err)
	}
}

func TestResolveWarning(t *testing.T) {
	svc, userRepo := setupEntitlementTest()

	soon := time.Now().Add(3 * 24 * time.Hour)
	_ = userRepo.Create(nil, &model.User{
		UserID:     "u-soon",
		Username:   "lisi",
		Role:       model.RoleUser,
		Industries: model.IndustryList{"新能源"},
		ExpiresAt:  &soon,
	})

	ent, err := svc.Resolve(context.Background(), "u-soon")
	if err != nil {
		t.Fatalf("临期账户应放行: %v", err)
	}
	if ent.Warning == nil {
		t.Fatal("剩余 3 天应附带临期提醒")
	}
	if ent.Warning.DaysRemaining != 3 {
		t.Errorf("DaysRemaining = %d, want 3", ent.Warning.DaysRemaining)
	}
	if ent.Unrestricted {
		t.Error("普通用户不应跳过行业过滤")
	}
}

func TestResolveAllSentinel(t *testing.T) {
	svc, userRepo := setupEntitlementTest()

	future := time.Now().Add(30 * 24 * time.Hour)
	_ = userRepo.Create(nil, &model.User{
		UserID:     "u-all",
		Username:   "wangwu",
		Role:       model.RoleUser,
		Industries: model.IndustryList{model.IndustryAll},
		ExpiresAt:  &future,
	})

	ent, err := svc.Resolve(context.Background(), "u-all")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if !ent.Unrestricted {
		t.Error("持有 all 哨兵的账户应不做行业过滤")
	}
}

func TestResolveEmptyIndustries(t *testing.T) {
	svc, userRepo := setupEntitlementTest()

	future := time.Now().Add(30 * 24 * time.Hour)
	_ = userRepo.Create(nil, &model.User{
		UserID:     "u-broken",
		Username:   "broken",
		Role:       model.RoleUser,
		Industries: model.IndustryList{},
		ExpiresAt:  &future,
	})

	_, err := svc.Resolve(context.Background(), "u-broken")
	if !errors.Is(err, ErrEntitlementIntegrity) {
		t.Fatalf("行业集合为空应拒绝访问, got %v", err)
	}
}

func TestResolveUserNotFound(t *testing.T) {
	svc, _ := setupEntitlementTest()

	_, err := svc.Resolve(context.Background(), "no-such-user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("不存在的账户应返回 ErrUserNotFound, got %v", err)
	}
}

// 管理员修改行业权限后，下一次解析立即反映最新状态
func TestResolveReflectsFreshState(t *testing.T) {
	svc, userRepo := setupEntitlementTest()

	future := time.Now().Add(30 * 24 * time.Hour)
	user := &model.User{
		UserID:     "u-fresh",
		Username:   "fresh",
		Role:       model.RoleUser,
		Industries: model.IndustryList{"人工智能"},
		ExpiresAt:  &future,
	}
	_ = userRepo.Create(nil, user)

	ent, err := svc.Resolve(context.Background(), "u-fresh")
	if err != nil {
		t.Fatal(err)
	}
	if len(ent.Industries) != 1 || ent.Industries[0] != "人工智能" {
		t.Fatalf("初始行业权限不符: %v", ent.Industries)
	}

	user.Industries = model.IndustryList{"人工智能", "生物医药"}
	_ = userRepo.Update(nil, user)

	ent, err = svc.Resolve(context.Background(), "u-fresh")
	if err != nil {
		t.Fatal(err)
	}
	if len(ent.Industries) != 2 {
		t.Fatalf("修改后的行业权限应立即生效: %v", ent.Industries)
	}
}
