package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"invest-portal/internal/model"
	"invest-portal/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	all, _ := m.ListAll(nil)
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	return all, nil
}

func (m *mockUserRepo) Stats(_ context.Context) ([]repository.UserStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]*repository.UserStat)
	for _, u := range m.users {
		key := u.Role + "|" + u.Industries.String()
		if s, ok := counts[key]; ok {
			s.Count++
			continue
		}
		counts[key] = &repository.UserStat{Role: u.Role, Industry: u.Industries.String(), Count: 1}
	}
	var result []repository.UserStat
	for _, s := range counts {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock InviteCodeRepository ──

type mockInviteCodeRepo struct {
	mu    sync.Mutex
	seq   int
	codes map[string]*model.InviteCode // key: code
}

func newMockInviteCodeRepo() *mockInviteCodeRepo {
	return &mockInviteCodeRepo{codes: make(map[string]*model.InviteCode)}
}

func (m *mockInviteCodeRepo) Create(_ context.Context, code *model.InviteCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if code.InviteCodeID == "" {
		m.seq++
		code.InviteCodeID = fmt.Sprintf("invite-%d", m.seq)
	}
	code.CreatedAt = time.Now()
	m.codes[code.Code] = code
	return nil
}

func (m *mockInviteCodeRepo) GetByID(_ context.Context, id string) (*model.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.InviteCodeID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteCodeRepo) GetByCode(_ context.Context, code string) (*model.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.codes[code]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteCodeRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.codes[code]
	return ok, nil
}

// Redeem 与生产实现一样是 compare-and-swap：互斥锁内检查并翻转，
// 并发核销同一码时恰好一方返回 1
func (m *mockInviteCodeRepo) Redeem(_ context.Context, code, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[code]
	if !ok || c.Used {
		return 0, nil
	}
	now := time.Now()
	c.Used = true
	c.UsedAt = &now
	c.UsedBy = &userID
	return 1, nil
}

func (m *mockInviteCodeRepo) Update(_ context.Context, code *model.InviteCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code.Code] = code
	return nil
}

func (m *mockInviteCodeRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, c := range m.codes {
		if c.InviteCodeID == id {
			delete(m.codes, code)
		}
	}
	return nil
}

func (m *mockInviteCodeRepo) List(_ context.Context, industry string, offset, limit int) ([]repository.InviteCodeWithUser, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []repository.InviteCodeWithUser
	for _, c := range m.codes {
		if industry != "" && industry != model.IndustryAll && c.Industry != industry {
			continue
		}
		all = append(all, repository.InviteCodeWithUser{InviteCode: *c})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].InviteCodeID < all[j].InviteCodeID })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockInviteCodeRepo) ListAll(_ context.Context) ([]model.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.InviteCode
	for _, c := range m.codes {
		all = append(all, *c)
	}
	return all, nil
}

func (m *mockInviteCodeRepo) Stats(_ context.Context) ([]repository.InviteStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]*repository.InviteStat)
	for _, c := range m.codes {
		key := fmt.Sprintf("%s|%v", c.Industry, c.Used)
		if s, ok := counts[key]; ok {
			s.Count++
			continue
		}
		counts[key] = &repository.InviteStat{Industry: c.Industry, Used: c.Used, Count: 1}
	}
	var result []repository.InviteStat
	for _, s := range counts {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock InvestmentRepository ──

type mockInvestmentRepo struct {
	mu   sync.Mutex
	seq  int
	invs []*model.Investment
}

func newMockInvestmentRepo() *mockInvestmentRepo {
	return &mockInvestmentRepo{}
}

func (m *mockInvestmentRepo) Create(_ context.Context, inv *model.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if inv.InvestmentID == "" {
		inv.InvestmentID = fmt.Sprintf("inv-%04d", m.seq)
	}
	m.invs = append(m.invs, inv)
	return nil
}

func (m *mockInvestmentRepo) BatchCreate(_ context.Context, invs []*model.Investment) error {
	for _, inv := range invs {
		_ = m.Create(nil, inv)
	}
	return nil
}

func (m *mockInvestmentRepo) GetByID(_ context.Context, id string) (*model.Investment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invs {
		if inv.InvestmentID == id {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvestmentRepo) Update(_ context.Context, inv *model.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.invs {
		if v.InvestmentID == inv.InvestmentID {
			m.invs[i] = inv
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockInvestmentRepo) Delete(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.invs {
		if v.InvestmentID == id {
			m.invs = append(m.invs[:i], m.invs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// matchFilter 复刻生产实现的谓词语义：行业精确 IN 匹配，关键字大小写不敏感子串
func matchFilter(inv *model.Investment, filter *repository.InvestmentFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Industries != nil {
		found := false
		for _, ind := range filter.Industries {
			if inv.Industry == ind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		haystack := strings.ToLower(inv.CompanyName + "\x00" + inv.Description + "\x00" + inv.Industry + "\x00" + inv.Institution)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

func (m *mockInvestmentRepo) List(_ context.Context, filter *repository.InvestmentFilter, offset, limit int) ([]model.Investment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Investment
	for _, inv := range m.invs {
		if matchFilter(inv, filter) {
			all = append(all, *inv)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].InvestmentID < all[j].InvestmentID })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockInvestmentRepo) ListAll(_ context.Context) ([]model.Investment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Investment
	for _, inv := range m.invs {
		all = append(all, *inv)
	}
	return all, nil
}

func (m *mockInvestmentRepo) DistinctIndustries(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var result []string
	for _, inv := range m.invs {
		if inv.Industry != "" && !seen[inv.Industry] {
			seen[inv.Industry] = true
			result = append(result, inv.Industry)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (m *mockInvestmentRepo) IndustryCounts(_ context.Context) ([]repository.IndustryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, inv := range m.invs {
		counts[inv.Industry]++
	}
	var result []repository.IndustryCount
	for industry, n := range counts {
		result = append(result, repository.IndustryCount{Industry: industry, Count: n})
	}
	return result, nil
}

func (m *mockInvestmentRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.invs)), nil
}

// ── 共享测试装配 ──

func newMockRepository() (*repository.Repository, *mockUserRepo, *mockInviteCodeRepo, *mockInvestmentRepo) {
	userRepo := newMockUserRepo()
	inviteRepo := newMockInviteCodeRepo()
	invRepo := newMockInvestmentRepo()
	repo := &repository.Repository{
		User:       userRepo,
		InviteCode: inviteRepo,
		Investment: invRepo,
	}
	return repo, userRepo, inviteRepo, invRepo
}
