package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AutoServe360/AutoServe360/internal/common/auth"
	"github.com/AutoServe360/AutoServe360/internal/common/config"
	"github.com/AutoServe360/AutoServe360/internal/common/errs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 封装用户领域的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo    *Repo
	authCfg config.AuthConfig
}

func NewService(repo *Repo, authCfg config.AuthConfig) *Service {
	return &Service{repo: repo, authCfg: authCfg}
}

// LoginResult 登录结果。Auth 未启用时 AccessToken 为空。
type LoginResult struct {
	User        *User
	AccessToken string
	ExpiresAt   time.Time
}

// Login 以 username + PIN 等值查找用户；凭证错误统一返回 Unauthenticated。
func (s *Service) Login(ctx context.Context, username, pin string) (*LoginResult, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(pin) == "" {
		return nil, errs.InvalidArgument("username and pin required")
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	if !MatchPIN(u.PIN, pin) {
		return nil, errs.Unauthenticated("invalid credentials")
	}

	res := &LoginResult{User: u}
	if s.authCfg.Enabled {
		token, exp, err := auth.GenerateAccessToken(s.authCfg, u.ID, []string{string(u.Role)}, 24*time.Hour)
		if err != nil {
			return nil, errs.Internal(err, "failed to issue token")
		}
		res.AccessToken = token
		res.ExpiresAt = exp
	}
	return res, nil
}

// Register 创建用户（管理端）。
func (s *Service) Register(ctx context.Context, u *User) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	u.Username = strings.TrimSpace(u.Username)
	u.FullName = strings.TrimSpace(u.FullName)
	if u.Username == "" || u.FullName == "" {
		return nil, errs.InvalidArgument("username and full_name required")
	}
	if !ValidRole(u.Role) {
		return nil, errs.InvalidArgument("invalid role %q", u.Role)
	}
	pin, ok := NormalizePIN(u.PIN)
	if !ok {
		return nil, errs.InvalidArgument("pin must be 4-6 digits")
	}
	u.PIN = pin
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	if _, err := s.repo.FindByUsername(ctx, u.Username); err == nil {
		return nil, errs.Conflict("username %q already exists", u.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Internal(err, "storage error")
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, errs.Internal(err, "failed to create user")
	}
	return u, nil
}

// GetProfile 按 ID 查询用户。
func (s *Service) GetProfile(ctx context.Context, id string) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errs.InvalidArgument("id required")
	}
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	return u, nil
}

// ChangePIN 校验旧 PIN 后更新为新 PIN。
func (s *Service) ChangePIN(ctx context.Context, id, oldPIN, newPIN string) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	u, err := s.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	if !MatchPIN(u.PIN, oldPIN) {
		return errs.Unauthenticated("current pin incorrect")
	}
	pin, ok := NormalizePIN(newPIN)
	if !ok {
		return errs.InvalidArgument("new pin must be 4-6 digits")
	}
	u.PIN = pin
	if err := s.repo.Update(ctx, u); err != nil {
		return errs.Internal(err, "failed to update pin")
	}
	return nil
}

// ListMechanics 技师列表（含未完成工单数）。
func (s *Service) ListMechanics(ctx context.Context) ([]Mechanic, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	ms, err := s.repo.ListMechanics(ctx)
	if err != nil {
		return nil, errs.Internal(err, "storage error")
	}
	return ms, nil
}
