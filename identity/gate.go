// Package identity 用户注册、登录与密码重置
package identity

import (
	"context"
	"strings"
	"unicode/utf8"

	"budget/apperr"
	"budget/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	maxUsernameLen = 100
	// bcrypt 只接受 72 字节以内的密码
	maxPasswordBytes = 72
)

// UserStore 用户持久化接口
// FindByUsername/FindByID 不存在时返回 apperr.ErrNotFound
// CreateUser 用户名冲突时返回 apperr.ErrConflict
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id uint) (models.User, error)
	UpdatePassword(ctx context.Context, id uint, digest string) error
}

// Notifier 密码变更通知
type Notifier interface {
	NotifyPasswordChanged(email, username string) error
}

// Gate 身份网关
type Gate struct {
	users       UserStore
	hasher      Hasher
	notifier    Notifier
	allowForgot bool
	log         *zap.Logger
}

// Config 网关配置
type Config struct {
	// AllowForgotPassword 允许仅凭用户名重置密码
	AllowForgotPassword bool
	Notifier            Notifier
	Logger              *zap.Logger
}

// NewGate 创建身份网关
func NewGate(users UserStore, hasher Hasher, cfg Config) *Gate {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{
		users:       users,
		hasher:      hasher,
		notifier:    cfg.Notifier,
		allowForgot: cfg.AllowForgotPassword,
		log:         log,
	}
}

func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperr.Invalid("username", "is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "", apperr.Invalid("username", "is too long")
	}
	if err := validatePassword(password); err != nil {
		return "", err
	}
	return username, nil
}

func validatePassword(password string) error {
	if password == "" {
		return apperr.Invalid("password", "is required")
	}
	if len(password) > maxPasswordBytes {
		return apperr.Invalid("password", "is too long")
	}
	return nil
}

// Register 注册新用户，用户名已存在返回 ErrConflict
func (g *Gate) Register(ctx context.Context, username, password, email string) (models.User, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return models.User{}, err
	}

	if _, err := g.users.FindByUsername(ctx, username); err == nil {
		return models.User{}, errors.Wrapf(apperr.ErrConflict, "username %q", username)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return models.User{}, err
	}

	digest, err := g.hasher.Hash(password)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hash password")
	}

	u := models.User{
		Username: username,
		Password: digest,
		Email:    strings.TrimSpace(email),
	}
	if err := g.users.CreateUser(ctx, &u); err != nil {
		return models.User{}, err
	}

	g.log.Info("user registered", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Authenticate 校验用户名和密码，用户不存在与密码错误不做区分
func (g *Gate) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	u, err := g.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, apperr.ErrAuth
		}
		return models.User{}, err
	}
	if !g.hasher.Verify(password, u.Password) {
		return models.User{}, apperr.ErrAuth
	}
	return u, nil
}

// Profile 获取用户信息
func (g *Gate) Profile(ctx context.Context, userID uint) (models.User, error) {
	return g.users.FindByID(ctx, userID)
}

// ResetPassword 已登录用户修改自己的密码
func (g *Gate) ResetPassword(ctx context.Context, userID uint, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	u, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return g.setPassword(ctx, u, newPassword)
}

// ForgotPassword 仅凭用户名重置密码，不做额外身份验证
func (g *Gate) ForgotPassword(ctx context.Context, username, newPassword string) error {
	if !g.allowForgot {
		return errors.Wrap(apperr.ErrForbidden, "forgot-password flow is disabled")
	}
	username, err := validateCredentials(username, newPassword)
	if err != nil {
		return err
	}
	u, err := g.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	return g.setPassword(ctx, u, newPassword)
}

func (g *Gate) setPassword(ctx context.Context, u models.User, password string) error {
	digest, err := g.hasher.Hash(password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := g.users.UpdatePassword(ctx, u.ID, digest); err != nil {
		return err
	}
	g.log.Info("password changed", zap.Uint("user_id", u.ID))

	if g.notifier != nil && u.Email != "" {
		if err := g.notifier.NotifyPasswordChanged(u.Email, u.Username); err != nil {
			g.log.Warn("password change notice failed", zap.Uint("user_id", u.ID), zap.Error(err))
		}
	}
	return nil
}
