package auth

import (
	"fmt"
	"time"

	"backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService JWT 令牌服务
type JWTService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &JWTService{
		secretKey: []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		ttl:       ttl,
	}
}

// Claims 令牌声明：携带决裁操作需要的人员信息
type Claims struct {
	UserID   string   `json:"uid"`
	UserName string   `json:"name"`
	DeptCode string   `json:"dept"`
	DeptName string   `json:"deptName"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Issue 签发访问令牌
func (s *JWTService) Issue(emp *Employee) (string, int64, error) {
	now := time.Now()
	claims := Claims{
		UserID:   emp.ID,
		UserName: emp.Name,
		DeptCode: emp.DeptCode,
		DeptName: emp.DeptName,
		Roles:    emp.RoleList(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   emp.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", 0, fmt.Errorf("签发令牌失败: %w", err)
	}
	return signed, int64(s.ttl.Seconds()), nil
}

// Parse 校验并解析令牌
func (s *JWTService) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名算法: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("解析令牌失败: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("令牌无效")
	}
	return claims, nil
}
