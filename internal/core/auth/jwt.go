package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoSecret = errors.New("jwt: secret is empty")
	ErrExpired  = errors.New("jwt: token expired")
	ErrInvalid  = errors.New("jwt: invalid token")
)

// Claims 只携带账号 ID 与签发时的角色；是否仍然有效由会话决定
type Claims struct {
	UID  int64  `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time // 测试注入
}

func (j *JWTer) clock() time.Time {
	if j.Now == nil {
		return time.Now()
	}
	return j.Now()
}

func (j *JWTer) Issue(uid int64, role string) (string, error) {
	if len(j.Secret) == 0 {
		return "", ErrNoSecret
	}
	iat := j.clock()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UID:  uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(uid, 10),
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(j.TTL)),
		},
	}).SignedString(j.Secret)
}

// Parse 校验签名、签发方与有效期；过期返回 ErrExpired，其余失败返回 ErrInvalid
func (j *JWTer) Parse(raw string) (*Claims, error) {
	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(time.Minute),
		jwt.WithTimeFunc(j.clock),
	)
	var c Claims
	if _, err := p.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return j.Secret, nil }); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.UID == 0 {
		return nil, ErrInvalid
	}
	return &c, nil
}
