package mailer

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/integration-system/backend/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

type Token struct {
	Value string
	// 零值表示永不过期
	Expiry time.Time
}

type TokenSource interface {
	Fetch(ctx context.Context) (Token, error)
}

// TokenCache 缓存发信凭据。凭据过期后只有一个调用方会去刷新，其余调用方等待同一个结果
type TokenCache struct {
	source TokenSource
	skew   time.Duration
	now    func() time.Time

	mu    sync.Mutex
	token Token
	valid bool
	group singleflight.Group
}

func NewTokenCache(source TokenSource, skew time.Duration) *TokenCache {
	return &TokenCache{
		source: source,
		skew:   skew,
		now:    time.Now,
	}
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid {
		return "", false
	}
	if !c.token.Expiry.IsZero() && !c.now().Add(c.skew).Before(c.token.Expiry) {
		return "", false
	}
	return c.token.Value, true
}

func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if value, ok := c.cached(); ok {
		return value, nil
	}

	v, err, _ := c.group.Do("token", func() (any, error) {
		if value, ok := c.cached(); ok {
			return value, nil
		}

		token, err := c.source.Fetch(ctx)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.token = token
		c.valid = true
		c.mu.Unlock()

		return token.Value, nil
	})
	if err != nil {
		return "", fmt.Errorf("refresh mail credential: %w", err)
	}

	return v.(string), nil
}

// Invalidate 丢弃缓存的凭据，下次调用 Token 时重新获取
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

// StaticSource 用于普通的用户名密码认证
type StaticSource string

func (s StaticSource) Fetch(context.Context) (Token, error) {
	return Token{Value: string(s)}, nil
}

// OAuthRefreshSource 使用 refresh token 向授权服务器换取 access token
type OAuthRefreshSource struct {
	config       *oauth2.Config
	refreshToken string
	client       *http.Client
}

func NewOAuthRefreshSource(cfg *config.Config, client *http.Client) *OAuthRefreshSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OAuthRefreshSource{
		config: &oauth2.Config{
			ClientID:     cfg.Email.OAuth.ClientID,
			ClientSecret: cfg.Email.OAuth.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.Email.OAuth.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: cfg.Email.OAuth.RefreshToken,
		client:       client,
	}
}

// Fetch 每次都向授权服务器换取新的 access token，复用由 TokenCache 负责
func (s *OAuthRefreshSource) Fetch(ctx context.Context) (Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)

	tok, err := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: s.refreshToken}).Token()
	if err != nil {
		return Token{}, err
	}

	return Token{Value: tok.AccessToken, Expiry: tok.Expiry}, nil
}
