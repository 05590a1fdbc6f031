package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/integration-system/backend/internal/domain"
)

const tokenCookieName = "__hr_integration_token"

type AuthClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (h *Handler) issueToken(principal *domain.Principal, now time.Time) (string, time.Time, error) {
	expiration := now.Add(time.Duration(h.config.JWT.Expiration) * time.Minute)

	roles := make([]string, 0, len(principal.Roles))
	for _, role := range principal.Roles {
		roles = append(roles, string(role))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    h.config.JWT.Issuer,
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   principal.ID,
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return ss, expiration, nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 用户名和邮箱都可以用来登录
	principal, err := h.Auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		var identityErr *domain.IdentityError
		switch {
		case errors.Is(err, domain.ErrPrincipalNotFound):
			h.errorResponse(w, r, http.StatusUnauthorized, "用户名不存在或密码错误")
		case errors.As(err, &identityErr) && identityErr.HasCode(domain.IdentityCodeInvalidPassword):
			h.errorResponse(w, r, http.StatusUnauthorized, "用户名不存在或密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	ss, expiration, err := h.issueToken(principal, time.Now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通过 http-only 的 cookie 返回给客户端，同时在响应体中返回令牌供非浏览器客户端使用
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)

	h.successResponse(w, r, "登录成功", map[string]any{
		"token":      ss,
		"expiration": expiration,
		"principal":  principal,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    tokenCookieName,
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	h.successResponse(w, r, "登出成功", nil)
}

// RegisterAdmin 只在系统中还没有管理员时可用
func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required,alphanum,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	exists, err := h.Auth.HasAdmin(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if exists {
		h.errorResponse(w, r, http.StatusForbidden, "管理员已存在")
		return
	}

	principal, err := h.Auth.CreateAdmin(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var identityErr *domain.IdentityError
		switch {
		case errors.As(err, &identityErr) && identityErr.HasCode(domain.IdentityCodeDuplicateUserName):
			h.conflict(w, r, "用户名已存在")
		case errors.As(err, &identityErr) && identityErr.HasCode(domain.IdentityCodeDuplicateEmail):
			h.conflict(w, r, "邮箱已存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.createdResponse(w, r, "注册管理员成功", principal)
}
