package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SaepulHayat/bookmarket/pkg/circuitbreaker"
	apperrors "github.com/SaepulHayat/bookmarket/pkg/errors"
	"github.com/SaepulHayat/bookmarket/pkg/metrics"
)

// SessionStore 会话存储
// 设计说明：
// 1. 使用Redis存储用户登录会话与JWT黑名单
// 2. Key设计：session:{user_id}、blacklist:{token}
// 3. 所有Redis访问都经过熔断器：Redis不可用时快速失败，
//    调用方可以降级为纯JWT校验（丢失主动踢下线能力，但服务可用）
type SessionStore struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	cb := circuitbreaker.NewCircuitBreaker("redis-session", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			// 连续失败5次触发熔断
			return counts.ConsecutiveFailures >= 5
		},
	})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	})

	return &SessionStore{client: client, breaker: cb}
}

// execute 经熔断器执行Redis操作并上报指标
func (s *SessionStore) execute(op func() error) error {
	err := s.breaker.Execute(op)
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.CircuitBreakerRequests.WithLabelValues("redis-session", result).Inc()
	return err
}

// SaveSession 保存用户会话
// 过期时间与Refresh Token有效期一致
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, token string, expire time.Duration) error {
	key := fmt.Sprintf("session:%d", userID)

	return s.execute(func() error {
		data := map[string]interface{}{
			"token":    token,
			"login_at": time.Now().Unix(),
		}
		if err := s.client.HMSet(ctx, key, data).Err(); err != nil {
			return apperrors.Wrap(err, "保存会话失败")
		}
		if err := s.client.Expire(ctx, key, expire).Err(); err != nil {
			return apperrors.Wrap(err, "设置会话过期时间失败")
		}
		return nil
	})
}

// GetSession 获取用户会话
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	key := fmt.Sprintf("session:%d", userID)

	var result map[string]string
	err := s.execute(func() error {
		r, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return apperrors.Wrap(err, "获取会话失败")
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	return result, nil
}

// DeleteSession 删除用户会话（登出）
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	key := fmt.Sprintf("session:%d", userID)

	return s.execute(func() error {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return apperrors.Wrap(err, "删除会话失败")
		}
		return nil
	})
}

// BlacklistToken 将Token加入黑名单直至其自然过期
// 使用场景：登出、Token泄露强制失效、修改密码后踢下线
func (s *SessionStore) BlacklistToken(ctx context.Context, token string, expire time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", token)

	return s.execute(func() error {
		if err := s.client.Set(ctx, key, "revoked", expire).Err(); err != nil {
			return apperrors.Wrap(err, "添加Token到黑名单失败")
		}
		return nil
	})
}

// IsTokenBlacklisted 检查Token是否在黑名单中
// 熔断器打开时返回ErrOpenState：认证中间件据此降级为纯JWT校验
func (s *SessionStore) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", token)

	var blacklisted bool
	err := s.execute(func() error {
		exists, err := s.client.Exists(ctx, key).Result()
		if err != nil {
			return apperrors.Wrap(err, "检查黑名单失败")
		}
		blacklisted = exists > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return blacklisted, nil
}
