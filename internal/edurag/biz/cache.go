package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/edurag/pkg/utils/json"
)

// AnswerCacheConfig 答案缓存配置。
type AnswerCacheConfig struct {
	// Enabled 是否启用缓存。
	Enabled bool
	// TTL 缓存过期时间。
	TTL time.Duration
	// KeyPrefix 缓存键前缀。
	KeyPrefix string
}

// AnswerCache 按 (科目, 科目版本, 问题) 缓存问答结果。
// 科目内容变化（上传、删除文档）时递增版本号，旧缓存随 TTL 自然过期。
// Redis 不可用时所有操作降级为未命中。
type AnswerCache struct {
	redis  goredis.UniversalClient
	config *AnswerCacheConfig
}

// NewAnswerCache 创建答案缓存实例，redis 为 nil 时缓存关闭。
func NewAnswerCache(redis goredis.UniversalClient, config *AnswerCacheConfig) *AnswerCache {
	if config == nil {
		config = &AnswerCacheConfig{
			Enabled:   false,
			TTL:       time.Hour,
			KeyPrefix: "edurag:",
		}
	}
	return &AnswerCache{
		redis:  redis,
		config: config,
	}
}

func (c *AnswerCache) enabled() bool {
	return c != nil && c.config.Enabled && c.redis != nil
}

func (c *AnswerCache) versionKey(subjectID string) string {
	return c.config.KeyPrefix + "subject:" + subjectID + ":version"
}

func (c *AnswerCache) answerKey(subjectID string, version int64, question string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(question)))
	return c.config.KeyPrefix + "answer:" + subjectID + ":" + strconv.FormatInt(version, 10) + ":" + hex.EncodeToString(hash[:])
}

// version 读取科目版本，不存在时为 0。
func (c *AnswerCache) version(ctx context.Context, subjectID string) (int64, error) {
	v, err := c.redis.Get(ctx, c.versionKey(subjectID)).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	return v, err
}

// BumpVersion 使科目下的全部答案缓存失效。
func (c *AnswerCache) BumpVersion(ctx context.Context, subjectID string) {
	if !c.enabled() {
		return
	}
	if err := c.redis.Incr(ctx, c.versionKey(subjectID)).Err(); err != nil {
		logger.Warnw("failed to bump subject cache version", "subject_id", subjectID, "error", err.Error())
	}
}

// Get 查询缓存，未命中返回 nil。同时返回本次读取到的科目版本，
// 调用方生成答案后须以该版本调用 Set；版本不可用时为 -1。
func (c *AnswerCache) Get(ctx context.Context, subjectID, question string) (*Answer, int64) {
	if !c.enabled() {
		return nil, -1
	}

	version, err := c.version(ctx, subjectID)
	if err != nil {
		logger.Warnw("failed to read subject cache version", "subject_id", subjectID, "error", err.Error())
		return nil, -1
	}

	key := c.answerKey(subjectID, version, question)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Warnw("failed to get from cache", "error", err.Error(), "key", key)
		}
		return nil, version
	}

	var answer Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		logger.Warnw("failed to unmarshal cached answer", "error", err.Error(), "key", key)
		// 删除损坏的缓存
		_ = c.redis.Del(ctx, key).Err()
		return nil, version
	}
	return &answer, version
}

// Set 以检索前读取的版本写入缓存，失败只记录日志。
// 生成期间科目版本已变化时，答案写入旧版本的键，不会被新版本读到。
func (c *AnswerCache) Set(ctx context.Context, subjectID string, version int64, question string, answer *Answer) {
	if !c.enabled() || answer == nil || version < 0 {
		return
	}

	data, err := json.Marshal(answer)
	if err != nil {
		logger.Warnw("failed to marshal answer", "error", err.Error())
		return
	}

	key := c.answerKey(subjectID, version, question)
	if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to set cache", "error", err.Error(), "key", key)
	}
}
