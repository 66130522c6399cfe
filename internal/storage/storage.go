package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigInvalid    = errors.New("storage config invalid")
	ErrPathInvalid      = errors.New("storage path invalid")
	ErrSignatureInvalid = errors.New("storage signature invalid")
	ErrURLExpired       = errors.New("storage url expired")
)

// Store 本地文件存储，负责生成与校验限时签名下载链接
type Store struct {
	dir        string
	signSecret string
	signedTTL  time.Duration
	baseURL    string
}

// Options 存储配置
type Options struct {
	Dir              string // 资源根目录
	SignSecret       string // 签名密钥
	SignedTTLSeconds int    // 签名链接有效期（秒）
	BaseURL          string // 对外基础地址
}

// NewStore 创建本地文件存储
func NewStore(opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("%w: dir is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(opts.SignSecret) == "" {
		return nil, fmt.Errorf("%w: sign_secret is required", ErrConfigInvalid)
	}
	ttl := time.Duration(opts.SignedTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	return &Store{
		dir:        filepath.Clean(opts.Dir),
		signSecret: opts.SignSecret,
		signedTTL:  ttl,
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
	}, nil
}

// SignedTTL 返回签名链接有效期
func (s *Store) SignedTTL() time.Duration {
	return s.signedTTL
}

// ResolvePath 将存储相对路径解析为磁盘绝对路径，拒绝目录穿越
func (s *Store) ResolvePath(relPath string) (string, error) {
	cleaned, err := normalizeRelPath(relPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filepath.FromSlash(cleaned)), nil
}

// Exists 判断资源文件是否存在
func (s *Store) Exists(relPath string) bool {
	abs, err := s.ResolvePath(relPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// SignedURL 生成限时签名下载链接
// 格式: <base>/files/<path>?expires=<unix>&signature=<hex>
func (s *Store) SignedURL(relPath string, now time.Time) (string, error) {
	cleaned, err := normalizeRelPath(relPath)
	if err != nil {
		return "", err
	}
	expires := now.Add(s.signedTTL).Unix()
	sig := s.sign(cleaned, expires)
	return fmt.Sprintf("%s/files/%s?expires=%d&signature=%s",
		s.baseURL, escapePath(cleaned), expires, sig), nil
}

// VerifySignedRequest 校验签名下载请求
func (s *Store) VerifySignedRequest(relPath, expiresStr, signature string, now time.Time) error {
	cleaned, err := normalizeRelPath(relPath)
	if err != nil {
		return err
	}
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad expires", ErrSignatureInvalid)
	}
	expected := s.sign(cleaned, expires)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return ErrSignatureInvalid
	}
	if now.Unix() > expires {
		return ErrURLExpired
	}
	return nil
}

func (s *Store) sign(relPath string, expires int64) string {
	mac := hmac.New(sha256.New, []byte(s.signSecret))
	mac.Write([]byte(relPath + "\n" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func normalizeRelPath(relPath string) (string, error) {
	cleaned := strings.TrimSpace(relPath)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathInvalid)
	}
	cleaned = filepath.ToSlash(filepath.Clean(cleaned))
	if cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", fmt.Errorf("%w: %s", ErrPathInvalid, relPath)
	}
	return cleaned, nil
}

func escapePath(relPath string) string {
	parts := strings.Split(relPath, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
