package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	StoreBaseURL string        // 権威サーバーのベースURL
	StoreTimeout time.Duration // リモート呼び出しの上限（超過はNetworkError扱い）

	JWTSecret string // 署名検証用（空なら期限チェックのみ）

	GoEnv string // dev/prod
}

const defaultStoreTimeoutMS = 10000

// Loadは環境変数
func Load() (Config, error) {
	timeoutMS := defaultStoreTimeoutMS
	if v := os.Getenv("STORE_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("STORE_TIMEOUT_MS must be positive number")
		}
		timeoutMS = n
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		StoreBaseURL: os.Getenv("STORE_BASE_URL"),
		StoreTimeout: time.Duration(timeoutMS) * time.Millisecond,

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.StoreBaseURL == "" {
		return Config{}, fmt.Errorf("STORE_BASE_URL is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}
