// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 存储应用配置
type Config struct {
	Port            string
	APIBaseURL      string
	APIToken        string
	EncryptionKey   string
	DataDir         string
	SessionFile     string
	PageSize        int
	RefreshInterval time.Duration
	DebugMode       bool
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	dataDir := getEnvPath("DATA_DIR", "data")

	config := &Config{
		Port:            getEnv("PORT", "8080"),
		APIBaseURL:      getEnv("API_BASE_URL", "https://api.soluna.ai"),
		APIToken:        getEnv("API_TOKEN", ""),
		EncryptionKey:   getEnv("ENCRYPTION_KEY", ""),
		DataDir:         dataDir,
		SessionFile:     getEnv("SESSION_FILE", filepath.Join(dataDir, "session.json")),
		PageSize:        getEnvInt("PAGE_SIZE", 12),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 10*time.Second),
		DebugMode:       getEnvBool("DEBUG_MODE", false),
	}

	if config.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE必须为正数: %d", config.PageSize)
	}
	if config.RefreshInterval <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL必须为正时长: %s", config.RefreshInterval)
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err = os.MkdirAll(path, 0755)
		if err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt 获取整数类型环境变量，解析失败时返回默认值
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		fmt.Printf("警告: 环境变量 %s 不是合法整数: %s\n", key, value)
		return defaultValue
	}
	return parsed
}

// getEnvDuration 获取时长类型环境变量（如10s、1m），解析失败时返回默认值
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		fmt.Printf("警告: 环境变量 %s 不是合法时长: %s\n", key, value)
		return defaultValue
	}
	return parsed
}
