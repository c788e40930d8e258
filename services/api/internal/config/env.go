package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// maxEnvDepth bounds the walk up from the working directory.
const maxEnvDepth = 6

// LoadEnvFile sets the variables of the nearest .env file that are not
// already present in the environment.
func LoadEnvFile(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	path, err := FindEnvFile()
	if err != nil {
		logger.Warn("failed to locate .env", zap.Error(err))
		return
	}
	if path == "" {
		logger.Debug(".env not found in current or parent directories")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Warn("failed to open .env", zap.String("path", path), zap.Error(err))
		return
	}
	defer file.Close()

	if err := parseEnvFile(logger, file); err != nil {
		logger.Warn("failed to load .env", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("loaded env", zap.String("path", path))
}

func FindEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for i := 0; i < maxEnvDepth; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

func parseEnvFile(logger *zap.Logger, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, trimQuotes(strings.TrimSpace(value))); err != nil {
			logger.Warn("failed to set variable from env file", zap.String("key", key))
		}
	}
	return scanner.Err()
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
