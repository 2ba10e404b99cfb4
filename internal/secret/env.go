package env

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Manager provides thread-safe access to environment variables and configuration settings
type Manager struct {
	envVars          map[string]string
	mutex            sync.RWMutex
	PostingEnvConfig // Embed PostingEnvConfig
}

type PostingEnvConfig struct {
	RedisHost   *string
	RedisPort   *string
	RedisDb     *int
	RedisPrtl   *int
	RedisUser   *string
	RedisPw     *string
	DbUser      *string
	DbPw        *string
	Host        *string
	Port        *int
	ServiceName *string
}

// NewManager creates a new instance of Manager and loads the configuration automatically
func NewManager() (*Manager, error) {
	manager := &Manager{envVars: make(map[string]string)}
	if err := manager.LoadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Attempt to load configuration when creating a new Manager instance
	if err := manager.LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return manager, nil
}

// LoadConfig populates the embedded PostingEnvConfig fields from environment variables
func (m *Manager) LoadConfig() error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	RedisHost := m.MustGet("REDIS_HOST")
	RedisPort := m.MustGet("REDIS_PORT")
	RedisUser := m.MustGet("REDIS_USER")
	RedisPw := m.MustGet("REDIS_PW")
	redisDB, _ := strconv.Atoi(m.MustGet("REDIS_DB"))
	redisPrtl, _ := strconv.Atoi(m.MustGet("REDIS_PROTOCOL"))
	DbUser := m.MustGet("DB_USER")
	DbPw := m.MustGet("DB_PW")
	Host := m.MustGet("HOST")
	Port, _ := strconv.Atoi(m.MustGet("PORT"))
	ServiceName := m.MustGet("SERVICE_NAME")
	// Populate the embedded PostingEnvConfig fields directly
	m.PostingEnvConfig = PostingEnvConfig{
		RedisHost:   &RedisHost,
		RedisPort:   &RedisPort,
		RedisDb:     &redisDB,
		RedisPrtl:   &redisPrtl,
		RedisUser:   &RedisUser,
		RedisPw:     &RedisPw,
		DbUser:      &DbUser,
		DbPw:        &DbPw,
		Host:        &Host,
		Port:        &Port,
		ServiceName: &ServiceName,
	}

	return nil
}

// LoadEnvFile loads environment variables from a file
func (m *Manager) LoadEnvFile(filePath string) error {
	if err := validateFilePath(filePath); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("could not open .env file: %w", err)
	}
	defer file.Close()

	tempVars := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if err := m.processLine(scanner.Text(), tempVars); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	m.mutex.Lock()
	m.envVars = tempVars
	m.mutex.Unlock()
	return nil
}

// Get retrieves a value from the environment variables
func (m *Manager) Get(key string) (string, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	value, exists := m.envVars[key]
	return value, exists
}

// MustGet retrieves a value and panics if it doesn't exist
func (m *Manager) MustGet(key string) string {
	value, exists := m.Get(key)
	if !exists {
		panic(fmt.Sprintf("required environment variable %s not found", key))
	}
	return value
}

func (m *Manager) processLine(line string, tempVars map[string]string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("%w: %s", ErrInvalidFormat, line)
	}

	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])

	if err := validateKeyValue(key, value); err != nil {
		return fmt.Errorf("invalid key-value pair: %w", err)
	}

	tempVars[key] = value
	return nil
}
