package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	defaultAppEnv       = "local"
	defaultLogLevel     = "info"
	defaultDataDir      = "synthetic_ecom_data"
	defaultDriver       = "sqlite"
	defaultSQLiteDSN    = "database/ecommerce.db"
	defaultPostgresDSN  = "host=localhost user=postgres password=postgres dbname=ecommerce port=5432 sslmode=disable"
	defaultStorageDisk  = "local"
	defaultSeed         = 42
	defaultScale        = 1.0
	defaultEndDate      = "2025-12-31"
	defaultBatchSize    = 500
	defaultMongoDB      = "ecomsynth"
	defaultMongoLogsCol = "pipeline_logs"
)

// Files read by Load, relative to the working directory.
var (
	ConfigPath = "config/app.json"
	EnvPath    = ".env"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json, then .env, then the process environment.
// Later sources win. Missing files are not an error.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles(ConfigPath, EnvPath)
	})
	return loadErr
}

// Reload forgets previously loaded values and reads the sources again.
func Reload() error {
	_ = Load()
	loadErr = loadFromFiles(ConfigPath, EnvPath)
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":              defaultAppEnv,
		"LOG_LEVEL":            defaultLogLevel,
		"LOG_MONGO_URI":        "",
		"LOG_MONGO_DB":         defaultMongoDB,
		"LOG_MONGO_COLLECTION": defaultMongoLogsCol,
		"DATA_DIR":             defaultDataDir,
		"DB_DRIVER":            defaultDriver,
		"DATABASE_DSN":         "",
		"STORAGE_DISK":         defaultStorageDisk,
		"S3_REGION":            "us-east-1",
		"GEN_SEED":             strconv.Itoa(defaultSeed),
		"GEN_SCALE":            "1",
		"GEN_END_DATE":         defaultEndDate,
		"LOAD_BATCH_SIZE":      strconv.Itoa(defaultBatchSize),
		"METRICS_TEXTFILE":     "",
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func LogLevel() string {
	_ = Load()
	return strings.ToLower(get("LOG_LEVEL", defaultLogLevel))
}

func LogMongoURI() string        { _ = Load(); return get("LOG_MONGO_URI", "") }
func LogMongoDB() string         { _ = Load(); return get("LOG_MONGO_DB", defaultMongoDB) }
func LogMongoCollection() string { _ = Load(); return get("LOG_MONGO_COLLECTION", defaultMongoLogsCol) }

// DataDir is where generated CSV files live on the configured disk.
func DataDir() string {
	_ = Load()
	return get("DATA_DIR", defaultDataDir)
}

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDriver))
	switch driver {
	case "sqlite", "postgres":
		return driver
	default:
		return defaultDriver
	}
}

// DatabaseDSN returns DATABASE_DSN or the default for the configured driver.
// For sqlite the DSN is a plain file path.
func DatabaseDSN() string {
	return DatabaseDSNFor(DatabaseDriver())
}

// DatabaseDSNFor is DatabaseDSN for an explicitly chosen driver.
// DATABASE_DSN only applies when driver is the configured one.
func DatabaseDSNFor(driver string) string {
	_ = Load()

	if override := get("DATABASE_DSN", ""); override != "" && driver == DatabaseDriver() {
		return override
	}
	if driver == "postgres" {
		return defaultPostgresDSN
	}
	return defaultSQLiteDSN
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDisk() string {
	_ = Load()
	return get("STORAGE_DISK", defaultStorageDisk)
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }

// ── Stage defaults ───────────────────────────────────────────────────────────

func GenSeed() int64 {
	_ = Load()
	n, err := strconv.ParseInt(get("GEN_SEED", ""), 10, 64)
	if err != nil {
		return defaultSeed
	}
	return n
}

func GenScale() float64 {
	_ = Load()
	f, err := strconv.ParseFloat(get("GEN_SCALE", ""), 64)
	if err != nil {
		return defaultScale
	}
	return f
}

func GenEndDate() string {
	_ = Load()
	return get("GEN_END_DATE", defaultEndDate)
}

func LoadBatchSize() int {
	_ = Load()
	n, err := strconv.Atoi(get("LOAD_BATCH_SIZE", ""))
	if err != nil {
		return defaultBatchSize
	}
	return n
}

func MetricsTextfile() string {
	_ = Load()
	return get("METRICS_TEXTFILE", "")
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		switch v := val.(type) {
		case string:
			out[k] = strings.TrimSpace(v)
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(v)
		}
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

// mergeEnviron overlays process environment variables for known keys and
// for any key already present in out.
func mergeEnviron(out map[string]string) {
	for _, key := range knownKeys(out) {
		if v, ok := os.LookupEnv(key); ok {
			out[key] = strings.TrimSpace(v)
		}
	}
}

func knownKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m)+5)
	for k := range m {
		keys = append(keys, k)
	}
	for _, k := range []string{"S3_BUCKET", "S3_KEY", "S3_SECRET", "S3_ENDPOINT"} {
		if _, ok := m[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
