package config

import (
	"os"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	UploadBasePath string

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt
	DevLogin      bool   // username==password fallback for non-admin roles

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// External gradebook passback
	GradebookEnabled      bool
	GradebookColumnsURL   string
	GradebookTokenURL     string
	GradebookClientID     string
	GradebookClientSecret string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:     mode,
		HTTPAddr: addr,

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		UploadBasePath: envOr("UPLOAD_BASE_PATH", "./data"),

		AuthSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		DevLogin:      envBool("DEV_LOGIN", mode == ModeOffline),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://assess.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010"),

		GradebookEnabled:      envBool("GRADEBOOK_ENABLED", false),
		GradebookColumnsURL:   os.Getenv("GRADEBOOK_COLUMNS_URL"),
		GradebookTokenURL:     os.Getenv("GRADEBOOK_TOKEN_URL"),
		GradebookClientID:     os.Getenv("GRADEBOOK_CLIENT_ID"),
		GradebookClientSecret: os.Getenv("GRADEBOOK_CLIENT_SECRET"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
