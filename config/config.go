package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	DBHost              string
	DBPort              string
	DBUser              string
	DBPassword          string
	DBName              string
	JWTSecret           string
	Port                string
	UploadBucket        string
	StorageEmulatorHost string
	AllowedOrigins      string
}

func LoadConfig() Config {
	return Config{
		DBHost:              os.Getenv("DB_HOST"),
		DBPort:              os.Getenv("DB_PORT"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBName:              os.Getenv("DB_NAME"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		Port:                os.Getenv("PORT"),
		UploadBucket:        os.Getenv("UPLOAD_BUCKET"),
		StorageEmulatorHost: os.Getenv("STORAGE_EMULATOR_HOST"),
		AllowedOrigins:      os.Getenv("ALLOWED_ORIGINS"),
	}
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Origins splits ALLOWED_ORIGINS, falling back to the local dev frontend.
func (c Config) Origins() []string {
	out := []string{}
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = append(out, "http://localhost:3000")
	}
	return out
}
