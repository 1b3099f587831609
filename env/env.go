package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type convertible interface {
	~[]byte | ~string
}

var (
	HS256_SECRET    []byte
	DB_CONN         string
	REDIS_CONN      string
	NSQD_TCP_ADDR   string
	NSQLOOKUPD_ADDR string
	APP_PORT        string
	SERVER_ID       string
)

func initEnv[T convertible](dst *T, key string) {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "missing env: %s\n", key)
		os.Exit(1)
	}
	*dst = T(v)
}

// MustLoad reads a .env file if present, then resolves every required
// variable, exiting on the first missing one. Called from main before any
// package that consumes these values.
func MustLoad() {
	godotenv.Load()
	initEnv(&HS256_SECRET, "HS256_SECRET")
	initEnv(&DB_CONN, "DB_CONN")
	initEnv(&REDIS_CONN, "REDIS_CONN")
	initEnv(&NSQD_TCP_ADDR, "NSQD_TCP_ADDR")
	initEnv(&NSQLOOKUPD_ADDR, "NSQLOOKUPD_ADDR")
	initEnv(&APP_PORT, "APP_PORT")
	initEnv(&SERVER_ID, "SERVER_ID")
}
