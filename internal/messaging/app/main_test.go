package app

import (
	"os"
	"testing"

	"outreach_messaging_service/pkg/logger"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "messaging-test-log")
	if err != nil {
		panic(err)
	}
	logger.Log = logger.Initialize("messaging-test", dir)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
