package service

import (
	"os"
	"testing"

	"github.com/scoutlab/reefcore/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
