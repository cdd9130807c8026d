package logger

import (
	"log"

	"go.uber.org/zap"
)

var L *zap.SugaredLogger

func Init() {
	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not initialize zap logger: %v", err)
	}
	zap.ReplaceGlobals(zl)
	L = zl.Sugar()
}

func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}
