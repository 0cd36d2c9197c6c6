// Package logutil installs the process wide logger.
package logutil

import (
	"io"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const DefaultLevel = "warn"

// Init replaces the global logger with a text logger writing to w.
// Stdout is left to the tools' own output, so w is normally os.Stderr.
func Init(level string, w io.Writer) error {
	if _, err := zapcore.ParseLevel(level); err != nil {
		return errors.Annotatef(err, "parse log level")
	}

	cfg := &log.Config{
		Level:  level,
		Format: "text",
	}
	sync := zapcore.AddSync(w)
	logger, props, err := log.InitLoggerWithWriteSyncer(cfg, sync, sync, zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		return errors.Annotate(err, "init logger")
	}
	log.ReplaceGlobals(logger, props)
	return nil
}
