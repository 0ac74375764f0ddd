package daemon

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"refremote/internal/config"
)

// setupLogging points the standard logger at a rotating file when one is
// configured. The returned closer restores stderr output.
func setupLogging(cfg config.Config) (io.Closer, error) {
	if cfg.LogFile == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
		return nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, lj))
	return closerFunc(func() error {
		log.SetOutput(os.Stderr)
		return lj.Close()
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
