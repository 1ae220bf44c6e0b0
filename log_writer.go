package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// logWriter prefixes every process log line with a timestamp
type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	return w.writer.Write([]byte(fmt.Sprintf("[%s] %s", timestamp, string(p))))
}

// setupLogging routes the process's own log output to both stderr and a
// size-rotated file. This is the collector's operational log, not the
// tailed application logs.
func setupLogging(logFilePath string) {
	fileLogger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     0,
		Compress:   false,
	}

	multiWriter := io.MultiWriter(os.Stderr, fileLogger)

	log.SetOutput(&logWriter{writer: multiWriter})
	log.SetFlags(0) // timestamps come from logWriter
}
