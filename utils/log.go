package utils

import (
	"bufio"
	"io"
	"log"
	"os"
	"sync"
)

// Package wide logger. Writes to stdout, and optionally also to a file.

var (
	logMu     sync.Mutex
	logOut    io.Writer = os.Stdout
	logFile   *bufio.Writer
	logFileOS *os.File
	logger    = log.New(os.Stdout, "", log.LstdFlags)
)

// LogAlsoToFile tees the log into fileName, truncating it.
func LogAlsoToFile(fileName string) (err error) {
	logMu.Lock()
	defer logMu.Unlock()
	if err = closeLogFile(); err != nil {
		return
	}
	if logFileOS, err = os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666); err != nil {
		return
	}
	logFile = bufio.NewWriter(logFileOS)
	logger.SetOutput(io.MultiWriter(logOut, logFile))
	return
}

// SetLogOutput replaces the console side of the log.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logOut = w
	if logFile != nil {
		logger.SetOutput(io.MultiWriter(logOut, logFile))
	} else {
		logger.SetOutput(logOut)
	}
}

// LogClose flushes and closes the log file, if any.
func LogClose() (err error) {
	logMu.Lock()
	defer logMu.Unlock()
	err = closeLogFile()
	logger.SetOutput(logOut)
	return
}

func closeLogFile() (err error) {
	if logFile == nil {
		return
	}
	if err = logFile.Flush(); err != nil {
		return
	}
	err = logFileOS.Close()
	logFile, logFileOS = nil, nil
	return
}

func LogPrintf(format string, args ...interface{}) {
	logMu.Lock()
	defer logMu.Unlock()
	logger.Printf(format, args...)
}

func LogWarnf(format string, args ...interface{}) {
	LogPrintf("WARNING: "+format, args...)
}

func LogFatalf(format string, args ...interface{}) {
	logMu.Lock()
	logger.Printf(format, args...)
	_ = closeLogFile()
	logMu.Unlock()
	os.Exit(1)
}
