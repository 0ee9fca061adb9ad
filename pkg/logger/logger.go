package logger

import (
	"io"
	"log"
	"os"
)

var (
	InfoLog  *log.Logger
	ErrorLog *log.Logger
	WarnLog  *log.Logger
	logFile  *os.File
)

// InitLogger initializes the loggers with both console and file output.
func InitLogger(filename string) error {
	var err error
	logFile, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)

	InfoLog = log.New(multiWriter, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(multiWriter, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLog = log.New(multiWriter, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)

	return nil
}

func Close() {
	if logFile != nil {
		logFile.Close()
	}
}

// Init sets up console-only loggers. Called lazily by the helpers so logging
// works without explicit initialization.
func Init() {
	InfoLog = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLog = log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
}

func Infof(format string, v ...interface{}) {
	if InfoLog == nil {
		Init()
	}
	InfoLog.Printf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	if ErrorLog == nil {
		Init()
	}
	ErrorLog.Printf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	if WarnLog == nil {
		Init()
	}
	WarnLog.Printf(format, v...)
}
