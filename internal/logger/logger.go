package logger

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"DepreciationRecon/internal/config"
)

// LoggerService redirects the standard logger to a rotating file and zips
// files past their retention period.
type LoggerService struct {
	mu            sync.Mutex
	file          *os.File
	stopCh        chan struct{}
	wg            sync.WaitGroup
	currentLog    string
	maxFileBytes  int64
	retentionDays int
	folderPath    string
	rotateEvery   time.Duration
}

func NewLoggerService(cfg map[string]interface{}) *LoggerService {
	return &LoggerService{
		stopCh:        make(chan struct{}),
		maxFileBytes:  int64(config.Int(cfg, "max_file_mb", 10)) * 1024 * 1024,
		retentionDays: config.Int(cfg, "retention_days", 30),
		folderPath:    config.String(cfg, "folder_path", "./logs"),
		rotateEvery:   config.Duration(cfg, "rotate_check", 10*time.Second),
	}
}

func (l *LoggerService) Name() string {
	return "logger"
}

func (l *LoggerService) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.folderPath, 0755); err != nil {
		return err
	}
	logFile := l.nextLogFileName()
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.currentLog = logFile
	log.SetOutput(file)
	log.Println("[LoggerService] Started, writing to", logFile)

	l.wg.Add(1)
	go l.backgroundWorker()

	return nil
}

func (l *LoggerService) Stop() error {
	close(l.stopCh)
	l.wg.Wait()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		log.Println("[LoggerService] Stopping")
		log.SetOutput(os.Stderr)
		return l.file.Close()
	}
	return nil
}

// CurrentFile is the path of the file being written.
func (l *LoggerService) CurrentFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLog
}

func (l *LoggerService) nextLogFileName() string {
	timestamp := time.Now().Format("20060102_150405.000")
	return filepath.Join(l.folderPath, fmt.Sprintf("recon_%s.log", timestamp))
}

func (l *LoggerService) rotateIfNeeded() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil || l.maxFileBytes <= 0 {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < l.maxFileBytes {
		return nil
	}
	l.file.Close()
	newLog := l.nextLogFileName()
	file, err := os.OpenFile(newLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.file = nil
		log.SetOutput(os.Stderr)
		return err
	}
	l.file = file
	l.currentLog = newLog
	log.SetOutput(file)
	log.Println("[LoggerService] Rotated log file to", newLog)
	return nil
}

func (l *LoggerService) backgroundWorker() {
	defer l.wg.Done()
	ticker := time.NewTicker(l.rotateEvery)
	retentionTicker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	defer retentionTicker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			if err := l.rotateIfNeeded(); err != nil {
				log.Println("[LoggerService] Rotation failed:", err)
			}
		case <-retentionTicker.C:
			l.zipAndCleanOldLogs(time.Now())
		}
	}
}

// zipAndCleanOldLogs moves log files last modified before the retention
// cutoff into a dated zip archive.
func (l *LoggerService) zipAndCleanOldLogs(now time.Time) {
	if l.retentionDays <= 0 {
		return
	}
	cutoff := now.AddDate(0, 0, -l.retentionDays)
	files, err := os.ReadDir(l.folderPath)
	if err != nil {
		return
	}

	var stale []string
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".log" {
			continue
		}
		fullPath := filepath.Join(l.folderPath, f.Name())
		if fullPath == l.CurrentFile() {
			continue
		}
		info, err := os.Stat(fullPath)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		stale = append(stale, fullPath)
	}
	if len(stale) == 0 {
		return
	}

	zipFile, err := l.createArchive(now)
	if err != nil {
		return
	}
	defer zipFile.Close()
	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	for _, fullPath := range stale {
		w, err := zipWriter.Create(filepath.Base(fullPath))
		if err != nil {
			continue
		}
		src, err := os.Open(fullPath)
		if err != nil {
			continue
		}
		_, copyErr := io.Copy(w, src)
		src.Close()
		if copyErr == nil {
			os.Remove(fullPath)
		}
	}
}

// createArchive opens a new zip named after now. An archive already written
// in the same second is never reused.
func (l *LoggerService) createArchive(now time.Time) (*os.File, error) {
	base := "logs_" + now.Format("20060102_150405")
	for i := 0; ; i++ {
		name := base + ".zip"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.zip", base, i)
		}
		f, err := os.OpenFile(filepath.Join(l.folderPath, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if !errors.Is(err, fs.ErrExist) {
			return f, err
		}
	}
}

func (l *LoggerService) LogAudit(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	log.Printf("[AUDIT] %s", msg)
}

var GlobalLogger *LoggerService

func SetGlobalLogger(l *LoggerService) {
	GlobalLogger = l
}

// Auditf writes an audit line through the global logger, or the standard
// logger when none is registered.
func Auditf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if GlobalLogger != nil {
		GlobalLogger.LogAudit(msg)
		return
	}
	log.Println(msg)
}
