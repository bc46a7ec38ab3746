// Package watch следит за папкой и сообщает о новых аудиофайлах
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hazadus/turntable/internal/audio"
)

// DefaultSettle - сколько файл должен не меняться, прежде чем о нем сообщат
const DefaultSettle = 500 * time.Millisecond

// Watcher сообщает об аудиофайлах, появившихся в папке
type Watcher struct {
	dir    string
	settle time.Duration
	onFile func(path string) bool
	logger *zap.Logger
}

// New создает наблюдателя. onFile вызывается из горутины Run и возвращает false,
// если файл не удалось принять; тогда о нем сообщат снова после следующей записи
func New(dir string, onFile func(path string) bool, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:    dir,
		settle: DefaultSettle,
		onFile: onFile,
		logger: logger,
	}
}

// SetSettle меняет задержку перед уведомлением
func (w *Watcher) SetSettle(d time.Duration) {
	if d > 0 {
		w.settle = d
	}
}

// Scan возвращает аудиофайлы, уже лежащие в папке, по алфавиту
func (w *Watcher) Scan() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения папки %s: %w", w.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if audio.IsAudioFile(entry.Name()) {
			files = append(files, filepath.Join(w.dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run следит за папкой до отмены ctx.
// Каждый принятый файл сообщается один раз, после того как запись в него затихла.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("не удалось создать наблюдателя: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			w.logger.Warn("Ошибка закрытия наблюдателя", zap.Error(err))
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("не удалось следить за %s: %w", w.dir, err)
	}
	w.logger.Info("Наблюдение за папкой", zap.String("dir", w.dir))

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	seen := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) || seen[event.Name] {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Ошибка наблюдателя", zap.Error(err))

		case now := <-ticker.C:
			for path, changed := range pending {
				if now.Sub(changed) < w.settle {
					continue
				}
				delete(pending, path)
				if _, err := os.Stat(path); err != nil {
					continue
				}
				w.logger.Debug("Новый файл", zap.String("path", path))
				if w.onFile(path) {
					seen[path] = true
				} else {
					w.logger.Debug("Файл не принят, ждем новых изменений", zap.String("path", path))
				}
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	return !strings.HasPrefix(name, ".") && audio.IsAudioFile(name)
}
