package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hazadus/turntable/internal/player"
	"github.com/hazadus/turntable/internal/utils"
	"github.com/hazadus/turntable/internal/watch"
)

// errNothingToPlay возвращается, если ни один файл не удалось добавить
var errNothingToPlay = errors.New("нет треков для воспроизведения")

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	var watchDir string

	cmd := &cobra.Command{
		Use:   "play [file|url|s3://bucket/key]...",
		Short: "Play files as a playlist",
		Long:  `Decode the given files into memory and play them one after another. Keyboard controls the playback.`,
		RunE: func(_ *cobra.Command, args []string) error {
			if watchDir == "" {
				watchDir = app.Config.WatchDir
			}
			if len(args) == 0 && watchDir == "" {
				return errors.New("укажите файлы или папку для наблюдения (--watch)")
			}
			return app.play(ctx, args, watchDir)
		},
	}

	cmd.Flags().StringVarP(&watchDir, "watch", "w", "", "directory to watch for new audio files")
	return cmd
}

func (app *Application) play(ctx context.Context, refs []string, watchDir string) error {
	p, backend, err := app.newPlayer()
	if err != nil {
		return err
	}
	defer backend.Close()

	subscribe(p)
	playWhenReady(p)

	if watchDir != "" {
		w := watch.New(watchDir, func(path string) bool {
			return app.appendAll(ctx, p, []string{path}) > 0
		}, app.Logger)

		existing, err := w.Scan()
		if err != nil {
			return err
		}
		refs = append(refs, existing...)

		go func() {
			if err := w.Run(ctx); err != nil {
				app.Logger.Error("Наблюдение за папкой остановлено", zap.Error(err))
			}
		}()
		fmt.Printf("👀 Следим за папкой: %s\n", watchDir)
	}

	app.appendAll(ctx, p, refs)
	if p.IsEmpty() && watchDir == "" {
		return errNothingToPlay
	}

	printControls()
	p.Play()

	// Включаем raw режим для чтения одиночных клавиш
	enableRawMode()
	defer disableRawMode()

	keysCtx, cancelKeys := context.WithCancel(ctx)
	defer cancelKeys()

	keys := make(chan byte)
	go readKeys(keysCtx, os.Stdin, keys)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	err = controlLoop(ctx, p, app.Config.SeekStep, keys, ticker.C)
	p.Stop()
	fmt.Println()
	return err
}

// subscribe выводит события плеера в консоль
func subscribe(p *player.Player) {
	p.OnReady.Listen(func(*player.Player) {
		fmt.Printf("\r\033[K✅ Плейлист готов\n")
	})
	p.OnChange.Listen(func(pl *player.Player) {
		fmt.Printf("\r\033[K⏭️  [%d/%d] %s\n", pl.Cursor()+1, pl.Len(), pl.Current().DisplayName())
	})
	p.OnPlay.Listen(func(pl *player.Player) {
		fmt.Printf("\r\033[K▶️  %s\n", pl.Current().DisplayName())
	})
	p.OnPause.Listen(func(*player.Player) {
		fmt.Printf("\r\033[K⏸️  Пауза\n")
	})
}

// playWhenReady запускает воспроизведение, как только в пустой плейлист попадает первый трек
func playWhenReady(p *player.Player) {
	p.OnReady.Listen(func(pl *player.Player) {
		pl.Play()
	})
}

// controlLoop обрабатывает клавиши и выводит прогресс до выхода
func controlLoop(ctx context.Context, p *player.Player, seekStep time.Duration, keys <-chan byte, ticks <-chan time.Time) error {
	for {
		select {
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			if handleKey(p, key, seekStep) {
				fmt.Printf("\r\033[K⏹️  Воспроизведение остановлено пользователем")
				return nil
			}
		case <-ticks:
			displayProgress(p)
		case <-ctx.Done():
			fmt.Printf("\r\033[K🚫 Операция отменена")
			return nil
		}
	}
}

// handleKey выполняет действие для клавиши и сообщает, нужно ли выйти
func handleKey(p *player.Player, key byte, seekStep time.Duration) bool {
	switch key {
	case ' ', '\n', '\r':
		p.Toggle()
	case 'n':
		p.Next()
	case 'p':
		p.Prev()
	case 's':
		p.Stop()
	case ',':
		p.Seek(p.Position() - seekStep)
	case '.':
		p.Seek(p.Position() + seekStep)
	case 'q', 3: // 3 - Ctrl+C в raw режиме
		return true
	}
	return false
}

// displayProgress отображает прогресс текущего трека
func displayProgress(p *player.Player) {
	fmt.Printf("\r\033[K%s", progressLine(p.Current()))
}

func progressLine(info player.TrackInfo) string {
	if info.IsZero() {
		return "⏳ Ожидание треков..."
	}

	statusIcon := "⏸️"
	if info.State == player.Rendering {
		statusIcon = "⏱️"
	}

	percent := 0.0
	if info.Duration > 0 {
		percent = float64(info.Position) / float64(info.Duration) * 100
	}
	if percent > 100 {
		percent = 100
	}

	return fmt.Sprintf("%s  %5.1f%% | %s / %s | %s",
		statusIcon,
		percent,
		utils.FormatClock(info.Position),
		utils.FormatClock(info.Duration),
		utils.TruncateString(info.DisplayName(), 40))
}

func printControls() {
	fmt.Printf("🎮 Управление:\n")
	fmt.Printf("   [Пробел] - пауза/воспроизведение\n")
	fmt.Printf("   [n]/[p]  - следующий/предыдущий трек\n")
	fmt.Printf("   [,]/[.]  - перемотка назад/вперед\n")
	fmt.Printf("   [s]      - стоп\n")
	fmt.Printf("   [q]      - выход\n")
	fmt.Println()
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Игнорируем ошибку, так как это не критично для работы плеера
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Игнорируем ошибку, так как это не критично для работы плеера
}

// readKeys читает одиночные символы без ожидания Enter до отмены ctx
func readKeys(ctx context.Context, r io.Reader, keys chan<- byte) {
	defer close(keys)
	buffer := make([]byte, 1)
	for {
		if _, err := r.Read(buffer); err != nil {
			return
		}
		select {
		case keys <- buffer[0]:
		case <-ctx.Done():
			return
		}
	}
}
