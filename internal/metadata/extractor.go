// Package metadata предоставляет функционал для извлечения метаданных из аудио файлов
package metadata

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// TrackMetadata хранит метаданные трека
type TrackMetadata struct {
	Artist string
	Title  string
	Album  string
}

// CoverArt - обложка, готовая к отображению
type CoverArt struct {
	MIMEType string // MIME-тип изображения
	Data     string // Изображение в base64
}

// DataURL возвращает обложку в виде data URL
func (c *CoverArt) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", c.MIMEType, c.Data)
}

// Bytes декодирует изображение из base64
func (c *CoverArt) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(c.Data)
}

// UnknownArtist подставляется, если исполнителя не удалось определить
const UnknownArtist = "Unknown Artist"

// Имена файлов обложек, которые ищутся рядом с локальным треком
var coverArtFilenames = []string{
	"cover.jpg", "cover.jpeg", "cover.png",
	"folder.jpg", "folder.jpeg", "folder.png",
	"front.jpg", "front.jpeg", "front.png",
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct {
	folderFallback bool
}

// NewExtractor создает новый экстрактор метаданных.
// Если folderFallback включен, для локальных файлов без встроенной обложки
// ищется изображение в той же папке.
func NewExtractor(folderFallback bool) *Extractor {
	return &Extractor{folderFallback: folderFallback}
}

// FetchCoverArt возвращает встроенную обложку трека.
// Отсутствие обложки не является ошибкой: в этом случае возвращается nil, nil.
func (e *Extractor) FetchCoverArt(ctx context.Context, source string, reader io.ReadSeeker) (*CoverArt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("ошибка перемотки источника: %w", err)
	}

	metadata, err := tag.ReadFrom(reader)
	if err == nil {
		if pic := metadata.Picture(); pic != nil && len(pic.Data) > 0 {
			return newCoverArt(pic.MIMEType, pic.Ext, pic.Data), nil
		}
	}

	if e.folderFallback && isLocalPath(source) {
		cover, folderErr := findFolderArt(filepath.Dir(source))
		if cover != nil || folderErr != nil {
			return cover, folderErr
		}
	}

	if err != nil && !errors.Is(err, tag.ErrNoTagsFound) {
		return nil, fmt.Errorf("ошибка чтения тегов: %w", err)
	}
	return nil, nil
}

// ExtractFromReader извлекает метаданные из io.Reader
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackMetadata {
	// Сбрасываем reader в начало
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return e.getDefaultMetadata(source)
	}

	metadata, err := tag.ReadFrom(reader)
	if err != nil {
		return e.getDefaultMetadata(source)
	}

	result := TrackMetadata{
		Artist: metadata.Artist(),
		Title:  metadata.Title(),
		Album:  metadata.Album(),
	}

	// Теги есть, но пустые - берем недостающее из имени файла
	if result.Title == "" {
		fallback := e.getDefaultMetadata(source)
		result.Title = fallback.Title
		if result.Artist == "" {
			result.Artist = fallback.Artist
		}
	}
	return result
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return e.getDefaultMetadata(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// getDefaultMetadata возвращает метаданные по умолчанию на основе имени файла
func (e *Extractor) getDefaultMetadata(source string) TrackMetadata {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// Пытаемся разобрать имя файла в формате "Artist - Title"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackMetadata{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
			Album:  "",
		}
	}

	// Если не удалось разобрать, используем имя файла как название
	return TrackMetadata{
		Artist: UnknownArtist,
		Title:  nameWithoutExt,
		Album:  "",
	}
}

func newCoverArt(mimeType, ext string, data []byte) *CoverArt {
	if mimeType == "" {
		mimeType = mimeFromExt("." + strings.ToLower(ext))
	}
	return &CoverArt{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

// findFolderArt ищет обложку среди типичных имен файлов в папке
func findFolderArt(dir string) (*CoverArt, error) {
	for _, filename := range coverArtFilenames {
		data, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			// Пробуем имя в верхнем регистре
			data, err = os.ReadFile(filepath.Join(dir, strings.ToUpper(filename)))
			if err != nil {
				continue
			}
		}
		return newCoverArt(mimeFromExt(filepath.Ext(filename)), "", data), nil
	}
	return nil, nil
}

func mimeFromExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// isLocalPath сообщает, указывает ли идентификатор источника на локальный файл
func isLocalPath(source string) bool {
	return filepath.IsAbs(source) && !strings.Contains(source, "://")
}
