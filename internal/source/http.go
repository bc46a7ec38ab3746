package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"time"
)

// MaxDownloadSize ограничивает размер загружаемого файла
const MaxDownloadSize = 512 << 20

// HTTP - файл, доступный по http(s) ссылке. Скачивается полностью до декодирования
type HTTP struct {
	url    string
	name   string
	client *http.Client

	OnProgress func(read, total int64)
}

// NewHTTP создает HTTP источник
func NewHTTP(rawURL string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("некорректный URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("некорректный URL %q: не указан хост", rawURL)
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = u.Host
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	return &HTTP{url: rawURL, name: name, client: client}, nil
}

// ID возвращает URL
func (h *HTTP) ID() string { return h.url }

// Name возвращает последний сегмент пути
func (h *HTTP) Name() string { return h.name }

// ReadAll скачивает файл
func (h *HTTP) ReadAll(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept-Encoding", "identity") // Отключаем сжатие
	req.Header.Set("User-Agent", "turntable/1.0") // Идентифицируем клиент

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}
	if resp.ContentLength > MaxDownloadSize {
		return nil, fmt.Errorf("файл слишком большой: %d байт", resp.ContentLength)
	}

	var reader io.Reader = io.LimitReader(resp.Body, MaxDownloadSize+1)
	if h.OnProgress != nil {
		reader = &progressReader{
			Reader:     reader,
			total:      resp.ContentLength,
			onProgress: h.OnProgress,
		}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}
	if len(data) > MaxDownloadSize {
		return nil, fmt.Errorf("файл слишком большой: больше %d байт", MaxDownloadSize)
	}
	return data, nil
}

func newTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		// Таймаут для TLS handshake
		TLSHandshakeTimeout: 10 * time.Second,
		// Таймаут ожидания заголовков ответа
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       300 * time.Second, // 5 минут
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// progressReader сообщает о количестве прочитанных байт
type progressReader struct {
	io.Reader
	total      int64
	read       int64
	onProgress func(read, total int64)
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.read += int64(n)
	if n > 0 {
		pr.onProgress(pr.read, pr.total)
	}
	return n, err
}
