package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// encodeSilence создает WAV-файл с тишиной заданной длительности и возвращает его байты
func encodeSilence(t *testing.T, rate beep.SampleRate, d time.Duration) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "silence.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Ошибка создания файла: %v", err)
	}

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(rate.N(d)), format); err != nil {
		f.Close()
		t.Fatalf("Ошибка кодирования WAV: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Ошибка закрытия файла: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Ошибка чтения файла: %v", err)
	}
	return data
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"song.mp3", nil, FormatMP3},
		{"SONG.MP3", nil, FormatMP3},
		{"song.flac", nil, FormatFLAC},
		{"song.ogg", nil, FormatVorbis},
		{"song.wav", nil, FormatWAV},
		{"noext", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), FormatWAV},
		{"noext", []byte("fLaC\x00\x00"), FormatFLAC},
		{"noext", []byte("OggS\x00\x02"), FormatVorbis},
		{"noext", []byte("ID3\x04\x00"), FormatMP3},
		{"noext", []byte{0xFF, 0xFB, 0x90, 0x00}, FormatMP3},
	}

	for _, test := range tests {
		got, err := DetectFormat(test.name, test.data)
		if err != nil {
			t.Errorf("DetectFormat(%q) вернул ошибку: %v", test.name, err)
			continue
		}
		if got != test.expected {
			t.Errorf("DetectFormat(%q) = %s, ожидалось %s", test.name, got, test.expected)
		}
	}
}

func TestDetectFormatUnknown(t *testing.T) {
	_, err := DetectFormat("notes.txt", []byte("hello world"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Ожидалась ErrUnsupportedFormat, получено: %v", err)
	}
}

func TestIsAudioFile(t *testing.T) {
	if !IsAudioFile("/music/a.FLAC") {
		t.Error("a.FLAC должен считаться аудиофайлом")
	}
	if IsAudioFile("/music/cover.jpg") {
		t.Error("cover.jpg не должен считаться аудиофайлом")
	}
}

func TestDecodeBytesWAV(t *testing.T) {
	rate := beep.SampleRate(22050)
	data := encodeSilence(t, rate, time.Second)

	buf, err := DecodeBytes("silence.wav", data, 0, 4)
	if err != nil {
		t.Fatalf("Ошибка декодирования: %v", err)
	}

	if buf.Len() != rate.N(time.Second) {
		t.Errorf("Ожидалось %d выборок, получено %d", rate.N(time.Second), buf.Len())
	}
	if buf.Duration() != time.Second {
		t.Errorf("Ожидалась длительность 1s, получено %v", buf.Duration())
	}
	if buf.SourceFormat() != FormatWAV {
		t.Errorf("Ожидался формат wav, получено %s", buf.SourceFormat())
	}
}

func TestDecodeBytesResamples(t *testing.T) {
	data := encodeSilence(t, beep.SampleRate(22050), time.Second)

	buf, err := DecodeBytes("silence.wav", data, beep.SampleRate(44100), 4)
	if err != nil {
		t.Fatalf("Ошибка декодирования: %v", err)
	}

	if buf.Format().SampleRate != 44100 {
		t.Errorf("Ожидалась частота 44100, получено %d", buf.Format().SampleRate)
	}

	diff := buf.Duration() - time.Second
	if diff < 0 {
		diff = -diff
	}
	if diff > 20*time.Millisecond {
		t.Errorf("Длительность после передискретизации %v слишком далека от 1s", buf.Duration())
	}
}

func TestDecodeBytesCorrupted(t *testing.T) {
	_, err := DecodeBytes("broken.wav", []byte{0x00, 0x01, 0x02, 0x03}, 0, 4)
	if err == nil {
		t.Fatal("Ожидалась ошибка для поврежденного файла")
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Ожидалась DecodeError, получено %T: %v", err, err)
	}
	if decodeErr.Name != "broken.wav" {
		t.Errorf("Ожидалось имя broken.wav, получено %s", decodeErr.Name)
	}
}

func TestDecodeBytesUnsupported(t *testing.T) {
	_, err := DecodeBytes("notes.txt", []byte("plain text"), 0, 4)

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Ожидалась DecodeError, получено %T: %v", err, err)
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Ожидалась обернутая ErrUnsupportedFormat, получено: %v", err)
	}
}

func TestBufferStreamerOffset(t *testing.T) {
	rate := beep.SampleRate(22050)
	buf, err := DecodeBytes("silence.wav", encodeSilence(t, rate, time.Second), 0, 4)
	if err != nil {
		t.Fatalf("Ошибка декодирования: %v", err)
	}

	half := buf.streamer(500 * time.Millisecond)
	if half.Len() != buf.Len()-rate.N(500*time.Millisecond) {
		t.Errorf("Ожидалось %d выборок после смещения, получено %d",
			buf.Len()-rate.N(500*time.Millisecond), half.Len())
	}

	if s := buf.streamer(5 * time.Second); s.Len() != 0 {
		t.Errorf("Смещение за концом буфера должно давать пустой поток, получено %d", s.Len())
	}
	if s := buf.streamer(-time.Second); s.Len() != buf.Len() {
		t.Errorf("Отрицательное смещение должно давать весь буфер, получено %d", s.Len())
	}
}

func TestSkipID3v2(t *testing.T) {
	payload := []byte("fLaC-payload")
	tag := []byte{'I', 'D', '3', 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0xAA, 0xBB}
	data := append(tag, payload...)

	got := skipID3v2(data)
	if string(got) != string(payload) {
		t.Errorf("Ожидалось %q, получено %q", payload, got)
	}

	if string(skipID3v2(payload)) != string(payload) {
		t.Error("Данные без тега должны возвращаться без изменений")
	}
}

func TestMockRendererLifecycle(t *testing.T) {
	m := NewMock()
	m.SetDuration("a.mp3", time.Minute)

	buf, err := m.Decode(context.Background(), "a.mp3", []byte("a"))
	if err != nil {
		t.Fatalf("Ошибка декодирования: %v", err)
	}
	if buf.Duration() != time.Minute {
		t.Errorf("Ожидалась длительность 1m, получено %v", buf.Duration())
	}

	r, err := m.NewRenderer(buf)
	if err != nil {
		t.Fatalf("Ошибка создания рендерера: %v", err)
	}

	ended := 0
	r.OnEnded(func() { ended++ })

	if err := r.Start(10 * time.Second); err != nil {
		t.Fatalf("Ошибка запуска: %v", err)
	}
	if err := r.Start(0); !errors.Is(err, ErrRendererStarted) {
		t.Errorf("Повторный запуск должен вернуть ErrRendererStarted, получено: %v", err)
	}

	mr := r.(*MockRenderer)
	if mr.Offset() != 10*time.Second {
		t.Errorf("Ожидалось смещение 10s, получено %v", mr.Offset())
	}

	r.Stop()
	mr.Finish()
	if ended != 0 {
		t.Error("После Stop уведомление о конце потока не должно приходить")
	}
	if len(m.Active()) != 0 {
		t.Errorf("Не должно быть активных рендереров, получено %d", len(m.Active()))
	}
}

func TestMockDecodeError(t *testing.T) {
	m := NewMock()
	m.SetDecodeError(errors.New("bad data"))

	_, err := m.Decode(context.Background(), "a.mp3", nil)

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Ожидалась DecodeError, получено %T: %v", err, err)
	}
}
