package audio

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// Format - контейнер/кодек аудиофайла
type Format string

// Поддерживаемые форматы
const (
	FormatMP3    Format = "mp3"
	FormatWAV    Format = "wav"
	FormatFLAC   Format = "flac"
	FormatVorbis Format = "vorbis"
)

var extensionFormats = map[string]Format{
	".mp3":  FormatMP3,
	".wav":  FormatWAV,
	".wave": FormatWAV,
	".flac": FormatFLAC,
	".ogg":  FormatVorbis,
	".oga":  FormatVorbis,
}

// IsAudioFile сообщает, похоже ли имя файла на поддерживаемый аудиофайл
func IsAudioFile(name string) bool {
	_, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]
	return ok
}

// DetectFormat определяет формат по расширению, а при его отсутствии - по сигнатуре
func DetectFormat(name string, data []byte) (Format, error) {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return f, nil
	}

	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(data) >= 4 && string(data[0:4]) == "fLaC":
		return FormatFLAC, nil
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return FormatVorbis, nil
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return FormatMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// Синхрослово MPEG-фрейма
		return FormatMP3, nil
	}

	return "", ErrUnsupportedFormat
}

// BeepBuffer - декодированный трек, целиком загруженный в память
type BeepBuffer struct {
	buf    *beep.Buffer
	source Format
}

// Duration возвращает длительность буфера
func (b *BeepBuffer) Duration() time.Duration {
	return b.buf.Format().SampleRate.D(b.buf.Len())
}

// Format возвращает формат выборок буфера
func (b *BeepBuffer) Format() beep.Format {
	return b.buf.Format()
}

// SourceFormat возвращает формат исходного файла
func (b *BeepBuffer) SourceFormat() Format {
	return b.source
}

// Len возвращает количество выборок в буфере
func (b *BeepBuffer) Len() int {
	return b.buf.Len()
}

// streamer возвращает поток, начинающийся с указанного смещения
func (b *BeepBuffer) streamer(offset time.Duration) beep.StreamSeeker {
	total := b.buf.Len()
	from := b.buf.Format().SampleRate.N(offset)
	if from < 0 {
		from = 0
	}
	if from > total {
		from = total
	}
	return b.buf.Streamer(from, total)
}

// DecodeBytes декодирует файл целиком в память.
// Если sampleRate больше нуля и отличается от частоты файла, поток передискретизируется.
func DecodeBytes(name string, data []byte, sampleRate beep.SampleRate, quality int) (buffer *BeepBuffer, err error) {
	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}

	// Некоторые декодеры паникуют на поврежденных данных
	defer func() {
		if r := recover(); r != nil {
			buffer = nil
			err = &DecodeError{Name: name, Err: fmt.Errorf("сбой декодера: %v", r)}
		}
	}()

	streamer, streamFormat, err := openStream(format, data)
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	outFormat := streamFormat
	if sampleRate > 0 && streamFormat.SampleRate != sampleRate {
		s = beep.Resample(quality, streamFormat.SampleRate, sampleRate, streamer)
		outFormat.SampleRate = sampleRate
	}

	buf := beep.NewBuffer(outFormat)
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}

	return &BeepBuffer{buf: buf, source: format}, nil
}

func openStream(format Format, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	switch format {
	case FormatMP3:
		return mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	case FormatWAV:
		return wav.Decode(bytes.NewReader(data))
	case FormatFLAC:
		// Некоторые программы дописывают ID3v2 в начало FLAC
		return flac.Decode(bytes.NewReader(skipID3v2(data)))
	case FormatVorbis:
		return vorbis.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return nil, beep.Format{}, ErrUnsupportedFormat
	}
}

// skipID3v2 пропускает тег ID3v2 в начале данных, если он есть
func skipID3v2(data []byte) []byte {
	if len(data) < 10 || string(data[0:3]) != "ID3" {
		return data
	}

	// Размер тега хранится как syncsafe-целое в байтах 6-9
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	if 10+size > len(data) {
		return data
	}
	return data[10+size:]
}
