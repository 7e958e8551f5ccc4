// Package audioconv converts between audio file formats and the mono
// 16 kHz float32 PCM the speech pipeline works in.
package audioconv

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

// SampleRate16k is the pipeline's native sample rate.
const SampleRate16k = 16000

// MaxSamples caps decoded output; zero means unlimited.
type DecodeOptions struct {
	MaxSamples int
}

// DecodeFile reads a wav/mp3/ogg (vorbis or opus) file into mono 16 kHz
// float32 PCM. The extension picks the decoder; unknown extensions fall back
// to sniffing the container magic.
func DecodeFile(path string, opt DecodeOptions) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(f, opt)
	case ".mp3":
		return decodeMP3(f, opt)
	case ".ogg", ".oga":
		return decodeOgg(f, opt)
	}

	br := bufio.NewReader(f)
	magic, _ := br.Peek(4)
	_, _ = f.Seek(0, io.SeekStart)

	switch string(magic) {
	case "RIFF":
		return decodeWAV(f, opt)
	case "OggS":
		return decodeOgg(f, opt)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", path)
	}
}

func decodeWAV(r io.ReadSeeker, opt DecodeOptions) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav")
	}

	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if pb == nil || pb.Data == nil {
		return nil, errors.New("empty wav")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	x := intsToFloat32(pb.Data, bitDepth)

	channels, rate := 1, 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			channels = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
	}

	return normalize(x, channels, rate, opt), nil
}

func decodeMP3(r io.Reader, opt DecodeOptions) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, err
	}

	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return nil, err
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}

	// go-mp3 always emits interleaved stereo.
	return normalize(int16sToFloat32(ints), 2, rate, opt), nil
}

func decodeOgg(r io.ReadSeeker, opt DecodeOptions) ([]float32, error) {
	if out, err := decodeVorbis(r, opt); err == nil {
		return out, nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	out, err := decodeOpus(r, opt)
	if err != nil {
		return nil, fmt.Errorf("ogg is neither vorbis nor opus: %w", err)
	}
	return out, nil
}

func decodeVorbis(r io.Reader, opt DecodeOptions) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid ogg/vorbis stream")
	}
	return normalize(pcm, format.Channels, format.SampleRate, opt), nil
}

func decodeOpus(rs io.ReadSeeker, opt DecodeOptions) ([]float32, error) {
	dec, err := popus.NewDecoder(rs)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()

	channels := dec.ChannelCount()
	if channels <= 0 {
		channels = 1
	}

	var (
		pcm48 []float32
		buf   = make([]int16, 48000*channels/2) // ~0.5s per read
	)
	for {
		n, err := dec.Read(buf) // n = samples per channel
		if n > 0 {
			pcm48 = append(pcm48, int16sToFloat32(buf[:n*channels])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	// Opus always decodes at 48 kHz.
	return normalize(pcm48, channels, 48000, opt), nil
}

// normalize downmixes to mono, resamples to 16 kHz and applies the cap.
func normalize(x []float32, channels, rate int, opt DecodeOptions) []float32 {
	if channels > 1 {
		x = downmix(x, channels)
	}
	if rate != SampleRate16k {
		x = resample(x, rate, SampleRate16k)
	}
	if opt.MaxSamples > 0 && len(x) > opt.MaxSamples {
		x = x[:opt.MaxSamples]
	}
	return x
}
