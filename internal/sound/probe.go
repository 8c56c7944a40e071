package sound

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/go-audio/wav"

	"github.com/tphakala/audiosession/internal/errors"
	"github.com/tphakala/audiosession/internal/result"
)

// probeInfo is the metadata extracted from an audio file before the engine
// decode. Probing lets the registry distinguish a missing file from a corrupt
// one and serves Length queries without engine round-trips.
type probeInfo struct {
	sampleRate int
	channels   int
	duration   time.Duration
}

// probeFile validates that path points at a readable, decodable audio file.
// Stat failures map to fileNotFound, decode failures to fileLoadFailed.
func probeFile(path string) (probeInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return probeInfo{}, errors.New(result.ErrFileNotFound).
			Component("sound").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	f, err := os.Open(path)
	if err != nil {
		return probeInfo{}, errors.New(result.ErrFileLoadFailed).
			Component("sound").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Context("cause", err.Error()).
			Build()
	}
	defer f.Close()

	var info probeInfo
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		info, err = probeWav(f)
	case ".mp3":
		info, err = probeMp3(f)
	case ".ogg":
		info, err = probeOgg(f)
	default:
		return probeInfo{}, errors.New(result.ErrFileLoadFailed).
			Component("sound").
			Category(errors.CategoryValidation).
			Context("path", path).
			Context("cause", "unsupported file extension").
			Build()
	}
	if err != nil {
		return probeInfo{}, errors.New(result.ErrFileLoadFailed).
			Component("sound").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Context("cause", err.Error()).
			Build()
	}
	return info, nil
}

func probeWav(f *os.File) (probeInfo, error) {
	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return probeInfo{}, errors.NewStd("not a valid wav file")
	}
	duration, err := decoder.Duration()
	if err != nil {
		return probeInfo{}, err
	}
	return probeInfo{
		sampleRate: int(decoder.SampleRate),
		channels:   int(decoder.NumChans),
		duration:   duration,
	}, nil
}

func probeMp3(f *os.File) (probeInfo, error) {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return probeInfo{}, err
	}
	// go-mp3 always outputs 16-bit stereo, 4 bytes per sample frame.
	frames := decoder.Length() / 4
	duration := time.Duration(frames) * time.Second / time.Duration(decoder.SampleRate())
	return probeInfo{
		sampleRate: decoder.SampleRate(),
		channels:   2,
		duration:   duration,
	}, nil
}

func probeOgg(f *os.File) (probeInfo, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return probeInfo{}, err
	}
	var duration time.Duration
	if frames := reader.Length(); frames > 0 {
		duration = time.Duration(frames) * time.Second / time.Duration(reader.SampleRate())
	}
	return probeInfo{
		sampleRate: reader.SampleRate(),
		channels:   reader.Channels(),
		duration:   duration,
	}, nil
}
