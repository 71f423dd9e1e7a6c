package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"soundbox/types"

	"go.uber.org/zap"
)

// ProgressFunc is called after each file is described
type ProgressFunc func(done, total int)

// Indexer enriches audio files with tag metadata and measured durations
type Indexer interface {
	Describe(ctx context.Context, files []types.AudioFile, progress ProgressFunc) []types.AudioFile
}

// indexer fans files out to a fixed pool of workers
type indexer struct {
	library    Library
	maxWorkers int
	probe      func(string) (time.Duration, error)
	log        *zap.Logger
}

// NewIndexer creates an indexer with maxWorkers concurrent describers
func NewIndexer(library Library, maxWorkers int, log *zap.Logger) Indexer {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &indexer{
		library:    library,
		maxWorkers: maxWorkers,
		probe:      ProbeDuration,
		log:        log.Named("indexer"),
	}
}

// Describe returns a copy of files with Metadata filled in. Files not reached
// before ctx is done are returned unchanged.
func (ix *indexer) Describe(ctx context.Context, files []types.AudioFile, progress ProgressFunc) []types.AudioFile {
	result := make([]types.AudioFile, len(files))
	copy(result, files)

	queue := make(chan int)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	workers := ix.maxWorkers
	if workers > len(files) {
		workers = len(files)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				result[idx].Metadata = ix.describe(result[idx])

				mu.Lock()
				done++
				if progress != nil {
					progress(done, len(files))
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for idx := range files {
		select {
		case queue <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	return result
}

func (ix *indexer) describe(file types.AudioFile) *types.AudioMetadata {
	fullPath := filepath.Join(ix.library.AudiosPath(), file.Folder, file.Filename)
	metadata := ix.library.ExtractAudioMetadata(fullPath)

	duration, err := ix.probe(fullPath)
	switch {
	case err == nil:
		metadata.DurationSeconds = duration.Seconds()
		metadata.Duration = FormatTime(metadata.DurationSeconds)
	case errors.Is(err, ErrUnsupportedFormat):
		ix.log.Debug("duration not measurable", zap.String("file", file.Path))
	default:
		ix.log.Warn("duration probe failed", zap.String("file", file.Path), zap.Error(err))
	}

	return metadata
}
