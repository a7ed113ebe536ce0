package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrDuplicateJob is returned when two input files map to the same graph id.
var ErrDuplicateJob = errors.New("batch: duplicate graph id")

// ErrInvalidSource is returned for a source without a network type or directory.
var ErrInvalidSource = errors.New("batch: invalid source")

// DefaultPattern matches the files a source directory contributes.
const DefaultPattern = "*.gexf"

// Source is a directory of graphs of one network type, e.g. all co-authorship
// networks. Each matching file is one analysis period.
type Source struct {
	NetworkType string
	Dir         string
	Pattern     string
}

func (s Source) pattern() string {
	if s.Pattern == "" {
		return DefaultPattern
	}
	return s.Pattern
}

// Matches reports whether path is a file this source would discover.
func (s Source) Matches(path string) bool {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(s.Dir) {
		return false
	}
	ok, err := filepath.Match(s.pattern(), filepath.Base(path))
	return err == nil && ok
}

// JobFor builds the job for a file of this source.
func (s Source) JobFor(path string) Job {
	period := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Job{
		ID:          s.NetworkType + "_" + period,
		NetworkType: s.NetworkType,
		Period:      period,
		Path:        path,
	}
}

// Job is one graph to process.
type Job struct {
	// ID names the output table: <network type>_<period>.
	ID          string
	NetworkType string
	Period      string
	Path        string
}

// Discover lists the jobs of every source, sorted by id. Directories that do
// not exist contribute no jobs.
func Discover(sources []Source) ([]Job, error) {
	var jobs []Job
	seen := make(map[string]string)
	for _, src := range sources {
		if src.NetworkType == "" || src.Dir == "" {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidSource, src)
		}
		if _, err := os.Stat(src.Dir); errors.Is(err, os.ErrNotExist) {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(src.Dir, src.pattern()))
		if err != nil {
			return nil, fmt.Errorf("batch: source %s: %w", src.NetworkType, err)
		}
		for _, path := range matches {
			if info, err := os.Stat(path); err != nil || info.IsDir() {
				continue
			}
			job := src.JobFor(path)
			if prev, ok := seen[job.ID]; ok {
				return nil, fmt.Errorf("%w: %s from %s and %s", ErrDuplicateJob, job.ID, prev, path)
			}
			seen[job.ID] = path
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

// JobForPath finds the source that owns path and returns its job.
func JobForPath(sources []Source, path string) (Job, bool) {
	for _, src := range sources {
		if src.Matches(path) {
			return src.JobFor(path), true
		}
	}
	return Job{}, false
}
