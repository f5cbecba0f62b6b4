// Package retention prunes versioned job output, keeping the newest
// entries by the timestamp in their names.
package retention

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cube-soft/cube.core-sub000/internal/engine"
)

// Layout names a version directory after the UTC time it was taken.
const Layout = "2006-01-02T15-04-05"

// matches "name (n)" as produced by the unique-name resolver
var seqPattern = regexp.MustCompile(`^(.*) \((\d+)\)$`)

// Version is one entry of a versioned destination.
type Version struct {
	Path  string
	Taken time.Time
	Seq   int // 0 for the first entry of a given second, n for "(n)"
}

// Name returns the version name for t.
func Name(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse extracts the timestamp and sequence from a version name. Names
// that do not follow Layout are not versions.
func Parse(name string) (time.Time, int, bool) {
	seq := 0
	if m := seqPattern.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return time.Time{}, 0, false
		}
		name, seq = m[1], n
	}
	t, err := time.Parse(Layout, name)
	if err != nil {
		return time.Time{}, 0, false
	}
	return t, seq, true
}

type Pruner struct {
	engine *engine.Engine
	log    *zap.Logger
}

func New(e *engine.Engine, log *zap.Logger) *Pruner {
	return &Pruner{engine: e, log: log}
}

// Versions lists the versions directly inside root, newest first.
func (p *Pruner) Versions(root string) []Version {
	var out []Version
	entries := append(p.engine.Directories(root), p.engine.Files(root)...)
	for _, path := range entries {
		t, seq, ok := Parse(filepath.Base(path))
		if !ok {
			continue
		}
		out = append(out, Version{Path: path, Taken: t, Seq: seq})
	}

	// Sort newest → oldest
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Taken.Equal(out[j].Taken) {
			return out[i].Taken.After(out[j].Taken)
		}
		return out[i].Seq > out[j].Seq
	})
	return out
}

// Apply deletes every version of root beyond the newest keep. keep <= 0
// keeps everything. It returns the paths actually removed.
func (p *Pruner) Apply(ctx context.Context, root string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	versions := p.Versions(root)
	if len(versions) <= keep {
		return nil, nil
	}

	var (
		removed []string
		errs    error
	)
	for _, v := range versions[keep:] {
		if err := ctx.Err(); err != nil {
			return removed, multierr.Append(errs, err)
		}
		ok, err := p.engine.Delete(v.Path)
		if err != nil {
			p.log.Error("retention: delete failed", zap.String("path", v.Path), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		if !ok {
			p.log.Warn("retention: delete cancelled", zap.String("path", v.Path))
			continue
		}
		p.log.Debug("retention: removed version", zap.String("path", v.Path))
		removed = append(removed, v.Path)
	}
	return removed, errs
}
