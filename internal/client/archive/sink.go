package archive

import (
	"context"

	"github.com/dmitrijs2005/meshmart/internal/filex"
)

// DirSink saves archives into Dir, never overwriting an existing file.
type DirSink struct {
	Dir string
}

func (s DirSink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := filex.EnsureDir(s.Dir)
	if err != nil {
		return "", err
	}

	p, err := filex.UniquePath(dir, name)
	if err != nil {
		return "", err
	}

	if err := filex.WriteAtomic(p, data, 0o640); err != nil {
		return "", err
	}
	return p, nil
}
