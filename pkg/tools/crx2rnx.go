package tools

import (
	"context"
	"time"

	"github.com/de-bkg/gnssget/pkg/rinex"
)

// Crx2rnx converts Hatanaka compressed observation files with the CRX2RNX tool.
type Crx2rnx struct {
	Path    string
	Timeout time.Duration
}

// NewCrx2rnx looks up the converter in dir or $PATH.
func NewCrx2rnx(dir string) (*Crx2rnx, error) {
	var err error
	for _, name := range []string{"CRX2RNX", "crx2rnx"} {
		var p string
		if p, err = LookPath(dir, name); err == nil {
			return &Crx2rnx{Path: p}, nil
		}
	}
	return nil, err
}

// Convert writes the RINEX observation file rnxPath and removes crxPath.
func (c *Crx2rnx) Convert(ctx context.Context, crxPath, rnxPath string) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return rinex.Crx2rnx(ctx, crxPath, rnxPath, rinex.Crx2rnxOptions{Tool: c.Path})
}
