package driver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/snabb/httpreaderat"
)

// OpenRemoteTar indexes the headers of a tar archive served over HTTP. Only the
// header blocks are fetched, using range requests.
func OpenRemoteTar(ctx context.Context, url string) (*Tar, error) {
	t0 := time.Now()

	var timeout time.Duration
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	client := &http.Client{
		Timeout: timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	htrdr, err := httpreaderat.New(client, req, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot open remote tar: %w", err)
	}

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	err = ProduceIndexFromTar(db, io.NewSectionReader(htrdr, 0, htrdr.Size()))
	if err != nil {
		db.Close()
		return nil, err
	}
	log.WithField("url", url).WithField("duration", time.Since(t0)).Debug("indexed remote tar")

	return NewTar(db), nil
}
