package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// IPFSSource serves blobs from a UnixFS directory published on IPFS. The
// directory holds one file per blob, named by the blob id.
type IPFSSource struct {
	shell       *shell.Shell
	apiAddr     string
	rootCID     string
	timeout     time.Duration
	log         *slog.Logger
	locationURI string
}

// NewIPFSSource creates a source reading rootCID through the IPFS node API at apiAddr ("host:port").
func NewIPFSSource(apiAddr, rootCID string, timeout time.Duration, log *slog.Logger) (*IPFSSource, error) {
	rootCID = strings.Trim(rootCID, "/")
	if rootCID == "" {
		return nil, fmt.Errorf("%w: missing IPFS root directory CID", interfaces.ErrInvalidLocationURI)
	}

	sh := shell.NewShell(apiAddr)
	if timeout > 0 {
		sh.SetTimeout(timeout)
	}

	return &IPFSSource{
		shell:       sh,
		apiAddr:     apiAddr,
		rootCID:     rootCID,
		timeout:     timeout,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/%s?timeout=%s", apiAddr, rootCID, timeout),
	}, nil
}

// Fetch cats the blob file, passing the byte range as offset and length.
func (b *IPFSSource) Fetch(ctx context.Context, req interfaces.BlobRequest) (*interfaces.BlobResponse, error) {
	start := time.Now()
	ipfsPath := fmt.Sprintf("/ipfs/%s/%s", b.rootCID, req.BlobID)

	request := b.shell.Request("cat", ipfsPath)
	suffixRange := false
	if r := req.Range; r != nil {
		switch {
		case r.Start != nil:
			request = request.Option("offset", strconv.FormatUint(*r.Start, 10))
			if r.End != nil && *r.End >= *r.Start {
				request = request.Option("length", strconv.FormatUint(*r.End-*r.Start+1, 10))
			}
		case r.End != nil:
			// cat has no suffix ranges, slice after reading.
			suffixRange = true
		}
	}

	resp, err := request.Send(ctx)
	var apiErr *shell.Error
	if errors.As(err, &apiErr) {
		return nil, b.apiError(req.BlobID, ipfsPath, apiErr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", interfaces.ErrUpstreamUnavailable, b.Name(), err)
	}
	defer resp.Close()

	if resp.Error != nil {
		return nil, b.apiError(req.BlobID, ipfsPath, resp.Error)
	}

	data, err := io.ReadAll(resp.Output)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", interfaces.ErrUpstreamUnavailable, ipfsPath, err)
	}
	if suffixRange {
		data = applyRange(data, req.Range)
	}

	b.log.Debug("Fetched blob from IPFS",
		slog.String("path", ipfsPath),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return &interfaces.BlobResponse{Data: data}, nil
}

func (b *IPFSSource) apiError(blobID, ipfsPath string, apiErr *shell.Error) error {
	if strings.Contains(apiErr.Message, "no link named") || strings.Contains(apiErr.Message, "not found") {
		b.log.Debug("Blob not found in IPFS", slog.String("path", ipfsPath))
		return fmt.Errorf("%w: blob %s", interfaces.ErrNotFound, blobID)
	}
	return fmt.Errorf("%w: %s: %w", ErrServerError, ipfsPath, apiErr)
}

func (b *IPFSSource) Name() string {
	return fmt.Sprintf("ipfs-%s", b.apiAddr)
}

func (b *IPFSSource) LocationURI() string {
	return b.locationURI
}
