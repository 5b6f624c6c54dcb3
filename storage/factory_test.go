package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

func mustLocation(t *testing.T, uri string) interfaces.BlobSourceLocation {
	t.Helper()
	location, err := interfaces.NewBlobSourceLocation(uri)
	require.NoError(t, err)
	return location
}

func TestSourceFactory_BlobSourceFor(t *testing.T) {
	factory := NewSourceFactory(testLogger, nil)
	dir := t.TempDir()

	aggregator, err := factory.BlobSourceFor(mustLocation(t, "https://aggregator.walrus-testnet.walrus.space"))
	require.NoError(t, err)
	assert.IsType(t, &AggregatorSource{}, aggregator)

	_, err = factory.BlobSourceFor(mustLocation(t, "https://aggregator.example/"))
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)

	file, err := factory.BlobSourceFor(mustLocation(t, "file://"+dir))
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, file)

	s3Source, err := factory.BlobSourceFor(mustLocation(t, "s3://AKID:SECRET@site-bucket/blobs?region=us-west-2&path_style=true"))
	require.NoError(t, err)
	assert.IsType(t, &S3Source{}, s3Source)
	assert.Equal(t, "s3://site-bucket/blobs?region=us-west-2", s3Source.LocationURI())

	ipfs, err := factory.BlobSourceFor(mustLocation(t, "ipfs://127.0.0.1/"+testRootCID+"?timeout=5s"))
	require.NoError(t, err)
	assert.IsType(t, &IPFSSource{}, ipfs)
	assert.Equal(t, "ipfs-127.0.0.1:5001", ipfs.Name())

	_, err = factory.BlobSourceFor(mustLocation(t, "ipfs://127.0.0.1/"+testRootCID+"?timeout=soon"))
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestSourceFactory_CreateMultiSource(t *testing.T) {
	factory := NewSourceFactory(testLogger, nil)
	dir := t.TempDir()

	single, err := factory.CreateMultiSource([]interfaces.BlobSourceLocation{
		mustLocation(t, "https://aggregator.example"),
		mustLocation(t, "https://broken.example/"),
	})
	require.NoError(t, err)
	assert.IsType(t, &AggregatorSource{}, single)

	multi, err := factory.CreateMultiSource([]interfaces.BlobSourceLocation{
		mustLocation(t, "file://"+dir),
		mustLocation(t, "https://aggregator.example"),
	})
	require.NoError(t, err)
	assert.Equal(t, "multi:[file://"+dir+",https://aggregator.example]", multi.LocationURI())

	_, err = factory.CreateMultiSource([]interfaces.BlobSourceLocation{mustLocation(t, "https://broken.example/")})
	assert.Error(t, err)
}
