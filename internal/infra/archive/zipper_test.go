package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/pedropalhari/video-poster-image-generator/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageEmpty(t *testing.T) {
	data, err := NewPackager().Package(nil)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}

func TestPackageRoundTrip(t *testing.T) {
	b1 := []byte("first image bytes")
	b2 := []byte("second image bytes")

	data, err := NewPackager().Package([]entity.ExtractedImage{
		{Filename: "a.webp", MimeType: entity.MimeTypeWebP, Bytes: b1},
		{Filename: "b.webp", MimeType: entity.MimeTypeWebP, Bytes: b2},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	assert.Equal(t, "a.webp", zr.File[0].Name)
	assert.Equal(t, "b.webp", zr.File[1].Name)

	for i, want := range [][]byte{b1, b2} {
		rc, err := zr.File[i].Open()
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPackageDeterministic(t *testing.T) {
	images := []entity.ExtractedImage{
		{Filename: "clip.webp", Bytes: []byte("payload")},
	}

	first, err := NewPackager().Package(images)
	require.NoError(t, err)
	second, err := NewPackager().Package(images)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPackageKeepsDuplicateNames(t *testing.T) {
	data, err := NewPackager().Package([]entity.ExtractedImage{
		{Filename: "clip.webp", Bytes: []byte("one")},
		{Filename: "clip.webp", Bytes: []byte("two")},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, zr.File[0].Name, zr.File[1].Name)
}
