// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"ajayblog/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the schema applied.
// The pool is pinned to one connection so every query sees the same memory DB.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 200, A: 255})
		}
	}
	return img
}

// PNGBytes returns a tiny valid PNG.
func PNGBytes() []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, sampleImage())
	return buf.Bytes()
}

// JPEGBytes returns a tiny valid JPEG.
func JPEGBytes() []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, sampleImage(), nil)
	return buf.Bytes()
}

// GIFBytes returns a tiny valid GIF.
func GIFBytes() []byte {
	var buf bytes.Buffer
	_ = gif.Encode(&buf, sampleImage(), nil)
	return buf.Bytes()
}

// OversizedPNG returns a valid PNG header followed by padding up to size bytes.
func OversizedPNG(size int) []byte {
	data := PNGBytes()
	if len(data) >= size {
		return data
	}
	return append(data, make([]byte, size-len(data))...)
}
