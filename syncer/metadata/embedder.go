package metadata

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Embedder embeds ID3 metadata into downloaded files.
type Embedder struct{}

// NewEmbedder creates a metadata embedder.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// Embed writes tags into an audio file. Only MP3 is tagged; other
// extensions are logged and left untouched so a fetch that produced
// an unexpected container still counts as downloaded.
func (e *Embedder) Embed(ctx context.Context, filePath string, song *Song) error {
	if err := ctx.Err(); err != nil {
		return &MetadataError{
			Message:  fmt.Sprintf("Context cancelled: %v", err),
			Original: err,
		}
	}

	if _, err := os.Stat(filePath); err != nil {
		return &MetadataError{
			Message:  fmt.Sprintf("File not found: %s", filePath),
			Original: err,
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if ext != "mp3" {
		log.Printf("WARN: metadata_embed_unsupported_format file=%s format=%s", filePath, ext)
		return nil
	}

	if err := e.embedMP3(ctx, filePath, song); err != nil {
		log.Printf("ERROR: metadata_embed_failed file=%s track=%s error=%v", filePath, song.Title, err)
		return err
	}

	log.Printf("INFO: metadata_embed_complete file=%s track=%s artist=%s", filePath, song.Title, song.ArtistLine())
	return nil
}
