package metadata

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bogem/id3v2/v2"
)

// embedMP3 writes ID3v2 frames into an MP3 file.
func (e *Embedder) embedMP3(ctx context.Context, filePath string, song *Song) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		// A fresh download may carry no tag at all.
		tag, err = id3v2.Open(filePath, id3v2.Options{Parse: false})
		if err != nil {
			return &MetadataError{
				Message:  fmt.Sprintf("Failed to open MP3 file: %s", filePath),
				Original: err,
			}
		}
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetTitle(song.Title)
	tag.SetArtist(song.ArtistLine())
	if song.Album != "" {
		tag.SetAlbum(song.Album)
	}
	if song.AlbumArtist != "" {
		tag.AddTextFrame(tag.CommonID("TPE2"), id3v2.EncodingUTF8, song.AlbumArtist)
	}

	if song.TrackNumber > 0 {
		tag.AddTextFrame(tag.CommonID("TRCK"), id3v2.EncodingUTF8, fmt.Sprintf("%d", song.TrackNumber))
	}

	if song.Date != "" {
		tag.AddTextFrame(tag.CommonID("TDRC"), id3v2.EncodingUTF8, song.Date)
	}

	if song.SpotifyURL != "" {
		tag.AddTextFrame(tag.CommonID("WOAS"), id3v2.EncodingUTF8, song.SpotifyURL)
	}

	if song.CoverURL != "" {
		if err := e.embedCover(ctx, tag, song.CoverURL); err != nil {
			log.Printf("WARN: cover_art_download_failed file=%s cover_url=%s error=%v", filePath, song.CoverURL, err)
		}
	}

	if err := tag.Save(); err != nil {
		return &MetadataError{
			Message:  "Failed to save MP3 metadata",
			Original: err,
		}
	}

	return nil
}

// embedCover downloads album art and attaches it as the front cover.
func (e *Embedder) embedCover(ctx context.Context, tag *id3v2.Tag, coverURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, "GET", coverURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download cover art: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download cover art: status %d", resp.StatusCode)
	}

	coverData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read cover art: %w", err)
	}

	mimeType := "image/jpeg"
	if len(coverData) > 4 &&
		coverData[0] == 0x89 && coverData[1] == 0x50 && coverData[2] == 0x4E && coverData[3] == 0x47 {
		mimeType = "image/png"
	}

	tag.DeleteFrames(tag.CommonID("APIC"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mimeType,
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     coverData,
	})

	return nil
}
