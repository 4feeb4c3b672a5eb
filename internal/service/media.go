package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"gowa-blast/internal/model"
)

const (
	// maxMediaBytes caps a single media download (WhatsApp itself
	// rejects larger payloads anyway).
	maxMediaBytes = 64 << 20

	thumbnailSize    = 72
	thumbnailQuality = 75
)

// FetchMedia downloads the media behind a URL and prepares it for
// sending: mimetype detection, a JPEG thumbnail for images, and webp
// images re-encoded to JPEG since WhatsApp image messages expect
// JPEG/PNG content.
func FetchMedia(client *http.Client, rawURL string) (*model.Media, error) {
	resp, err := client.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("media download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media download failed: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media download failed: %w", err)
	}
	if len(data) > maxMediaBytes {
		return nil, fmt.Errorf("media too large: exceeds %d bytes", maxMediaBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media download failed: empty body")
	}

	mimetype := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mimetype, ';'); i >= 0 {
		mimetype = strings.TrimSpace(mimetype[:i])
	}
	if mimetype == "" || mimetype == "application/octet-stream" {
		mimetype = http.DetectContentType(data)
	}

	media := &model.Media{
		Data:     data,
		Mimetype: mimetype,
		FileName: fileNameFromURL(rawURL),
	}

	if strings.HasPrefix(mimetype, "image/") {
		if err := prepareImage(media); err != nil {
			// A preview-less image still sends fine.
			return media, nil
		}
	}

	return media, nil
}

func prepareImage(media *model.Media) error {
	var img image.Image
	var err error

	if media.Mimetype == "image/webp" {
		img, err = webp.Decode(bytes.NewReader(media.Data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(media.Data))
	}
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	if media.Mimetype == "image/webp" {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return fmt.Errorf("failed to re-encode webp: %w", err)
		}
		media.Data = buf.Bytes()
		media.Mimetype = "image/jpeg"
	}

	thumb := imaging.Thumbnail(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	media.Thumbnail = buf.Bytes()
	return nil
}

func fileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "file"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}
