package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

type sourceFormat int

const (
	formatPNG sourceFormat = iota
	formatPDF
	formatHEIC
	formatOther
)

// detectFormat decides how a scanned document must be decoded. Magic bytes
// win over the declared content type, which phones often get wrong.
func detectFormat(data []byte, contentType string) sourceFormat {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")) || mimeType == "application/pdf":
		return formatPDF
	case hasHEICBrand(data) || strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif"):
		return formatHEIC
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return formatPNG
	default:
		return formatOther
	}
}

// hasHEICBrand looks for an ftyp box with a HEIC/HEIF brand at offset 4
func hasHEICBrand(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// toPNG converts a receipt photo or PDF into PNG bytes, the only format sent to the scanners
func toPNG(data []byte, contentType string) ([]byte, error) {
	var (
		img image.Image
		err error
	)
	switch detectFormat(data, contentType) {
	case formatPNG:
		return data, nil
	case formatPDF:
		img, err = renderFirstPage(data)
	case formatHEIC:
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			err = fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			err = fmt.Errorf("decoding image (supported: JPEG, PNG, GIF, HEIC, PDF): %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// renderFirstPage renders page one of a PDF; receipts are single page
func renderFirstPage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}
