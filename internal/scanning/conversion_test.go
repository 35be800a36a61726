package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func encodeTestImage(encode func(io.Writer, image.Image) error) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	Expect(encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("toPNG", func() {
	It("should return PNG data unchanged", func() {
		data := encodeTestImage(png.Encode)
		out, err := toPNG(data, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(data))
	})

	It("should convert JPEG to PNG", func() {
		data := encodeTestImage(func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, nil)
		})
		out, err := toPNG(data, "image/jpeg")
		Expect(err).NotTo(HaveOccurred())
		_, format, err := image.Decode(bytes.NewReader(out))
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal("png"))
	})

	It("should fail on data that is not an image", func() {
		_, err := toPNG([]byte("not an image"), "image/jpeg")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("detectFormat", func() {
	It("should detect PDFs by magic bytes", func() {
		Expect(detectFormat([]byte("%PDF-1.4 ..."), "application/octet-stream")).To(Equal(formatPDF))
	})

	It("should detect HEIC by brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(detectFormat(data, "")).To(Equal(formatHEIC))
	})

	It("should trust a HEIC content type", func() {
		Expect(detectFormat([]byte("whatever"), "image/HEIF")).To(Equal(formatHEIC))
	})
})
