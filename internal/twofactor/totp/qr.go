package totp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/pquerna/otp"
)

// DefaultQRSize is the edge length in pixels of rendered QR codes.
const DefaultQRSize = 200

// QRCodeDataURL renders a provisioning URI as a PNG QR code and returns it
// as a data: URL that can go straight into an <img src>.
func QRCodeDataURL(uri string, size int) (string, error) {
	if size <= 0 {
		size = DefaultQRSize
	}

	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return "", fmt.Errorf("totp: parse uri: %w", err)
	}
	if key.Type() != "totp" {
		return "", fmt.Errorf("totp: not a totp provisioning uri: %q", key.Type())
	}

	img, err := key.Image(size, size)
	if err != nil {
		return "", fmt.Errorf("totp: render qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("totp: encode png: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
