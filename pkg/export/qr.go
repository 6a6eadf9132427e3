package export

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrInvalidSignature is returned when a scanned payload was not issued by this signer.
var ErrInvalidSignature = errors.New("qr payload signature mismatch")

// QRSigner issues tamper-evident payloads of the form field1|field2|...|signature.
type QRSigner struct {
	secret []byte
	size   int
}

// NewQRSigner builds a signer. size is the PNG edge length in pixels.
func NewQRSigner(secret string, size int) *QRSigner {
	if size <= 0 {
		size = 256
	}
	return &QRSigner{secret: []byte(secret), size: size}
}

// Payload joins the fields and appends an HMAC-SHA256 signature.
func (s *QRSigner) Payload(fields ...string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("qr signing secret missing")
	}
	for _, f := range fields {
		if strings.Contains(f, "|") {
			return "", fmt.Errorf("qr field %q contains separator", f)
		}
	}
	data := strings.Join(fields, "|")
	return data + "|" + s.sign(data), nil
}

// Verify checks the signature and returns the signed fields.
func (s *QRSigner) Verify(payload string) ([]string, error) {
	idx := strings.LastIndex(payload, "|")
	if idx <= 0 {
		return nil, ErrInvalidSignature
	}
	data, sig := payload[:idx], payload[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(s.sign(data))) {
		return nil, ErrInvalidSignature
	}
	return strings.Split(data, "|"), nil
}

// PNG encodes the signed payload for the given fields as a QR image.
func (s *QRSigner) PNG(fields ...string) ([]byte, error) {
	payload, err := s.Payload(fields...)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, s.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func (s *QRSigner) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
