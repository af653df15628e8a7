package receipt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"
)

// Payload is what the gate scanner reads back out of the QR code.
type Payload struct {
	Code       string `json:"code"`
	PurchaseID string `json:"purchaseId,omitempty"`
	MatchID    int64  `json:"matchId"`
	SectionID  int64  `json:"sectionId"`
}

// QRGenerator renders sealed ticket payloads as PNG QR codes.
type QRGenerator struct {
	secret []byte
	size   int
}

func NewQRGenerator(secret string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret))
	return &QRGenerator{secret: hashed[:], size: 256}
}

func (q *QRGenerator) PNG(p Payload) ([]byte, error) {
	sealed, err := q.Seal(p)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(sealed, qrcode.Medium, q.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// Seal encrypts the payload with AES-GCM and returns it URL-safe base64
// encoded, nonce first.
func (q *QRGenerator) Seal(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	gcm, err := q.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(gcm.Seal(nonce, nonce, data, nil)), nil
}

func (q *QRGenerator) Open(sealed string) (Payload, error) {
	raw, err := base64.URLEncoding.DecodeString(sealed)
	if err != nil {
		return Payload{}, err
	}
	gcm, err := q.aead()
	if err != nil {
		return Payload{}, err
	}
	if len(raw) < gcm.NonceSize() {
		return Payload{}, errors.New("sealed payload too short")
	}
	data, err := gcm.Open(nil, raw[:gcm.NonceSize()], raw[gcm.NonceSize():], nil)
	if err != nil {
		return Payload{}, err
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func (q *QRGenerator) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(q.secret)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
