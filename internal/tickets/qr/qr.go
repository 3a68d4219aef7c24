package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"github.com/skip2/go-qrcode"

	"park-portal/internal/models"
)

// passPayload is what the gate scanner decrypts from an entry pass.
type passPayload struct {
	TicketID string    `json:"ticket_id"`
	OwnerID  string    `json:"owner_id"`
	Date     time.Time `json:"date"`
}

// PassGenerator issues AES-encrypted QR entry passes at purchase time.
type PassGenerator struct {
	secret []byte
}

func NewPassGenerator(secret string) *PassGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &PassGenerator{secret: hashed[:]}
}

// GenerateEntryPass encodes the ticket identity into an encrypted QR PNG.
func (g *PassGenerator) GenerateEntryPass(ticket models.Ticket) ([]byte, error) {
	data, err := json.Marshal(passPayload{
		TicketID: ticket.ID,
		OwnerID:  ticket.OwnerID,
		Date:     ticket.Date,
	})
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, g.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

// DecryptPass reverses GenerateEntryPass's encryption step, given the
// base64 ciphertext scanned out of the QR image.
func (g *PassGenerator) DecryptPass(encoded string) (*models.Ticket, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}
	if len(raw) < aes.BlockSize {
		return nil, io.ErrUnexpectedEOF
	}

	iv := raw[:aes.BlockSize]
	data := make([]byte, len(raw)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, raw[aes.BlockSize:])

	var payload passPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &models.Ticket{ID: payload.TicketID, OwnerID: payload.OwnerID, Date: payload.Date}, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
