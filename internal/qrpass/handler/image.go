package handler

import (
	"encoding/json"
	"io"

	"github.com/yeqown/go-qrcode"

	"gatehouse/internal/qrpass/models"
)

const imageContentType = "image/jpeg"

// renderPass writes the pass JSON as a QR image. The default encoder output
// is JPEG.
func renderPass(w io.Writer, p *models.Pass) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	qrc, err := qrcode.New(string(payload))
	if err != nil {
		return err
	}
	return qrc.SaveTo(w)
}
