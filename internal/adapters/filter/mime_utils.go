package filter

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

// extractTextFromMessage pulls the analyzable text out of a message. For
// multipart mail it concatenates the text/plain parts; anything that cannot
// be parsed as MIME falls back to the raw body so analysis still runs.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		return readBody(msg)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readBody(msg)
	}

	boundary, ok := params["boundary"]
	if !ok {
		return readBody(msg)
	}

	mr := multipart.NewReader(msg.Body, boundary)
	var textContent bytes.Buffer

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Keep whatever text was already collected rather than fail the
			// whole message on one malformed part.
			if textContent.Len() > 0 {
				return textContent.String(), nil
			}
			return readBody(msg)
		}

		partContentType := strings.ToLower(part.Header.Get("Content-Type"))
		if strings.Contains(partContentType, "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
		}
		// Nested multiparts and attachments are skipped.
	}

	if textContent.Len() > 0 {
		return textContent.String(), nil
	}
	return "[No text content found in multipart message]", nil
}

func readBody(msg *mail.Message) (string, error) {
	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", err
	}
	return string(bodyBytes), nil
}

// decodeEncodedHeader decodes RFC 2047 encoded-word headers (=?utf-8?...?=).
func decodeEncodedHeader(value string) (string, error) {
	if !strings.Contains(value, "=?") {
		return value, nil
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value, err
	}
	return decoded, nil
}
