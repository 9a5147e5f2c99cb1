package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/pkg/errors"
)

type ResponseType int

const (
	ResponseJSON ResponseType = iota
	ResponseBlob
)

// Request describes one API call. Path is relative to the client's base URL.
type Request struct {
	Method       string
	Path         string
	Query        url.Values
	Body         any
	ResponseType ResponseType
}

func Get(path string, query url.Values) *Request {
	return &Request{Method: http.MethodGet, Path: path, Query: query}
}

func Post(path string, body any) *Request {
	return &Request{Method: http.MethodPost, Path: path, Body: body}
}

func Put(path string, body any) *Request {
	return &Request{Method: http.MethodPut, Path: path, Body: body}
}

func Patch(path string, body any) *Request {
	return &Request{Method: http.MethodPatch, Path: path, Body: body}
}

func Delete(path string, body any) *Request {
	return &Request{Method: http.MethodDelete, Path: path, Body: body}
}

// Download requests a binary body that is returned unmodified.
func Download(path string, query url.Values) *Request {
	return &Request{Method: http.MethodGet, Path: path, Query: query, ResponseType: ResponseBlob}
}

// Multipart is a file upload body. FieldName defaults to "file"; the file
// part is skipped when both FileName and Content are empty. Parts adds further
// files or typed parts such as a JSON document.
type Multipart struct {
	FieldName string
	FileName  string
	Content   []byte
	Fields    map[string]string
	Parts     []Part
}

type Part struct {
	Name        string
	FileName    string
	ContentType string
	Content     []byte
}

// JSONPart renders v as an application/json part.
func JSONPart(name string, v any) (Part, error) {
	content, err := json.Marshal(v)
	if err != nil {
		return Part{}, errors.Wrap(err, "[JSONPart] failed to marshal part")
	}
	return Part{Name: name, ContentType: "application/json", Content: content}, nil
}

// Response is a successful call. JSON calls carry the unwrapped envelope data;
// blob calls carry the raw body.
type Response struct {
	Status      int
	Header      http.Header
	ContentType string
	Message     string
	Data        json.RawMessage
	Blob        []byte
}

func (r *Response) IsBlob() bool {
	return r.Blob != nil
}

// Decode unmarshals the envelope data into v. A null or absent data field
// leaves v untouched.
func (r *Response) Decode(v any) error {
	if !hasPayload(r.Data) {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return errors.Wrap(err, "[Response.Decode] failed to decode data")
	}
	return nil
}

// encodeBody renders the body once so a retried call can resend it.
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return encodeMultipart(b)
	case json.RawMessage:
		return b, "application/json", nil
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, "", errors.Wrap(err, "[encodeBody] failed to marshal json body")
		}
		return encoded, "application/json", nil
	}
}

func encodeMultipart(m *Multipart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range m.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", errors.Wrap(err, "[encodeMultipart] failed to write field")
		}
	}

	if m.FileName != "" || len(m.Content) > 0 {
		fieldName := m.FieldName
		if fieldName == "" {
			fieldName = "file"
		}
		part, err := w.CreateFormFile(fieldName, m.FileName)
		if err != nil {
			return nil, "", errors.Wrap(err, "[encodeMultipart] failed to create file part")
		}
		if _, err := part.Write(m.Content); err != nil {
			return nil, "", errors.Wrap(err, "[encodeMultipart] failed to write file part")
		}
	}

	for _, p := range m.Parts {
		if err := writePart(w, p); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "[encodeMultipart] failed to close writer")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writePart(w *multipart.Writer, p Part) error {
	header := make(textproto.MIMEHeader)
	disposition := fmt.Sprintf(`form-data; name=%q`, p.Name)
	if p.FileName != "" {
		disposition += fmt.Sprintf(`; filename=%q`, p.FileName)
	}
	header.Set("Content-Disposition", disposition)
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return errors.Wrapf(err, "[writePart] failed to create part %s", p.Name)
	}
	if _, err := part.Write(p.Content); err != nil {
		return errors.Wrapf(err, "[writePart] failed to write part %s", p.Name)
	}
	return nil
}

func hasPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
