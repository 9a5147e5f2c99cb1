package resources

import (
	"context"
	"mime"
	"path/filepath"

	"github.com/jrsteele09/go-waterres-client/apiclient"
	"github.com/pkg/errors"
)

func download(ctx context.Context, client *apiclient.Client, req *apiclient.Request) (*apiclient.Response, error) {
	req.ResponseType = apiclient.ResponseBlob
	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "[download] %s", req.Path)
	}
	return resp, nil
}

// postDownload sends body and returns the binary answer.
func postDownload(ctx context.Context, client *apiclient.Client, path string, body any) (*apiclient.Response, error) {
	return download(ctx, client, apiclient.Post(path, body))
}

// AttachmentName returns the file name from the response's
// Content-Disposition header, or fallback when there is none.
func AttachmentName(resp *apiclient.Response, fallback string) string {
	if resp == nil || resp.Header == nil {
		return fallback
	}
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		return fallback
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}
