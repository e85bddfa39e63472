package factory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

var errMissingImage = errors.New("image file is required")

// Upload stores the project's assets with a single multipart POST to /create.
// The json file is optional and only sent when present.
func (c *Client) Upload(ctx context.Context, projectName string, image, jsonFile *File) error {
	if image == nil {
		return errMissingImage
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("project_name", NormalizeProjectName(projectName)); err != nil {
		return fmt.Errorf("failed to write project name: %w", err)
	}
	if err := writeFilePart(writer, "file_image", image); err != nil {
		return err
	}
	if jsonFile != nil {
		if err := writeFilePart(writer, "file_json", jsonFile); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create", body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{Op: "upload assets", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}

func writeFilePart(writer *multipart.Writer, field string, file *File) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return fmt.Errorf("failed to write %s part: %w", field, err)
	}
	return nil
}
