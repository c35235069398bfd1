package azure

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azfile/share"
)

// UploadError reports a failed feed upload. The orchestrator must observe
// it; the original integration silently dropped the remote call's result.
type UploadError struct {
	Share string
	Path  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s to share %s: %v", e.Path, e.Share, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Client uploads feed files to an Azure file share.
type Client struct {
	shareClient *share.Client
	shareName   string
	folder      string
}

// MustNewClient builds the file-share client from account credentials.
func MustNewClient(accountName, accountKey, shareName, folder string) *Client {
	connStr := fmt.Sprintf(
		"DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=core.windows.net",
		accountName,
		accountKey,
	)

	shareClient, err := share.NewClientFromConnectionString(connStr, shareName, nil)
	if err != nil {
		panic(fmt.Sprintf("Failed to create Azure file share client: %v", err))
	}

	return &Client{
		shareClient: shareClient,
		shareName:   shareName,
		folder:      folder,
	}
}

// Upload creates <folder>/<fileName> on the share and writes the feed bytes
// into it. Any failure is returned as *UploadError.
func (c *Client) Upload(ctx context.Context, fileName string, body []byte) error {
	path := c.folder + "/" + fileName
	fileClient := c.shareClient.NewDirectoryClient(c.folder).NewFileClient(fileName)

	if _, err := fileClient.Create(ctx, int64(len(body)), nil); err != nil {
		return &UploadError{Share: c.shareName, Path: path, Err: err}
	}

	if len(body) > 0 {
		_, err := fileClient.UploadRange(ctx, 0, streaming.NopCloser(bytes.NewReader(body)), nil)
		if err != nil {
			return &UploadError{Share: c.shareName, Path: path, Err: err}
		}
	}

	slog.Info("Feed uploaded", "share", c.shareName, "path", path, "bytes", len(body))

	return nil
}
