package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureScheme prefixes blob references: azure://<container>/<blob path>.
const AzureScheme = "azure"

// ErrInvalidBlobRef is returned for references that do not name a container and a blob.
var ErrInvalidBlobRef = errors.New("invalid blob reference")

// BlobRef identifies a blob inside the configured storage account.
type BlobRef struct {
	Container string
	Blob      string
}

// ParseBlobRef parses azure://<container>/<blob path>.
func ParseBlobRef(ref string) (BlobRef, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return BlobRef{}, fmt.Errorf("%w: %v", ErrInvalidBlobRef, err)
	}
	if u.Scheme != AzureScheme {
		return BlobRef{}, fmt.Errorf("%w: scheme must be %q", ErrInvalidBlobRef, AzureScheme)
	}
	blob := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || blob == "" {
		return BlobRef{}, fmt.Errorf("%w: expected azure://<container>/<blob>", ErrInvalidBlobRef)
	}
	return BlobRef{Container: u.Host, Blob: blob}, nil
}

// blobDownloader is the part of *azblob.Client the fetcher needs.
type blobDownloader interface {
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureBlobFetcher reads images from Azure Blob Storage.
type AzureBlobFetcher struct {
	client blobDownloader
	limits Limits
}

// NewAzureBlobFetcher authenticates with a shared key against the account's
// public blob endpoint.
func NewAzureBlobFetcher(accountName, accountKey string, limits Limits) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &AzureBlobFetcher{client: client, limits: limits}, nil
}

func (s *AzureBlobFetcher) FetchImage(ctx context.Context, ref string) (image.Image, error) {
	blob, err := ParseBlobRef(ref)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, blob.Container, blob.Blob, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s/%s failed: %w", blob.Container, blob.Blob, err)
	}
	body := resp.Body
	defer body.Close()

	img, _, err := decode(body, s.limits)
	return img, err
}
