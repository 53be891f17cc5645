package fetch

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

//go:generate go tool mockgen -source=blob.go -destination=blob_mocks_test.go -package=fetch

// blobClient is just an interface over the parts of [*azblob.Client] we use.
type blobClient interface {
	// ListBlobs pages through [azblob.Client.NewListBlobsFlatPager] and returns every blob name under prefix.
	ListBlobs(ctx context.Context, container, prefix string) ([]string, error)

	// DownloadFile maps to [azblob.Client.DownloadFile]
	DownloadFile(ctx context.Context, container, blob string, file *os.File) (int64, error)
}

func newAzureBlobClient(accountURL string) (blobClient, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure credential: %w", err)
	}
	return newBlobClientWithCredential(accountURL, cred)
}

func newBlobClientWithCredential(accountURL string, cred azcore.TokenCredential) (blobClient, error) {
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client for %s: %w", accountURL, err)
	}
	return &blobClientWrapper{inner: client}, nil
}

type blobClientWrapper struct {
	inner *azblob.Client
}

func (w *blobClientWrapper) ListBlobs(ctx context.Context, container, prefix string) ([]string, error) {
	pager := w.inner.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{
		Prefix: to.Ptr(prefix),
	})

	var names []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

func (w *blobClientWrapper) DownloadFile(ctx context.Context, container, blob string, file *os.File) (int64, error) {
	return w.inner.DownloadFile(ctx, container, blob, file, nil)
}

// downloadBlobs saves every blob under "<campaignID>/" to the same relative
// path below destDir.
func downloadBlobs(ctx context.Context, client blobClient, container, campaignID, destDir string) error {
	prefix := campaignID + "/"
	names, err := client.ListBlobs(ctx, container, prefix)
	if err != nil {
		return fmt.Errorf("listing %s/%s: %w", container, prefix, err)
	}
	if len(names) == 0 {
		return fmt.Errorf("campaign %q has no blobs in container %s", campaignID, container)
	}

	for _, name := range names {
		rel := strings.TrimPrefix(name, prefix)
		if rel == "" || strings.HasSuffix(rel, "/") {
			continue
		}
		local := filepath.FromSlash(path.Clean(rel))
		if !filepath.IsLocal(local) {
			return fmt.Errorf("blob %q escapes the destination directory", name)
		}
		if err := downloadOne(ctx, client, container, name, filepath.Join(destDir, local)); err != nil {
			return err
		}
	}
	return nil
}

func downloadOne(ctx context.Context, client blobClient, container, name, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := client.DownloadFile(ctx, container, name, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("downloading %s/%s: %w", container, name, err)
	}
	return f.Close()
}
