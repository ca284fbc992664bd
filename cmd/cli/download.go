package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"

	"github.com/and161185/stockkeeper/internal/errs"
)

var httpClient = resty.New().SetHeader("User-Agent", "sk/"+version)

// download fetches url into path and returns the number of bytes written.
func download(ctx context.Context, url, path string) (int64, error) {
	resp, err := httpClient.R().SetContext(ctx).SetOutput(path).Get(url)
	if err != nil {
		return 0, fmt.Errorf("%w: download image: %v", errs.ErrBackend, err)
	}
	if resp.IsError() {
		_ = os.Remove(path)
		if resp.StatusCode() == 404 {
			return 0, fmt.Errorf("%w: image is gone", errs.ErrNotFound)
		}
		return 0, fmt.Errorf("%w: download image: %s", errs.ErrBackend, resp.Status())
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}
