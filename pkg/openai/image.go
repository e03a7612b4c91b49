package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"funny-video/log"
	apperrors "funny-video/pkg/errors"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type Client struct {
	client     *openai.Client
	httpClient *http.Client
	model      string
}

func NewClient(baseUrl, apiKey, model, proxyAddr string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	transport := &http.Transport{}
	if proxyAddr != "" {
		if proxyUrl, err := url.Parse(proxyAddr); err == nil {
			transport.Proxy = http.ProxyURL(proxyUrl)
		} else {
			log.GetLogger().Warn("代理地址解析失败，忽略代理", zap.String("proxy", proxyAddr), zap.Error(err))
		}
	}
	httpClient := &http.Client{Transport: transport, Timeout: 3 * time.Minute}
	cfg.HTTPClient = httpClient

	return &Client{client: openai.NewClientWithConfig(cfg), httpClient: httpClient, model: model}
}

// Restyle edits the image with the images/edits endpoint and returns the first
// result, decoding inline base64 or downloading the returned URL.
func (c *Client) Restyle(ctx context.Context, imagePath string, prompt string) ([]byte, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", imagePath, err)
	}
	defer f.Close()

	resp, err := c.client.CreateEditImage(ctx, openai.ImageEditRequest{
		Image:          f,
		Prompt:         prompt,
		Model:          c.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		log.GetLogger().Error("OpenAI图片编辑失败", zap.String("image", imagePath), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeRestyleFailed, "调用OpenAI图片编辑失败", err)
	}
	if len(resp.Data) == 0 {
		return nil, apperrors.New(apperrors.CodeRestyleBadResponse, "OpenAI响应中没有图片")
	}

	item := resp.Data[0]
	switch {
	case item.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeRestyleBadResponse, "图片数据解码失败", err)
		}
		return data, nil
	case item.URL != "":
		return c.fetch(ctx, item.URL)
	default:
		return nil, apperrors.New(apperrors.CodeRestyleBadResponse, "OpenAI响应中没有图片")
	}
}

func (c *Client) fetch(ctx context.Context, imageUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageUrl, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRestyleFetchFailed, "下载风格化图片失败", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRestyleFetchFailed, "下载风格化图片失败", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apperrors.WrapWithDetail(apperrors.CodeRestyleFetchFailed, "下载风格化图片失败", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return io.ReadAll(resp.Body)
}
