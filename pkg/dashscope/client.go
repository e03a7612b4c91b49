// Package dashscope talks to the Alibaba Cloud DashScope multimodal generation
// API to redraw snapshots in a hand-drawn style.
package dashscope

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"funny-video/log"
	apperrors "funny-video/pkg/errors"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const generationPath = "/services/aigc/multimodal-generation/generation"

type Client struct {
	client *resty.Client
	// download carries no credentials; result images live on presigned OSS URLs
	download *resty.Client
	model    string
}

type contentPart struct {
	Image string `json:"image,omitempty"`
	Text  string `json:"text,omitempty"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type generationRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []message `json:"messages"`
	} `json:"input"`
	Parameters struct {
		NegativePrompt string `json:"negative_prompt"`
		Watermark      bool   `json:"watermark"`
	} `json:"parameters"`
}

type generationResponse struct {
	Output struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestId string `json:"request_id"`
}

func NewClient(baseUrl, apiKey, model, proxyAddr string, maxRetries int) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseUrl, "/")).
		SetAuthToken(apiKey).
		SetTimeout(2*time.Minute).
		SetRetryCount(maxRetries).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	download := resty.New().SetTimeout(2 * time.Minute)
	if proxyAddr != "" {
		c.SetProxy(proxyAddr)
		download.SetProxy(proxyAddr)
	}
	return &Client{client: c, download: download, model: model}
}

// Restyle sends the image at imagePath with prompt and downloads the first
// generated image.
func (c *Client) Restyle(ctx context.Context, imagePath string, prompt string) ([]byte, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", imagePath, err)
	}

	req := generationRequest{Model: c.model}
	req.Input.Messages = []message{{
		Role: "user",
		Content: []contentPart{
			{Image: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)},
			{Text: prompt},
		},
	}}
	req.Parameters.NegativePrompt = " "

	var result generationResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post(generationPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRestyleFailed, "调用DashScope接口失败", err)
	}
	if resp.IsError() {
		log.GetLogger().Error("DashScope返回错误", zap.Int("status", resp.StatusCode()), zap.String("code", result.Code), zap.String("message", result.Message), zap.String("request_id", result.RequestId))
		return nil, apperrors.WrapWithDetail(apperrors.CodeRestyleFailed, "DashScope返回错误", fmt.Sprintf("status %d: %s %s", resp.StatusCode(), result.Code, result.Message), nil)
	}

	imageUrl := firstImage(result)
	if imageUrl == "" {
		return nil, apperrors.WrapWithDetail(apperrors.CodeRestyleBadResponse, "DashScope响应中没有图片", result.RequestId, nil)
	}
	return c.fetch(ctx, imageUrl)
}

func firstImage(result generationResponse) string {
	for _, choice := range result.Output.Choices {
		for _, part := range choice.Message.Content {
			if part.Image != "" {
				return part.Image
			}
		}
	}
	return ""
}

func (c *Client) fetch(ctx context.Context, imageUrl string) ([]byte, error) {
	resp, err := c.download.R().SetContext(ctx).Get(imageUrl)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRestyleFetchFailed, "下载风格化图片失败", err)
	}
	if resp.IsError() {
		return nil, apperrors.WrapWithDetail(apperrors.CodeRestyleFetchFailed, "下载风格化图片失败", fmt.Sprintf("status %d", resp.StatusCode()), nil)
	}
	return resp.Body(), nil
}
