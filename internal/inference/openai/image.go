package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/lessoncraft/internal/inference"
	"github.com/avast/retry-go"
)

type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type ImageGenerationResponse struct {
	Created int64       `json:"created"`
	Data    []ImageData `json:"data"`
}

type ImageData struct {
	B64JSON string `json:"b64_json"`
}

// GenerateImage implements the inference.ImageClient interface.
func (client *Client) GenerateImage(
	ctx context.Context,
	params inference.ImageRequest,
) ([]byte, error) {
	var result []byte
	if err := retry.Do(
		func() error {
			response, err := client.generateImage(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return nil, err
	}
	return result, nil
}

func (client *Client) generateImage(
	ctx context.Context,
	params inference.ImageRequest,
) ([]byte, error) {
	requestBody := ImageGenerationRequest{
		Model:          client.imageModel,
		Prompt:         params.Description,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: "b64_json",
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ImageGenerationResponse{}).
		Post("/images/generations")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		body := response.String()
		if inference.IsRefusal(body) {
			return nil, fmt.Errorf("response error %d: %s: %w", response.StatusCode(), body, inference.ErrPolicyRestricted)
		}
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), body)
	}

	responseBody := response.Result().(*ImageGenerationResponse)
	if responseBody == nil || len(responseBody.Data) == 0 {
		return nil, fmt.Errorf("empty image response: %s", response.String())
	}

	decoded, err := base64.StdEncoding.DecodeString(responseBody.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("base64.DecodeString > %w", err)
	}
	slog.Default().Debug("openai image generated",
		"requestID", params.RequestID,
		"bytes", len(decoded),
	)
	return decoded, nil
}
