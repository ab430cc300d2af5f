package main

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

// GeminiClient wraps the Google GenAI client for VertexAI.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a client using Application Default Credentials.
// Set GOOGLE_APPLICATION_CREDENTIALS to the service account key file path.
// Empty region and model fall back to the defaults.
func NewGeminiClient(ctx context.Context, projectID, region, model string) (*GeminiClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("gemini: project id required")
	}
	if region == "" {
		region = defaultRegion
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: model,
	}, nil
}

// Model returns the model used for analysis.
func (g *GeminiClient) Model() string {
	return g.modelName
}

// Close releases resources held by the client.
func (g *GeminiClient) Close() error {
	return nil
}
