package ai

import "context"

// Request is one fully assembled prompt for the generative model.
// ImageDataURL, when set, turns the request into a multimodal text+image
// prompt (uploaded lab report photo).
type Request struct {
	System       string
	User         string
	ImageDataURL string
	MaxTokens    int
}

// Generator port for the external generative model
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
