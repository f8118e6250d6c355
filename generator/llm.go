package generator

import (
	"context"

	"focus_group_generator/provider"
)

// LLMClient generates raw transcript text for a request. *provider.Bound
// satisfies it; tests substitute fakes.
//
//go:generate mockgen -source=llm.go -destination=mock_llm_test.go -package=generator
type LLMClient interface {
	Generate(ctx context.Context, req provider.Request) (provider.Result, error)
}
