package generator

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/mikecbrant/glowcycle/internal/utils/logging"
	"github.com/mikecbrant/glowcycle/internal/wellness"
)

// Providers accepted by New.
const (
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"
)

// Config selects and configures a provider.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	Timeout     int // seconds
}

// New builds the generator named by cfg.Provider. awsCfg is only used for Bedrock.
func New(cfg Config, awsCfg aws.Config, logger logging.Logger) (wellness.MessageGenerator, error) {
	switch cfg.Provider {
	case "", ProviderBedrock:
		return NewBedrock(NewBedrockClient(awsCfg), cfg.Model, cfg.Temperature, logger), nil
	case ProviderOpenAI:
		oc := OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: float32(cfg.Temperature),
			Timeout:     secs(cfg.Timeout),
		}
		return NewOpenAI(NewOpenAIClient(oc), oc, logger), nil
	}
	return nil, fmt.Errorf("generator: unknown provider %q", cfg.Provider)
}
