package clients

import (
	"fmt"

	"github.com/sleepstars/personachat/internal/config"
	"github.com/sleepstars/personachat/internal/logger"
)

// FromConfig picks the model client for cfg. Without an API key it either
// fails with config.ErrMissingCredential or falls back to a DemoClient,
// depending on cfg.OnMissingCredential.
func FromConfig(cfg config.UpstreamConfig, log *logger.Logger) (ModelClient, error) {
	if cfg.APIKey != "" {
		log.Info("Using upstream %s with model %s", cfg.APIBase, cfg.Model)
		return NewOpenAIClient(ModelClientConfig{
			APIBase: cfg.APIBase,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		}), nil
	}

	if cfg.OnMissingCredential == config.PolicyWarnAndDegrade {
		log.Warn("OPENAI_API_KEY not set. Using demo mode with mock responses.")
		return NewDemoClient(), nil
	}

	return nil, fmt.Errorf("%w: export OPENAI_API_KEY=<your key>, add it to .env, "+
		"or set upstream.api_key in the config file", config.ErrMissingCredential)
}
