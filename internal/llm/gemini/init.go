package gemini

import (
	"saylo/internal/config"
	"saylo/internal/llm"
)

func init() {
	llm.RegisterProvider(config.ProviderGemini, func() (llm.Provider, error) {
		cfg, err := NewConfig()
		if err != nil {
			return nil, err
		}
		return NewClient(cfg)
	})
}
