package credentials

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "barcloud"

type KeyType string

const (
	KeyOpenAI    KeyType = "openai_api_key"
	KeyAzure     KeyType = "azure_openai_api_key"
	KeyAnthropic KeyType = "anthropic_api_key"
)

func Set(key KeyType, value string) error {
	return keyring.Set(serviceName, string(key), value)
}

func Get(key KeyType) (string, error) {
	return keyring.Get(serviceName, string(key))
}

func Delete(key KeyType) error {
	return keyring.Delete(serviceName, string(key))
}

func GetOrEnv(key KeyType, envValue string) string {
	if envValue != "" {
		return envValue
	}
	val, err := Get(key)
	if err != nil {
		return ""
	}
	return val
}

func ListConfigured() map[KeyType]bool {
	result := make(map[KeyType]bool)

	keys := []KeyType{KeyOpenAI, KeyAzure, KeyAnthropic}
	for _, k := range keys {
		_, err := Get(k)
		result[k] = err == nil
	}

	return result
}

func ClearAll() error {
	var lastErr error
	keys := []KeyType{KeyOpenAI, KeyAzure, KeyAnthropic}
	for _, k := range keys {
		if err := Delete(k); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func Setup(openaiKey, azureKey, anthropicKey string) error {
	if openaiKey != "" {
		if err := Set(KeyOpenAI, openaiKey); err != nil {
			return fmt.Errorf("failed to store OpenAI key: %w", err)
		}
	}

	if azureKey != "" {
		if err := Set(KeyAzure, azureKey); err != nil {
			return fmt.Errorf("failed to store Azure OpenAI key: %w", err)
		}
	}

	if anthropicKey != "" {
		if err := Set(KeyAnthropic, anthropicKey); err != nil {
			return fmt.Errorf("failed to store Anthropic key: %w", err)
		}
	}

	return nil
}
