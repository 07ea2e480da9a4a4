package assessments

import (
	"os"

	"go.uber.org/zap"

	"github.com/ironclad-grc/ironclad/internal/consensus"
)

const (
	groqCredentialEnvironmentVariableConstant       = "GROQ_API_KEY"
	openRouterCredentialEnvironmentVariableConstant = "OPENROUTER_API_KEY"
	geminiCredentialEnvironmentVariableConstant     = "GEMINI_API_KEY"
	storageBucketEnvironmentVariableConstant        = "GCS_BUCKET"
	firestoreProjectEnvironmentVariableConstant     = "FIREBASE_PROJECT_ID"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveCredentials reads the model provider keys from the environment.
func ResolveCredentials() consensus.Credentials {
	return consensus.Credentials{
		GroqAPIKey:       os.Getenv(groqCredentialEnvironmentVariableConstant),
		OpenRouterAPIKey: os.Getenv(openRouterCredentialEnvironmentVariableConstant),
		GeminiAPIKey:     os.Getenv(geminiCredentialEnvironmentVariableConstant),
	}
}

func resolveWithEnvironmentFallback(configuredValue string, environmentVariableName string) string {
	if len(configuredValue) > 0 {
		return configuredValue
	}
	return os.Getenv(environmentVariableName)
}

// ResolveStorageBucket prefers the configured bucket and falls back to GCS_BUCKET.
func ResolveStorageBucket(configuredBucket string) string {
	return resolveWithEnvironmentFallback(configuredBucket, storageBucketEnvironmentVariableConstant)
}

// ResolveStorageProject prefers the configured project and falls back to FIREBASE_PROJECT_ID.
func ResolveStorageProject(configuredProject string) string {
	return resolveWithEnvironmentFallback(configuredProject, firestoreProjectEnvironmentVariableConstant)
}
