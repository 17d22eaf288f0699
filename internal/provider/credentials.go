package provider

import "os"

// Credentials holds the secrets that gate which provider families are
// attempted at all. A configured provider whose credentials are absent is
// skipped, never an error.
type Credentials struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	OpenAIAPIKey       string
	GeminiAPIKey       string
}

// LoadCredentials reads the provider secrets from the environment. Callers
// load a .env file first if they carry one.
func LoadCredentials() Credentials {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	return Credentials{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          region,
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
	}
}

// Supports reports whether the credentials allow calling the given family.
func (c Credentials) Supports(f Family) bool {
	switch {
	case f.IsBedrock():
		return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
	case f == OpenAI:
		return c.OpenAIAPIKey != ""
	case f == Gemini:
		return c.GeminiAPIKey != ""
	default:
		return false
	}
}
