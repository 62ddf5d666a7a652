package config

// LLMConfig represents the configuration for the reasoning provider
type LLMConfig struct {
	Provider           string
	DuplicateReasoning bool
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// EmbeddingConfig represents the configuration for the embedding encoder
type EmbeddingConfig struct {
	Provider   string
	ModelName  string
	Dimensions int
}

// DedupConfig represents the duplicate-detection tunables
type DedupConfig struct {
	Threshold     float64
	MaxCandidates int
}

// GmailConfig represents the Gmail mailbox configuration
type GmailConfig struct {
	CredentialsFile string
	LabelIDs        []string
	Query           string
	AttachmentsDir  string
}

// SMTPConfig represents the SMTP ingestion configuration
type SMTPConfig struct {
	ListenAddress   string
	Domain          string
	MaxMessageBytes int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:           c.GetString("llm.provider"),
		DuplicateReasoning: c.GetBool("llm.duplicate_reasoning"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetEmbedding returns the embedding encoder configuration
func (c *Config) GetEmbedding() EmbeddingConfig {
	return EmbeddingConfig{
		Provider:   c.GetString("embedding.provider"),
		ModelName:  c.GetString("embedding.model_name"),
		Dimensions: c.GetInt("embedding.dimensions"),
	}
}

// GetDedup returns the duplicate-detection configuration
func (c *Config) GetDedup() DedupConfig {
	return DedupConfig{
		Threshold:     c.GetFloat64("dedup.threshold"),
		MaxCandidates: c.GetInt("dedup.max_candidates"),
	}
}

// GetGmail returns the Gmail mailbox configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		CredentialsFile: c.GetString("gmail.credentials_file"),
		LabelIDs:        c.GetStringSlice("gmail.label_ids"),
		Query:           c.GetString("gmail.query"),
		AttachmentsDir:  c.GetString("gmail.attachments_dir"),
	}
}

// GetSMTP returns the SMTP ingestion configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		ListenAddress:   c.GetString("smtp.listen_address"),
		Domain:          c.GetString("smtp.domain"),
		MaxMessageBytes: c.GetInt("smtp.max_message_bytes"),
	}
}
