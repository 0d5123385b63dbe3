package config

// DemoDocuments is the corpus used when no documents or paths are configured.
var DemoDocuments = []string{
	"The Eiffel Tower is located in Paris, France.",
	"The Great Wall of China is one of the seven wonders of the world.",
	"The Moon landing happened in 1969.",
	"Water boils at 100 degrees Celsius at sea level.",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 60
	}
	if cfg.Credentials.EnvFile == "" {
		cfg.Credentials.EnvFile = ".env"
	}

	applyEmbeddingDefaults(&cfg.Embedding)

	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "memory"
	}
	if cfg.Vector.Table == "" {
		cfg.Vector.Table = "kotae_embeddings"
	}

	applyGenerationDefaults(&cfg.Generation)

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 1
	}
	if cfg.Corpus.Extensions == nil {
		cfg.Corpus.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".html", ".htm"}
	}
	if len(cfg.Corpus.Documents) == 0 && len(cfg.Corpus.Paths) == 0 {
		cfg.Corpus.Documents = append([]string(nil), DemoDocuments...)
	}
}

func applyEmbeddingDefaults(e *EmbeddingConfig) {
	if e.Provider == "" {
		e.Provider = "onnx"
	}
	switch e.Provider {
	case "onnx":
		if e.Model == "" {
			e.Model = "all-MiniLM-L6-v2"
		}
		if e.ModelPath == "" {
			e.ModelPath = "/usr/local/var/kotae/models/all-MiniLM-L6-v2.onnx"
		}
		if e.VocabPath == "" {
			e.VocabPath = "/usr/local/var/kotae/models/vocab.txt"
		}
		if e.Dimensions == 0 {
			e.Dimensions = 384
		}
	case "openai":
		if e.Model == "" {
			e.Model = "text-embedding-3-small"
		}
		if e.Dimensions == 0 {
			e.Dimensions = 1536
		}
		if e.APIKeyEnv == "" {
			e.APIKeyEnv = "OPENAI_API_KEY"
		}
	case "gemini":
		if e.Model == "" {
			e.Model = "text-embedding-004"
		}
		if e.Dimensions == 0 {
			e.Dimensions = 768
		}
		if e.APIKeyEnv == "" {
			e.APIKeyEnv = "GEMINI_API_KEY"
		}
	case "hash":
		if e.Dimensions == 0 {
			e.Dimensions = 384
		}
	}
	if e.MaxTokens == 0 {
		e.MaxTokens = 256
	}
	if e.CacheSize == 0 {
		e.CacheSize = 10000
	}
	if e.BatchSize == 0 {
		e.BatchSize = 32
	}
}

func applyGenerationDefaults(g *GenerationConfig) {
	if g.Provider == "" {
		g.Provider = "openai"
	}
	switch g.Provider {
	case "openai":
		if g.Model == "" {
			g.Model = "gpt-3.5-turbo"
		}
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "OPENAI_API_KEY"
		}
	case "gemini":
		if g.Model == "" {
			g.Model = "gemini-2.5-flash"
		}
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GEMINI_API_KEY"
		}
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = 100
	}
	if g.SystemPrompt == "" {
		g.SystemPrompt = "You are a helpful assistant."
	}
	if g.TimeoutSecs == 0 {
		g.TimeoutSecs = 60
	}
}
