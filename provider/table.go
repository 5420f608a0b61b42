package provider

import "strings"

// order is the display order used by All and the CLI.
var order = []string{
	OpenAI, Anthropic, Google, Microsoft, OpenRouter, SiliconFlow, Together,
	Groq, ZhipuAI, Moonshot, DeepSeek, Qwen, Doubao, Ollama, LMStudio, VLLM,
}

func idExcludes(words ...string) func(Model) bool {
	return func(m Model) bool {
		for _, w := range words {
			if strings.Contains(m.ID, w) {
				return false
			}
		}
		return true
	}
}

var registry = map[string]Descriptor{
	OpenAI: {
		ID:             OpenAI,
		Name:           "OpenAI",
		Format:         FormatOpenAI,
		Endpoint:       "https://api.openai.com/v1/chat/completions",
		VisionEndpoint: "https://api.openai.com/v1/chat/completions",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://api.openai.com/v1/models",
			Filter: func(m Model) bool {
				return strings.Contains(m.ID, "gpt") && !strings.Contains(m.ID, "realtime")
			},
		},
		KeyHelpURL: "https://platform.openai.com/api-keys",
	},
	Anthropic: {
		ID:             Anthropic,
		Name:           "Anthropic Claude",
		Format:         FormatAnthropic,
		Endpoint:       "https://api.anthropic.com/v1/messages",
		VisionEndpoint: "https://api.anthropic.com/v1/messages",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Fixed: []string{"claude-3-5-sonnet-20241022", "claude-3-5-haiku-20241022", "claude-3-opus-20240229"},
		},
		KeyHelpURL: "https://console.anthropic.com/",
	},
	Google: {
		ID:             Google,
		Name:           "Google AI",
		Format:         FormatGoogle,
		Endpoint:       "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent",
		VisionEndpoint: "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta/models",
			Filter: func(m Model) bool {
				for _, method := range m.SupportedGenerationMethods {
					if method == "generateContent" {
						return true
					}
				}
				return false
			},
		},
		KeyHelpURL: "https://aistudio.google.com/app/apikey",
	},
	Microsoft: {
		ID:                   Microsoft,
		Name:                 "Microsoft Azure",
		Format:               FormatAzure,
		Endpoint:             "{serverUrl}/openai/deployments/{model}/chat/completions?api-version=2024-02-15-preview",
		VisionEndpoint:       "{serverUrl}/openai/deployments/{model}/chat/completions?api-version=2024-02-15-preview",
		RequiresAPIKey:       true,
		RequiresServerURL:    true,
		SupportsVision:       true,
		KeyHelpURL:           "https://portal.azure.com/",
		ServerURLPlaceholder: "https://your-resource.openai.azure.com/",
	},
	OpenRouter: {
		ID:             OpenRouter,
		Name:           "OpenRouter",
		Format:         FormatOpenAI,
		Endpoint:       "https://openrouter.ai/api/v1/chat/completions",
		VisionEndpoint: "https://openrouter.ai/api/v1/chat/completions",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://openrouter.ai/api/v1/models",
			Filter:   idExcludes("embedding", "rerank"),
		},
		KeyHelpURL: "https://openrouter.ai/keys",
	},
	SiliconFlow: {
		ID:             SiliconFlow,
		Name:           "SiliconFlow",
		Format:         FormatOpenAI,
		Endpoint:       "https://api.siliconflow.cn/v1/chat/completions",
		VisionEndpoint: "https://api.siliconflow.cn/v1/chat/completions",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://api.siliconflow.cn/v1/models",
			Filter: func(m Model) bool {
				return m.ID != "" && (m.Type == "chat" || strings.Contains(m.ID, "chat"))
			},
		},
		KeyHelpURL: "https://cloud.siliconflow.cn/me/account/ak",
	},
	Together: {
		ID:             Together,
		Name:           "Together AI",
		Format:         FormatOpenAI,
		Endpoint:       "https://api.together.xyz/v1/chat/completions",
		VisionEndpoint: "https://api.together.xyz/v1/chat/completions",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://api.together.xyz/v1/models",
			Filter:   idExcludes("embedding"),
		},
		KeyHelpURL: "https://api.together.xyz/settings/api-keys",
	},
	Groq: {
		ID:             Groq,
		Name:           "Groq",
		Format:         FormatOpenAI,
		Endpoint:       "https://api.groq.com/openai/v1/chat/completions",
		VisionEndpoint: "https://api.groq.com/openai/v1/chat/completions",
		RequiresAPIKey: true,
		Models: ModelSource{
			Endpoint: "https://api.groq.com/openai/v1/models",
			Filter:   idExcludes("whisper"),
		},
		KeyHelpURL: "https://console.groq.com/keys",
	},
	ZhipuAI: {
		ID:             ZhipuAI,
		Name:           "Zhipu AI",
		Format:         FormatZhipu,
		Endpoint:       "https://open.bigmodel.cn/api/paas/v4/chat/completions",
		VisionEndpoint: "https://open.bigmodel.cn/api/paas/v4/chat/completions",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://open.bigmodel.cn/api/paas/v4/models",
			Fixed:    []string{"glm-4", "glm-4-plus", "glm-4-flash", "glm-4-air", "glm-4-airx"},
		},
		KeyHelpURL: "https://open.bigmodel.cn/",
	},
	Moonshot: {
		ID:             Moonshot,
		Name:           "Moonshot Kimi",
		Format:         FormatOpenAI,
		Endpoint:       "https://api.moonshot.cn/v1/chat/completions",
		VisionEndpoint: "https://api.moonshot.cn/v1/chat/completions",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://api.moonshot.cn/v1/models",
			Filter:   idExcludes("embedding"),
		},
		KeyHelpURL: "https://platform.moonshot.cn/console/api-keys",
	},
	DeepSeek: {
		ID:             DeepSeek,
		Name:           "DeepSeek",
		Format:         FormatOpenAI,
		Endpoint:       "https://api.deepseek.com/v1/chat/completions",
		VisionEndpoint: "https://api.deepseek.com/v1/chat/completions",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://api.deepseek.com/v1/models",
		},
		KeyHelpURL: "https://platform.deepseek.com/api_keys",
	},
	Qwen: {
		ID:             Qwen,
		Name:           "Qwen (DashScope)",
		Format:         FormatOpenAI,
		Endpoint:       "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions",
		VisionEndpoint: "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://dashscope.aliyuncs.com/compatible-mode/v1/models",
			Filter:   idExcludes("embedding"),
		},
		KeyHelpURL: "https://bailian.console.aliyun.com/",
	},
	Doubao: {
		ID:             Doubao,
		Name:           "Doubao",
		Format:         FormatOpenAI,
		Endpoint:       "https://ark.cn-beijing.volces.com/api/v3/chat/completions",
		VisionEndpoint: "https://ark.cn-beijing.volces.com/api/v3/chat/completions",
		RequiresAPIKey: true,
		SupportsVision: true,
		Models: ModelSource{
			Endpoint: "https://ark.cn-beijing.volces.com/api/v3/models",
			Filter:   idExcludes("embedding"),
		},
		KeyHelpURL: "https://console.volcengine.com/ark/",
	},
	Ollama: {
		ID:                   Ollama,
		Name:                 "Ollama",
		Format:               FormatOllama,
		Endpoint:             "{serverUrl}/api/generate",
		VisionEndpoint:       "{serverUrl}/api/generate",
		RequiresServerURL:    true,
		Models:               ModelSource{Endpoint: "{serverUrl}/api/tags"},
		KeyHelpURL:           "https://ollama.com/",
		ServerURLPlaceholder: "http://localhost:11434",
	},
	LMStudio: {
		ID:                   LMStudio,
		Name:                 "LM Studio",
		Format:               FormatOpenAI,
		Endpoint:             "{serverUrl}/v1/chat/completions",
		VisionEndpoint:       "{serverUrl}/v1/chat/completions",
		RequiresServerURL:    true,
		Models:               ModelSource{Endpoint: "{serverUrl}/v1/models"},
		KeyHelpURL:           "https://lmstudio.ai/",
		ServerURLPlaceholder: "http://localhost:1234",
	},
	VLLM: {
		ID:                   VLLM,
		Name:                 "vLLM",
		Format:               FormatOpenAI,
		Endpoint:             "{serverUrl}/v1/chat/completions",
		VisionEndpoint:       "{serverUrl}/v1/chat/completions",
		RequiresServerURL:    true,
		Models:               ModelSource{Endpoint: "{serverUrl}/v1/models"},
		KeyHelpURL:           "https://github.com/vllm-project/vllm",
		ServerURLPlaceholder: "http://localhost:8000",
	},
}
