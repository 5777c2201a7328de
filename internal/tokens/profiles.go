package tokens

// Tokenizer encodings understood by the exact counter. Profiles without an
// encoding are always estimated.
const (
	EncodingCL100K = "cl100k_base"
	EncodingO200K  = "o200k_base"
	EncodingP50K   = "p50k_base"
)

// DefaultModel is the profile used for unrecognized model ids.
const DefaultModel = "gpt-4"

// ModelProfile is the canonical tokenizer, context and pricing data of one model family.
type ModelProfile struct {
	ID              string
	Family          string
	Encoding        string
	ContextLimit    int
	InputCostPer1K  float64
	OutputCostPer1K float64
	Aliases         []string
}

// Exact reports whether counts for this profile come from a real tokenizer.
func (p ModelProfile) Exact() bool {
	return p.Encoding != ""
}

// BuiltinProfiles returns the shipped model table. Prices are USD per 1K tokens.
func BuiltinProfiles() []ModelProfile {
	return []ModelProfile{
		// OpenAI
		{ID: "gpt-4", Family: "openai", Encoding: EncodingCL100K, ContextLimit: 8192, InputCostPer1K: 0.03, OutputCostPer1K: 0.06,
			Aliases: []string{"gpt-4-0613", "gpt-4-0314"}},
		{ID: "gpt-4-32k", Family: "openai", Encoding: EncodingCL100K, ContextLimit: 32768, InputCostPer1K: 0.06, OutputCostPer1K: 0.12,
			Aliases: []string{"gpt-4-32k-0613"}},
		{ID: "gpt-4-turbo", Family: "openai", Encoding: EncodingCL100K, ContextLimit: 128000, InputCostPer1K: 0.01, OutputCostPer1K: 0.03,
			Aliases: []string{"gpt-4-turbo-preview", "gpt-4-1106-preview", "gpt-4-0125-preview", "gpt-4-vision-preview"}},
		{ID: "gpt-4o", Family: "openai", Encoding: EncodingO200K, ContextLimit: 128000, InputCostPer1K: 0.0025, OutputCostPer1K: 0.01,
			Aliases: []string{"gpt-4o-latest", "chatgpt-4o-latest", "gpt4o"}},
		{ID: "gpt-4o-mini", Family: "openai", Encoding: EncodingO200K, ContextLimit: 128000, InputCostPer1K: 0.00015, OutputCostPer1K: 0.0006},
		{ID: "gpt-4.1", Family: "openai", Encoding: EncodingO200K, ContextLimit: 1047576, InputCostPer1K: 0.002, OutputCostPer1K: 0.008},
		{ID: "gpt-4.1-mini", Family: "openai", Encoding: EncodingO200K, ContextLimit: 1047576, InputCostPer1K: 0.0004, OutputCostPer1K: 0.0016},
		{ID: "gpt-4.1-nano", Family: "openai", Encoding: EncodingO200K, ContextLimit: 1047576, InputCostPer1K: 0.0001, OutputCostPer1K: 0.0004},
		{ID: "o1", Family: "openai", Encoding: EncodingO200K, ContextLimit: 200000, InputCostPer1K: 0.015, OutputCostPer1K: 0.06,
			Aliases: []string{"o1-preview"}},
		{ID: "o1-mini", Family: "openai", Encoding: EncodingO200K, ContextLimit: 128000, InputCostPer1K: 0.0011, OutputCostPer1K: 0.0044},
		{ID: "o3-mini", Family: "openai", Encoding: EncodingO200K, ContextLimit: 200000, InputCostPer1K: 0.0011, OutputCostPer1K: 0.0044},
		{ID: "gpt-3.5-turbo", Family: "openai", Encoding: EncodingCL100K, ContextLimit: 16385, InputCostPer1K: 0.0005, OutputCostPer1K: 0.0015,
			Aliases: []string{"gpt-3.5", "gpt-35-turbo", "gpt-3.5-turbo-16k"}},
		{ID: "gpt-3.5-turbo-instruct", Family: "openai", Encoding: EncodingCL100K, ContextLimit: 4096, InputCostPer1K: 0.0015, OutputCostPer1K: 0.002},
		{ID: "text-davinci-003", Family: "openai", Encoding: EncodingP50K, ContextLimit: 4097, InputCostPer1K: 0.02, OutputCostPer1K: 0.02},

		// Anthropic
		{ID: "claude-3-opus", Family: "anthropic", ContextLimit: 200000, InputCostPer1K: 0.015, OutputCostPer1K: 0.075,
			Aliases: []string{"claude-3-opus-latest", "claude-opus"}},
		{ID: "claude-3-sonnet", Family: "anthropic", ContextLimit: 200000, InputCostPer1K: 0.003, OutputCostPer1K: 0.015},
		{ID: "claude-3-haiku", Family: "anthropic", ContextLimit: 200000, InputCostPer1K: 0.00025, OutputCostPer1K: 0.00125},
		{ID: "claude-3-5-sonnet", Family: "anthropic", ContextLimit: 200000, InputCostPer1K: 0.003, OutputCostPer1K: 0.015,
			Aliases: []string{"claude-3.5-sonnet", "claude-3-5-sonnet-latest", "claude-sonnet"}},
		{ID: "claude-3-5-haiku", Family: "anthropic", ContextLimit: 200000, InputCostPer1K: 0.0008, OutputCostPer1K: 0.004,
			Aliases: []string{"claude-3.5-haiku", "claude-3-5-haiku-latest", "claude-haiku"}},
		{ID: "claude-3-7-sonnet", Family: "anthropic", ContextLimit: 200000, InputCostPer1K: 0.003, OutputCostPer1K: 0.015,
			Aliases: []string{"claude-3.7-sonnet", "claude-3-7-sonnet-latest"}},
		{ID: "claude-sonnet-4", Family: "anthropic", ContextLimit: 200000, InputCostPer1K: 0.003, OutputCostPer1K: 0.015,
			Aliases: []string{"claude-4-sonnet"}},
		{ID: "claude-opus-4", Family: "anthropic", ContextLimit: 200000, InputCostPer1K: 0.015, OutputCostPer1K: 0.075,
			Aliases: []string{"claude-4-opus"}},
		{ID: "claude-2.1", Family: "anthropic", ContextLimit: 200000, InputCostPer1K: 0.008, OutputCostPer1K: 0.024},
		{ID: "claude-2", Family: "anthropic", ContextLimit: 100000, InputCostPer1K: 0.008, OutputCostPer1K: 0.024,
			Aliases: []string{"claude-2.0"}},
		{ID: "claude-instant-1", Family: "anthropic", ContextLimit: 100000, InputCostPer1K: 0.0008, OutputCostPer1K: 0.0024,
			Aliases: []string{"claude-instant", "claude-instant-1.2"}},

		// Google
		{ID: "gemini-1.0-pro", Family: "google", ContextLimit: 32760, InputCostPer1K: 0.0005, OutputCostPer1K: 0.0015,
			Aliases: []string{"gemini-pro"}},
		{ID: "gemini-1.5-pro", Family: "google", ContextLimit: 2097152, InputCostPer1K: 0.00125, OutputCostPer1K: 0.005,
			Aliases: []string{"gemini-1.5-pro-latest"}},
		{ID: "gemini-1.5-flash", Family: "google", ContextLimit: 1048576, InputCostPer1K: 0.000075, OutputCostPer1K: 0.0003,
			Aliases: []string{"gemini-1.5-flash-latest", "gemini-flash"}},
		{ID: "gemini-2.0-flash", Family: "google", ContextLimit: 1048576, InputCostPer1K: 0.0001, OutputCostPer1K: 0.0004},
		{ID: "gemini-2.5-pro", Family: "google", ContextLimit: 1048576, InputCostPer1K: 0.00125, OutputCostPer1K: 0.01},

		// Meta
		{ID: "llama-3-8b", Family: "meta", ContextLimit: 8192, InputCostPer1K: 0.00005, OutputCostPer1K: 0.00008,
			Aliases: []string{"llama3-8b", "meta-llama-3-8b"}},
		{ID: "llama-3-70b", Family: "meta", ContextLimit: 8192, InputCostPer1K: 0.00059, OutputCostPer1K: 0.00079,
			Aliases: []string{"llama3-70b", "meta-llama-3-70b"}},
		{ID: "llama-3.1-8b", Family: "meta", ContextLimit: 128000, InputCostPer1K: 0.00018, OutputCostPer1K: 0.00018},
		{ID: "llama-3.1-70b", Family: "meta", ContextLimit: 128000, InputCostPer1K: 0.00088, OutputCostPer1K: 0.00088},
		{ID: "llama-3.1-405b", Family: "meta", ContextLimit: 128000, InputCostPer1K: 0.003, OutputCostPer1K: 0.003},

		// Mistral
		{ID: "mistral-large", Family: "mistral", ContextLimit: 128000, InputCostPer1K: 0.002, OutputCostPer1K: 0.006,
			Aliases: []string{"mistral-large-latest"}},
		{ID: "mistral-small", Family: "mistral", ContextLimit: 32000, InputCostPer1K: 0.0002, OutputCostPer1K: 0.0006,
			Aliases: []string{"mistral-small-latest"}},
		{ID: "mixtral-8x7b", Family: "mistral", ContextLimit: 32768, InputCostPer1K: 0.0007, OutputCostPer1K: 0.0007,
			Aliases: []string{"open-mixtral-8x7b"}},

		// Cohere
		{ID: "command-r", Family: "cohere", ContextLimit: 128000, InputCostPer1K: 0.00015, OutputCostPer1K: 0.0006},
		{ID: "command-r-plus", Family: "cohere", ContextLimit: 128000, InputCostPer1K: 0.0025, OutputCostPer1K: 0.01},

		// DeepSeek
		{ID: "deepseek-chat", Family: "deepseek", ContextLimit: 64000, InputCostPer1K: 0.00027, OutputCostPer1K: 0.0011,
			Aliases: []string{"deepseek-v3"}},
		{ID: "deepseek-reasoner", Family: "deepseek", ContextLimit: 64000, InputCostPer1K: 0.00055, OutputCostPer1K: 0.00219,
			Aliases: []string{"deepseek-r1"}},
	}
}
